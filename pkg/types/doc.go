// Package types defines the Conn capability interface, the Product and
// Customer entities, the configuration record, and the error taxonomy shared
// by every storage backend and manager in WaWi.
package types
