// Package wawi holds the product identity shown by front ends.
package wawi

// Name is the short product name.
const Name = "WaWi"

// Version is the current release.
const Version = "1.0.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/wawi"

// About describes the program in one paragraph.
const About = Name + " is a small inventory and customer management tool. " +
	"Products and customers are kept in an embedded database file or on a " +
	"database server, selected in the settings."
