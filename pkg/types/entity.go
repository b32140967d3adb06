package types

// Entity is a record a manager can persist. The id is zero until storage
// assigns one on insert and never changes afterwards.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
	Validate() error
}
