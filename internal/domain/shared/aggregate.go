package shared

// Versioned is implemented by aggregates persisted with optimistic locking
type Versioned interface {
	GetVersion() int64
	SetVersion(v int64)
}

// BaseAggregateRoot carries the optimistic concurrency token
type BaseAggregateRoot struct {
	Version int64 `json:"version"`
}

// GetVersion returns the aggregate version for optimistic locking.
// Version 0 means the aggregate has never been stored.
func (a *BaseAggregateRoot) GetVersion() int64 {
	return a.Version
}

// SetVersion records the version assigned by the store after a save
func (a *BaseAggregateRoot) SetVersion(v int64) {
	a.Version = v
}
