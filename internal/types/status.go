package types

// Status is a type for the lifecycle status of a persisted resource.
// This is used to soft-delete resources and to determine if they should be
// included in queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}
