package models

import "time"

// Event is an occasion families respond to. Capacity caps the number of
// distinct youths registered across all RSVPs for the event, regardless of
// answer. A nil or non-positive capacity means unlimited.
type Event struct {
	ID        int64
	Title     string
	StartsAt  time.Time
	Capacity  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCapacity reports whether the event enforces a youth cap.
func (e *Event) HasCapacity() bool {
	return e.Capacity != nil && *e.Capacity > 0
}
