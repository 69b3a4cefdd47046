package models

import "time"

// Adult represents an account holder who may care for zero or more youths.
// The record itself is owned by the identity subsystem; we mirror id and name
// for display queries.
type Adult struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Youth represents a dependent. Youths never hold accounts.
type Youth struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// CaregiverLink is an unordered adult-youth edge. The same pair appears at
// most once. Two adults sharing at least one youth through these edges are
// co-caregivers, which is what makes them one family for RSVP resolution.
type CaregiverLink struct {
	ID       int64
	AdultID  int64
	YouthID  int64
	LinkedAt time.Time
}
