package models

import "time"

// PublicRSVP is an unauthenticated household response. It is not connected
// to the caregiver graph; the household self-reports adult and kid counts.
// The respondent keeps a random token whose hash is stored in TokenHash; the
// plaintext is returned exactly once at creation and never persisted.
type PublicRSVP struct {
	ID         int64
	EventID    int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	AdultCount int
	KidCount   int
	Answer     Answer
	Comment    *string
	TokenHash  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PublicTotals is the aggregate shape shared with the authenticated side so
// callers can add the two together.
type PublicTotals struct {
	Adults int
	Kids   int
}
