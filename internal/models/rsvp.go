package models

import (
	"strings"
	"time"
)

// Answer is a family's response to an event.
type Answer string

const (
	AnswerYes   Answer = "yes"
	AnswerMaybe Answer = "maybe"
	AnswerNo    Answer = "no"
)

// ParseAnswer normalizes and validates an answer string.
func ParseAnswer(s string) (Answer, bool) {
	a := Answer(strings.ToLower(strings.TrimSpace(s)))
	return a, a.Valid()
}

// Valid reports whether the answer is one of yes, maybe or no.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerMaybe, AnswerNo:
		return true
	}
	return false
}

// RSVP is one family's response to one event. CreatorAdultID is the adult who
// first submitted it and never changes; EnteredByAdultID tracks who wrote the
// latest revision (a co-caregiver or an administrator). At most one RSVP
// exists per event and family, enforced by resolve-before-write in the
// service layer rather than a database constraint.
type RSVP struct {
	ID               int64
	EventID          int64
	CreatorAdultID   int64
	EnteredByAdultID int64
	Answer           Answer
	Comment          *string
	GuestCount       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CommentText returns the comment or "" when unset.
func (r *RSVP) CommentText() string {
	if r.Comment == nil {
		return ""
	}
	return *r.Comment
}

// ParticipantKind tags an RSVP member row as an adult or youth reference.
type ParticipantKind string

const (
	ParticipantAdult ParticipantKind = "adult"
	ParticipantYouth ParticipantKind = "youth"
)

// RSVPMember is one participant on an RSVP. Exactly one of AdultID and
// YouthID is set, matching Kind. Member sets are replaced wholesale on every
// update, never patched row by row.
type RSVPMember struct {
	ID       int64
	RSVPID   int64
	EventID  int64
	Kind     ParticipantKind
	AdultID  *int64
	YouthID  *int64
	AddedAt  time.Time
}

// MemberSummary is the per-family member count breakdown for one RSVP.
type MemberSummary struct {
	RSVPID     int64
	AdultCount int
	YouthCount int
}

// ParticipantCounts is the distinct-participant tally for an event, filtered
// by answer.
type ParticipantCounts struct {
	Adults int
	Youths int
}
