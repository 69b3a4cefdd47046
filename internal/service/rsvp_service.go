package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gatherings/internal/database"
	"gatherings/internal/models"
	"gatherings/internal/repository"

	"github.com/fvbommel/sortorder"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrRSVPNotFound     = errors.New("rsvp not found")
	ErrAdultNotFound    = errors.New("adult not found")
	ErrYouthNotFound    = errors.New("youth not found")
	ErrInvalidAnswer    = errors.New("answer must be yes, maybe or no")
	ErrInvalidEventID   = errors.New("event id must be positive")
	ErrCapacityExceeded = errors.New("event is at capacity for youth participants")
)

// RSVPService owns family RSVP resolution, the capacity-enforcing upsert and
// the comment broadcast. All writes to rsvps and rsvp_members go through
// SetFamilyRSVP; nothing else may insert or patch those tables.
type RSVPService struct {
	db    *database.DB
	audit *AuditService
}

// NewRSVPService creates a new RSVP service
func NewRSVPService(db *database.DB, audit *AuditService) *RSVPService {
	return &RSVPService{db: db, audit: audit}
}

// ResolveByAdult finds the single RSVP representing the acting adult's family
// for an event, or nil when the family has not answered. The candidate
// creator set is the adult plus every co-caregiver sharing a dependent.
func (s *RSVPService) ResolveByAdult(eventID, adultID int64) (*models.RSVP, error) {
	return s.resolveByAdult(s.db, eventID, adultID)
}

// ResolveByYouth finds the family RSVP for an event starting from a youth.
// The candidate creator set is the youth's caregivers.
func (s *RSVPService) ResolveByYouth(eventID, youthID int64) (*models.RSVP, error) {
	households := repository.NewHouseholdRepository(s.db)
	caregivers, err := households.CaregiversOf(youthID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rsvp by youth: %w", err)
	}
	if len(caregivers) == 0 {
		return nil, nil
	}

	candidates := make([]int64, 0, len(caregivers))
	for _, adult := range caregivers {
		candidates = append(candidates, adult.ID)
	}

	matches, err := repository.NewRSVPRepository(s.db).FindByEventAndCreators(eventID, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rsvp by youth: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	// lowest id wins; there is no anchor adult to prefer on this path
	return &matches[0], nil
}

// resolveByAdult runs the adult-side resolution over the given DBTX so write
// paths can resolve inside their own transaction rather than against a stale
// row image.
func (s *RSVPService) resolveByAdult(db database.DBTX, eventID, adultID int64) (*models.RSVP, error) {
	households := repository.NewHouseholdRepository(db)
	coCaregivers, err := households.CoCaregiversOf(adultID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rsvp by adult: %w", err)
	}

	candidates := make([]int64, 0, len(coCaregivers)+1)
	candidates = append(candidates, adultID)
	for _, adult := range coCaregivers {
		candidates = append(candidates, adult.ID)
	}

	matches, err := repository.NewRSVPRepository(db).FindByEventAndCreators(eventID, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rsvp by adult: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// If co-caregivers ever created duplicate records, the acting adult's own
	// row wins so the UI never silently switches them onto someone else's
	// submission. Otherwise the lowest id is the deterministic pick.
	for i := range matches {
		if matches[i].CreatorAdultID == adultID {
			return &matches[i], nil
		}
	}
	return &matches[0], nil
}

// SetFamilyRSVP records or rewrites a family's answer to an event inside one
// transaction: resolve the existing record, verify the event's youth cap,
// upsert the row and replace its member set. Returns the RSVP id.
//
// The capacity projection subtracts the family's own registered youths before
// adding the requested set, so a family changing its answer keeps the seats
// it already holds. The event row is locked for the whole check-and-write on
// engines that support it.
func (s *RSVPService) SetFamilyRSVP(actingAdultID, eventID int64, answer models.Answer, adultMemberIDs, youthMemberIDs []int64, comment string, guestCount int) (int64, error) {
	if eventID <= 0 {
		return 0, ErrInvalidEventID
	}
	if !answer.Valid() {
		return 0, ErrInvalidAnswer
	}
	if guestCount < 0 {
		guestCount = 0
	}
	adultMemberIDs = sanitizeIDs(adultMemberIDs)
	youthMemberIDs = sanitizeIDs(youthMemberIDs)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	events := repository.NewEventRepository(tx)
	event, err := events.GetByIDForUpdate(eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return 0, ErrEventNotFound
	}

	existing, err := s.resolveByAdult(tx, eventID, actingAdultID)
	if err != nil {
		return 0, err
	}

	rsvps := repository.NewRSVPRepository(tx)

	if event.HasCapacity() {
		currentYouths, err := rsvps.CountDistinctYouthForEvent(eventID)
		if err != nil {
			return 0, err
		}
		ownYouths := 0
		if existing != nil {
			ownYouths, err = rsvps.CountYouthOnRSVP(existing.ID)
			if err != nil {
				return 0, err
			}
		}
		projected := currentYouths - ownYouths + len(youthMemberIDs)
		if int64(projected) > *event.Capacity {
			return 0, fmt.Errorf("%w: capacity %d, would register %d", ErrCapacityExceeded, *event.Capacity, projected)
		}
	}

	commentPtr := normalizeComment(comment)

	var rsvpID int64
	if existing != nil {
		rsvpID = existing.ID
		if err := rsvps.Update(rsvpID, actingAdultID, answer, commentPtr, guestCount); err != nil {
			return 0, err
		}
	} else {
		rsvpID, err = rsvps.Insert(eventID, actingAdultID, answer, commentPtr, guestCount)
		if err != nil {
			return 0, err
		}
	}

	// Replace the member set wholesale; a smaller set than before must leave
	// no orphaned rows.
	if err := rsvps.DeleteMembers(rsvpID); err != nil {
		return 0, err
	}
	if err := rsvps.InsertMembers(rsvpID, eventID, adultMemberIDs, youthMemberIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rsvp: %w", err)
	}

	s.audit.RecordRSVPChange(actingAdultID, "rsvp.set",
		fmt.Sprintf("event=%d rsvp=%d answer=%s adults=%d youths=%d guests=%d",
			eventID, rsvpID, answer, len(adultMemberIDs), len(youthMemberIDs), guestCount))

	return rsvpID, nil
}

// CommentsByCaregiver expands every commented RSVP of an event to all
// caregivers connected to its participants and returns the text each adult
// should see. Evaluated RSVP by RSVP in id order: an adult linked into two
// separate RSVP groups accumulates both comments, separated by a blank line.
// This must stay a per-RSVP expansion, not one global partition of the graph.
func (s *RSVPService) CommentsByCaregiver(eventID int64) (map[int64]string, error) {
	rsvps := repository.NewRSVPRepository(s.db)
	households := repository.NewHouseholdRepository(s.db)

	list, err := rsvps.ListByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event rsvps: %w", err)
	}

	comments := make(map[int64]string)
	for _, rsvp := range list {
		text := strings.TrimSpace(rsvp.CommentText())
		if text == "" {
			continue
		}

		seeds, err := rsvps.AdultMemberIDs(rsvp.ID)
		if err != nil {
			return nil, err
		}
		// The creator seeds the expansion even when not listed as attending;
		// a caregiver often registers only the dependents.
		seeds = appendIDIfMissing(seeds, rsvp.CreatorAdultID)

		related, err := households.RelatedCaregiverIDs(seeds)
		if err != nil {
			return nil, err
		}

		for _, adultID := range related {
			existing, ok := comments[adultID]
			if !ok {
				comments[adultID] = text
				continue
			}
			if existing == text {
				continue
			}
			comments[adultID] = existing + "\n\n" + text
		}
	}

	return comments, nil
}

// GuestTotal sums extra-guest counts for an event, filtered by answer.
func (s *RSVPService) GuestTotal(eventID int64, answer models.Answer) (int, error) {
	return repository.NewRSVPRepository(s.db).GuestTotal(eventID, answer)
}

// ParticipantNames lists distinct adult and youth display names for an event,
// filtered by answer, in case-insensitive natural order.
func (s *RSVPService) ParticipantNames(eventID int64, answer models.Answer) (adults, youths []string, err error) {
	rsvps := repository.NewRSVPRepository(s.db)

	adults, err = rsvps.AdultNames(eventID, answer)
	if err != nil {
		return nil, nil, err
	}
	youths, err = rsvps.YouthNames(eventID, answer)
	if err != nil {
		return nil, nil, err
	}

	sortNamesNatural(adults)
	sortNamesNatural(youths)
	return adults, youths, nil
}

// ParticipantCounts counts distinct adult and youth participants for an
// event, filtered by answer.
func (s *RSVPService) ParticipantCounts(eventID int64, answer models.Answer) (models.ParticipantCounts, error) {
	return repository.NewRSVPRepository(s.db).ParticipantCounts(eventID, answer)
}

// MemberSummary reports the member breakdown of one RSVP.
func (s *RSVPService) MemberSummary(rsvpID int64) (models.MemberSummary, error) {
	rsvps := repository.NewRSVPRepository(s.db)
	rsvp, err := rsvps.GetByID(rsvpID)
	if err != nil {
		return models.MemberSummary{}, err
	}
	if rsvp == nil {
		return models.MemberSummary{}, ErrRSVPNotFound
	}
	return rsvps.MemberSummary(rsvpID)
}

// sanitizeIDs drops non-positive ids and duplicates, preserving first-seen
// order.
func sanitizeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func appendIDIfMissing(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func normalizeComment(comment string) *string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil
	}
	return &comment
}

func sortNamesNatural(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return sortorder.NaturalLess(strings.ToLower(names[i]), strings.ToLower(names[j]))
	})
}
