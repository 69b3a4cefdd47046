package repository

import (
	"database/sql"
	"fmt"

	"gatherings/internal/database"
	"gatherings/internal/models"
)

// RSVPRepository handles database operations for family RSVPs and their
// member rows. Writes must only happen through the service-layer upsert,
// which resolves the family's existing record first; inserting here without
// resolving breaks the one-RSVP-per-family rule.
type RSVPRepository struct {
	db database.DBTX
}

// NewRSVPRepository creates a new RSVP repository. Pass an open transaction
// on write paths so resolution and writes share one row image.
func NewRSVPRepository(db database.DBTX) *RSVPRepository {
	return &RSVPRepository{db: db}
}

const rsvpColumns = "id, event_id, creator_adult_id, entered_by_adult_id, answer, comment, guest_count, created_at, updated_at"

// GetByID retrieves an RSVP by ID, or nil when absent
func (r *RSVPRepository) GetByID(rsvpID int64) (*models.RSVP, error) {
	query := "SELECT " + rsvpColumns + " FROM rsvps WHERE id = ?"
	return scanRSVPRow(r.db.QueryRow(query, rsvpID))
}

// FindByEventAndCreators retrieves all RSVPs for an event whose creator is in
// the given set, ordered by id ascending so callers get a deterministic
// tie-break when the data holds duplicates.
func (r *RSVPRepository) FindByEventAndCreators(eventID int64, creatorIDs []int64) ([]models.RSVP, error) {
	if len(creatorIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT "+rsvpColumns+" FROM rsvps WHERE event_id = ? AND creator_adult_id IN (%s) ORDER BY id ASC",
		placeholders(len(creatorIDs)),
	)
	args := append([]interface{}{eventID}, int64Args(creatorIDs)...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvps by creators: %w", err)
	}
	defer rows.Close()

	return scanRSVPs(rows)
}

// ListByEvent retrieves every RSVP for an event, ordered by id ascending.
func (r *RSVPRepository) ListByEvent(eventID int64) ([]models.RSVP, error) {
	query := "SELECT " + rsvpColumns + " FROM rsvps WHERE event_id = ? ORDER BY id ASC"
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event rsvps: %w", err)
	}
	defer rows.Close()

	return scanRSVPs(rows)
}

// Insert creates a new RSVP row. creatorAdultID is immutable afterwards.
func (r *RSVPRepository) Insert(eventID, creatorAdultID int64, answer models.Answer, comment *string, guestCount int) (int64, error) {
	query := `
		INSERT INTO rsvps (event_id, creator_adult_id, entered_by_adult_id, answer, comment, guest_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, eventID, creatorAdultID, creatorAdultID, string(answer), comment, guestCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert rsvp: %w", err)
	}
	return id, nil
}

// Update rewrites the mutable fields of an existing RSVP. The creator column
// is deliberately untouched.
func (r *RSVPRepository) Update(rsvpID, enteredByAdultID int64, answer models.Answer, comment *string, guestCount int) error {
	query := `
		UPDATE rsvps
		SET answer = ?, comment = ?, guest_count = ?, entered_by_adult_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, string(answer), comment, guestCount, enteredByAdultID, rsvpID); err != nil {
		return fmt.Errorf("failed to update rsvp: %w", err)
	}
	return nil
}

// DeleteMembers removes every member row of an RSVP. Member sets are always
// replaced wholesale, never patched.
func (r *RSVPRepository) DeleteMembers(rsvpID int64) error {
	query := "DELETE FROM rsvp_members WHERE rsvp_id = ?"
	if _, err := r.db.Exec(query, rsvpID); err != nil {
		return fmt.Errorf("failed to delete rsvp members: %w", err)
	}
	return nil
}

// InsertMembers inserts one member row per adult and youth id, all tagged to
// the RSVP's event.
func (r *RSVPRepository) InsertMembers(rsvpID, eventID int64, adultIDs, youthIDs []int64) error {
	adultQuery := "INSERT INTO rsvp_members (rsvp_id, event_id, kind, adult_id) VALUES (?, ?, 'adult', ?)"
	for _, adultID := range adultIDs {
		if _, err := r.db.Exec(adultQuery, rsvpID, eventID, adultID); err != nil {
			return fmt.Errorf("failed to insert adult member %d: %w", adultID, err)
		}
	}

	youthQuery := "INSERT INTO rsvp_members (rsvp_id, event_id, kind, youth_id) VALUES (?, ?, 'youth', ?)"
	for _, youthID := range youthIDs {
		if _, err := r.db.Exec(youthQuery, rsvpID, eventID, youthID); err != nil {
			return fmt.Errorf("failed to insert youth member %d: %w", youthID, err)
		}
	}

	return nil
}

// CountDistinctYouthForEvent counts distinct youths across all RSVPs for an
// event, regardless of answer. This is the number the capacity cap limits.
func (r *RSVPRepository) CountDistinctYouthForEvent(eventID int64) (int, error) {
	query := "SELECT COUNT(DISTINCT youth_id) FROM rsvp_members WHERE event_id = ? AND kind = 'youth'"
	var count int
	if err := r.db.QueryRow(query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count event youths: %w", err)
	}
	return count, nil
}

// CountYouthOnRSVP counts the youth member rows on one RSVP.
func (r *RSVPRepository) CountYouthOnRSVP(rsvpID int64) (int, error) {
	query := "SELECT COUNT(*) FROM rsvp_members WHERE rsvp_id = ? AND kind = 'youth'"
	var count int
	if err := r.db.QueryRow(query, rsvpID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rsvp youths: %w", err)
	}
	return count, nil
}

// AdultMemberIDs retrieves the adult ids explicitly listed on an RSVP.
func (r *RSVPRepository) AdultMemberIDs(rsvpID int64) ([]int64, error) {
	query := "SELECT adult_id FROM rsvp_members WHERE rsvp_id = ? AND kind = 'adult' ORDER BY adult_id ASC"
	rows, err := r.db.Query(query, rsvpID)
	if err != nil {
		return nil, fmt.Errorf("failed to query adult members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan adult member: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GuestTotal sums extra-guest counts across an event's RSVPs with the given
// answer.
func (r *RSVPRepository) GuestTotal(eventID int64, answer models.Answer) (int, error) {
	query := "SELECT COALESCE(SUM(guest_count), 0) FROM rsvps WHERE event_id = ? AND answer = ?"
	var total int
	if err := r.db.QueryRow(query, eventID, string(answer)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum guest counts: %w", err)
	}
	return total, nil
}

// AdultNames retrieves distinct display names of adult participants for an
// event, filtered by answer. Unsorted; the service applies natural ordering.
func (r *RSVPRepository) AdultNames(eventID int64, answer models.Answer) ([]string, error) {
	query := `
		SELECT DISTINCT a.name
		FROM rsvp_members m
		INNER JOIN rsvps r ON m.rsvp_id = r.id
		INNER JOIN adults a ON m.adult_id = a.id
		WHERE m.event_id = ? AND m.kind = 'adult' AND r.answer = ?
	`
	return r.queryNames(query, eventID, string(answer))
}

// YouthNames retrieves distinct display names of youth participants for an
// event, filtered by answer.
func (r *RSVPRepository) YouthNames(eventID int64, answer models.Answer) ([]string, error) {
	query := `
		SELECT DISTINCT y.name
		FROM rsvp_members m
		INNER JOIN rsvps r ON m.rsvp_id = r.id
		INNER JOIN youths y ON m.youth_id = y.id
		WHERE m.event_id = ? AND m.kind = 'youth' AND r.answer = ?
	`
	return r.queryNames(query, eventID, string(answer))
}

// ParticipantCounts counts distinct adult and youth participants for an
// event, filtered by answer.
func (r *RSVPRepository) ParticipantCounts(eventID int64, answer models.Answer) (models.ParticipantCounts, error) {
	query := `
		SELECT COUNT(DISTINCT m.adult_id), COUNT(DISTINCT m.youth_id)
		FROM rsvp_members m
		INNER JOIN rsvps r ON m.rsvp_id = r.id
		WHERE m.event_id = ? AND r.answer = ?
	`
	var counts models.ParticipantCounts
	if err := r.db.QueryRow(query, eventID, string(answer)).Scan(&counts.Adults, &counts.Youths); err != nil {
		return models.ParticipantCounts{}, fmt.Errorf("failed to count participants: %w", err)
	}
	return counts, nil
}

// MemberSummary counts the adult and youth member rows on one RSVP.
func (r *RSVPRepository) MemberSummary(rsvpID int64) (models.MemberSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'adult' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'youth' THEN 1 ELSE 0 END), 0)
		FROM rsvp_members
		WHERE rsvp_id = ?
	`
	summary := models.MemberSummary{RSVPID: rsvpID}
	if err := r.db.QueryRow(query, rsvpID).Scan(&summary.AdultCount, &summary.YouthCount); err != nil {
		return models.MemberSummary{}, fmt.Errorf("failed to summarize rsvp members: %w", err)
	}
	return summary, nil
}

func (r *RSVPRepository) queryNames(query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func scanRSVPRow(row *sql.Row) (*models.RSVP, error) {
	rsvp := &models.RSVP{}
	var comment sql.NullString
	var answer string
	err := row.Scan(
		&rsvp.ID, &rsvp.EventID, &rsvp.CreatorAdultID, &rsvp.EnteredByAdultID,
		&answer, &comment, &rsvp.GuestCount, &rsvp.CreatedAt, &rsvp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvp: %w", err)
	}
	rsvp.Answer = models.Answer(answer)
	if comment.Valid {
		rsvp.Comment = &comment.String
	}
	return rsvp, nil
}

func scanRSVPs(rows *sql.Rows) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	for rows.Next() {
		var rsvp models.RSVP
		var comment sql.NullString
		var answer string
		if err := rows.Scan(
			&rsvp.ID, &rsvp.EventID, &rsvp.CreatorAdultID, &rsvp.EnteredByAdultID,
			&answer, &comment, &rsvp.GuestCount, &rsvp.CreatedAt, &rsvp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvp.Answer = models.Answer(answer)
		if comment.Valid {
			rsvp.Comment = &comment.String
		}
		rsvps = append(rsvps, rsvp)
	}
	return rsvps, rows.Err()
}
