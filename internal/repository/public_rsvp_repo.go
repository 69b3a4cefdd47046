package repository

import (
	"database/sql"
	"fmt"

	"gatherings/internal/database"
	"gatherings/internal/models"
)

// PublicRSVPRepository handles the token-identified ledger of unauthenticated
// responses. Rows carry no graph links; the household self-reports counts.
type PublicRSVPRepository struct {
	db database.DBTX
}

// NewPublicRSVPRepository creates a new public RSVP repository
func NewPublicRSVPRepository(db database.DBTX) *PublicRSVPRepository {
	return &PublicRSVPRepository{db: db}
}

const publicRSVPColumns = "id, event_id, first_name, last_name, email, phone, adult_count, kid_count, answer, comment, token_hash, created_at, updated_at"

// Create inserts a public response. TokenHash must already be the digest of
// the respondent's plaintext token.
func (r *PublicRSVPRepository) Create(p *models.PublicRSVP) (int64, error) {
	query := `
		INSERT INTO public_rsvps (event_id, first_name, last_name, email, phone, adult_count, kid_count, answer, comment, token_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		p.EventID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.AdultCount, p.KidCount, string(p.Answer), p.Comment, p.TokenHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create public rsvp: %w", err)
	}
	return id, nil
}

// GetByTokenHash retrieves a public response by token digest, or nil when
// absent.
func (r *PublicRSVPRepository) GetByTokenHash(tokenHash string) (*models.PublicRSVP, error) {
	query := "SELECT " + publicRSVPColumns + " FROM public_rsvps WHERE token_hash = ?"

	p := &models.PublicRSVP{}
	var phone, comment sql.NullString
	var answer string
	err := r.db.QueryRow(query, tokenHash).Scan(
		&p.ID, &p.EventID, &p.FirstName, &p.LastName, &p.Email, &phone,
		&p.AdultCount, &p.KidCount, &answer, &comment, &p.TokenHash,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get public rsvp: %w", err)
	}
	p.Answer = models.Answer(answer)
	if phone.Valid {
		p.Phone = phone.String
	}
	if comment.Valid {
		p.Comment = &comment.String
	}
	return p, nil
}

// UpdateByTokenHash rewrites the mutable fields of a public response.
// Returns false when no row matched the digest.
func (r *PublicRSVPRepository) UpdateByTokenHash(tokenHash string, answer models.Answer, comment *string, adultCount, kidCount int) (bool, error) {
	query := `
		UPDATE public_rsvps
		SET answer = ?, comment = ?, adult_count = ?, kid_count = ?, updated_at = CURRENT_TIMESTAMP
		WHERE token_hash = ?
	`
	result, err := r.db.Exec(query, string(answer), comment, adultCount, kidCount, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to update public rsvp: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

// DeleteByTokenHash removes a public response. Returns false when no row
// matched the digest.
func (r *PublicRSVPRepository) DeleteByTokenHash(tokenHash string) (bool, error) {
	query := "DELETE FROM public_rsvps WHERE token_hash = ?"
	result, err := r.db.Exec(query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete public rsvp: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// Totals sums self-reported adult and kid counts across an event's public
// responses with the given answer. Callers add these to the authenticated
// totals; the two are never merged here.
func (r *PublicRSVPRepository) Totals(eventID int64, answer models.Answer) (models.PublicTotals, error) {
	query := `
		SELECT COALESCE(SUM(adult_count), 0), COALESCE(SUM(kid_count), 0)
		FROM public_rsvps
		WHERE event_id = ? AND answer = ?
	`
	var totals models.PublicTotals
	if err := r.db.QueryRow(query, eventID, string(answer)).Scan(&totals.Adults, &totals.Kids); err != nil {
		return models.PublicTotals{}, fmt.Errorf("failed to sum public totals: %w", err)
	}
	return totals, nil
}
