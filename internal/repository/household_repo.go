package repository

import (
	"database/sql"
	"fmt"

	"gatherings/internal/database"
	"gatherings/internal/models"
)

// HouseholdRepository answers family-membership queries over the caregiver
// graph. Every call re-derives its result from the current edges; profile
// management mutates the graph concurrently and callers must not assume a
// stable snapshot between calls.
type HouseholdRepository struct {
	db database.DBTX
}

// NewHouseholdRepository creates a new household repository. Pass an open
// transaction to make the graph reads part of a write path's row image.
func NewHouseholdRepository(db database.DBTX) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// DependentsOf retrieves all youths linked to the given adult.
func (r *HouseholdRepository) DependentsOf(adultID int64) ([]models.Youth, error) {
	query := `
		SELECT y.id, y.name, y.created_at
		FROM youths y
		INNER JOIN caregiver_links cl ON y.id = cl.youth_id
		WHERE cl.adult_id = ?
		ORDER BY y.id ASC
	`
	rows, err := r.db.Query(query, adultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependents: %w", err)
	}
	defer rows.Close()

	var youths []models.Youth
	for rows.Next() {
		var youth models.Youth
		if err := rows.Scan(&youth.ID, &youth.Name, &youth.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan youth: %w", err)
		}
		youths = append(youths, youth)
	}

	return youths, rows.Err()
}

// CaregiversOf retrieves all adults linked to the given youth.
func (r *HouseholdRepository) CaregiversOf(youthID int64) ([]models.Adult, error) {
	query := `
		SELECT a.id, a.name, a.created_at
		FROM adults a
		INNER JOIN caregiver_links cl ON a.id = cl.adult_id
		WHERE cl.youth_id = ?
		ORDER BY a.id ASC
	`
	rows, err := r.db.Query(query, youthID)
	if err != nil {
		return nil, fmt.Errorf("failed to query caregivers: %w", err)
	}
	defer rows.Close()

	return scanAdults(rows)
}

// CoCaregiversOf retrieves all adults that share at least one dependent with
// the given adult, excluding the adult itself. Two-hop traversal: adult ->
// youths -> adults.
func (r *HouseholdRepository) CoCaregiversOf(adultID int64) ([]models.Adult, error) {
	query := `
		SELECT DISTINCT a.id, a.name, a.created_at
		FROM caregiver_links own
		INNER JOIN caregiver_links shared ON own.youth_id = shared.youth_id
		INNER JOIN adults a ON shared.adult_id = a.id
		WHERE own.adult_id = ? AND shared.adult_id != ?
		ORDER BY a.id ASC
	`
	rows, err := r.db.Query(query, adultID, adultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query co-caregivers: %w", err)
	}
	defer rows.Close()

	return scanAdults(rows)
}

// RelatedCaregiverIDs expands a set of seed adults to every adult linked to
// any dependent of any seed. Unlike CoCaregiversOf it starts from multiple
// seeds at once and does not exclude the seeds themselves. Used by the
// comment broadcast, which widens per RSVP rather than per adult.
func (r *HouseholdRepository) RelatedCaregiverIDs(seedAdultIDs []int64) ([]int64, error) {
	if len(seedAdultIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT shared.adult_id
		FROM caregiver_links own
		INNER JOIN caregiver_links shared ON own.youth_id = shared.youth_id
		WHERE own.adult_id IN (%s)
		ORDER BY shared.adult_id ASC
	`, placeholders(len(seedAdultIDs)))

	rows, err := r.db.Query(query, int64Args(seedAdultIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query related caregivers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan caregiver id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// AddLink records a caregiver relationship. The (adult, youth) pair is unique;
// re-adding an existing link fails on the constraint.
func (r *HouseholdRepository) AddLink(adultID, youthID int64) error {
	query := "INSERT INTO caregiver_links (adult_id, youth_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, adultID, youthID); err != nil {
		return fmt.Errorf("failed to add caregiver link: %w", err)
	}
	return nil
}

// RemoveLink deletes a caregiver relationship if present.
func (r *HouseholdRepository) RemoveLink(adultID, youthID int64) error {
	query := "DELETE FROM caregiver_links WHERE adult_id = ? AND youth_id = ?"
	if _, err := r.db.Exec(query, adultID, youthID); err != nil {
		return fmt.Errorf("failed to remove caregiver link: %w", err)
	}
	return nil
}

func scanAdults(rows *sql.Rows) ([]models.Adult, error) {
	var adults []models.Adult
	for rows.Next() {
		var adult models.Adult
		if err := rows.Scan(&adult.ID, &adult.Name, &adult.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan adult: %w", err)
		}
		adults = append(adults, adult)
	}
	return adults, rows.Err()
}
