package repository

import (
	"database/sql"
	"fmt"
	"time"

	"gatherings/internal/database"
	"gatherings/internal/models"
)

// PersonRepository maintains the local mirrors of adults and youths. The
// records themselves are owned by the identity and profile subsystems; only
// id and display name are kept here for graph and name queries.
type PersonRepository struct {
	db database.DBTX
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db database.DBTX) *PersonRepository {
	return &PersonRepository{db: db}
}

// CreateAdult inserts an adult mirror record
func (r *PersonRepository) CreateAdult(name string) (*models.Adult, error) {
	query := "INSERT INTO adults (name) VALUES (?)"
	id, err := r.db.ExecReturningID(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create adult: %w", err)
	}
	return &models.Adult{ID: id, Name: name, CreatedAt: time.Now()}, nil
}

// CreateYouth inserts a youth mirror record
func (r *PersonRepository) CreateYouth(name string) (*models.Youth, error) {
	query := "INSERT INTO youths (name) VALUES (?)"
	id, err := r.db.ExecReturningID(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create youth: %w", err)
	}
	return &models.Youth{ID: id, Name: name, CreatedAt: time.Now()}, nil
}

// GetAdultByID retrieves an adult by ID, or nil when absent
func (r *PersonRepository) GetAdultByID(adultID int64) (*models.Adult, error) {
	query := "SELECT id, name, created_at FROM adults WHERE id = ?"
	adult := &models.Adult{}
	err := r.db.QueryRow(query, adultID).Scan(&adult.ID, &adult.Name, &adult.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adult: %w", err)
	}
	return adult, nil
}

// GetYouthByID retrieves a youth by ID, or nil when absent
func (r *PersonRepository) GetYouthByID(youthID int64) (*models.Youth, error) {
	query := "SELECT id, name, created_at FROM youths WHERE id = ?"
	youth := &models.Youth{}
	err := r.db.QueryRow(query, youthID).Scan(&youth.ID, &youth.Name, &youth.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get youth: %w", err)
	}
	return youth, nil
}
