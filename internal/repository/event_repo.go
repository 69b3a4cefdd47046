package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gatherings/internal/database"
	"gatherings/internal/models"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event. capacity may be nil for unlimited.
func (r *EventRepository) Create(title string, startsAt time.Time, capacity *int64) (*models.Event, error) {
	query := "INSERT INTO events (title, starts_at, capacity) VALUES (?, ?, ?)"
	var capArg interface{}
	if capacity != nil {
		capArg = *capacity
	}
	id, err := r.db.ExecReturningID(query, title, startsAt, capArg)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &models.Event{
		ID:        id,
		Title:     title,
		StartsAt:  startsAt,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetByID retrieves an event by ID, or nil when absent
func (r *EventRepository) GetByID(eventID int64) (*models.Event, error) {
	query := "SELECT id, title, starts_at, capacity, created_at, updated_at FROM events WHERE id = ?"
	return r.scanEvent(r.db.QueryRow(query, eventID))
}

// GetByIDForUpdate retrieves an event and takes a row-level write lock where
// the dialect supports one. The RSVP upsert holds this lock across its
// capacity check and writes so two concurrent submissions on a near-full
// event cannot both read a count below the cap.
func (r *EventRepository) GetByIDForUpdate(eventID int64) (*models.Event, error) {
	query := "SELECT id, title, starts_at, capacity, created_at, updated_at FROM events WHERE id = ?"
	if clause := r.db.GetDialect().LockingClause(); clause != "" {
		query = strings.TrimSpace(query) + " " + clause
	}
	return r.scanEvent(r.db.QueryRow(query, eventID))
}

func (r *EventRepository) scanEvent(row *sql.Row) (*models.Event, error) {
	event := &models.Event{}
	var startsAt sql.NullTime
	var capacity sql.NullInt64
	err := row.Scan(&event.ID, &event.Title, &startsAt, &capacity, &event.CreatedAt, &event.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if startsAt.Valid {
		event.StartsAt = startsAt.Time
	}
	if capacity.Valid {
		event.Capacity = &capacity.Int64
	}
	return event, nil
}
