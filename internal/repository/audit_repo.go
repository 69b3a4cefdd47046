package repository

import (
	"fmt"

	"gatherings/internal/database"
)

// AuditRepository appends who-changed-what records. Writes happen outside
// the primary transaction; the caller swallows failures so auditing can
// never block an RSVP write.
type AuditRepository struct {
	db database.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db database.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one audit row. actorAdultID may be nil for the public path.
func (r *AuditRepository) Record(correlationID string, actorAdultID *int64, action, detail string) error {
	query := "INSERT INTO audit_log (correlation_id, actor_adult_id, action, detail) VALUES (?, ?, ?, ?)"
	var actor interface{}
	if actorAdultID != nil {
		actor = *actorAdultID
	}
	if _, err := r.db.Exec(query, correlationID, actor, action, detail); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
