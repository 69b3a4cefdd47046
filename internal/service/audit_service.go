package service

import (
	"log"

	"gatherings/internal/database"
	"gatherings/internal/repository"

	"github.com/google/uuid"
)

// AuditService records who changed what. Writes are best-effort: they happen
// after the primary transaction commits and a failed write is logged and
// swallowed, never surfaced to the caller.
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(db *database.DB) *AuditService {
	return &AuditService{repo: repository.NewAuditRepository(db)}
}

// RecordRSVPChange logs an authenticated change.
func (s *AuditService) RecordRSVPChange(actorAdultID int64, action, detail string) {
	if s == nil {
		return
	}
	if err := s.repo.Record(uuid.NewString(), &actorAdultID, action, detail); err != nil {
		log.Printf("Warning: audit write failed for %s: %v", action, err)
	}
}

// RecordPublicChange logs a token-identified change with no actor.
func (s *AuditService) RecordPublicChange(action, detail string) {
	if s == nil {
		return
	}
	if err := s.repo.Record(uuid.NewString(), nil, action, detail); err != nil {
		log.Printf("Warning: audit write failed for %s: %v", action, err)
	}
}
