package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gatherings/internal/database"
	"gatherings/internal/models"
	"gatherings/internal/repository"
	"gatherings/internal/security"
	"gatherings/internal/utils"
)

var ErrPublicRSVPNotFound = errors.New("no public rsvp matches this token")

// PublicRSVPService manages the token-identified ledger for unauthenticated
// households. Responses never touch the caregiver graph; the respondent
// proves ownership by presenting the token issued at creation.
type PublicRSVPService struct {
	db       *database.DB
	audit    *AuditService
	notifier *EmailService
}

// NewPublicRSVPService creates a new public RSVP service
func NewPublicRSVPService(db *database.DB, audit *AuditService, notifier *EmailService) *PublicRSVPService {
	return &PublicRSVPService{db: db, audit: audit, notifier: notifier}
}

// Create records a public response and returns it with the plaintext token.
// The token is shown exactly once; only its digest is stored.
func (s *PublicRSVPService) Create(eventID int64, firstName, lastName, email, phone string, adultCount, kidCount int, answer models.Answer, comment string) (*models.PublicRSVP, string, error) {
	if eventID <= 0 {
		return nil, "", ErrInvalidEventID
	}
	if !answer.Valid() {
		return nil, "", ErrInvalidAnswer
	}
	if err := utils.ValidateName("first_name", firstName); err != nil {
		return nil, "", err
	}
	if err := utils.ValidateName("last_name", lastName); err != nil {
		return nil, "", err
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := utils.ValidatePhone(phone); err != nil {
		return nil, "", err
	}

	event, err := repository.NewEventRepository(s.db).GetByID(eventID)
	if err != nil {
		return nil, "", err
	}
	if event == nil {
		return nil, "", ErrEventNotFound
	}

	token := security.NewPublicToken()

	record := &models.PublicRSVP{
		EventID:    eventID,
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		Email:      strings.TrimSpace(email),
		Phone:      strings.TrimSpace(phone),
		AdultCount: clampCount(adultCount),
		KidCount:   clampCount(kidCount),
		Answer:     answer,
		Comment:    normalizeComment(comment),
		TokenHash:  security.HashToken(token),
	}

	id, err := repository.NewPublicRSVPRepository(s.db).Create(record)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create public rsvp: %w", err)
	}
	record.ID = id

	s.audit.RecordPublicChange("public_rsvp.create",
		fmt.Sprintf("event=%d public_rsvp=%d answer=%s", eventID, id, answer))

	// Receipt email carries the token so the household can edit later.
	// Best effort only.
	if s.notifier != nil {
		if err := s.notifier.SendPublicRSVPReceipt(context.Background(), record.Email, record.FirstName, event.Title, token); err != nil {
			log.Printf("Warning: failed to send public rsvp receipt: %v", err)
		}
	}

	return record, token, nil
}

// UpdateByToken rewrites a public response identified by its token.
func (s *PublicRSVPService) UpdateByToken(token string, answer models.Answer, comment string, adultCount, kidCount int) error {
	if !answer.Valid() {
		return ErrInvalidAnswer
	}

	hash := security.HashToken(token)
	updated, err := repository.NewPublicRSVPRepository(s.db).UpdateByTokenHash(
		hash, answer, normalizeComment(comment), clampCount(adultCount), clampCount(kidCount))
	if err != nil {
		return err
	}
	if !updated {
		return ErrPublicRSVPNotFound
	}

	s.audit.RecordPublicChange("public_rsvp.update", fmt.Sprintf("answer=%s", answer))
	return nil
}

// DeleteByToken removes a public response identified by its token.
func (s *PublicRSVPService) DeleteByToken(token string) error {
	hash := security.HashToken(token)
	deleted, err := repository.NewPublicRSVPRepository(s.db).DeleteByTokenHash(hash)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPublicRSVPNotFound
	}

	s.audit.RecordPublicChange("public_rsvp.delete", "")
	return nil
}

// GetByToken retrieves the response a token identifies.
func (s *PublicRSVPService) GetByToken(token string) (*models.PublicRSVP, error) {
	record, err := repository.NewPublicRSVPRepository(s.db).GetByTokenHash(security.HashToken(token))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPublicRSVPNotFound
	}
	return record, nil
}

// Totals sums the ledger's self-reported counts for an event by answer. The
// caller adds these to the authenticated aggregates; this service never
// merges the two.
func (s *PublicRSVPService) Totals(eventID int64, answer models.Answer) (models.PublicTotals, error) {
	if !answer.Valid() {
		return models.PublicTotals{}, ErrInvalidAnswer
	}
	return repository.NewPublicRSVPRepository(s.db).Totals(eventID, answer)
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
