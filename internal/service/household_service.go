package service

import (
	"fmt"

	"gatherings/internal/database"
	"gatherings/internal/models"
	"gatherings/internal/repository"
)

// HouseholdService exposes the caregiver graph to the HTTP layer. Reads are
// pure; link mutation is the surface used by the external profile
// collaborator and by administrators.
type HouseholdService struct {
	db *database.DB
}

// NewHouseholdService creates a new household service
func NewHouseholdService(db *database.DB) *HouseholdService {
	return &HouseholdService{db: db}
}

// DependentsOf lists all youths linked to an adult.
func (s *HouseholdService) DependentsOf(adultID int64) ([]models.Youth, error) {
	return repository.NewHouseholdRepository(s.db).DependentsOf(adultID)
}

// CoCaregiversOf lists all adults sharing at least one dependent with the
// given adult, excluding the adult itself.
func (s *HouseholdService) CoCaregiversOf(adultID int64) ([]models.Adult, error) {
	return repository.NewHouseholdRepository(s.db).CoCaregiversOf(adultID)
}

// CaregiversOf lists all adults linked to a youth.
func (s *HouseholdService) CaregiversOf(youthID int64) ([]models.Adult, error) {
	return repository.NewHouseholdRepository(s.db).CaregiversOf(youthID)
}

// AddLink records a caregiver relationship after checking both people exist.
func (s *HouseholdService) AddLink(adultID, youthID int64) error {
	people := repository.NewPersonRepository(s.db)

	adult, err := people.GetAdultByID(adultID)
	if err != nil {
		return err
	}
	if adult == nil {
		return fmt.Errorf("adult %d: %w", adultID, ErrAdultNotFound)
	}

	youth, err := people.GetYouthByID(youthID)
	if err != nil {
		return err
	}
	if youth == nil {
		return fmt.Errorf("youth %d: %w", youthID, ErrYouthNotFound)
	}

	return repository.NewHouseholdRepository(s.db).AddLink(adultID, youthID)
}

// RemoveLink deletes a caregiver relationship.
func (s *HouseholdService) RemoveLink(adultID, youthID int64) error {
	return repository.NewHouseholdRepository(s.db).RemoveLink(adultID, youthID)
}
