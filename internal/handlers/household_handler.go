package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gatherings/internal/models"
	"gatherings/internal/service"
)

// HouseholdHandler exposes caregiver-graph reads and link maintenance.
// Link mutation is restricted to administrators; profile management calls
// these endpoints on behalf of users.
type HouseholdHandler struct {
	householdService *service.HouseholdService
}

// NewHouseholdHandler creates a new household handler
func NewHouseholdHandler(householdService *service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

type personPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func adultPayloads(adults []models.Adult) []personPayload {
	out := make([]personPayload, 0, len(adults))
	for _, adult := range adults {
		out = append(out, personPayload{ID: adult.ID, Name: adult.Name})
	}
	return out
}

func youthPayloads(youths []models.Youth) []personPayload {
	out := make([]personPayload, 0, len(youths))
	for _, youth := range youths {
		out = append(out, personPayload{ID: youth.ID, Name: youth.Name})
	}
	return out
}

// GetDependents lists the caller's (or, for admins, any adult's) dependents
func (h *HouseholdHandler) GetDependents(w http.ResponseWriter, r *http.Request) {
	adultID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid adult id", "", err)
		return
	}

	youths, err := h.householdService.DependentsOf(adultID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error listing dependents", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"dependents": youthPayloads(youths)})
}

// GetCoCaregivers lists the adults sharing a dependent with the given adult
func (h *HouseholdHandler) GetCoCaregivers(w http.ResponseWriter, r *http.Request) {
	adultID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid adult id", "", err)
		return
	}

	adults, err := h.householdService.CoCaregiversOf(adultID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error listing co-caregivers", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"co_caregivers": adultPayloads(adults)})
}

// GetCaregivers lists the adults linked to a youth
func (h *HouseholdHandler) GetCaregivers(w http.ResponseWriter, r *http.Request) {
	youthID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid youth id", "", err)
		return
	}

	adults, err := h.householdService.CaregiversOf(youthID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error listing caregivers", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"caregivers": adultPayloads(adults)})
}

type linkRequest struct {
	AdultID int64 `json:"adult_id"`
	YouthID int64 `json:"youth_id"`
}

// AddLink records a caregiver relationship (admin)
func (h *HouseholdHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.AdultID <= 0 || req.YouthID <= 0 {
		respondWithError(w, http.StatusBadRequest, "adult_id and youth_id must be positive", "", nil)
		return
	}

	if err := h.householdService.AddLink(req.AdultID, req.YouthID); err != nil {
		if errors.Is(err, service.ErrAdultNotFound) || errors.Is(err, service.ErrYouthNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error adding caregiver link", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"status": "linked"})
}

// RemoveLink deletes a caregiver relationship (admin)
func (h *HouseholdHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.householdService.RemoveLink(req.AdultID, req.YouthID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error removing caregiver link", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}
