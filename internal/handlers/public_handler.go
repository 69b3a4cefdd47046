package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gatherings/internal/models"
	"gatherings/internal/service"
	"gatherings/internal/utils"
)

// PublicHandler handles the unauthenticated, token-identified RSVP path
type PublicHandler struct {
	publicService *service.PublicRSVPService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(publicService *service.PublicRSVPService) *PublicHandler {
	return &PublicHandler{publicService: publicService}
}

type createPublicRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	AdultCount int    `json:"adult_count"`
	KidCount   int    `json:"kid_count"`
	Answer     string `json:"answer"`
	Comment    string `json:"comment"`
}

// Create records a public response and returns the one-time edit token
func (h *PublicHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	var req createPublicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	answer, ok := models.ParseAnswer(req.Answer)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Answer must be yes, maybe or no", "", nil)
		return
	}

	record, token, err := h.publicService.Create(eventID, req.FirstName, req.LastName,
		req.Email, req.Phone, req.AdultCount, req.KidCount, answer, req.Comment)
	if err != nil {
		var validationErr utils.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
		case errors.Is(err, service.ErrEventNotFound):
			respondWithError(w, http.StatusNotFound, "Event not found", "", nil)
		case errors.Is(err, service.ErrInvalidEventID):
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error creating public rsvp", err)
		}
		return
	}

	// The token is returned exactly once; only its hash is stored
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    record.ID,
		"token": token,
	})
}

type updatePublicRequest struct {
	Token      string `json:"token"`
	Answer     string `json:"answer"`
	Comment    string `json:"comment"`
	AdultCount int    `json:"adult_count"`
	KidCount   int    `json:"kid_count"`
}

// Update rewrites a public response identified by its token
func (h *PublicHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePublicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	answer, ok := models.ParseAnswer(req.Answer)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Answer must be yes, maybe or no", "", nil)
		return
	}

	err := h.publicService.UpdateByToken(req.Token, answer, req.Comment, req.AdultCount, req.KidCount)
	if err != nil {
		if errors.Is(err, service.ErrPublicRSVPNotFound) {
			respondWithError(w, http.StatusNotFound, "No RSVP matches this token", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error updating public rsvp", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type deletePublicRequest struct {
	Token string `json:"token"`
}

// Delete removes a public response identified by its token
func (h *PublicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deletePublicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.publicService.DeleteByToken(req.Token); err != nil {
		if errors.Is(err, service.ErrPublicRSVPNotFound) {
			respondWithError(w, http.StatusNotFound, "No RSVP matches this token", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error deleting public rsvp", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetTotals reports the public ledger's adult/kid sums for an event by answer
func (h *PublicHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	answer, ok := models.ParseAnswer(r.URL.Query().Get("answer"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Answer must be yes, maybe or no", "", nil)
		return
	}

	totals, err := h.publicService.Totals(eventID, answer)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error summing public totals", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"adults": totals.Adults,
		"kids":   totals.Kids,
	})
}
