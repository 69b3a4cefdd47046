package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gatherings/internal/models"
	"gatherings/internal/service"
)

// RSVPHandler handles authenticated RSVP requests
type RSVPHandler struct {
	rsvpService *service.RSVPService
}

// NewRSVPHandler creates a new RSVP handler
func NewRSVPHandler(rsvpService *service.RSVPService) *RSVPHandler {
	return &RSVPHandler{rsvpService: rsvpService}
}

type rsvpResponse struct {
	ID         int64   `json:"id"`
	EventID    int64   `json:"event_id"`
	CreatorID  int64   `json:"creator_adult_id"`
	EnteredBy  int64   `json:"entered_by_adult_id"`
	Answer     string  `json:"answer"`
	Comment    *string `json:"comment"`
	GuestCount int     `json:"guest_count"`
	AdultCount int     `json:"adult_count"`
	YouthCount int     `json:"youth_count"`
}

func (h *RSVPHandler) rsvpPayload(rsvp *models.RSVP) (*rsvpResponse, error) {
	summary, err := h.rsvpService.MemberSummary(rsvp.ID)
	if err != nil {
		return nil, err
	}
	return &rsvpResponse{
		ID:         rsvp.ID,
		EventID:    rsvp.EventID,
		CreatorID:  rsvp.CreatorAdultID,
		EnteredBy:  rsvp.EnteredByAdultID,
		Answer:     string(rsvp.Answer),
		Comment:    rsvp.Comment,
		GuestCount: rsvp.GuestCount,
		AdultCount: summary.AdultCount,
		YouthCount: summary.YouthCount,
	}, nil
}

// GetFamilyRSVP resolves the caller's family RSVP for an event
func (h *RSVPHandler) GetFamilyRSVP(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	rsvp, err := h.rsvpService.ResolveByAdult(eventID, identity.AdultID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error resolving rsvp", err)
		return
	}
	if rsvp == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"rsvp": nil})
		return
	}

	payload, err := h.rsvpPayload(rsvp)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error summarizing rsvp", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rsvp": payload})
}

// GetFamilyRSVPByYouth resolves a family RSVP starting from a youth (admin)
func (h *RSVPHandler) GetFamilyRSVPByYouth(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}
	youthID, err := pathID(r, "youthId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid youth id", "", err)
		return
	}

	rsvp, err := h.rsvpService.ResolveByYouth(eventID, youthID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error resolving rsvp by youth", err)
		return
	}
	if rsvp == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"rsvp": nil})
		return
	}

	payload, err := h.rsvpPayload(rsvp)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error summarizing rsvp", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rsvp": payload})
}

type setRSVPRequest struct {
	Answer         string  `json:"answer"`
	AdultMemberIDs []int64 `json:"adult_member_ids"`
	YouthMemberIDs []int64 `json:"youth_member_ids"`
	Comment        string  `json:"comment"`
	GuestCount     int     `json:"guest_count"`
}

// SetFamilyRSVP records or rewrites the caller's family answer
func (h *RSVPHandler) SetFamilyRSVP(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	var req setRSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	answer, ok := models.ParseAnswer(req.Answer)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Answer must be yes, maybe or no", "", nil)
		return
	}

	rsvpID, err := h.rsvpService.SetFamilyRSVP(identity.AdultID, eventID, answer,
		req.AdultMemberIDs, req.YouthMemberIDs, req.Comment, req.GuestCount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			respondWithError(w, http.StatusNotFound, "Event not found", "", nil)
		case errors.Is(err, service.ErrCapacityExceeded):
			// Surfaced verbatim so the UI can show the specific numbers
			respondWithError(w, http.StatusConflict, err.Error(), "", nil)
		case errors.Is(err, service.ErrInvalidAnswer), errors.Is(err, service.ErrInvalidEventID):
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error setting rsvp", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rsvp_id": rsvpID})
}

type answerSummary struct {
	Answer     string   `json:"answer"`
	Adults     int      `json:"adults"`
	Youths     int      `json:"youths"`
	Guests     int      `json:"guests"`
	AdultNames []string `json:"adult_names"`
	YouthNames []string `json:"youth_names"`
}

// GetEventSummary aggregates counts, guests and names per answer
func (h *RSVPHandler) GetEventSummary(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	answers := []models.Answer{models.AnswerYes, models.AnswerMaybe, models.AnswerNo}
	summaries := make([]answerSummary, 0, len(answers))
	for _, answer := range answers {
		counts, err := h.rsvpService.ParticipantCounts(eventID, answer)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error counting participants", err)
			return
		}
		guests, err := h.rsvpService.GuestTotal(eventID, answer)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error summing guests", err)
			return
		}
		adultNames, youthNames, err := h.rsvpService.ParticipantNames(eventID, answer)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error listing names", err)
			return
		}
		summaries = append(summaries, answerSummary{
			Answer:     string(answer),
			Adults:     counts.Adults,
			Youths:     counts.Youths,
			Guests:     guests,
			AdultNames: adultNames,
			YouthNames: youthNames,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

// GetEventComments expands every RSVP comment to all related caregivers (admin)
func (h *RSVPHandler) GetEventComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event id", "", err)
		return
	}

	comments, err := h.rsvpService.CommentsByCaregiver(eventID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error expanding comments", err)
		return
	}

	// JSON object keys are strings
	payload := make(map[string]string, len(comments))
	for adultID, text := range comments {
		payload[strconv.FormatInt(adultID, 10)] = text
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"comments": payload})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
