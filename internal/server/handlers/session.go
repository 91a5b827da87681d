// internal/server/handlers/session.go

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gathering/internal/domain/plan"
	"gathering/internal/service/workflow"
)

// Planner is the workflow the session handlers drive
type Planner interface {
	CreateSession(ctx context.Context) (plan.WorkflowState, error)
	GetSession(ctx context.Context, id string) (plan.WorkflowState, error)
	DeleteSession(ctx context.Context, id string) error
	AddCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error)
	RemoveCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error)
	DefaultCandidateDates(ctx context.Context, id string, days int) (plan.WorkflowState, error)
	SetPurpose(ctx context.Context, id string, purpose plan.Purpose) (plan.WorkflowState, error)
	AddParticipant(ctx context.Context, id string, in workflow.ParticipantInput) (plan.Participant, error)
	UpdateParticipant(ctx context.Context, id, participantID string, in workflow.ParticipantInput) (plan.Participant, error)
	RemoveParticipant(ctx context.Context, id, participantID string) error
	Summary(ctx context.Context, id string) (workflow.Summary, error)
	FindVenues(ctx context.Context, id string) (workflow.SearchOutcome, error)
	SelectVenue(ctx context.Context, id string, index int) (plan.VenueCandidate, error)
	ChooseDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error)
	SuggestGame(ctx context.Context, id string) (string, error)
	Forecast(ctx context.Context, id, location string) (plan.WeatherReport, error)
	ComposeMessage(ctx context.Context, id string) (string, error)
}

// SessionHandler handles planning session HTTP requests
type SessionHandler struct {
	planner Planner
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(planner Planner, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		planner: planner,
		logger:  logger,
	}
}

type dateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type defaultDatesRequest struct {
	Days int `json:"days" validate:"min=0,max=90"`
}

type purposeRequest struct {
	Purpose string `json:"purpose" validate:"required,oneof=formal_company casual_company mixer friends_outing"`
}

type participantRequest struct {
	Name          string            `json:"name" validate:"required,max=50"`
	Availability  map[string]string `json:"availability" validate:"dive,keys,datetime=2006-01-02,endkeys,oneof=yes no maybe"`
	Location      string            `json:"location" validate:"max=100"`
	Hobbies       []string          `json:"hobbies" validate:"max=20"`
	FavoriteFoods []string          `json:"favorite_foods" validate:"max=20"`
}

type selectionRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type chooseDateRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type textResponse struct {
	Text string `json:"text"`
}

// CreateSession starts a planning session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.planner.CreateSession(r.Context())
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, state)
}

// GetSession returns the session state
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.planner.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// DeleteSession discards a session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDate adds a candidate date
func (h *SessionHandler) AddDate(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := plan.ParseDate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "date must be a date like 2006-01-02")
		return
	}

	state, err := h.planner.AddCandidateDate(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// AddDefaultDates adds the next days starting today
func (h *SessionHandler) AddDefaultDates(w http.ResponseWriter, r *http.Request) {
	var req defaultDatesRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	state, err := h.planner.DefaultCandidateDates(r.Context(), chi.URLParam(r, "id"), req.Days)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// RemoveDate removes a candidate date
func (h *SessionHandler) RemoveDate(w http.ResponseWriter, r *http.Request) {
	d, err := plan.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be a date like 2006-01-02")
		return
	}

	state, err := h.planner.RemoveCandidateDate(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// SetPurpose records the purpose of the gathering
func (h *SessionHandler) SetPurpose(w http.ResponseWriter, r *http.Request) {
	var req purposeRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := h.planner.SetPurpose(r.Context(), chi.URLParam(r, "id"), plan.Purpose(req.Purpose))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// AddParticipant adds a participant
func (h *SessionHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if !decode(w, r, &req) {
		return
	}
	in, ok := participantInput(w, req)
	if !ok {
		return
	}

	p, err := h.planner.AddParticipant(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

// UpdateParticipant replaces a participant's answers
func (h *SessionHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if !decode(w, r, &req) {
		return
	}
	in, ok := participantInput(w, req)
	if !ok {
		return
	}

	p, err := h.planner.UpdateParticipant(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "pid"), in)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// RemoveParticipant removes a participant
func (h *SessionHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.RemoveParticipant(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "pid")); err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary returns the attendance table and preferences
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.planner.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sum)
}

// SearchVenues finds venues around the participants' meeting point
func (h *SessionHandler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	out, err := h.planner.FindVenues(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, out)
}

// SelectVenue picks one of the found venues
func (h *SessionHandler) SelectVenue(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decode(w, r, &req) {
		return
	}

	v, err := h.planner.SelectVenue(r.Context(), chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, v)
}

// ChooseDate fixes the date. An empty date takes the optimal date.
func (h *SessionHandler) ChooseDate(w http.ResponseWriter, r *http.Request) {
	var req chooseDateRequest
	if !decode(w, r, &req) {
		return
	}

	var d plan.Date
	if req.Date != "" {
		parsed, err := plan.ParseDate(req.Date)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "date must be a date like 2006-01-02")
			return
		}
		d = parsed
	}

	state, err := h.planner.ChooseDate(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// SuggestGame asks for a party game
func (h *SessionHandler) SuggestGame(w http.ResponseWriter, r *http.Request) {
	text, err := h.planner.SuggestGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, textResponse{Text: text})
}

// GetWeather returns the forecast for the chosen date
func (h *SessionHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.planner.Forecast(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("location"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// GetMessage returns the shareable announcement
func (h *SessionHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	text, err := h.planner.ComposeMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithPlanError(w, h.logger, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(text))
		return
	}
	respondWithJSON(w, http.StatusOK, textResponse{Text: text})
}

// participantInput converts a validated request into workflow input
func participantInput(w http.ResponseWriter, req participantRequest) (workflow.ParticipantInput, bool) {
	availability := make(map[plan.Date]plan.Attendance, len(req.Availability))
	for raw, answer := range req.Availability {
		d, err := plan.ParseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "availability keys must be dates like 2006-01-02")
			return workflow.ParticipantInput{}, false
		}
		availability[d] = plan.Attendance(answer)
	}

	return workflow.ParticipantInput{
		Name:          req.Name,
		Availability:  availability,
		Location:      req.Location,
		Hobbies:       req.Hobbies,
		FavoriteFoods: req.FavoriteFoods,
	}, true
}
