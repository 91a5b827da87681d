package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gathering/internal/config"
	"gathering/internal/domain/plan"
	"gathering/internal/observability"
	"gathering/internal/service/workflow"
)

type mockPlanner struct {
	mock.Mock
}

func (m *mockPlanner) CreateSession(ctx context.Context) (plan.WorkflowState, error) {
	args := m.Called(ctx)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) GetSession(ctx context.Context, id string) (plan.WorkflowState, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) DeleteSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPlanner) AddCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) RemoveCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) DefaultCandidateDates(ctx context.Context, id string, days int) (plan.WorkflowState, error) {
	args := m.Called(ctx, id, days)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) SetPurpose(ctx context.Context, id string, purpose plan.Purpose) (plan.WorkflowState, error) {
	args := m.Called(ctx, id, purpose)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) AddParticipant(ctx context.Context, id string, in workflow.ParticipantInput) (plan.Participant, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(plan.Participant), args.Error(1)
}

func (m *mockPlanner) UpdateParticipant(ctx context.Context, id, participantID string, in workflow.ParticipantInput) (plan.Participant, error) {
	args := m.Called(ctx, id, participantID, in)
	return args.Get(0).(plan.Participant), args.Error(1)
}

func (m *mockPlanner) RemoveParticipant(ctx context.Context, id, participantID string) error {
	return m.Called(ctx, id, participantID).Error(0)
}

func (m *mockPlanner) Summary(ctx context.Context, id string) (workflow.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(workflow.Summary), args.Error(1)
}

func (m *mockPlanner) FindVenues(ctx context.Context, id string) (workflow.SearchOutcome, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(workflow.SearchOutcome), args.Error(1)
}

func (m *mockPlanner) SelectVenue(ctx context.Context, id string, index int) (plan.VenueCandidate, error) {
	args := m.Called(ctx, id, index)
	return args.Get(0).(plan.VenueCandidate), args.Error(1)
}

func (m *mockPlanner) ChooseDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(plan.WorkflowState), args.Error(1)
}

func (m *mockPlanner) SuggestGame(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockPlanner) Forecast(ctx context.Context, id, location string) (plan.WeatherReport, error) {
	args := m.Called(ctx, id, location)
	return args.Get(0).(plan.WeatherReport), args.Error(1)
}

func (m *mockPlanner) ComposeMessage(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T) (*mockPlanner, *observability.Collector, http.Handler) {
	t.Helper()
	planner := new(mockPlanner)
	metrics := observability.NewCollector("test")
	srv := NewServer(config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        8080,
		CorsOrigins: []string{"*"},
	}, planner, nil, metrics, zap.NewNop())
	return planner, metrics, srv.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	_, metrics, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/health", "200")))
}

func TestCreateAndGetSession(t *testing.T) {
	planner, _, h := newTestServer(t)
	state := plan.WorkflowState{ID: "s1", CandidateDates: []plan.Date{}}
	planner.On("CreateSession", mock.Anything).Return(state, nil)
	planner.On("GetSession", mock.Anything, "s1").Return(state, nil)
	planner.On("GetSession", mock.Anything, "nope").
		Return(plan.WorkflowState{}, plan.E(plan.KindNotFound, "workflow.session", "the planning session does not exist or has expired", nil))

	rec := do(h, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"s1"`)

	rec = do(h, http.MethodGet, "/api/v1/sessions/s1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "the planning session does not exist or has expired", errorText(t, rec))
}

func TestAddDate(t *testing.T) {
	planner, _, h := newTestServer(t)
	d := plan.NewDate(2026, time.October, 20)
	planner.On("AddCandidateDate", mock.Anything, "s1", d).Return(plan.WorkflowState{ID: "s1", CandidateDates: []plan.Date{d}}, nil)

	rec := do(h, http.MethodPost, "/api/v1/sessions/s1/dates", `{"date":"2026-10-20"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"candidate_dates":["2026-10-20"]`)

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/dates", `{"date":"20/10/2026"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "date must be a date like 2006-01-02", errorText(t, rec))

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/dates", `{"when":"2026-10-20"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	planner.AssertNumberOfCalls(t, "AddCandidateDate", 1)
}

func TestRemoveDateAndDefaults(t *testing.T) {
	planner, _, h := newTestServer(t)
	d := plan.NewDate(2026, time.October, 20)
	planner.On("RemoveCandidateDate", mock.Anything, "s1", d).Return(plan.WorkflowState{ID: "s1"}, nil)
	planner.On("DefaultCandidateDates", mock.Anything, "s1", 14).Return(plan.WorkflowState{ID: "s1"}, nil)

	assert.Equal(t, http.StatusOK, do(h, http.MethodDelete, "/api/v1/sessions/s1/dates/2026-10-20", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodDelete, "/api/v1/sessions/s1/dates/tomorrow", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/sessions/s1/dates/defaults", `{"days":14}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(h, http.MethodPost, "/api/v1/sessions/s1/dates/defaults", `{"days":365}`).Code)
}

func TestDefaultDatesWithoutBody(t *testing.T) {
	planner, _, h := newTestServer(t)
	planner.On("DefaultCandidateDates", mock.Anything, "s1", 0).Return(plan.WorkflowState{ID: "s1"}, nil)

	rec := do(h, http.MethodPost, "/api/v1/sessions/s1/dates/defaults", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/dates", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	planner.AssertCalled(t, "DefaultCandidateDates", mock.Anything, "s1", 0)
}

func TestSetPurpose(t *testing.T) {
	planner, _, h := newTestServer(t)
	planner.On("SetPurpose", mock.Anything, "s1", plan.PurposeMixer).Return(plan.WorkflowState{ID: "s1", Purpose: plan.PurposeMixer}, nil)

	rec := do(h, http.MethodPut, "/api/v1/sessions/s1/purpose", `{"purpose":"mixer"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPut, "/api/v1/sessions/s1/purpose", `{"purpose":"karaoke"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorText(t, rec), "purpose must be one of")
}

func TestParticipants(t *testing.T) {
	planner, _, h := newTestServer(t)
	d := plan.NewDate(2026, time.October, 20)
	in := workflow.ParticipantInput{
		Name:         "Aki",
		Availability: map[plan.Date]plan.Attendance{d: plan.AttendanceYes},
		Location:     "Shibuya",
		Hobbies:      []string{"music"},
	}
	planner.On("AddParticipant", mock.Anything, "s1", in).Return(plan.Participant{ID: "p1", Name: "Aki"}, nil)
	planner.On("UpdateParticipant", mock.Anything, "s1", "p1", mock.Anything).Return(plan.Participant{ID: "p1", Name: "Aki"}, nil)
	planner.On("RemoveParticipant", mock.Anything, "s1", "p1").Return(nil)
	planner.On("RemoveParticipant", mock.Anything, "s1", "p9").
		Return(plan.E(plan.KindNotFound, "workflow.participant", "the participant does not exist", nil))

	body := `{"name":"Aki","availability":{"2026-10-20":"yes"},"location":"Shibuya","hobbies":["music"]}`
	rec := do(h, http.MethodPost, "/api/v1/sessions/s1/participants", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p1"`)

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/participants", `{"name":"Aki","availability":{"2026-10-20":"often"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/participants", `{"availability":{}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "name is required", errorText(t, rec))

	assert.Equal(t, http.StatusOK, do(h, http.MethodPut, "/api/v1/sessions/s1/participants/p1", `{"name":"Aki"}`).Code)
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/v1/sessions/s1/participants/p1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/api/v1/sessions/s1/participants/p9", "").Code)
}

func TestSearchVenuesErrors(t *testing.T) {
	planner, _, h := newTestServer(t)
	planner.On("FindVenues", mock.Anything, "s1").
		Return(workflow.SearchOutcome{}, plan.E(plan.KindInsufficientInput, "schedule.tally", "no participant has selected an available date", nil)).Once()
	planner.On("FindVenues", mock.Anything, "s1").
		Return(workflow.SearchOutcome{}, plan.E(plan.KindServiceUnavailable, "maps.nearby", "the place search service is unavailable", nil)).Once()

	rec := do(h, http.MethodPost, "/api/v1/sessions/s1/venues/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no participant has selected an available date", errorText(t, rec))

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/venues/search", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "the place search service is unavailable", errorText(t, rec))
}

func TestSelectionDateGameWeatherMessage(t *testing.T) {
	planner, _, h := newTestServer(t)
	d := plan.NewDate(2026, time.October, 21)
	planner.On("SelectVenue", mock.Anything, "s1", 0).Return(plan.VenueCandidate{Name: "Sky Lounge"}, nil)
	planner.On("ChooseDate", mock.Anything, "s1", plan.Date{}).Return(plan.WorkflowState{ID: "s1", ChosenDate: &d}, nil)
	planner.On("SuggestGame", mock.Anything, "s1").Return("Name that tune", nil)
	planner.On("Forecast", mock.Anything, "s1", "Osaka").
		Return(plan.WeatherReport{}, plan.E(plan.KindOutOfRange, "weather.forecast", "no forecast is available for that date yet", nil))
	planner.On("ComposeMessage", mock.Anything, "s1").Return("Our next gathering is on 2026-10-21", nil)

	rec := do(h, http.MethodPut, "/api/v1/sessions/s1/venues/selection", `{"index":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sky Lounge")

	assert.Equal(t, http.StatusUnprocessableEntity, do(h, http.MethodPut, "/api/v1/sessions/s1/venues/selection", `{}`).Code)

	rec = do(h, http.MethodPut, "/api/v1/sessions/s1/date", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chosen_date":"2026-10-21"`)

	rec = do(h, http.MethodPost, "/api/v1/sessions/s1/game", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Name that tune"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/v1/sessions/s1/weather?location=Osaka", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no forecast is available for that date yet", errorText(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/message", nil)
	req.Header.Set("Accept", "text/plain")
	plain := httptest.NewRecorder()
	h.ServeHTTP(plain, req)
	assert.Equal(t, http.StatusOK, plain.Code)
	assert.Equal(t, "Our next gathering is on 2026-10-21", plain.Body.String())
}

func TestCatalog(t *testing.T) {
	_, _, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/v1/purposes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"id":"mixer","label":"mixer"}`)

	rec = do(h, http.MethodGet, "/api/v1/options", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ramen"`)
}

func TestMetricsEndpoint(t *testing.T) {
	_, _, h := newTestServer(t)
	do(h, http.MethodGet, "/api/health", "")

	rec := do(h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestWebSocketWithoutEventBus(t *testing.T) {
	planner, _, h := newTestServer(t)
	planner.On("GetSession", mock.Anything, "s1").Return(plan.WorkflowState{ID: "s1"}, nil)

	rec := do(h, http.MethodGet, "/ws/sessions/s1", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
