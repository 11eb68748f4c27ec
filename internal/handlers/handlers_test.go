package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/analysis"
	"github.com/ternarybob/moneypulse/internal/services/progress"
	"github.com/ternarybob/moneypulse/internal/services/rating"
	"github.com/ternarybob/moneypulse/internal/services/scheduler"
)

type fakeAnalysisService struct {
	got       models.RawInputs
	deadline  bool
	result    *models.AnalysisResult
	err       error
	history   []*models.AnalysisResult
	lastLimit int
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, raw models.RawInputs) (*models.AnalysisResult, error) {
	f.got = raw
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

func (f *fakeAnalysisService) History(ctx context.Context, limit int) ([]*models.AnalysisResult, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakeAnalysisService) Params() *rating.ParameterSet {
	return rating.DefaultParameterSet()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestAnalyzeHandler(t *testing.T) {
	ok := &models.AnalysisResult{ID: "an_1", State: models.StateHealthy, Health: 70}

	tests := []struct {
		name       string
		method     string
		body       string
		result     *models.AnalysisResult
		err        error
		wantStatus int
		wantInputs models.RawInputs
	}{
		{
			name:       "lenient inputs",
			method:     http.MethodPost,
			body:       `{"monthly_income":"$5,000","monthly_spending":4000,"total_debt":"n/a"}`,
			result:     ok,
			wantStatus: http.StatusOK,
			wantInputs: models.RawInputs{MonthlyIncome: 5000, MonthlySpending: 4000},
		},
		{
			name:       "empty body is all zero",
			method:     http.MethodPost,
			body:       "",
			result:     ok,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			method:     http.MethodPost,
			body:       `{"monthly_income":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "timeout",
			method:     http.MethodPost,
			body:       `{}`,
			err:        fmt.Errorf("%w: %w", analysis.ErrAnalysisTimeout, context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "canceled",
			method:     http.MethodPost,
			body:       `{}`,
			err:        fmt.Errorf("analysis canceled: %w", context.Canceled),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected error",
			method:     http.MethodPost,
			body:       `{}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAnalysisService{result: tt.result, err: tt.err}
			h := NewAnalysisHandler(svc, 5*time.Second, arbor.NewLogger())

			req := httptest.NewRequest(tt.method, "/api/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.AnalyzeHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.wantStatus == http.StatusOK {
				var got models.AnalysisResult
				decodeBody(t, rec, &got)
				assert.Equal(t, "an_1", got.ID)
				assert.Equal(t, tt.wantInputs, svc.got)
				assert.True(t, svc.deadline)
			}
		})
	}
}

func TestHistoryHandler_Limit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", defaultHistoryLimit},
		{"?limit=5", 5},
		{"?limit=0", defaultHistoryLimit},
		{"?limit=abc", defaultHistoryLimit},
		{"?limit=1000", maxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc := &fakeAnalysisService{history: []*models.AnalysisResult{{ID: "an_1"}}}
			h := NewAnalysisHandler(svc, 0, arbor.NewLogger())

			rec := httptest.NewRecorder()
			h.HistoryHandler(rec, httptest.NewRequest(http.MethodGet, "/api/analyses"+tt.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, svc.lastLimit)

			var body struct {
				Analyses []*models.AnalysisResult `json:"analyses"`
				Count    int                      `json:"count"`
			}
			decodeBody(t, rec, &body)
			assert.Equal(t, 1, body.Count)
		})
	}
}

func TestParamsHandler(t *testing.T) {
	h := NewAnalysisHandler(&fakeAnalysisService{}, 0, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.ParamsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/params", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var params rating.ParameterSet
	decodeBody(t, rec, &params)
	assert.Equal(t, rating.VersionV1, params.Version)
	assert.NotEmpty(t, params.Classifier.Rules)
}

type memProgressStorage struct {
	row *models.Progress
}

func (m *memProgressStorage) GetProgress(ctx context.Context, id string) (*models.Progress, error) {
	if m.row == nil {
		return nil, interfaces.ErrProgressNotFound
	}
	return m.row, nil
}

func (m *memProgressStorage) SaveProgress(ctx context.Context, p *models.Progress) error {
	m.row = p
	return nil
}

func (m *memProgressStorage) UpdateProgress(ctx context.Context, id string, fn func(current *models.Progress) (models.Progress, error)) (*models.Progress, error) {
	next, err := fn(m.row)
	if err != nil {
		return nil, err
	}
	next.ID = id
	m.row = &next
	return &next, nil
}

func (m *memProgressStorage) ListProgress(ctx context.Context) ([]*models.Progress, error) {
	if m.row == nil {
		return nil, nil
	}
	return []*models.Progress{m.row}, nil
}

func TestProgressHandlers(t *testing.T) {
	svc := progress.NewService(&memProgressStorage{}, 10, arbor.NewLogger())
	h := NewProgressHandler(svc, arbor.NewLogger())

	type body struct {
		DepositedToday float64 `json:"deposited_today"`
		DailyGoal      float64 `json:"daily_goal"`
		GoalMet        bool    `json:"goal_met"`
		Remaining      float64 `json:"remaining"`
	}

	rec := httptest.NewRecorder()
	h.GetProgressHandler(rec, httptest.NewRequest(http.MethodGet, "/api/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got body
	decodeBody(t, rec, &got)
	assert.Equal(t, 10.0, got.DailyGoal)
	assert.Equal(t, 10.0, got.Remaining)
	assert.False(t, got.GoalMet)

	rec = httptest.NewRecorder()
	h.DepositHandler(rec, httptest.NewRequest(http.MethodPost, "/api/progress/deposit", strings.NewReader(`{"amount": 12.5}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Equal(t, 12.5, got.DepositedToday)
	assert.True(t, got.GoalMet)

	rec = httptest.NewRecorder()
	h.GoalHandler(rec, httptest.NewRequest(http.MethodPut, "/api/progress/goal", strings.NewReader(`{"daily_goal": 20}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Equal(t, 20.0, got.DailyGoal)
	assert.False(t, got.GoalMet)
}

func TestProgressHandlers_Errors(t *testing.T) {
	svc := progress.NewService(&memProgressStorage{}, 10, arbor.NewLogger())
	h := NewProgressHandler(svc, arbor.NewLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
		want    int
	}{
		{"zero deposit", h.DepositHandler, http.MethodPost, `{"amount": 0}`, http.StatusBadRequest},
		{"negative deposit", h.DepositHandler, http.MethodPost, `{"amount": -5}`, http.StatusBadRequest},
		{"missing body", h.DepositHandler, http.MethodPost, ``, http.StatusBadRequest},
		{"bad json", h.DepositHandler, http.MethodPost, `{"amount":`, http.StatusBadRequest},
		{"wrong method", h.DepositHandler, http.MethodGet, ``, http.StatusMethodNotAllowed},
		{"negative goal", h.GoalHandler, http.MethodPut, `{"daily_goal": -1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/api/progress", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type memKV struct {
	pairs map[string]interfaces.KeyValuePair
}

func (m *memKV) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	out := make([]interfaces.KeyValuePair, 0, len(m.pairs))
	for _, p := range m.pairs {
		out = append(out, p)
	}
	return out, nil
}

func (m *memKV) Set(ctx context.Context, key, value, description string) error {
	m.pairs[key] = interfaces.KeyValuePair{Key: key, Value: value, Description: description}
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	if _, ok := m.pairs[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(m.pairs, key)
	return nil
}

func TestKVHandler(t *testing.T) {
	kv := &memKV{pairs: map[string]interfaces.KeyValuePair{}}
	changes := 0
	h := NewKVHandler(kv, func() { changes++ }, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodPut, "/api/kv/gemini_api_key", strings.NewReader(`{"value":"AIzaSyExampleKey1234"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, changes)

	rec = httptest.NewRecorder()
	h.ListKVHandler(rec, httptest.NewRequest(http.MethodGet, "/api/kv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]interface{}
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "AIza...1234", listed[0]["value"])

	rec = httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodPut, "/api/kv/empty", strings.NewReader(`{"value":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodDelete, "/api/kv/gemini_api_key", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, changes)

	rec = httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodDelete, "/api/kv/gemini_api_key", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodGet, "/api/kv/x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ItemHandler(rec, httptest.NewRequest(http.MethodPut, "/api/kv/", strings.NewReader(`{"value":"v"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "••••••••", maskValue("short"))
	assert.Equal(t, "sk-a...wxyz", maskValue("sk-abcdefghijklmnopqrstuvwxyz"))
}

type fakeScheduler struct {
	ran string
	err error
}

func (f *fakeScheduler) GetAllJobStatuses() []*scheduler.JobStatus {
	return []*scheduler.JobStatus{{Name: "progress_rollover", Schedule: "5 0 * * *", Enabled: true}}
}

func (f *fakeScheduler) TriggerJob(name string) error {
	f.ran = name
	return f.err
}

func TestSchedulerHandler(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		err     error
		want    int
		wantRan string
	}{
		{"run", http.MethodPost, "/api/jobs/progress_rollover/run", nil, http.StatusOK, "progress_rollover"},
		{"unknown job", http.MethodPost, "/api/jobs/nope/run", errors.New("job nope not found"), http.StatusNotFound, "nope"},
		{"job failed", http.MethodPost, "/api/jobs/progress_rollover/run", errors.New("job progress_rollover already running"), http.StatusConflict, "progress_rollover"},
		{"bad route", http.MethodPost, "/api/jobs/progress_rollover", nil, http.StatusNotFound, ""},
		{"wrong method", http.MethodGet, "/api/jobs/progress_rollover/run", nil, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeScheduler{err: tt.err}
			h := NewSchedulerHandler(s, arbor.NewLogger())
			rec := httptest.NewRecorder()
			h.RunJobHandler(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantRan, s.ran)
		})
	}

	rec := httptest.NewRecorder()
	NewSchedulerHandler(&fakeScheduler{}, arbor.NewLogger()).ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "progress_rollover")
}

func TestAPIHandler(t *testing.T) {
	h := NewAPIHandler("none", arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"none"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")

	rec = httptest.NewRecorder()
	h.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
