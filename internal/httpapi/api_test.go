package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/database"
)

type fakeService struct {
	result   coach.Result
	err      error
	profile  *database.WellnessProfile
	saved    *coach.ProfileInput
	deleted  bool
	history  []*database.Suggestion
	rated    bool
	intent   advice.Intent
	question string
	limit    int
	helpful  *bool
}

func (f *fakeService) Suggest(_ context.Context, _ int64, intent advice.Intent) (coach.Result, error) {
	f.intent = intent
	return f.result, f.err
}

func (f *fakeService) Ask(_ context.Context, _ int64, question string) (coach.Result, error) {
	f.question = question
	if strings.TrimSpace(question) == "" {
		return coach.Result{}, advice.ErrEmptyQuestion
	}
	return f.result, f.err
}

func (f *fakeService) Profile(context.Context, int64) (*database.WellnessProfile, error) {
	return f.profile, f.err
}

func (f *fakeService) SaveProfile(_ context.Context, userID int64, in coach.ProfileInput) (*database.WellnessProfile, error) {
	if in.Age != nil && *in.Age > 120 {
		return nil, fmt.Errorf("%w: age out of range", coach.ErrInvalidProfile)
	}
	f.saved = &in
	p := &database.WellnessProfile{UserID: userID}
	if in.Age != nil {
		p.Age = sql.NullInt64{Int64: int64(*in.Age), Valid: true}
	}
	return p, nil
}

func (f *fakeService) DeleteProfile(context.Context, int64) (bool, error) {
	return f.deleted, f.err
}

func (f *fakeService) History(_ context.Context, _ int64, limit int) ([]*database.Suggestion, error) {
	f.limit = limit
	return f.history, f.err
}

func (f *fakeService) RateSuggestion(_ context.Context, _, _ int64, helpful bool) (bool, error) {
	f.helpful = &helpful
	return f.rated, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, svc Service, cfg Config) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(NewRouter(svc, fakePinger{}, cfg, reg, reg, nil))
	t.Cleanup(srv.Close)
	return srv, reg
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeService{}, Config{})
	resp, body := do(t, srv, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("response has no request id")
	}

	down := httptest.NewServer(NewRouter(&fakeService{}, fakePinger{err: errors.New("closed")}, Config{}, nil, nil, nil))
	defer down.Close()
	if resp, _ := do(t, down, http.MethodGet, "/healthz", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("healthz with failing db = %d, want 503", resp.StatusCode)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeService{}, Config{})
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestCreateSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svc        *fakeService
		body       string
		wantStatus int
		wantIntent advice.Intent
		wantKind   string
	}{
		{
			name:       "ok",
			svc:        &fakeService{result: coach.Result{Content: "walk"}},
			body:       `{"intent":"exercise"}`,
			wantStatus: http.StatusOK,
			wantIntent: advice.IntentExercise,
		},
		{
			name:       "empty body uses general",
			svc:        &fakeService{result: coach.Result{Content: "sleep"}},
			wantStatus: http.StatusOK,
			wantIntent: advice.IntentGeneral,
		},
		{
			name:       "unknown intent",
			svc:        &fakeService{},
			body:       `{"intent":"yoga"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			svc:        &fakeService{},
			body:       `{"topic":"diet"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rate limited without substitute",
			svc:        &fakeService{err: &advice.Error{Kind: advice.KindRateLimited, Message: advice.MsgRateLimited, Retryable: true}},
			body:       `{"intent":"diet"}`,
			wantStatus: http.StatusTooManyRequests,
			wantIntent: advice.IntentDiet,
			wantKind:   "rate_limited",
		},
		{
			name:       "not configured",
			svc:        &fakeService{err: &advice.Error{Kind: advice.KindNotAuthorized, Message: advice.MsgNotConfigured, Err: advice.ErrNotConfigured}},
			wantStatus: http.StatusServiceUnavailable,
			wantIntent: advice.IntentGeneral,
			wantKind:   "not_authorized",
		},
		{
			name:       "model unavailable",
			svc:        &fakeService{err: &advice.Error{Kind: advice.KindModelUnavailable, Message: advice.MsgModelUnavailable}},
			wantStatus: http.StatusBadGateway,
			wantIntent: advice.IntentGeneral,
			wantKind:   "model_unavailable",
		},
		{
			name:       "storage failure",
			svc:        &fakeService{err: errors.New("disk I/O error")},
			wantStatus: http.StatusInternalServerError,
			wantIntent: advice.IntentGeneral,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newTestServer(t, tc.svc, Config{})
			resp, body := do(t, srv, http.MethodPost, "/v1/users/7/suggestions", tc.body)

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %v)", resp.StatusCode, tc.wantStatus, body)
			}
			if tc.svc.intent != tc.wantIntent {
				t.Errorf("intent = %q, want %q", tc.svc.intent, tc.wantIntent)
			}
			if tc.wantKind != "" && body["kind"] != tc.wantKind {
				t.Errorf("kind = %v, want %s", body["kind"], tc.wantKind)
			}
			if tc.wantStatus == http.StatusOK && body["content"] != tc.svc.result.Content {
				t.Errorf("content = %v", body["content"])
			}
		})
	}
}

func TestCreateSuggestionReportsSubstitute(t *testing.T) {
	t.Parallel()

	svc := &fakeService{result: coach.Result{Content: "stored", FromCache: true, RateLimited: true}}
	srv, _ := newTestServer(t, svc, Config{})
	resp, body := do(t, srv, http.MethodPost, "/v1/users/7/suggestions", `{"intent":"diet"}`)
	if resp.StatusCode != http.StatusOK || body["fromCache"] != true || body["rateLimited"] != true {
		t.Errorf("response = %d %v", resp.StatusCode, body)
	}
}

func TestAskQuestion(t *testing.T) {
	t.Parallel()

	svc := &fakeService{result: coach.Result{Content: "two liters"}}
	srv, _ := newTestServer(t, svc, Config{})

	resp, body := do(t, srv, http.MethodPost, "/v1/users/7/questions", `{"question":"water?"}`)
	if resp.StatusCode != http.StatusOK || body["content"] != "two liters" || svc.question != "water?" {
		t.Errorf("ask = %d %v (question %q)", resp.StatusCode, body, svc.question)
	}

	resp, _ = do(t, srv, http.MethodPost, "/v1/users/7/questions", `{"question":"  "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want 400", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	srv, _ := newTestServer(t, svc, Config{})

	if resp, _ := do(t, srv, http.MethodGet, "/v1/users/7/profile", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want 404", resp.StatusCode)
	}

	resp, body := do(t, srv, http.MethodPut, "/v1/users/7/profile", `{"age":30,"activityLevel":"light"}`)
	if resp.StatusCode != http.StatusOK || body["age"] != float64(30) || body["userId"] != float64(7) {
		t.Errorf("put = %d %v", resp.StatusCode, body)
	}
	if svc.saved == nil || *svc.saved.ActivityLevel != "light" {
		t.Errorf("saved input = %+v", svc.saved)
	}

	if resp, _ := do(t, srv, http.MethodPut, "/v1/users/7/profile", `{"age":500}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid profile status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := do(t, srv, http.MethodPut, "/v1/users/7/profile", `{"budget":"infinite"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid budget status = %d, want 400", resp.StatusCode)
	}

	svc.profile = &database.WellnessProfile{UserID: 7, SleepGoal: sql.NullInt64{Int64: 8, Valid: true}}
	resp, body = do(t, srv, http.MethodGet, "/v1/users/7/profile", "")
	if resp.StatusCode != http.StatusOK || body["sleepGoal"] != float64(8) {
		t.Errorf("get = %d %v", resp.StatusCode, body)
	}

	if resp, _ := do(t, srv, http.MethodDelete, "/v1/users/7/profile", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", resp.StatusCode)
	}
	svc.deleted = true
	if resp, _ := do(t, srv, http.MethodDelete, "/v1/users/7/profile", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestSuggestionHistoryAndFeedback(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := &fakeService{
		history: []*database.Suggestion{{ID: 3, UserID: 7, Intent: "diet", Title: "Diet Suggestions", Content: "oats", Priority: "medium", CreatedAt: created}},
	}
	srv, _ := newTestServer(t, svc, Config{})

	resp, err := srv.Client().Get(srv.URL + "/v1/users/7/suggestions?limit=5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var items []suggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if svc.limit != 5 || len(items) != 1 || items[0].ID != 3 || !items[0].CreatedAt.Equal(created) || items[0].Helpful != nil {
		t.Errorf("history = %+v (limit %d)", items, svc.limit)
	}

	if resp, _ := do(t, srv, http.MethodGet, "/v1/users/7/suggestions?limit=zero", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}

	if resp, _ := do(t, srv, http.MethodPut, "/v1/users/7/suggestions/3/feedback", `{}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing helpful status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := do(t, srv, http.MethodPut, "/v1/users/7/suggestions/3/feedback", `{"helpful":true}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown suggestion status = %d, want 404", resp.StatusCode)
	}
	svc.rated = true
	if resp, _ := do(t, srv, http.MethodPut, "/v1/users/7/suggestions/3/feedback", `{"helpful":false}`); resp.StatusCode != http.StatusNoContent {
		t.Errorf("feedback status = %d, want 204", resp.StatusCode)
	}
	if svc.helpful == nil || *svc.helpful {
		t.Errorf("helpful = %v, want false", svc.helpful)
	}
}

func TestRoutingErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeService{}, Config{})
	if resp, _ := do(t, srv, http.MethodGet, "/v1/users/abc/profile", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("non-numeric user status = %d, want 404", resp.StatusCode)
	}
	if resp, _ := do(t, srv, http.MethodGet, "/v1/users/0/profile", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero user status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := do(t, srv, http.MethodPatch, "/v1/users/7/profile", ""); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want 405", resp.StatusCode)
	}
	if resp, body := do(t, srv, http.MethodDelete, "/v1/users/7/questions", ""); resp.StatusCode != http.StatusMethodNotAllowed || body["error"] != "method not allowed" {
		t.Errorf("DELETE questions = %d %v, want JSON 405", resp.StatusCode, body)
	}
	if resp, body := do(t, srv, http.MethodGet, "/v1/users/7/unknown", ""); resp.StatusCode != http.StatusNotFound || body["error"] != "not found" {
		t.Errorf("unknown user route = %d %v, want JSON 404", resp.StatusCode, body)
	}
	if resp, _ := do(t, srv, http.MethodPost, "/healthz", ""); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST healthz status = %d, want 405", resp.StatusCode)
	}
}

func TestClientRateLimit(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeService{}, Config{RequestsPerSecond: 0.001, Burst: 2})
	var statuses []int
	for i := 0; i < 3; i++ {
		resp, _ := do(t, srv, http.MethodGet, "/v1/users/7/suggestions", "")
		statuses = append(statuses, resp.StatusCode)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK || statuses[2] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [200 200 429]", statuses)
	}

	if resp, _ := do(t, srv, http.MethodGet, "/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz limited: %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, reg := newTestServer(t, &fakeService{}, Config{})
	do(t, srv, http.MethodGet, "/healthz", "")

	if n, err := testutil.GatherAndCount(reg, "wellness_http_requests_total"); err != nil || n != 1 {
		t.Errorf("request series = (%d, %v), want 1", n, err)
	}

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{advice.ErrEmptyQuestion, http.StatusBadRequest},
		{fmt.Errorf("%w: x", coach.ErrInvalidProfile), http.StatusBadRequest},
		{&advice.Error{Kind: advice.KindRateLimited}, http.StatusTooManyRequests},
		{&advice.Error{Kind: advice.KindNotAuthorized}, http.StatusServiceUnavailable},
		{&advice.Error{Kind: advice.KindBadRequest}, http.StatusBadRequest},
		{&advice.Error{Kind: advice.KindModelUnavailable}, http.StatusBadGateway},
		{&advice.Error{Kind: advice.KindUnknown}, http.StatusBadGateway},
		{fmt.Errorf("wait: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
