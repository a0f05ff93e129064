package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/database"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type profileResponse struct {
	UserID int64 `json:"userId"`
	coach.ProfileInput
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type suggestionResponse struct {
	ID        int64     `json:"id"`
	Intent    string    `json:"intent"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Priority  string    `json:"priority"`
	Helpful   *bool     `json:"helpful,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type suggestRequest struct {
	Intent string `json:"intent" validate:"max=32"`
}

type questionRequest struct {
	Question string `json:"question" validate:"max=4000"`
}

type feedbackRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a service failure onto an HTTP status.
func statusFor(err error) int {
	var classified *advice.Error
	switch {
	case errors.Is(err, advice.ErrEmptyQuestion), errors.Is(err, coach.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.As(err, &classified):
		switch classified.Kind {
		case advice.KindRateLimited:
			return http.StatusTooManyRequests
		case advice.KindNotAuthorized:
			return http.StatusServiceUnavailable
		case advice.KindBadRequest:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: http.StatusText(status)}

	var classified *advice.Error
	switch {
	case errors.As(err, &classified):
		resp.Error, resp.Kind = classified.Message, classified.Kind.String()
		if classified.Kind == advice.KindRateLimited {
			w.Header().Set("Retry-After", "30")
		}
	case status == http.StatusBadRequest:
		resp.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into dst and validates it. An empty body leaves
// dst at its zero value.
func (a *api) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
	}
	return id, ok
}

func toProfileResponse(p *database.WellnessProfile) profileResponse {
	return profileResponse{
		UserID:       p.UserID,
		ProfileInput: coach.InputFromProfile(p),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toSuggestionResponse(s *database.Suggestion) suggestionResponse {
	resp := suggestionResponse{
		ID:        s.ID,
		Intent:    s.Intent,
		Title:     s.Title,
		Content:   s.Content,
		Priority:  s.Priority,
		CreatedAt: s.CreatedAt,
	}
	if s.Helpful.Valid {
		helpful := s.Helpful.Bool
		resp.Helpful = &helpful
	}
	return resp
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			a.log.WarnContext(r.Context(), "Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) getProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := a.svc.Profile(r.Context(), uid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (a *api) putProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in coach.ProfileInput
	if !a.decode(w, r, &in) {
		return
	}
	p, err := a.svc.SaveProfile(r.Context(), uid, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (a *api) deleteProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	deleted, err := a.svc.DeleteProfile(r.Context(), uid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) createSuggestion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req suggestRequest
	if !a.decode(w, r, &req) {
		return
	}

	intent := advice.IntentGeneral
	if strings.TrimSpace(req.Intent) != "" {
		parsed, valid := advice.ParseIntent(req.Intent)
		if !valid {
			writeError(w, http.StatusBadRequest, "unknown intent "+strconv.Quote(req.Intent))
			return
		}
		intent = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	res, err := a.svc.Suggest(ctx, uid, intent)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) listSuggestions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := a.svc.History(r.Context(), uid, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]suggestionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toSuggestionResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) rateSuggestion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sid, ok := pathID(r, "suggestionID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid suggestion id")
		return
	}
	var req feedbackRequest
	if !a.decode(w, r, &req) {
		return
	}

	found, err := a.svc.RateSuggestion(r.Context(), uid, sid, *req.Helpful)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) askQuestion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req questionRequest
	if !a.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	res, err := a.svc.Ask(ctx, uid, req.Question)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
