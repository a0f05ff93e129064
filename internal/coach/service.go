// Package coach is the calling layer in front of the advice gateway. It
// resolves stored profiles, keeps suggestion history, and substitutes stored
// or canned content when the upstream is rate limited.
package coach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/database"
)

// Gateway is the part of *advice.Gateway the service uses.
type Gateway interface {
	GenerateSuggestions(ctx context.Context, profile advice.UserContext, intent advice.Intent) (string, error)
	AskQuestion(ctx context.Context, question string, profile advice.UserContext) (string, error)
}

// Result is a piece of advice returned to a user.
type Result struct {
	Content string `json:"content"`
	// FromCache is set when Content was not freshly generated.
	FromCache bool `json:"fromCache,omitempty"`
	// RateLimited is set when the upstream refused the request for load.
	RateLimited bool `json:"rateLimited,omitempty"`
}

// Service implements suggestions, questions and profile management.
type Service struct {
	gateway  Gateway
	store    database.Store
	log      *slog.Logger
	validate *validator.Validate
	answers  answerRotation
}

// NewService creates a coach service.
func NewService(gateway Gateway, store database.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		gateway:  gateway,
		store:    store,
		log:      log.With("component", "coach"),
		validate: validator.New(),
	}
}

// Suggest generates suggestions for userID and records them in the history.
// When the upstream is rate limited it returns the user's latest stored
// suggestion for the intent, or canned content when there is none. Other
// failures are returned as is.
func (s *Service) Suggest(ctx context.Context, userID int64, intent advice.Intent) (Result, error) {
	if !intent.Valid() {
		intent = advice.IntentGeneral
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("loading profile: %w", err)
	}

	text, err := s.gateway.GenerateSuggestions(ctx, ToUserContext(profile), intent)
	if err != nil {
		if !advice.IsRetryable(err) {
			return Result{}, err
		}
		return s.suggestionFallback(ctx, userID, intent), nil
	}

	suggestion := &database.Suggestion{
		UserID:   userID,
		Intent:   string(intent),
		Title:    suggestionTitle(intent),
		Content:  text,
		Priority: "medium",
	}
	if err := s.store.SaveSuggestion(ctx, suggestion); err != nil {
		s.log.WarnContext(ctx, "Failed to save suggestion", "user_id", userID, "intent", intent, "error", err)
	}
	return Result{Content: text}, nil
}

func (s *Service) suggestionFallback(ctx context.Context, userID int64, intent advice.Intent) Result {
	latest, err := s.store.LatestSuggestion(ctx, userID, string(intent))
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load stored suggestion", "user_id", userID, "intent", intent, "error", err)
	}
	if latest != nil {
		s.log.InfoContext(ctx, "Rate limited, serving stored suggestion", "user_id", userID, "intent", intent, "suggestion_id", latest.ID)
		return Result{Content: latest.Content, FromCache: true, RateLimited: true}
	}
	s.log.InfoContext(ctx, "Rate limited, serving canned suggestion", "user_id", userID, "intent", intent)
	return Result{Content: cannedSuggestion(intent), FromCache: true, RateLimited: true}
}

// Ask answers a free-form question. When the upstream is rate limited a
// canned tip is returned instead.
func (s *Service) Ask(ctx context.Context, userID int64, question string) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, advice.ErrEmptyQuestion
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("loading profile: %w", err)
	}

	answer, err := s.gateway.AskQuestion(ctx, question, ToUserContext(profile))
	if err != nil {
		if !advice.IsRetryable(err) {
			return Result{}, err
		}
		s.log.InfoContext(ctx, "Rate limited, serving canned answer", "user_id", userID)
		return Result{Content: s.answers.pick(), RateLimited: true}, nil
	}
	return Result{Content: answer}, nil
}

// Profile returns the stored profile of userID, or nil when there is none.
func (s *Service) Profile(ctx context.Context, userID int64) (*database.WellnessProfile, error) {
	return s.store.GetProfile(ctx, userID)
}

// SaveProfile validates in and stores it as the complete profile of userID.
func (s *Service) SaveProfile(ctx context.Context, userID int64, in ProfileInput) (*database.WellnessProfile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	existing, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	profile := in.toProfile(userID)
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfileField changes a single attribute given as text, e.g. from a
// chat command, keeping the other attributes.
func (s *Service) UpdateProfileField(ctx context.Context, userID int64, field, value string) (*database.WellnessProfile, error) {
	existing, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	in := InputFromProfile(existing)
	if err := ParseProfileField(&in, field, value); err != nil {
		return nil, err
	}
	return s.SaveProfile(ctx, userID, in)
}

// DeleteProfile removes the profile of userID.
func (s *Service) DeleteProfile(ctx context.Context, userID int64) (bool, error) {
	return s.store.DeleteProfile(ctx, userID)
}

// History returns the most recent suggestions of userID.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*database.Suggestion, error) {
	return s.store.ListSuggestions(ctx, userID, limit)
}

// RateSuggestion records whether a suggestion was helpful.
func (s *Service) RateSuggestion(ctx context.Context, userID, suggestionID int64, helpful bool) (bool, error) {
	return s.store.MarkSuggestionHelpful(ctx, userID, suggestionID, helpful)
}

func suggestionTitle(intent advice.Intent) string {
	name := string(intent)
	if name == "" {
		return "Suggestions"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " Suggestions"
}
