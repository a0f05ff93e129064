package handlers

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/database"
)

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"/ask what now?", "what now?"},
		{"/ask@coachbot   spaced  ", "spaced"},
		{"/ask", ""},
		{"plain text", "plain text"},
	}
	for _, tc := range tests {
		if got := commandArgs(tc.in); got != tc.want {
			t.Errorf("commandArgs(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	t.Run("short text untouched", func(t *testing.T) {
		t.Parallel()
		if got := splitMessage("hello", 10); len(got) != 1 || got[0] != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("prefers newline", func(t *testing.T) {
		t.Parallel()
		got := splitMessage("first line\nsecond line", 15)
		want := []string{"first line", "second line"}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("hard cut without separators", func(t *testing.T) {
		t.Parallel()
		got := splitMessage(strings.Repeat("x", 25), 10)
		if len(got) != 3 || got[2] != "xxxxx" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("rune safe", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("é", 9000)
		got := splitMessage(text, maxMessageLength)
		total := 0
		for _, c := range got {
			if n := utf8.RuneCountInString(c); n > maxMessageLength {
				t.Errorf("chunk of %d runes exceeds limit", n)
			}
			if !utf8.ValidString(c) {
				t.Error("chunk is not valid UTF-8")
			}
			total += utf8.RuneCountInString(c)
		}
		if total != 9000 {
			t.Errorf("total runes = %d, want 9000", total)
		}
	})
}

func TestErrorText(t *testing.T) {
	t.Parallel()

	msgs := testMessages()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty question", advice.ErrEmptyQuestion, "provide question"},
		{"invalid profile", errors.Join(coach.ErrInvalidProfile), coach.ErrInvalidProfile.Error()},
		{"classified", &advice.Error{Kind: advice.KindBadRequest, Message: advice.MsgBadRequest}, advice.MsgBadRequest},
		{"other", errors.New("boom"), "general error"},
	}
	for _, tc := range tests {
		if got := errorText(tc.err, msgs); got != tc.want {
			t.Errorf("%s: errorText() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResultText(t *testing.T) {
	t.Parallel()

	msgs := testMessages()
	tests := []struct {
		name string
		res  coach.Result
		want string
	}{
		{"fresh", coach.Result{Content: "**Walk** daily"}, "Walk daily"},
		{"substitute", coach.Result{Content: "## Tips\n- rest", RateLimited: true}, "busy notice\n\nTips\n• rest"},
		{"stored but not limited", coach.Result{Content: "stored", FromCache: true}, "stored"},
	}
	for _, tc := range tests {
		if got := resultText(tc.res, msgs); got != tc.want {
			t.Errorf("%s: resultText() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatProfile(t *testing.T) {
	t.Parallel()

	p := &database.WellnessProfile{
		UserID:        1,
		Age:           sql.NullInt64{Int64: 30, Valid: true},
		HeightCm:      sql.NullFloat64{Float64: 180, Valid: true},
		WeightKg:      sql.NullFloat64{Float64: 81, Valid: true},
		ActivityLevel: sql.NullString{String: "moderate", Valid: true},
	}
	want := "Your profile\nAge: 30\nHeight: 180 cm\nWeight: 81 kg\nBMI: 25.0\nActivity: moderate"
	if got := formatProfile(p); got != want {
		t.Errorf("formatProfile() = %q, want %q", got, want)
	}

	if got := formatProfile(&database.WellnessProfile{UserID: 1}); !strings.Contains(got, "empty") {
		t.Errorf("empty profile rendered as %q", got)
	}
}
