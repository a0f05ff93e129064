package advice

import (
	"strings"
	"testing"
)

func TestParseIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Intent
		ok    bool
	}{
		{"diet", IntentDiet, true},
		{" Exercise ", IntentExercise, true},
		{"ALL", IntentAll, true},
		{"general", IntentGeneral, true},
		{"product", IntentProduct, true},
		{"question", IntentQuestion, false},
		{"sleep", Intent("sleep"), false},
		{"", Intent(""), false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseIntent(tc.input)
			if got != tc.want || ok != tc.ok {
				t.Errorf("ParseIntent(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	const profile = "Age: 30, Health Budget: low"

	t.Run("every intent embeds the context", func(t *testing.T) {
		t.Parallel()
		for _, intent := range SuggestionIntents {
			p := BuildPrompt(intent, profile, "low")
			if !strings.Contains(p, "("+profile+")") {
				t.Errorf("prompt for %s does not embed context: %q", intent, p)
			}
		}
	})

	t.Run("all intent asks for each section", func(t *testing.T) {
		t.Parallel()
		p := BuildPrompt(IntentAll, profile, "low")
		for _, want := range []string{"2 diet/nutrition tips", "2 exercise recommendations", "2 wellness/lifestyle tips", "2 product suggestions (within their low budget)", "2-3 sentences"} {
			if !strings.Contains(p, want) {
				t.Errorf("all prompt missing %q", want)
			}
		}
	})

	t.Run("empty budget reads as moderate", func(t *testing.T) {
		t.Parallel()
		p := BuildPrompt(IntentProduct, profile, "")
		if !strings.Contains(p, "budget (moderate)") {
			t.Errorf("product prompt = %q, want moderate budget", p)
		}
	})

	t.Run("unknown intent uses general template", func(t *testing.T) {
		t.Parallel()
		got := BuildPrompt(Intent("sleep"), profile, "")
		want := BuildPrompt(IntentGeneral, profile, "")
		if got != want {
			t.Errorf("unknown intent prompt = %q, want general %q", got, want)
		}
	})

	t.Run("question embeds raw text", func(t *testing.T) {
		t.Parallel()
		q := "  Is Coffee OK before a run?  "
		p := BuildQuestionPrompt(profile, q)
		if !strings.Contains(p, "User question: "+q) || !strings.HasPrefix(p, "User profile: "+profile) {
			t.Errorf("question prompt = %q", p)
		}
	})
}

func TestSystemInstructionConstraints(t *testing.T) {
	t.Parallel()

	for _, want := range []string{"concise", "evidence-based", "Never diagnose", "healthcare professional"} {
		if !strings.Contains(SystemInstruction, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
}
