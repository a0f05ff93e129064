package advice

import (
	"fmt"
	"strings"
)

// Intent selects the prompt template and the cache partition of a request.
type Intent string

// Structured suggestion intents plus the free-form question intent.
const (
	IntentGeneral  Intent = "general"
	IntentDiet     Intent = "diet"
	IntentExercise Intent = "exercise"
	IntentProduct  Intent = "product"
	IntentAll      Intent = "all"
	IntentQuestion Intent = "question"
)

// SuggestionIntents lists the intents accepted by GenerateSuggestions.
var SuggestionIntents = []Intent{IntentGeneral, IntentDiet, IntentExercise, IntentProduct, IntentAll}

// Valid reports whether i is one of the structured suggestion intents.
func (i Intent) Valid() bool {
	_, ok := suggestionTemplates[i]
	return ok
}

// ParseIntent parses a user supplied intent name, case-insensitively.
func ParseIntent(s string) (Intent, bool) {
	i := Intent(strings.ToLower(strings.TrimSpace(s)))
	return i, i.Valid()
}

// SystemInstruction is sent with every upstream request regardless of intent.
const SystemInstruction = `You are a friendly AI lifestyle coach. You give concise, actionable, personalized health and wellness advice.
Keep responses friendly, motivating, and evidence-based.
Always consider the user's profile data when giving advice.
Format responses in clear, short paragraphs.
Never diagnose medical conditions. Recommend consulting a healthcare professional for medical concerns.`

const defaultBudget = "moderate"

type templateFunc func(profile, budget string) string

var suggestionTemplates = map[Intent]templateFunc{
	IntentGeneral: func(profile, _ string) string {
		return fmt.Sprintf("Based on this user's profile (%s), give 3 personalized lifestyle improvement suggestions. "+
			"Each should be a short paragraph with a title. Focus on practical, daily actions.", profile)
	},
	IntentDiet: func(profile, _ string) string {
		return fmt.Sprintf("Based on this user's profile (%s), provide 4 personalized diet and nutrition recommendations. "+
			"Include specific meal ideas, portion guidance, and nutrition tips tailored to their body stats and activity level. "+
			"Format each as a titled suggestion.", profile)
	},
	IntentExercise: func(profile, _ string) string {
		return fmt.Sprintf("Based on this user's profile (%s), suggest 4 personalized exercise and activity recommendations. "+
			"Consider their activity level and body stats. Include specific workouts, duration, and frequency. "+
			"Format each as a titled suggestion.", profile)
	},
	IntentProduct: func(profile, budget string) string {
		return fmt.Sprintf("Based on this user's profile (%s), recommend 4 health and wellness products that would benefit them. "+
			"Consider their budget (%s). Include supplements, fitness gear, apps, or wellness tools. "+
			"Format each with product name, why it helps, and approximate price.", profile, budget)
	},
	IntentAll: func(profile, budget string) string {
		return fmt.Sprintf(`Based on this user's profile (%s), provide a comprehensive lifestyle plan with:
1. 2 diet/nutrition tips
2. 2 exercise recommendations
3. 2 wellness/lifestyle tips
4. 2 product suggestions (within their %s budget)
Keep each suggestion concise (2-3 sentences). Format with clear headings.`, profile, budget)
	},
}

// BuildPrompt renders the instruction for a structured intent. Unknown intents
// use the general template; an empty budget reads as "moderate".
func BuildPrompt(intent Intent, profileContext, budget string) string {
	tmpl, ok := suggestionTemplates[intent]
	if !ok {
		tmpl = suggestionTemplates[IntentGeneral]
	}
	if strings.TrimSpace(budget) == "" {
		budget = defaultBudget
	}
	return tmpl(profileContext, budget)
}

// BuildQuestionPrompt embeds the raw question next to the profile context.
func BuildQuestionPrompt(profileContext, question string) string {
	return fmt.Sprintf("User profile: %s\n\nUser question: %s", profileContext, question)
}
