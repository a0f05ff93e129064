package coach

import (
	"sync/atomic"

	"github.com/edgard/wellnessbot/internal/advice"
)

// cannedSuggestions is served when the upstream is rate limited and the user
// has no stored suggestion for the requested intent.
var cannedSuggestions = map[advice.Intent]string{
	advice.IntentAll: `## Nutrition
**Balanced plate.** Fill half the plate with vegetables, a quarter with lean protein and a quarter with whole grains.

**Hydration.** Aim for about 8 glasses of water a day, starting with one right after waking up.

## Exercise
**Move 30 minutes a day.** A brisk walk counts. Consistency matters more than intensity.

**Strength twice a week.** Push-ups, squats and planks build muscle and support metabolism.

## Wellness
**Sleep hygiene.** Aim for 7-9 hours in a cool, dark room, with no screens for 30 minutes before bed.

**Breathing break.** Try 4-7-8 breathing: inhale for 4 seconds, hold for 7, exhale for 8. Repeat three times.

## Products
**Water bottle with time markers.** Makes daily intake easy to track (about $15-25).

**Resistance band set.** Covers home workouts and stretching (about $10-20).`,

	advice.IntentDiet: `## Diet Tips
**Protein at every meal.** Eggs, fish, chicken, lentils or Greek yogurt keep you full longer and help recovery.

**Weekly meal prep.** Cooking 3-4 days of meals ahead cuts down on impulse snacking.

**Eat mindfully.** Slow down, chew well and put the phone away so fullness cues have time to arrive.

**Color on the plate.** Three or more colors of vegetables usually means a wider range of nutrients.`,

	advice.IntentExercise: `## Exercise Recommendations
**Morning mobility.** Ten minutes of stretching or yoga raises energy for the day.

**Progressive overload.** Add a little weight, a few reps or some minutes each week.

**Active recovery.** On rest days walk, swim or do gentle yoga instead of staying still.

**Consistency first.** Four moderate sessions a week beat two exhausting ones.`,

	advice.IntentProduct: `## Wellness Products
**Foam roller.** Helps with muscle recovery and soreness (about $15-30).

**Fitness tracker.** Tracks steps, heart rate and sleep; affordable models exist (about $30-50).

**Yoga mat.** Useful for home workouts, stretching and meditation (about $15-25).

**Glass meal prep containers.** Microwave safe and BPA free (about $20-30).`,

	advice.IntentGeneral: `## Lifestyle Tips
**Morning routine.** Wake at a consistent time, drink water, move a little, then eat a good breakfast.

**Screen-free hour.** Spend the last hour before bed reading, journaling or relaxing away from screens.

**Stay connected.** Regular contact with friends and family is linked to better mental and physical health.`,
}

// cannedAnswers is served round-robin when a question cannot be answered
// because the upstream is rate limited.
var cannedAnswers = []string{
	"I'm briefly offline, so here's a quick tip: drink a glass of water now. Many people are mildly dehydrated without noticing. Ask me again in a minute for a personal answer.",
	"I'm recharging for a moment. Meanwhile, take three slow breaths: in for 4 seconds, hold for 4, out for 4. It reliably lowers stress. I'll be ready again shortly.",
	"Quick pause on my side. If you've been sitting for a while, stand up and stretch for 30 seconds. Try me again in a minute.",
	"Briefly unavailable, but here's a tip: every 20 minutes look at something 20 feet away for 20 seconds. Your eyes will thank you. Back soon!",
	"Short break here. Try adding one extra serving of vegetables to your next meal; small changes add up. Ask again shortly for tailored advice.",
}

func cannedSuggestion(intent advice.Intent) string {
	if text, ok := cannedSuggestions[intent]; ok {
		return text
	}
	return cannedSuggestions[advice.IntentAll]
}

type answerRotation struct {
	next atomic.Uint64
}

func (r *answerRotation) pick() string {
	i := r.next.Add(1) - 1
	return cannedAnswers[i%uint64(len(cannedAnswers))]
}
