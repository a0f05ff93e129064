// Package advice mediates every call the application makes to the generative
// language upstream. It personalizes prompts from a user's wellness profile,
// memoizes responses for a short time, spaces outbound calls globally, walks
// the model roster when a model disappears and retries briefly on rate limits.
package advice

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultProfileContext is used when a profile carries no usable attribute.
const DefaultProfileContext = "No profile data available, give general advice for a healthy adult"

// UserContext is a read-only snapshot of the profile attributes that shape a
// request. Numeric attributes are absent when nil or not positive.
type UserContext struct {
	Age           *int     `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	HeightCm      *float64 `json:"height,omitempty"`
	WeightKg      *float64 `json:"weight,omitempty"`
	ActivityLevel string   `json:"activityLevel,omitempty"`
	SleepGoal     *int     `json:"sleepGoal,omitempty"`
	Budget        string   `json:"budget,omitempty"`
}

// Int returns a pointer to v, for building a UserContext inline.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building a UserContext inline.
func Float(v float64) *float64 { return &v }

func presentInt(v *int) (int, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func presentFloat(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// BMI returns weight / (height in meters)^2 when both height and weight are present.
func (u UserContext) BMI() (float64, bool) {
	h, okH := presentFloat(u.HeightCm)
	w, okW := presentFloat(u.WeightKg)
	if !okH || !okW {
		return 0, false
	}
	m := h / 100
	return w / (m * m), true
}

// Describe renders the profile as a comma separated summary used to
// personalize every upstream request. The attribute order is fixed.
func (u UserContext) Describe() string {
	var parts []string

	if age, ok := presentInt(u.Age); ok {
		parts = append(parts, "Age: "+strconv.Itoa(age))
	}
	if g := strings.TrimSpace(u.Gender); g != "" {
		parts = append(parts, "Gender: "+g)
	}
	if h, ok := presentFloat(u.HeightCm); ok {
		parts = append(parts, "Height: "+formatNumber(h)+"cm")
	}
	if w, ok := presentFloat(u.WeightKg); ok {
		parts = append(parts, "Weight: "+formatNumber(w)+"kg")
	}
	if bmi, ok := u.BMI(); ok {
		parts = append(parts, "BMI: "+strconv.FormatFloat(bmi, 'f', 1, 64))
	}
	if a := strings.TrimSpace(u.ActivityLevel); a != "" {
		parts = append(parts, "Activity Level: "+a)
	}
	if s, ok := presentInt(u.SleepGoal); ok {
		parts = append(parts, "Sleep Goal: "+strconv.Itoa(s)+" hours")
	}
	if b := strings.TrimSpace(u.Budget); b != "" {
		parts = append(parts, "Health Budget: "+b)
	}

	if len(parts) == 0 {
		return DefaultProfileContext
	}
	return strings.Join(parts, ", ")
}

// cacheKey serializes the attributes that reach the prompt, so profiles that
// render the same request share a key. Field order follows the struct.
func (u UserContext) cacheKey() string {
	b, err := json.Marshal(u.normalized())
	if err != nil {
		// Marshal cannot fail for this shape; fall back to the summary.
		return u.Describe()
	}
	return string(b)
}

// normalized drops absent attributes the same way Describe and BuildPrompt
// do. A non-blank budget is kept verbatim because the prompt embeds it as is.
func (u UserContext) normalized() UserContext {
	n := UserContext{
		Gender:        strings.TrimSpace(u.Gender),
		ActivityLevel: strings.TrimSpace(u.ActivityLevel),
		Budget:        u.Budget,
	}
	if v, ok := presentInt(u.Age); ok {
		n.Age = &v
	}
	if v, ok := presentFloat(u.HeightCm); ok {
		n.HeightCm = &v
	}
	if v, ok := presentFloat(u.WeightKg); ok {
		n.WeightKg = &v
	}
	if v, ok := presentInt(u.SleepGoal); ok {
		n.SleepGoal = &v
	}
	if strings.TrimSpace(n.Budget) == "" {
		n.Budget = ""
	}
	return n
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
