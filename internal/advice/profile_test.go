package advice

import (
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profile  UserContext
		expected string
	}{
		{
			name:     "empty profile",
			profile:  UserContext{},
			expected: DefaultProfileContext,
		},
		{
			name:     "zero values are absent",
			profile:  UserContext{Age: Int(0), HeightCm: Float(0), SleepGoal: Int(-1)},
			expected: DefaultProfileContext,
		},
		{
			name:     "height and weight with bmi",
			profile:  UserContext{HeightCm: Float(175), WeightKg: Float(70)},
			expected: "Height: 175cm, Weight: 70kg, BMI: 22.9",
		},
		{
			name:     "height only has no bmi",
			profile:  UserContext{HeightCm: Float(180)},
			expected: "Height: 180cm",
		},
		{
			name:     "weight only has no bmi",
			profile:  UserContext{WeightKg: Float(82.5)},
			expected: "Weight: 82.5kg",
		},
		{
			name: "all attributes in fixed order",
			profile: UserContext{
				Budget:        "low",
				SleepGoal:     Int(8),
				ActivityLevel: "moderate",
				WeightKg:      Float(60),
				HeightCm:      Float(165),
				Gender:        "female",
				Age:           Int(34),
			},
			expected: "Age: 34, Gender: female, Height: 165cm, Weight: 60kg, BMI: 22.0, " +
				"Activity Level: moderate, Sleep Goal: 8 hours, Health Budget: low",
		},
		{
			name:     "blank labels are absent",
			profile:  UserContext{Gender: "  ", Budget: "", Age: Int(40)},
			expected: "Age: 40",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.profile.Describe()
			if got != tc.expected {
				t.Errorf("Describe() = %q, want %q", got, tc.expected)
			}
			if again := tc.profile.Describe(); again != got {
				t.Errorf("Describe() not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestBMI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile UserContext
		want    string
		ok      bool
	}{
		{"both present", UserContext{HeightCm: Float(175), WeightKg: Float(70)}, "22.9", true},
		{"rounds to one decimal", UserContext{HeightCm: Float(160), WeightKg: Float(55)}, "21.5", true},
		{"missing height", UserContext{WeightKg: Float(70)}, "", false},
		{"missing weight", UserContext{HeightCm: Float(175)}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, ok := tc.profile.BMI()
			if ok != tc.ok {
				t.Fatalf("BMI() ok = %v, want %v", ok, tc.ok)
			}
			hasBMI := strings.Contains(tc.profile.Describe(), "BMI: ")
			if hasBMI != tc.ok {
				t.Errorf("Describe() contains BMI = %v, want %v", hasBMI, tc.ok)
			}
			if tc.ok && !strings.Contains(tc.profile.Describe(), "BMI: "+tc.want) {
				t.Errorf("Describe() = %q, want BMI %s", tc.profile.Describe(), tc.want)
			}
		})
	}
}

func TestCacheKeyStable(t *testing.T) {
	t.Parallel()

	a := UserContext{Age: Int(30), HeightCm: Float(175), WeightKg: Float(70), Budget: "high"}
	b := UserContext{Budget: "high", WeightKg: Float(70), HeightCm: Float(175), Age: Int(30)}
	if a.cacheKey() != b.cacheKey() {
		t.Errorf("equal profiles produced different keys: %q vs %q", a.cacheKey(), b.cacheKey())
	}

	c := UserContext{Age: Int(31), HeightCm: Float(175), WeightKg: Float(70), Budget: "high"}
	if a.cacheKey() == c.cacheKey() {
		t.Errorf("different profiles produced the same key %q", a.cacheKey())
	}
}

func TestCacheKeyIgnoresAbsentAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b UserContext
	}{
		{"zero age", UserContext{HeightCm: Float(175), WeightKg: Float(70)}, UserContext{Age: Int(0), HeightCm: Float(175), WeightKg: Float(70)}},
		{"negative sleep goal", UserContext{Budget: "low"}, UserContext{SleepGoal: Int(-1), Budget: "low"}},
		{"zero height", UserContext{WeightKg: Float(70)}, UserContext{HeightCm: Float(0), WeightKg: Float(70)}},
		{"blank strings", UserContext{}, UserContext{Gender: "  ", ActivityLevel: " ", Budget: " "}},
		{"padded gender", UserContext{Gender: "female"}, UserContext{Gender: " female "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if tc.a.Describe() != tc.b.Describe() {
				t.Fatalf("descriptions differ: %q vs %q", tc.a.Describe(), tc.b.Describe())
			}
			if tc.a.cacheKey() != tc.b.cacheKey() {
				t.Errorf("keys differ: %q vs %q", tc.a.cacheKey(), tc.b.cacheKey())
			}
		})
	}
}
