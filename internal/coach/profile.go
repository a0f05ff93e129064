package coach

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/database"
)

// ErrInvalidProfile is wrapped by every profile validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// ProfileInput is a complete set of profile attributes as submitted by a
// user. Nil fields are stored as absent.
type ProfileInput struct {
	Age           *int     `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender        *string  `json:"gender,omitempty" validate:"omitempty,min=1,max=32"`
	HeightCm      *float64 `json:"height,omitempty" validate:"omitempty,gte=50,lte=272"`
	WeightKg      *float64 `json:"weight,omitempty" validate:"omitempty,gte=20,lte=500"`
	ActivityLevel *string  `json:"activityLevel,omitempty" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	SleepGoal     *int     `json:"sleepGoal,omitempty" validate:"omitempty,min=1,max=24"`
	Budget        *string  `json:"budget,omitempty" validate:"omitempty,oneof=low moderate high"`
}

// ProfileFields lists the names accepted by ParseProfileField.
var ProfileFields = []string{"age", "gender", "height", "weight", "activity", "sleep", "budget"}

// ParseProfileField applies one textual field update to in. The value
// "none" clears the field.
func ParseProfileField(in *ProfileInput, field, value string) error {
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	reset := strings.EqualFold(value, "none")
	if value == "" {
		return fmt.Errorf("%w: missing value for %s", ErrInvalidProfile, field)
	}

	switch field {
	case "age":
		return setInt(&in.Age, field, value, reset)
	case "sleep", "sleep_goal", "sleepgoal":
		return setInt(&in.SleepGoal, "sleep", value, reset)
	case "height":
		return setFloat(&in.HeightCm, field, strings.TrimSuffix(strings.ToLower(value), "cm"), reset)
	case "weight":
		return setFloat(&in.WeightKg, field, strings.TrimSuffix(strings.ToLower(value), "kg"), reset)
	case "gender":
		setString(&in.Gender, value, reset)
	case "activity", "activity_level", "activitylevel":
		setString(&in.ActivityLevel, strings.ReplaceAll(strings.ToLower(value), " ", "_"), reset)
	case "budget":
		setString(&in.Budget, strings.ToLower(value), reset)
	default:
		return fmt.Errorf("%w: unknown field %q (known: %s)", ErrInvalidProfile, field, strings.Join(ProfileFields, ", "))
	}
	return nil
}

func setInt(dst **int, field, value string, reset bool) error {
	if reset {
		*dst = nil
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be a whole number", ErrInvalidProfile, field)
	}
	*dst = &n
	return nil
}

func setFloat(dst **float64, field, value string, reset bool) error {
	if reset {
		*dst = nil
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%w: %s must be a number", ErrInvalidProfile, field)
	}
	*dst = &f
	return nil
}

func setString(dst **string, value string, reset bool) {
	if reset {
		*dst = nil
		return
	}
	*dst = &value
}

// InputFromProfile converts a stored profile into editable input. A nil
// profile yields empty input.
func InputFromProfile(p *database.WellnessProfile) ProfileInput {
	var in ProfileInput
	if p == nil {
		return in
	}
	if p.Age.Valid {
		v := int(p.Age.Int64)
		in.Age = &v
	}
	if p.Gender.Valid {
		v := p.Gender.String
		in.Gender = &v
	}
	if p.HeightCm.Valid {
		v := p.HeightCm.Float64
		in.HeightCm = &v
	}
	if p.WeightKg.Valid {
		v := p.WeightKg.Float64
		in.WeightKg = &v
	}
	if p.ActivityLevel.Valid {
		v := p.ActivityLevel.String
		in.ActivityLevel = &v
	}
	if p.SleepGoal.Valid {
		v := int(p.SleepGoal.Int64)
		in.SleepGoal = &v
	}
	if p.Budget.Valid {
		v := p.Budget.String
		in.Budget = &v
	}
	return in
}

func (in ProfileInput) toProfile(userID int64) *database.WellnessProfile {
	p := &database.WellnessProfile{UserID: userID}
	if in.Age != nil {
		p.Age = sql.NullInt64{Int64: int64(*in.Age), Valid: true}
	}
	if in.Gender != nil {
		p.Gender = sql.NullString{String: *in.Gender, Valid: true}
	}
	if in.HeightCm != nil {
		p.HeightCm = sql.NullFloat64{Float64: *in.HeightCm, Valid: true}
	}
	if in.WeightKg != nil {
		p.WeightKg = sql.NullFloat64{Float64: *in.WeightKg, Valid: true}
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = sql.NullString{String: *in.ActivityLevel, Valid: true}
	}
	if in.SleepGoal != nil {
		p.SleepGoal = sql.NullInt64{Int64: int64(*in.SleepGoal), Valid: true}
	}
	if in.Budget != nil {
		p.Budget = sql.NullString{String: *in.Budget, Valid: true}
	}
	return p
}

// ToUserContext maps a stored profile to the gateway's view of a user. A nil
// profile yields an empty context.
func ToUserContext(p *database.WellnessProfile) advice.UserContext {
	in := InputFromProfile(p)
	uc := advice.UserContext{
		Age:       in.Age,
		HeightCm:  in.HeightCm,
		WeightKg:  in.WeightKg,
		SleepGoal: in.SleepGoal,
	}
	if in.Gender != nil {
		uc.Gender = *in.Gender
	}
	if in.ActivityLevel != nil {
		uc.ActivityLevel = *in.ActivityLevel
	}
	if in.Budget != nil {
		uc.Budget = *in.Budget
	}
	return uc
}
