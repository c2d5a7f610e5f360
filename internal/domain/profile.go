package domain

import (
	"fmt"
	"strings"
)

// Sex values recognized by the energy estimator. Anything other than
// SexMale takes the non-male branch of the BMR formula.
const (
	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"
)

// Activity levels with a dedicated TDEE multiplier.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Goals that shift the recommended calorie target.
const (
	GoalLoseWeight = "lose_weight"
	GoalGainWeight = "gain_weight"
	GoalMaintain   = "maintain"
)

const (
	maxWeightKG = 500
	maxHeightCM = 300
	maxAgeYears = 150
)

// UserProfile carries the body metrics and preferences a plan is computed from.
type UserProfile struct {
	Weight              float64  `json:"weight"`
	Height              float64  `json:"height"`
	Age                 int      `json:"age"`
	Sex                 string   `json:"sex"`
	ActivityLevel       string   `json:"activity_level"`
	Goal                string   `json:"goal"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// IsMale reports whether the profile takes the male branch of the BMR formula.
func (p UserProfile) IsMale() bool {
	return strings.EqualFold(strings.TrimSpace(p.Sex), SexMale)
}

// Normalize trims free-text fields, defaults an empty goal to maintain and
// drops blank restriction tags.
func (p *UserProfile) Normalize() {
	if p == nil {
		return
	}
	p.Sex = strings.TrimSpace(p.Sex)
	p.ActivityLevel = strings.TrimSpace(p.ActivityLevel)
	p.Goal = strings.TrimSpace(p.Goal)
	if p.Goal == "" {
		p.Goal = GoalMaintain
	}
	var tags []string
	for _, tag := range p.DietaryRestrictions {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	p.DietaryRestrictions = tags
}

// Validate checks the numeric ranges and required fields before any
// computation runs. Activity level and goal are not rejected here: unknown
// values have a defined fallback in the estimator.
func (p UserProfile) Validate() error {
	if p.Weight <= 0 || p.Weight > maxWeightKG {
		return fmt.Errorf("%w: weight must be between 0 and %d kg", ErrInvalidProfile, maxWeightKG)
	}
	if p.Height <= 0 || p.Height > maxHeightCM {
		return fmt.Errorf("%w: height must be between 0 and %d cm", ErrInvalidProfile, maxHeightCM)
	}
	if p.Age < 1 || p.Age > maxAgeYears {
		return fmt.Errorf("%w: age must be between 1 and %d years", ErrInvalidProfile, maxAgeYears)
	}
	if strings.TrimSpace(p.Sex) == "" {
		return fmt.Errorf("%w: sex is required", ErrInvalidProfile)
	}
	return nil
}

// EnergyEstimate is the output of the energy estimator.
type EnergyEstimate struct {
	BMR                 float64 `json:"bmr"`
	TDEE                float64 `json:"tdee"`
	RecommendedCalories float64 `json:"recommended_calories"`
}
