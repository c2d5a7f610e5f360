// Package nutrition implements the Mifflin-St Jeor energy estimate.
package nutrition

import (
	"strings"

	"optibite/internal/domain"
)

const (
	goalAdjustmentKcal = 500
	maleOffset         = 5
	nonMaleOffset      = -161
)

// activityMultipliers maps activity levels to their TDEE multiplier.
var activityMultipliers = map[string]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

// ActivityMultiplier returns the TDEE multiplier for level. Unknown levels
// get the moderate multiplier.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[domain.ActivityModerate]
}

// BMR computes the basal metabolic rate. Inputs are not clamped, so extreme
// values can yield a non-positive result.
func BMR(p domain.UserProfile) float64 {
	bmr := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if p.IsMale() {
		return bmr + maleOffset
	}
	return bmr + nonMaleOffset
}

// AdjustForGoal shifts tdee by the fixed deficit or surplus for goal.
func AdjustForGoal(tdee float64, goal string) float64 {
	switch strings.TrimSpace(goal) {
	case domain.GoalLoseWeight:
		return tdee - goalAdjustmentKcal
	case domain.GoalGainWeight:
		return tdee + goalAdjustmentKcal
	default:
		return tdee
	}
}

// Estimate derives BMR, TDEE and the goal-adjusted calorie target.
func Estimate(p domain.UserProfile) domain.EnergyEstimate {
	bmr := BMR(p)
	tdee := bmr * ActivityMultiplier(p.ActivityLevel)
	return domain.EnergyEstimate{
		BMR:                 bmr,
		TDEE:                tdee,
		RecommendedCalories: AdjustForGoal(tdee, p.Goal),
	}
}
