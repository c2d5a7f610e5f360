package mealplan

import (
	"fmt"
	"strings"

	"optibite/internal/domain"
)

// Describe returns a short blurb for every entry keyed by slot. Entries with
// an empty name are described by their slot key. A nil map and unknown keys
// are rejected; an empty map yields an empty result.
func Describe(entries map[string]domain.MealEntry) (map[string]string, error) {
	if entries == nil {
		return nil, fmt.Errorf("%w: meals is required", domain.ErrInvalidRequest)
	}
	out := make(map[string]string, len(entries))
	for key, entry := range entries {
		slot, err := domain.ParseSlot(key)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = string(slot)
		}
		out[key] = fmt.Sprintf("A delicious and nutritious %s packed with wholesome ingredients to fuel your day.", name)
	}
	return out, nil
}

// DescribePlan describes all four meals of plan.
func DescribePlan(plan domain.MealPlan) map[string]string {
	entries := make(map[string]domain.MealEntry, len(domain.Slots))
	for _, slot := range domain.Slots {
		entries[string(slot)] = *plan.Meals.Entry(slot)
	}
	out, _ := Describe(entries)
	return out
}
