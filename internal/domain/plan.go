package domain

import "fmt"

// Slot identifies one of the four daily meals.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
)

// Slots lists the meal slots in serving order.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// ParseSlot resolves a slot key, returning ErrUnknownSlot for anything outside
// the fixed set.
func ParseSlot(key string) (Slot, error) {
	for _, s := range Slots {
		if string(s) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, key)
}

// Plan sources.
const (
	SourceGenerative = "generative"
	SourceTemplate   = "template"
)

// MealEntry describes a single meal of the plan.
type MealEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fats         float64  `json:"fats"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// Meals holds one entry per slot. Field order fixes the JSON key order.
type Meals struct {
	Breakfast MealEntry `json:"breakfast"`
	Lunch     MealEntry `json:"lunch"`
	Dinner    MealEntry `json:"dinner"`
	Snack     MealEntry `json:"snack"`
}

// Entry returns a pointer to the entry stored for slot, or nil for an unknown slot.
func (m *Meals) Entry(slot Slot) *MealEntry {
	switch slot {
	case SlotBreakfast:
		return &m.Breakfast
	case SlotLunch:
		return &m.Lunch
	case SlotDinner:
		return &m.Dinner
	case SlotSnack:
		return &m.Snack
	}
	return nil
}

// MealPlan is a full day of meals plus aggregate totals.
type MealPlan struct {
	Meals         Meals   `json:"meals"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	Source        string  `json:"source"`
	Provider      string  `json:"provider"`
}

// RecomputeTotals overwrites the aggregate fields with the sums of the four entries.
func (p *MealPlan) RecomputeTotals() {
	p.TotalCalories, p.TotalProtein, p.TotalCarbs, p.TotalFats = 0, 0, 0, 0
	for _, slot := range Slots {
		e := p.Meals.Entry(slot)
		p.TotalCalories += e.Calories
		p.TotalProtein += e.Protein
		p.TotalCarbs += e.Carbs
		p.TotalFats += e.Fats
	}
}
