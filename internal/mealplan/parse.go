package mealplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"optibite/internal/domain"
)

var errIncompletePlan = errors.New("incomplete plan")

type modelMeal struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Calories     *float64 `json:"calories"`
	Protein      *float64 `json:"protein"`
	Carbs        *float64 `json:"carbs"`
	Fats         *float64 `json:"fats"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Preparation  string   `json:"preparation"`
}

type modelPlanPayload struct {
	Breakfast *modelMeal `json:"breakfast"`
	Lunch     *modelMeal `json:"lunch"`
	Dinner    *modelMeal `json:"dinner"`
	Snack     *modelMeal `json:"snack"`
}

func (p modelPlanPayload) meal(slot domain.Slot) *modelMeal {
	switch slot {
	case domain.SlotBreakfast:
		return p.Breakfast
	case domain.SlotLunch:
		return p.Lunch
	case domain.SlotDinner:
		return p.Dinner
	case domain.SlotSnack:
		return p.Snack
	}
	return nil
}

// parsePlan decodes a model response into a plan. Every slot needs a name,
// the four numeric fields and at least one ingredient; description and
// instructions may be blank. Any totals the model sent are ignored and
// recomputed from the entries.
func parsePlan(raw string) (domain.MealPlan, error) {
	var plan domain.MealPlan
	cleaned := extractJSONObject(raw)
	if cleaned == "" {
		return plan, fmt.Errorf("%w: empty payload", errIncompletePlan)
	}
	var payload modelPlanPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return plan, err
	}
	for _, slot := range domain.Slots {
		m := payload.meal(slot)
		if m == nil {
			return plan, fmt.Errorf("%w: missing %s", errIncompletePlan, slot)
		}
		entry, err := m.entry()
		if err != nil {
			return plan, fmt.Errorf("%s: %w", slot, err)
		}
		*plan.Meals.Entry(slot) = entry
	}
	plan.RecomputeTotals()
	return plan, nil
}

func (m modelMeal) entry() (domain.MealEntry, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return domain.MealEntry{}, fmt.Errorf("%w: name is empty", errIncompletePlan)
	}
	if m.Calories == nil || m.Protein == nil || m.Carbs == nil || m.Fats == nil {
		return domain.MealEntry{}, fmt.Errorf("%w: numeric field missing", errIncompletePlan)
	}
	var ingredients []string
	for _, ing := range m.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) == 0 {
		return domain.MealEntry{}, fmt.Errorf("%w: ingredients are empty", errIncompletePlan)
	}
	return domain.MealEntry{
		Name:         name,
		Description:  strings.TrimSpace(m.Description),
		Calories:     *m.Calories,
		Protein:      *m.Protein,
		Carbs:        *m.Carbs,
		Fats:         *m.Fats,
		Ingredients:  ingredients,
		Instructions: coalesce(m.Instructions, m.Preparation),
	}, nil
}

// extractJSONObject strips a Markdown code fence and any prose around the
// outermost JSON object.
func extractJSONObject(raw string) string {
	text := trimCodeFence(raw)
	if text == "" {
		return ""
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
