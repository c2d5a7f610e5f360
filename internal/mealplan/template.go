package mealplan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"optibite/internal/domain"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// slotTemplate fixes the calorie share, macro split and wording of one slot.
// The name, description and instructions formats take the protein source.
type slotTemplate struct {
	share        float64
	proteinShare float64
	carbShare    float64
	fatShare     float64
	name         string
	description  string
	instructions string
	sides        []string
}

var slotTemplates = map[domain.Slot]slotTemplate{
	domain.SlotBreakfast: {
		share:        0.25,
		proteinShare: 0.20,
		carbShare:    0.50,
		fatShare:     0.30,
		name:         "%s Breakfast Bowl",
		description:  "A balanced breakfast bowl built around %s with slow-release oats and fresh berries.",
		instructions: "Cook the oatmeal, prepare the %s and serve topped with berries and almonds.",
		sides:        []string{"Oatmeal", "Berries", "Almonds"},
	},
	domain.SlotLunch: {
		share:        0.35,
		proteinShare: 0.25,
		carbShare:    0.45,
		fatShare:     0.30,
		name:         "%s Quinoa Bowl",
		description:  "A hearty lunch of %s over quinoa with mixed vegetables.",
		instructions: "Cook the quinoa, prepare the %s and toss with the vegetables and a drizzle of olive oil.",
		sides:        []string{"Quinoa", "Mixed vegetables", "Olive oil"},
	},
	domain.SlotDinner: {
		share:        0.30,
		proteinShare: 0.30,
		carbShare:    0.40,
		fatShare:     0.30,
		name:         "%s With Sweet Potato And Broccoli",
		description:  "A nutritious dinner pairing %s with roasted sweet potato, broccoli and avocado.",
		instructions: "Roast the sweet potato and broccoli, cook the %s and finish with sliced avocado.",
		sides:        []string{"Sweet potato", "Broccoli", "Avocado"},
	},
	domain.SlotSnack: {
		share:        0.10,
		proteinShare: 0.15,
		carbShare:    0.55,
		fatShare:     0.30,
		name:         "Apple Slices With %s",
		description:  "A light snack of crisp apple slices with %s.",
		instructions: "Slice the apple and serve with the %s on the side.",
		sides:        []string{"Apple"},
	},
}

var dietProteins = map[Diet]map[domain.Slot]string{
	DietOmnivore: {
		domain.SlotBreakfast: "Scrambled eggs",
		domain.SlotLunch:     "Grilled chicken",
		domain.SlotDinner:    "Salmon",
		domain.SlotSnack:     "Greek yogurt",
	},
	DietVegetarian: {
		domain.SlotBreakfast: "Greek yogurt",
		domain.SlotLunch:     "Chickpeas",
		domain.SlotDinner:    "Paneer",
		domain.SlotSnack:     "Greek yogurt",
	},
	DietVegan: {
		domain.SlotBreakfast: "Tofu scramble",
		domain.SlotLunch:     "Tempeh",
		domain.SlotDinner:    "Lentils",
		domain.SlotSnack:     "Peanut butter",
	},
}

// titleCase builds a fresh Caser per call; a Caser must not be shared between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// SlotShare returns the fraction of the daily target allocated to slot.
func SlotShare(slot domain.Slot) float64 {
	return slotTemplates[slot].share
}

// ProteinFor returns the protein source the template plan uses for slot.
func ProteinFor(diet Diet, slot domain.Slot) string {
	return dietProteins[diet][slot]
}

// TemplatePlan builds the deterministic plan for the profile's diet and the
// estimate's calorie target.
func TemplatePlan(profile domain.UserProfile, estimate domain.EnergyEstimate) domain.MealPlan {
	diet := ClassifyDiet(profile.DietaryRestrictions)
	plan := domain.MealPlan{
		Source:   domain.SourceTemplate,
		Provider: domain.SourceTemplate,
	}
	for _, slot := range domain.Slots {
		*plan.Meals.Entry(slot) = templateEntry(slot, ProteinFor(diet, slot), estimate.RecommendedCalories)
	}
	plan.RecomputeTotals()
	return plan
}

func templateEntry(slot domain.Slot, protein string, target float64) domain.MealEntry {
	tpl := slotTemplates[slot]
	calories := target * tpl.share
	lower := strings.ToLower(protein)
	ingredients := make([]string, 0, len(tpl.sides)+1)
	ingredients = append(ingredients, protein)
	ingredients = append(ingredients, tpl.sides...)
	return domain.MealEntry{
		Name:         fmt.Sprintf(tpl.name, titleCase(protein)),
		Description:  fmt.Sprintf(tpl.description, lower),
		Calories:     calories,
		Protein:      calories * tpl.proteinShare / kcalPerGramProtein,
		Carbs:        calories * tpl.carbShare / kcalPerGramCarbs,
		Fats:         calories * tpl.fatShare / kcalPerGramFat,
		Ingredients:  ingredients,
		Instructions: fmt.Sprintf(tpl.instructions, lower),
	}
}
