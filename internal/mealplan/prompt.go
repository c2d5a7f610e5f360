package mealplan

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"optibite/internal/domain"
)

const planSystemPrompt = "You are a registered dietitian who writes practical, realistic daily meal plans. Respond only with a single valid JSON object and no commentary."

const planResponseSchema = `{"breakfast":{"name":string,"description":string,"calories":number,"protein":number,"carbs":number,"fats":number,"ingredients":string[],"instructions":string},"lunch":{...},"dinner":{...},"snack":{...}}`

func buildPlanPrompt(profile domain.UserProfile, estimate domain.EnergyEstimate, locale string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a one-day meal plan with exactly four meals: breakfast, lunch, dinner and snack.\n\n")
	sb.WriteString("ENERGY TARGETS:\n")
	fmt.Fprintf(sb, "- Daily calorie target: %.0f kcal\n", estimate.RecommendedCalories)
	fmt.Fprintf(sb, "- BMR: %.0f kcal\n", estimate.BMR)
	fmt.Fprintf(sb, "- TDEE: %.0f kcal\n", estimate.TDEE)
	fmt.Fprintf(sb, "- Goal: %s\n\n", humanize(profile.Goal))

	sb.WriteString("USER PROFILE:\n")
	fmt.Fprintf(sb, "- Weight: %.1f kg\n", profile.Weight)
	fmt.Fprintf(sb, "- Height: %.1f cm\n", profile.Height)
	fmt.Fprintf(sb, "- Age: %d years\n", profile.Age)
	fmt.Fprintf(sb, "- Sex: %s\n", profile.Sex)
	fmt.Fprintf(sb, "- Activity level: %s\n", humanize(profile.ActivityLevel))
	if len(profile.DietaryRestrictions) > 0 {
		fmt.Fprintf(sb, "- Dietary restrictions: %s\n", strings.Join(profile.DietaryRestrictions, ", "))
	} else {
		sb.WriteString("- Dietary restrictions: none\n")
	}

	sb.WriteString("\nRULES:\n")
	sb.WriteString("- The four meals' calories should add up to the daily calorie target.\n")
	sb.WriteString("- protein, carbs and fats are grams; calories are kcal.\n")
	sb.WriteString("- ingredients is an ordered list; instructions are short preparation notes.\n")
	fmt.Fprintf(sb, "- Write names, descriptions and instructions in %s.\n", languageName(locale))
	fmt.Fprintf(sb, "\nRespond strictly with JSON matching this schema, keyed by meal slot: %s", planResponseSchema)
	return sb.String()
}

func humanize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unspecified"
	}
	return strings.ReplaceAll(v, "_", " ")
}

// languageName renders a locale tag as an English language name for the
// prompt. Unparseable or empty tags fall back to English.
func languageName(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		return "English"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return "English"
}
