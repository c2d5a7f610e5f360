package mealplan

import "strings"

// Diet is the dietary branch that picks the protein source for each slot.
type Diet string

const (
	DietOmnivore   Diet = "omnivore"
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
)

type dietRule struct {
	keyword string
	diet    Diet
}

// dietRules are evaluated in order; vegan must stay ahead of vegetarian.
var dietRules = []dietRule{
	{keyword: "vegan", diet: DietVegan},
	{keyword: "vegetarian", diet: DietVegetarian},
}

// ClassifyDiet returns the first diet whose keyword appears, case-insensitively,
// in any restriction tag. Profiles matching no rule are omnivore.
func ClassifyDiet(restrictions []string) Diet {
	for _, rule := range dietRules {
		for _, tag := range restrictions {
			if strings.Contains(strings.ToLower(tag), rule.keyword) {
				return rule.diet
			}
		}
	}
	return DietOmnivore
}
