package assistant

import (
	"fmt"
	"strings"

	"optibite/internal/domain"
)

// Swap is a suggested ingredient substitution.
type Swap struct {
	Original        string `json:"original"`
	Alternative     string `json:"alternative"`
	Reason          string `json:"reason"`
	NutritionChange string `json:"nutrition_change"`
}

type swapRule struct {
	prefix          string
	reason          string
	nutritionChange string
}

var swapRules = []swapRule{
	{prefix: "Organic", reason: "Higher quality and more nutrients", nutritionChange: "Higher antioxidants"},
	{prefix: "Low-sodium", reason: "Better for heart health", nutritionChange: "Reduced sodium content"},
}

// SuggestSwaps returns the canned alternatives for ingredient. mealKey is
// optional but must name a slot when set.
func SuggestSwaps(mealKey, ingredient string) ([]Swap, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, fmt.Errorf("%w: ingredient is required", domain.ErrInvalidRequest)
	}
	if key := strings.TrimSpace(mealKey); key != "" {
		if _, err := domain.ParseSlot(key); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
	}
	swaps := make([]Swap, 0, len(swapRules))
	for _, rule := range swapRules {
		swaps = append(swaps, Swap{
			Original:        ingredient,
			Alternative:     rule.prefix + " " + ingredient,
			Reason:          rule.reason,
			NutritionChange: rule.nutritionChange,
		})
	}
	return swaps, nil
}
