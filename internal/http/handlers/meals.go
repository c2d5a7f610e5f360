package handlers

import (
	"net/http"

	"optibite/internal/assistant"
	"optibite/internal/domain"
	"optibite/internal/mealplan"
)

type describeRequest struct {
	Meals map[string]domain.MealEntry `json:"meals"`
}

type swapRequest struct {
	MealKey    string `json:"meal_key"`
	Ingredient string `json:"ingredient"`
}

type swapResponse struct {
	Suggestions []assistant.Swap `json:"suggestions"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

func (a *App) DescribeMeals(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	descriptions, err := mealplan.Describe(req.Meals)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, descriptions)
}

func (a *App) SuggestSwaps(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	swaps, err := assistant.SuggestSwaps(req.MealKey, req.Ingredient)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, swapResponse{Suggestions: swaps})
}

func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	text, source, err := a.Assistant.Reply(r.Context(), req.Message)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, chatResponse{Response: text, Source: source})
}
