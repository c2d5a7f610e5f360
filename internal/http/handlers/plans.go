package handlers

import (
	"net/http"

	"optibite/internal/domain"
	"optibite/internal/middleware"
	"optibite/internal/nutrition"
)

type planResponse struct {
	Estimate domain.EnergyEstimate `json:"estimate"`
	Plan     domain.MealPlan       `json:"plan"`
}

type legacyPlanResponse struct {
	BMRData  domain.EnergyEstimate `json:"bmr_data"`
	MealPlan domain.MealPlan       `json:"meal_plan"`
}

func (a *App) EstimateEnergy(w http.ResponseWriter, r *http.Request) {
	profile, err := a.decodeProfile(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, nutrition.Estimate(profile))
}

func (a *App) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	estimate, plan, ok := a.buildPlan(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, planResponse{Estimate: estimate, Plan: plan})
}

// GeneratePlanLegacy serves the original route with its original envelope keys.
func (a *App) GeneratePlanLegacy(w http.ResponseWriter, r *http.Request) {
	estimate, plan, ok := a.buildPlan(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, legacyPlanResponse{BMRData: estimate, MealPlan: plan})
}

func (a *App) buildPlan(w http.ResponseWriter, r *http.Request) (domain.EnergyEstimate, domain.MealPlan, bool) {
	profile, err := a.decodeProfile(r)
	if err != nil {
		a.fail(w, r, err)
		return domain.EnergyEstimate{}, domain.MealPlan{}, false
	}
	estimate := nutrition.Estimate(profile)
	locale := middleware.LocaleFromContext(r.Context())
	plan := a.Synth.SynthesizeLocalized(r.Context(), profile, estimate, locale)
	return estimate, plan, true
}
