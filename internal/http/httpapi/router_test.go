package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"optibite/internal/assistant"
	"optibite/internal/http/handlers"
	"optibite/internal/mealplan"
	"optibite/internal/providers/genai"
)

type scriptedCompleter struct {
	reply string
	err   error
}

func (s scriptedCompleter) Complete(ctx context.Context, req genai.CompletionRequest) (string, error) {
	return s.reply, s.err
}

func (s scriptedCompleter) Name() string { return "scripted" }

func newTestRouter(t *testing.T, completer genai.Completer, rateLimit int) http.Handler {
	t.Helper()
	app := handlers.NewApp(
		mealplan.NewSynthesizer(mealplan.Options{Completer: completer}),
		assistant.New(assistant.Options{Completer: completer}),
		nil,
	)
	return NewRouter(app, Options{
		DefaultLocale:  "en",
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      rateLimit,
		Logger:         zerolog.New(io.Discard),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const profileJSON = `{"weight":70,"height":175,"age":25,"sex":"male","activity_level":"moderate","goal":"lose_weight","dietary_restrictions":[]}`

func TestRootAndHealth(t *testing.T) {
	h := newTestRouter(t, nil, 0)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "OptiBite API is running") {
		t.Fatalf("root: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/healthz", "")
	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["generative_provider"] != genai.ProviderDisabled {
		t.Fatalf("health = %v", health)
	}
}

func TestOpenAPIDocumentIsValidJSON(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodGet, "/v1/openapi.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi.json is not valid JSON: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/v1/plans"]; !ok {
		t.Fatal("openapi document does not describe /v1/plans")
	}
}

func TestOpenAPIDocumentConditionalGet(t *testing.T) {
	h := newTestRouter(t, nil, 0)
	first := do(t, h, http.MethodGet, "/v1/openapi.json", "")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("conditional status = %d, body length %d", rec.Code, rec.Body.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stale etag status = %d, want 200", rec.Code)
	}
}

func TestEstimateEnergy(t *testing.T) {
	h := newTestRouter(t, nil, 0)
	for _, path := range []string{"/v1/energy", "/calculate-bmr"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, path, profileJSON)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			var got struct {
				BMR                 float64 `json:"bmr"`
				TDEE                float64 `json:"tdee"`
				RecommendedCalories float64 `json:"recommended_calories"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if math.Abs(got.BMR-1673.75) > 1e-9 || math.Abs(got.TDEE-2594.3125) > 1e-9 || math.Abs(got.RecommendedCalories-2094.3125) > 1e-9 {
				t.Fatalf("estimate = %+v", got)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	h := newTestRouter(t, nil, 0)
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "empty body", path: "/v1/energy", body: ""},
		{name: "not json", path: "/v1/plans", body: "weight=70"},
		{name: "negative weight", path: "/v1/energy", body: `{"weight":-1,"height":175,"age":30,"sex":"male"}`},
		{name: "age as string", path: "/v1/energy", body: `{"weight":70,"height":175,"age":"thirty","sex":"male"}`},
		{name: "missing sex", path: "/v1/plans", body: `{"weight":70,"height":175,"age":30}`},
		{name: "swap without ingredient", path: "/v1/swaps", body: `{"meal_key":"lunch"}`},
		{name: "swap bad slot", path: "/swap-suggestions", body: `{"meal_key":"brunch","ingredient":"rice"}`},
		{name: "describe unknown slot", path: "/v1/plans/descriptions", body: `{"meals":{"elevenses":{"name":"tea"}}}`},
		{name: "describe without meals", path: "/generate-descriptions", body: `{}`},
		{name: "empty chat", path: "/v1/chat", body: `{"message":"  "}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tc.path, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body=%s)", rec.Code, rec.Body.String())
			}
			var e struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Error != "bad_request" || e.Message == "" {
				t.Fatalf("error body = %+v", e)
			}
		})
	}
}

func TestGeneratePlanFallback(t *testing.T) {
	h := newTestRouter(t, scriptedCompleter{err: errors.New("upstream down")}, 0)
	rec := do(t, h, http.MethodPost, "/v1/plans", profileJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Estimate struct {
			RecommendedCalories float64 `json:"recommended_calories"`
		} `json:"estimate"`
		Plan struct {
			Meals map[string]struct {
				Calories float64 `json:"calories"`
			} `json:"meals"`
			TotalCalories float64 `json:"total_calories"`
			Source        string  `json:"source"`
		} `json:"plan"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Plan.Source != "template" || len(got.Plan.Meals) != 4 {
		t.Fatalf("plan = %+v", got.Plan)
	}
	if math.Abs(got.Plan.Meals["breakfast"].Calories-523.578125) > 1e-9 {
		t.Fatalf("breakfast calories = %v", got.Plan.Meals["breakfast"].Calories)
	}
	if math.Abs(got.Plan.TotalCalories-got.Estimate.RecommendedCalories) > 1e-6 {
		t.Fatalf("total %v != target %v", got.Plan.TotalCalories, got.Estimate.RecommendedCalories)
	}
	body := rec.Body.String()
	if strings.Index(body, `"breakfast"`) > strings.Index(body, `"lunch"`) ||
		strings.Index(body, `"dinner"`) > strings.Index(body, `"snack"`) {
		t.Fatalf("meals are not serialized in slot order: %s", body)
	}
}

func TestGeneratePlanLegacyEnvelope(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodPost, "/generate-meal-plan", profileJSON)
	var got map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got["bmr_data"]; !ok {
		t.Fatalf("legacy response missing bmr_data: %s", rec.Body.String())
	}
	if _, ok := got["meal_plan"]; !ok {
		t.Fatalf("legacy response missing meal_plan: %s", rec.Body.String())
	}
}

func TestDescribeSwapAndChat(t *testing.T) {
	h := newTestRouter(t, nil, 0)

	rec := do(t, h, http.MethodPost, "/v1/plans/descriptions", `{"meals":{"lunch":{"name":"Quinoa Bowl"},"snack":{}}}`)
	var desc map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode descriptions: %v", err)
	}
	if desc["lunch"] != "A delicious and nutritious Quinoa Bowl packed with wholesome ingredients to fuel your day." || desc["snack"] == "" {
		t.Fatalf("descriptions = %v", desc)
	}

	rec = do(t, h, http.MethodPost, "/v1/swaps", `{"meal_key":"dinner","ingredient":"salmon"}`)
	var swaps struct {
		Suggestions []assistant.Swap `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &swaps); err != nil {
		t.Fatalf("decode swaps: %v", err)
	}
	if len(swaps.Suggestions) != 2 || swaps.Suggestions[0].Alternative != "Organic salmon" || swaps.Suggestions[1].Alternative != "Low-sodium salmon" {
		t.Fatalf("swaps = %+v", swaps)
	}

	rec = do(t, h, http.MethodPost, "/v1/chat", `{"message":"any snack ideas?"}`)
	var chat struct {
		Response string `json:"response"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if chat.Source != assistant.SourceAssistant || chat.Response != assistant.KeywordReply("snack") {
		t.Fatalf("chat = %+v", chat)
	}
}

func TestChatGenerative(t *testing.T) {
	h := newTestRouter(t, scriptedCompleter{reply: "Drink water."}, 0)
	rec := do(t, h, http.MethodPost, "/v1/chat", `{"message":"hi"}`)
	if !strings.Contains(rec.Body.String(), `"source":"generative"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRateLimitAppliesToPlans(t *testing.T) {
	h := newTestRouter(t, nil, 1)
	if rec := do(t, h, http.MethodPost, "/v1/plans", profileJSON); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/plans", profileJSON); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/energy", profileJSON); rec.Code != http.StatusOK {
		t.Fatalf("energy should not be rate limited, got %d", rec.Code)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	h := newTestRouter(t, nil, 2)
	limited := 0
	for i := 1; i <= 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(profileJSON))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 18 {
		t.Fatalf("rate limited %d of 20 requests, want 18", limited)
	}
}

func TestUnknownRoute(t *testing.T) {
	if rec := do(t, newTestRouter(t, nil, 0), http.MethodGet, "/v1/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
