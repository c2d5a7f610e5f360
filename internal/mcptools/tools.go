// Package mcptools serves the planner operations as MCP tools/call handlers
// over plain HTTP.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"optibite/internal/assistant"
	"optibite/internal/domain"
	"optibite/internal/infra"
	"optibite/internal/mealplan"
	"optibite/internal/middleware"
	"optibite/internal/nutrition"
)

const (
	ToolEstimateEnergy = "estimate_energy"
	ToolGeneratePlan   = "generate_plan"
	ToolDescribeMeals  = "describe_meals"
	ToolSuggestSwap    = "suggest_swap"
	ToolChat           = "chat"
)

// maxCallBytes matches the body cap of the HTTP API.
const maxCallBytes = 1 << 20

// ErrUnknownTool is returned by Call for a tool name that is not registered.
var ErrUnknownTool = errors.New("mcptools: unknown tool")

type toolFunc func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Server dispatches tool calls to the planner.
type Server struct {
	synth  *mealplan.Synthesizer
	asst   *assistant.Assistant
	logger *infra.Logger
	tools  map[string]toolFunc
}

// NewServer registers every tool.
func NewServer(synth *mealplan.Synthesizer, asst *assistant.Assistant, logger *infra.Logger) *Server {
	if logger == nil {
		nop := infra.Logger(zerolog.Nop())
		logger = &nop
	}
	s := &Server{synth: synth, asst: asst, logger: logger}
	s.tools = map[string]toolFunc{
		ToolEstimateEnergy: s.estimateEnergy,
		ToolGeneratePlan:   s.generatePlan,
		ToolDescribeMeals:  s.describeMeals,
		ToolSuggestSwap:    s.suggestSwap,
		ToolChat:           s.chat,
	}
	return s
}

// Tools lists the registered tool names in sorted order.
func (s *Server) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the named tool.
func (s *Server) Call(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	fn, ok := s.tools[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, req.Name)
	}
	return fn(ctx, req)
}

// Handler exposes Call on POST /.
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.Recoverer, middleware.Logger(log))
	r.Post("/", s.serveCall)
	r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"tools": s.Tools()})
	})
	return r
}

func (s *Server) serveCall(w http.ResponseWriter, r *http.Request) {
	var req protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", maxCallBytes), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	result, err := s.Call(r.Context(), &req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, ErrUnknownTool):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().Err(err).Str("tool", req.Name).Msg("tool call failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// extractParams round-trips the loosely typed arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: arguments: %v", domain.ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: arguments: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func textResult(data any) (*protocol.CallToolResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: string(raw)},
		},
	}, nil
}

func profileParams(req *protocol.CallToolRequest) (domain.UserProfile, error) {
	var p domain.UserProfile
	if err := extractParams(req, &p); err != nil {
		return p, err
	}
	p.Normalize()
	return p, p.Validate()
}

func (s *Server) estimateEnergy(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := profileParams(req)
	if err != nil {
		return nil, err
	}
	return textResult(nutrition.Estimate(p))
}

type planParams struct {
	domain.UserProfile
	Locale string `json:"locale"`
}

func (s *Server) generatePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params planParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	p := params.UserProfile
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	estimate := nutrition.Estimate(p)
	plan := s.synth.SynthesizeLocalized(ctx, p, estimate, middleware.NormalizeLocale(params.Locale))
	return textResult(map[string]any{"estimate": estimate, "plan": plan})
}

func (s *Server) describeMeals(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params struct {
		Meals map[string]domain.MealEntry `json:"meals"`
	}
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	out, err := mealplan.Describe(params.Meals)
	if err != nil {
		return nil, err
	}
	return textResult(out)
}

func (s *Server) suggestSwap(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params struct {
		MealKey    string `json:"meal_key"`
		Ingredient string `json:"ingredient"`
	}
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	swaps, err := assistant.SuggestSwaps(params.MealKey, params.Ingredient)
	if err != nil {
		return nil, err
	}
	return textResult(map[string]any{"suggestions": swaps})
}

func (s *Server) chat(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params struct {
		Message string `json:"message"`
	}
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	text, source, err := s.asst.Reply(ctx, params.Message)
	if err != nil {
		return nil, err
	}
	return textResult(map[string]string{"response": text, "source": source})
}
