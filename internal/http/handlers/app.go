package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"optibite/internal/assistant"
	"optibite/internal/domain"
	"optibite/internal/infra"
	"optibite/internal/mealplan"
)

const maxBodyBytes = 1 << 20

// App carries the collaborators shared by every handler.
type App struct {
	Synth     *mealplan.Synthesizer
	Assistant *assistant.Assistant
	Logger    *infra.Logger
	StartedAt time.Time
}

// NewApp wires an App. Nil collaborators get defaults with generation disabled.
func NewApp(synth *mealplan.Synthesizer, asst *assistant.Assistant, logger *infra.Logger) *App {
	if logger == nil {
		nop := infra.Logger(zerolog.Nop())
		logger = &nop
	}
	if synth == nil {
		synth = mealplan.NewSynthesizer(mealplan.Options{Logger: logger})
	}
	if asst == nil {
		asst = assistant.New(assistant.Options{Logger: logger})
	}
	return &App{Synth: synth, Assistant: asst, Logger: logger, StartedAt: time.Now()}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}

// fail maps domain errors to client errors and everything else to a 500.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnknownSlot):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// decode reads a single JSON document from the request body into dst.
func (a *App) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidRequest)
		}
		return fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func (a *App) decodeProfile(r *http.Request) (domain.UserProfile, error) {
	var p domain.UserProfile
	if err := a.decode(r, &p); err != nil {
		return p, err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
