package handlers

import (
	"net/http"
	"time"
)

// Root answers the bare banner that load balancers and the web client probe.
func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"message": "OptiBite API is running"})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"generative_provider": a.Synth.Provider(),
		"uptime_seconds":      int64(time.Since(a.StartedAt).Seconds()),
	})
}
