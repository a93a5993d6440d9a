package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"simonseq/internal/game"
)

// RegisterHealth mounts /healthz and /version.
func RegisterHealth(r chi.Router, games *game.Store, version string) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "games": games.Len()})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("simonseq v" + version + "\n"))
	})
}
