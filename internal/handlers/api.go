package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"simonseq/internal/entry"
	"simonseq/internal/game"
	"simonseq/internal/gateway"
	"simonseq/internal/session"
)

const (
	maxRequestBytes = 16 << 10
	qrSize          = 320
)

// APIHandler serves the authority's JSON API.
type APIHandler struct {
	games   *game.Store
	gateway entry.Gateway
	issuer  *session.Issuer
	baseURL string
}

func NewAPIHandler(games *game.Store, gw entry.Gateway, issuer *session.Issuer, baseURL string) *APIHandler {
	return &APIHandler{games: games, gateway: gw, issuer: issuer, baseURL: baseURL}
}

func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post(gateway.PathCreateSession, h.createSession)
	r.Post(gateway.PathJoinGame, h.joinGame)
	r.Route("/api/games/{code}", func(r chi.Router) {
		r.Post("/start", h.startGame)
		r.Post("/leave", h.leaveGame)
		r.Get("/qr", h.qr)
	})
}

func (h *APIHandler) createSession(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	sess, err := h.gateway.CreateSession(r.Context(), req.DisplayName, req.AvatarID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gateway.SessionResponse{Session: sess})
}

func (h *APIHandler) joinGame(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindValidation, Message: "Game code is required"})
		return
	}
	sess, err := h.gateway.JoinGame(r.Context(), req.DisplayName, req.AvatarID, req.Code)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gateway.SessionResponse{Session: sess})
}

func (h *APIHandler) startGame(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeCode(chi.URLParam(r, "code"))
	sess, ok := h.authorize(w, r, code)
	if !ok {
		return
	}
	err := h.games.StartGame(code, sess.PlayerID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, game.ErrNotHost):
		writeJSON(w, http.StatusForbidden, gateway.ErrorResponse{Error: gateway.ErrorBody{
			Kind:    gateway.KindValidation,
			Message: "Only the host can start the game",
		}})
	case errors.Is(err, game.ErrCodeNotFound):
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindCodeNotFound, Message: "Game not found"})
	case errors.Is(err, game.ErrGameInProgress):
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindGameInProgress, Message: "That game has already started"})
	default:
		log.Printf("start game failed code=%s err=%v", code, err)
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindServer, Err: err})
	}
}

func (h *APIHandler) leaveGame(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeCode(chi.URLParam(r, "code"))
	sess, ok := h.authorize(w, r, code)
	if !ok {
		return
	}
	err := h.games.Leave(code, sess.PlayerID)
	switch {
	case err == nil, errors.Is(err, game.ErrPlayerNotFound):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, game.ErrCodeNotFound):
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindCodeNotFound, Message: "Game not found"})
	default:
		log.Printf("leave game failed code=%s err=%v", code, err)
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindServer, Err: err})
	}
}

func (h *APIHandler) qr(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeCode(chi.URLParam(r, "code"))
	if _, ok := h.games.GetGame(code); !ok {
		http.NotFound(w, r)
		return
	}
	png, err := qrcode.Encode(shareURL(r, h.baseURL, code), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// authorize checks the bearer credential against the game in the path.
func (h *APIHandler) authorize(w http.ResponseWriter, r *http.Request, code string) (session.Session, bool) {
	return authorizeGame(w, r, h.issuer, code)
}

func authorizeGame(w http.ResponseWriter, r *http.Request, issuer *session.Issuer, code string) (session.Session, bool) {
	sess, err := issuer.Parse(bearerToken(r))
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="simonseq"`)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return session.Session{}, false
	}
	if sess.JoinCode != code {
		http.Error(w, "credential is for another game", http.StatusForbidden)
		return session.Session{}, false
	}
	return sess, true
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (gateway.EntryRequest, bool) {
	var req gateway.EntryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeGatewayError(w, &gateway.Error{Kind: gateway.KindValidation, Message: "Invalid request body", Err: err})
		return req, false
	}
	return req, true
}

func writeGatewayError(w http.ResponseWriter, err error) {
	var gerr *gateway.Error
	if !errors.As(err, &gerr) {
		gerr = &gateway.Error{Kind: gateway.KindServer, Err: err}
	}
	if gerr.Kind == gateway.KindServer || gerr.Kind == gateway.KindNetwork {
		log.Printf("api request failed kind=%s err=%v", gerr.Kind, err)
	}
	writeJSON(w, gerr.Kind.HTTPStatus(), gateway.ErrorResponse{Error: gateway.ErrorBody{
		Kind:    gerr.Kind,
		Message: gerr.UserMessage(),
	}})
}
