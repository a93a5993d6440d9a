package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"simonseq/internal/avatar"
	"simonseq/internal/entry"
	"simonseq/internal/game"
	"simonseq/internal/gateway"
	"simonseq/internal/session"
	"simonseq/internal/viewmodel"
	"simonseq/views/pages"
)

const pageTitle = "Simon's Sequence"

// EntryHandler serves the browser entry flow and the waiting-room hand-off.
type EntryHandler struct {
	games   *game.Store
	gateway entry.Gateway
	issuer  *session.Issuer
	splash  time.Duration
	baseURL string
}

// EntryOptions configures an EntryHandler.
type EntryOptions struct {
	Games   *game.Store
	Gateway entry.Gateway
	Issuer  *session.Issuer
	Splash  time.Duration
	// BaseURL overrides the scheme and host used in share links.
	BaseURL string
}

func NewEntryHandler(opts EntryOptions) *EntryHandler {
	if opts.Splash <= 0 {
		opts.Splash = entry.DefaultSplash
	}
	return &EntryHandler{
		games:   opts.Games,
		gateway: opts.Gateway,
		issuer:  opts.Issuer,
		splash:  opts.Splash,
		baseURL: opts.BaseURL,
	}
}

func (h *EntryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.entryPage)
	r.Post("/", h.submit)
	r.Get("/waiting", h.waitingPage)
	r.Post("/logout", h.logout)
}

func (h *EntryHandler) controller(w http.ResponseWriter, r *http.Request, joinCode string) *entry.Controller {
	return entry.New(entry.Options{
		JoinCode: joinCode,
		Gateway:  h.gateway,
		Sessions: newCookieStore(w, r, h.issuer),
	})
}

func (h *EntryHandler) entryPage(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r, r.URL.Query().Get("join"))
	defer ctrl.Close()
	if r.URL.Query().Get("start") == "1" {
		ctrl.AdvanceFromLanding()
	}
	render(w, r, pages.EntryPage(h.entryView(ctrl.State())))
}

func (h *EntryHandler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctrl := h.controller(w, r, r.FormValue("join"))
	defer ctrl.Close()
	// The form was on screen when the browser posted it.
	ctrl.AdvanceFromLanding()
	ctrl.SetDisplayName(entry.ClampDisplayName(r.FormValue("displayName")))
	if id := r.FormValue("avatarId"); id != "" {
		if err := ctrl.SetAvatar(id); err != nil {
			log.Printf("entry form avatar ignored avatar=%q err=%v", id, err)
		}
	}

	switch ctrl.Submit(r.Context()) {
	case entry.OutcomeProceeded:
		http.Redirect(w, r, "/waiting", http.StatusSeeOther)
	case entry.OutcomeFailed:
		renderStatus(w, r, http.StatusUnprocessableEntity, pages.EntryPage(h.entryView(ctrl.State())))
	default:
		render(w, r, pages.EntryPage(h.entryView(ctrl.State())))
	}
}

func (h *EntryHandler) entryView(st entry.State) viewmodel.EntryPage {
	avatars := avatar.All()
	options := make([]viewmodel.AvatarOption, 0, len(avatars))
	for _, a := range avatars {
		options = append(options, viewmodel.AvatarOption{
			ID:       a.ID,
			Glyph:    a.Glyph,
			Name:     a.Name,
			Selected: a.ID == st.AvatarID,
		})
	}
	return viewmodel.EntryPage{
		Title:        pageTitle,
		ShowForm:     st.Mode == entry.ModeForm,
		IsJoin:       st.Intent == entry.IntentJoin,
		JoinCode:     st.JoinCode,
		DisplayName:  st.DisplayName,
		Avatars:      options,
		ErrorMessage: st.ErrorMessage,
		SplashMs:     h.splash.Milliseconds(),
		MinLength:    entry.MinDisplayNameLength,
		MaxLength:    entry.MaxDisplayNameLength,
	}
}

func (h *EntryHandler) waitingPage(w http.ResponseWriter, r *http.Request) {
	store := newCookieStore(w, r, h.issuer)
	sess, ok, err := store.Load(r.Context())
	if err != nil || !ok {
		if err != nil {
			log.Printf("waiting page session rejected err=%v", err)
			_ = store.Clear(r.Context())
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	g, found := h.games.GetGame(sess.JoinCode)
	if !found || !g.HasPlayer(sess.PlayerID) {
		_ = store.Clear(r.Context())
		renderStatus(w, r, http.StatusGone, pages.MessagePage("Game over", "That game is no longer running."))
		return
	}

	snapshot := g.Snapshot()
	players := make([]viewmodel.RosterEntry, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		players = append(players, viewmodel.RosterEntry{
			Name:   p.Name,
			Glyph:  avatar.Glyph(p.AvatarID),
			IsHost: p.IsHost,
			IsSelf: p.ID == sess.PlayerID,
		})
	}
	render(w, r, pages.WaitingPage(viewmodel.WaitingPage{
		Title:       pageTitle,
		JoinCode:    snapshot.Code,
		ShareURL:    shareURL(r, h.baseURL, snapshot.Code),
		QRPath:      gateway.GamePath(snapshot.Code, "qr"),
		SocketPath:  gateway.GamePath(snapshot.Code, "ws"),
		Token:       sess.Token,
		DisplayName: sess.DisplayName,
		Glyph:       avatar.Glyph(sess.AvatarID),
		IsHost:      g.IsHost(sess.PlayerID),
		Status:      snapshot.Status,
		Players:     players,
		MaxPlayers:  snapshot.MaxPlayers,
	}))
}

func (h *EntryHandler) logout(w http.ResponseWriter, r *http.Request) {
	store := newCookieStore(w, r, h.issuer)
	if sess, ok, err := store.Load(r.Context()); err == nil && ok {
		if err := h.games.Leave(sess.JoinCode, sess.PlayerID); err != nil {
			log.Printf("logout leave game code=%s player=%s err=%v", sess.JoinCode, sess.PlayerID, err)
		}
	}
	_ = store.Clear(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
