package main

import (
	"context"
	"crypto/rand"
	"embed"
	"errors"
	"io/fs"
	"log"
	"mime"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"simonseq/internal/config"
	"simonseq/internal/game"
	"simonseq/internal/gateway"
	"simonseq/internal/handlers"
	"simonseq/internal/session"
)

const releaseVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func serve(ctx context.Context, cfg *Config) error {
	_ = mime.AddExtensionType(".css", "text/css")
	logf := config.Verbose(cfg.verbose).Logf

	key := []byte(cfg.tokenSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return err
		}
		log.Printf("no token secret configured; sessions will not survive a restart")
	}
	issuer, err := session.NewIssuer(key, cfg.tokenTTL)
	if err != nil {
		return err
	}
	store := game.NewStore(game.Options{MaxPlayers: cfg.maxPlayers, LobbyTTL: cfg.lobbyTTL})
	local := gateway.NewLocal(store, issuer)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

		handlers.NewEntryHandler(handlers.EntryOptions{
			Games:   store,
			Gateway: local,
			Issuer:  issuer,
			Splash:  cfg.splash,
			BaseURL: cfg.baseURL,
		}).RegisterRoutes(r)
		handlers.NewAPIHandler(store, local, issuer, cfg.baseURL).RegisterRoutes(r)
		handlers.RegisterHealth(r, store, releaseVersion)
	})
	handlers.NewStreamHandler(store, issuer).RegisterRoutes(r)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("listening on http://%s", server.Addr)
		logf("config maxPlayers=%d lobbyTTL=%s splash=%s baseURL=%q", cfg.maxPlayers, cfg.lobbyTTL, cfg.splash, cfg.baseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logf("shutting down games=%d", store.Len())
	return server.Shutdown(shutdownCtx)
}

//go:embed static/*
var embeddedStatic embed.FS
