package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"simonseq/internal/config"
	"simonseq/internal/session"
)

type Config struct {
	bind        string
	port        int
	baseURL     string
	tokenSecret string
	tokenTTL    time.Duration
	maxPlayers  int
	lobbyTTL    time.Duration
	splash      time.Duration
	verbose     bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2: %d", c.maxPlayers)
	}
	if c.lobbyTTL <= 0 {
		return errors.New("lobby ttl must be positive")
	}
	if c.tokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.tokenSecret != "" && len(c.tokenSecret) < 16 {
		return errors.New("token secret must be at least 16 characters")
	}
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base url: %q", c.baseURL)
		}
		c.baseURL = strings.TrimRight(c.baseURL, "/")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simonseq-web",
		Short:   "Serves the Simon's Sequence entry flow and its authority API.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SIMONSEQ_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SIMONSEQ_PORT)")
	fs.StringVar(&cfg.baseURL, "base-url", "", "public url used in share links (env: SIMONSEQ_BASE_URL)")
	fs.StringVar(&cfg.tokenSecret, "token-secret", "", "hmac key for session tokens; random when empty (env: SIMONSEQ_TOKEN_SECRET)")
	fs.DurationVar(&cfg.tokenTTL, "token-ttl", session.DefaultTTL, "lifetime of issued session tokens (env: SIMONSEQ_TOKEN_TTL)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 8, "players allowed per game (env: SIMONSEQ_MAX_PLAYERS)")
	fs.DurationVar(&cfg.lobbyTTL, "lobby-ttl", 60*time.Minute, "time before idle lobbies are closed (env: SIMONSEQ_LOBBY_TTL)")
	fs.DurationVar(&cfg.splash, "splash", 3*time.Second, "how long the landing screen shows (env: SIMONSEQ_SPLASH)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SIMONSEQ_VERBOSE)")
	config.Bind(fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("simonseq v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
