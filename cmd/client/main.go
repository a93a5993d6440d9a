package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"simonseq/internal/cli"
	"simonseq/internal/config"
	"simonseq/internal/gateway"
	"simonseq/internal/session"
)

const releaseVersion = "0.1.0"

type Config struct {
	server    string
	join      string
	splash    time.Duration
	sessionDB string
	wait      bool
	verbose   bool
}

func (c *Config) validate() error {
	if c.server == "" {
		return errors.New("--server is required")
	}
	if c.sessionDB == "" {
		return errors.New("--session-db is required")
	}
	return nil
}

func main() {
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "simonseq-session.db"
	}
	return filepath.Join(dir, "simonseq", "session.db")
}

func openStore(cfg *Config) (*session.SQLiteStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return session.OpenSQLite(cfg.sessionDB)
}

func newCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simonseq",
		Short:   "Create or join a Simon's Sequence game from the terminal.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			client, err := gateway.NewClient(cfg.server, nil)
			if err != nil {
				return err
			}
			verbose := config.Verbose(cfg.verbose)
			verbose.Logf("entry server=%s join=%q sessionDB=%s", client.BaseURL(), cfg.join, cfg.sessionDB)
			_, err = cli.Run(cmd.Context(), cli.Options{
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
				Gateway:   client,
				Sessions:  store,
				JoinCode:  cfg.join,
				Splash:    cfg.splash,
				ServerURL: client.BaseURL(),
				Wait:      cfg.wait,
				Verbose:   verbose,
			})
			return err
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&cfg.server, "server", "s", "http://localhost:8080", "authority base url (env: SIMONSEQ_SERVER)")
	pf.StringVar(&cfg.sessionDB, "session-db", defaultSessionDB(), "path of the stored session database (env: SIMONSEQ_SESSION_DB)")
	pf.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SIMONSEQ_VERBOSE)")
	config.Bind(pf)

	fs := cmd.Flags()
	fs.StringVarP(&cfg.join, "join", "j", "", "join code; omit to create a new game (env: SIMONSEQ_JOIN)")
	fs.DurationVar(&cfg.splash, "splash", 3*time.Second, "how long the landing banner shows (env: SIMONSEQ_SPLASH)")
	fs.BoolVarP(&cfg.wait, "wait", "w", false, "stay connected and print roster updates (env: SIMONSEQ_WAIT)")
	config.Bind(fs)

	cmd.AddCommand(newSessionCmd(cfg), newLogoutCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("simonseq v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newSessionCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the stored session.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			sess, ok, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			cli.PrintSession(cmd.OutOrStdout(), sess, ok)
			return nil
		},
	}
}

func newLogoutCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Leave the current game and forget the stored session.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			sess, ok, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if ok {
				client, err := gateway.NewClient(cfg.server, nil)
				if err != nil {
					return err
				}
				if err := client.Leave(cmd.Context(), sess); err != nil {
					config.Verbose(cfg.verbose).Logf("leave game code=%s err=%v", sess.JoinCode, err)
				}
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
