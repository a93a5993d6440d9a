package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"simonseq/internal/avatar"
	"simonseq/internal/game"
	"simonseq/internal/gateway"
	"simonseq/internal/session"
)

// RosterURL turns the server URL into the websocket address of sess's roster.
func RosterURL(serverURL string, sess session.Session) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("server url must be http or https: %q", serverURL)
	}
	u = u.JoinPath(gateway.GamePath(sess.JoinCode, "ws"))
	return u.String(), nil
}

// WatchRoster prints every roster snapshot until ctx ends or the game closes.
func WatchRoster(ctx context.Context, out io.Writer, serverURL string, sess session.Session) error {
	endpoint, err := RosterURL(serverURL, sess)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return fmt.Errorf("dial roster: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	fmt.Fprintln(out, "Waiting for players (Ctrl-C to stop)...")
	for {
		var snap game.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Fprintln(out, "The game has closed.")
				return nil
			}
			return fmt.Errorf("read roster: %w", err)
		}
		printRoster(out, snap)
		if snap.Status == game.StatusInProgress {
			fmt.Fprintln(out, "The game has started!")
			return nil
		}
	}
}

func printRoster(out io.Writer, snap game.Snapshot) {
	fmt.Fprintf(out, "Players %d/%d:\n", len(snap.Players), snap.MaxPlayers)
	for _, p := range snap.Players {
		host := ""
		if p.IsHost {
			host = " (host)"
		}
		fmt.Fprintf(out, "  %s %s%s\n", avatar.Glyph(p.AvatarID), p.Name, host)
	}
}
