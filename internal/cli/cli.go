// Package cli runs the entry flow in a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"simonseq/internal/avatar"
	"simonseq/internal/config"
	"simonseq/internal/entry"
	"simonseq/internal/session"
)

// ErrInputClosed is returned when the input ends before a session is acquired.
var ErrInputClosed = errors.New("input closed before entry finished")

// Options configures a terminal entry run.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Gateway  entry.Gateway
	Sessions session.Store
	JoinCode string
	Splash   time.Duration
	// ServerURL is used for share links and the roster socket.
	ServerURL string
	Wait      bool
	AfterFunc entry.AfterFunc
	Verbose   config.Verbose
}

type runner struct {
	opts  Options
	ctrl  *entry.Controller
	lines <-chan string
	// pending holds a line read on the landing screen after the splash had
	// already advanced; the form reads it first.
	pending *string
	out     io.Writer
}

// Run drives one entry flow to completion and returns the stored session.
// Cancelling ctx tears the flow down; a result still in flight is discarded.
func Run(ctx context.Context, opts Options) (session.Session, error) {
	ctrl := entry.New(entry.Options{
		JoinCode:  opts.JoinCode,
		Gateway:   opts.Gateway,
		Sessions:  opts.Sessions,
		AfterFunc: opts.AfterFunc,
	})
	defer ctrl.Close()

	done := make(chan struct{})
	defer close(done)
	r := &runner{opts: opts, ctrl: ctrl, lines: readLines(opts.In, done), out: opts.Out}
	if err := r.landing(ctx); err != nil {
		return session.Session{}, err
	}
	if err := r.form(ctx); err != nil {
		return session.Session{}, err
	}

	sess, ok, err := opts.Sessions.Load(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("load stored session: %w", err)
	}
	if !ok {
		return session.Session{}, errors.New("session missing after entry")
	}
	PrintHandoff(r.out, opts.ServerURL, sess)
	if opts.Wait {
		if err := WatchRoster(ctx, r.out, opts.ServerURL, sess); err != nil && !errors.Is(err, context.Canceled) {
			return sess, err
		}
	}
	return sess, nil
}

// readLines feeds input lines until in ends or done is closed.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case ch <- strings.TrimRight(scanner.Text(), "\r"):
			case <-done:
				return
			}
		}
	}()
	return ch
}

func (r *runner) landing(ctx context.Context) error {
	if r.ctrl.State().Mode != entry.ModeLanding {
		return nil
	}
	fmt.Fprintln(r.out, "*** Simon's Sequence ***")
	fmt.Fprintln(r.out, "Press Enter to start")
	r.ctrl.StartSplash(r.opts.Splash)

	lines := r.lines
	for {
		select {
		case <-r.ctrl.Advanced():
			return nil
		default:
		}
		select {
		case <-r.ctrl.Advanced():
			return nil
		case line, ok := <-lines:
			if !ok {
				// Nothing left to read; let the splash run out.
				lines = nil
				continue
			}
			if !r.ctrl.AdvanceFromLanding() {
				// The splash won the race; the line belongs to the form.
				r.pending = &line
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *runner) form(ctx context.Context) error {
	st := r.ctrl.State()
	if st.Intent == entry.IntentJoin {
		fmt.Fprintf(r.out, "\nJoin Game (code %s)\n", st.JoinCode)
	} else {
		fmt.Fprintln(r.out, "\nCreate Game")
	}

	for {
		if err := r.promptName(ctx); err != nil {
			return err
		}
		if err := r.promptAvatar(ctx); err != nil {
			return err
		}

		fmt.Fprintln(r.out, "Loading...")
		switch out, err := r.submit(ctx); {
		case err != nil:
			return err
		case out == entry.OutcomeProceeded:
			return nil
		case out == entry.OutcomeFailed:
			fmt.Fprintf(r.out, "Error: %s\n", r.ctrl.State().ErrorMessage)
		}
	}
}

func (r *runner) promptName(ctx context.Context) error {
	for {
		current := r.ctrl.State().DisplayName
		if entry.ValidDisplayName(current) {
			fmt.Fprintf(r.out, "Your name [%s]: ", current)
		} else {
			fmt.Fprintf(r.out, "Your name (%d-%d characters): ", entry.MinDisplayNameLength, entry.MaxDisplayNameLength)
		}
		line, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		if line != "" {
			r.ctrl.SetDisplayName(entry.ClampDisplayName(line))
		}
		if r.ctrl.State().CanSubmit() {
			return nil
		}
	}
}

func (r *runner) promptAvatar(ctx context.Context) error {
	for _, a := range avatar.All() {
		fmt.Fprintf(r.out, "  %2s) %s %s\n", a.ID, a.Glyph, a.Name)
	}
	for {
		fmt.Fprintf(r.out, "Avatar [%s]: ", r.ctrl.State().AvatarID)
		line, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if err := r.ctrl.SetAvatar(line); err == nil {
			return nil
		}
		fmt.Fprintf(r.out, "Pick a number from 1 to %d\n", len(avatar.All()))
	}
}

// submit runs Submit off the input loop so an interrupt can tear the
// controller down while the gateway call is outstanding.
func (r *runner) submit(ctx context.Context) (entry.Outcome, error) {
	done := make(chan entry.Outcome, 1)
	go func() { done <- r.ctrl.Submit(ctx) }()
	select {
	case out := <-done:
		r.opts.Verbose.Logf("entry submit outcome=%s", out)
		return out, nil
	case <-ctx.Done():
		r.ctrl.Close()
		out := <-done
		r.opts.Verbose.Logf("entry submit interrupted outcome=%s", out)
		return out, ctx.Err()
	}
}

func (r *runner) readLine(ctx context.Context) (string, error) {
	if r.pending != nil {
		line := *r.pending
		r.pending = nil
		return line, nil
	}
	select {
	case line, ok := <-r.lines:
		if !ok {
			fmt.Fprintln(r.out)
			return "", ErrInputClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ShareURL is the link other players open to join sess's game.
func ShareURL(serverURL, code string) string {
	return strings.TrimRight(serverURL, "/") + "/?join=" + code
}

// PrintHandoff shows where the player landed. Hosts also get a QR code of
// the share link.
func PrintHandoff(out io.Writer, serverURL string, sess session.Session) {
	fmt.Fprintf(out, "\nYou're in, %s %s!\n", avatar.Glyph(sess.AvatarID), sess.DisplayName)
	fmt.Fprintf(out, "Game code: %s\n", sess.JoinCode)
	if serverURL == "" {
		return
	}
	link := ShareURL(serverURL, sess.JoinCode)
	fmt.Fprintf(out, "Share: %s\n", link)
	if !sess.IsHost {
		return
	}
	qr, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return
	}
	fmt.Fprint(out, qr.ToSmallString(false))
}

// PrintSession describes a stored session for the session subcommand.
func PrintSession(out io.Writer, sess session.Session, ok bool) {
	if !ok {
		fmt.Fprintln(out, "No stored session.")
		return
	}
	role := "player"
	if sess.IsHost {
		role = "host"
	}
	fmt.Fprintf(out, "Game:    %s\n", sess.JoinCode)
	fmt.Fprintf(out, "Player:  %s %s (%s)\n", avatar.Glyph(sess.AvatarID), sess.DisplayName, role)
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires: %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
	}
}
