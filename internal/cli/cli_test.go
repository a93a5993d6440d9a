package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"simonseq/internal/entry"
	"simonseq/internal/game"
	"simonseq/internal/gateway"
	"simonseq/internal/session"
)

type fakeGateway struct {
	mu      sync.Mutex
	codes   []string
	names   []string
	avatars []string
	errs    []error
	block   bool
	started chan struct{}
}

func (g *fakeGateway) call(ctx context.Context, name, avatarID, code string) (session.Session, error) {
	g.mu.Lock()
	g.codes = append(g.codes, code)
	g.names = append(g.names, name)
	g.avatars = append(g.avatars, avatarID)
	var err error
	if len(g.errs) > 0 {
		err, g.errs = g.errs[0], g.errs[1:]
	}
	g.mu.Unlock()
	if g.block {
		close(g.started)
		<-ctx.Done()
		return session.Session{}, &gateway.Error{Kind: gateway.KindNetwork, Err: ctx.Err()}
	}
	if err != nil {
		return session.Session{}, err
	}
	if code == "" {
		code = "NEW1"
	}
	return session.Session{
		Token:       "tok-" + name,
		PlayerID:    "p-" + name,
		GameID:      "g1",
		JoinCode:    code,
		DisplayName: name,
		AvatarID:    avatarID,
		IsHost:      code == "NEW1",
	}, nil
}

func (g *fakeGateway) CreateSession(ctx context.Context, name, avatarID string) (session.Session, error) {
	return g.call(ctx, name, avatarID, "")
}

func (g *fakeGateway) JoinGame(ctx context.Context, name, avatarID, code string) (session.Session, error) {
	return g.call(ctx, name, avatarID, code)
}

// neverFires keeps the splash armed so only Enter advances.
func neverFires(time.Duration, func()) entry.Stopper {
	return stopper{}
}

type stopper struct{}

func (stopper) Stop() bool { return true }

func TestRun_JoinFlow(t *testing.T) {
	gw := &fakeGateway{}
	store := session.NewMemoryStore()
	var out bytes.Buffer

	sess, err := Run(context.Background(), Options{
		In:        strings.NewReader("Bob\n\n"),
		Out:       &out,
		Gateway:   gw,
		Sessions:  store,
		JoinCode:  "ab12",
		ServerURL: "http://example.test",
		AfterFunc: neverFires,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.JoinCode != "AB12" || sess.DisplayName != "Bob" {
		t.Errorf("session %+v", sess)
	}
	if len(gw.codes) != 1 || gw.codes[0] != "AB12" || gw.avatars[0] != "1" {
		t.Errorf("gateway codes=%v avatars=%v", gw.codes, gw.avatars)
	}
	if stored, ok, _ := store.Load(context.Background()); !ok || stored.Token != sess.Token {
		t.Error("session not stored")
	}
	text := out.String()
	if strings.Contains(text, "Press Enter to start") {
		t.Error("join links should skip the splash")
	}
	for _, want := range []string{"Join Game (code AB12)", "Game code: AB12", "Share: http://example.test/?join=AB12"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_CreateFlowSkipsSplashAndRepromptsShortName(t *testing.T) {
	gw := &fakeGateway{}
	var out bytes.Buffer

	sess, err := Run(context.Background(), Options{
		In:        strings.NewReader("\nAl\nAlice\n42\n3\n"),
		Out:       &out,
		Gateway:   gw,
		Sessions:  session.NewMemoryStore(),
		ServerURL: "http://example.test/",
		AfterFunc: neverFires,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sess.IsHost || sess.AvatarID != "3" {
		t.Errorf("session %+v", sess)
	}
	if len(gw.names) != 1 || gw.names[0] != "Alice" {
		t.Errorf("gateway names %v, want only Alice", gw.names)
	}
	text := out.String()
	if !strings.Contains(text, "Press Enter to start") || !strings.Contains(text, "Create Game") {
		t.Error("expected splash then create form")
	}
	if strings.Count(text, "Your name (3-12 characters)") != 2 {
		t.Error("short name should re-prompt without a message")
	}
	if !strings.Contains(text, "Pick a number from 1 to 10") {
		t.Error("bad avatar should be rejected")
	}
	if !strings.Contains(text, "█") && !strings.Contains(text, "▀") && !strings.Contains(text, "▄") {
		t.Error("hosts should get a QR code")
	}
}

func TestRun_EnterOnLandingKeepsNextLine(t *testing.T) {
	for i := 0; i < 50; i++ {
		gw := &fakeGateway{}
		sess, err := Run(context.Background(), Options{
			In:        strings.NewReader("\nAlice\n\n"),
			Out:       &bytes.Buffer{},
			Gateway:   gw,
			Sessions:  session.NewMemoryStore(),
			AfterFunc: neverFires,
		})
		if err != nil {
			t.Fatalf("run %d: Run err %v", i, err)
		}
		if sess.DisplayName != "Alice" {
			t.Fatalf("run %d: name %q, want Alice", i, sess.DisplayName)
		}
	}
}

// armedClock hands the splash callback to the test instead of scheduling it.
type armedClock struct {
	armed chan func()
}

func (c *armedClock) AfterFunc(_ time.Duration, f func()) entry.Stopper {
	c.armed <- f
	return stopper{}
}

func TestRun_LineAfterSplashGoesToForm(t *testing.T) {
	clock := &armedClock{armed: make(chan func(), 1)}
	pr, pw := io.Pipe()
	go func() {
		fire := <-clock.armed
		fire()
		_, _ = pw.Write([]byte("Alice\n\n"))
		_ = pw.Close()
	}()

	gw := &fakeGateway{}
	sess, err := Run(context.Background(), Options{
		In:        pr,
		Out:       &bytes.Buffer{},
		Gateway:   gw,
		Sessions:  session.NewMemoryStore(),
		AfterFunc: clock.AfterFunc,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.DisplayName != "Alice" || len(gw.names) != 1 {
		t.Errorf("session %+v calls %v, want one create for Alice", sess, gw.names)
	}
}

func TestRun_LongNameIsClamped(t *testing.T) {
	gw := &fakeGateway{}
	_, err := Run(context.Background(), Options{
		In:        strings.NewReader("ABCDEFGHIJKLMNOP\n\n"),
		Out:       &bytes.Buffer{},
		Gateway:   gw,
		Sessions:  session.NewMemoryStore(),
		JoinCode:  "AB12",
		AfterFunc: neverFires,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gw.names[0] != "ABCDEFGHIJKL" {
		t.Errorf("name %q, want clamped to 12", gw.names[0])
	}
}

func TestRun_FailureThenRetry(t *testing.T) {
	gw := &fakeGateway{errs: []error{&gateway.Error{Kind: gateway.KindGameFull, Message: "Room is full"}}}
	var out bytes.Buffer
	sess, err := Run(context.Background(), Options{
		In:        strings.NewReader("Bob\n\n\n\n"),
		Out:       &out,
		Gateway:   gw,
		Sessions:  session.NewMemoryStore(),
		JoinCode:  "AB12",
		AfterFunc: neverFires,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Error: Room is full") {
		t.Error("failure message not shown")
	}
	if !strings.Contains(out.String(), "Your name [Bob]") {
		t.Error("retry should keep the entered name")
	}
	if len(gw.names) != 2 || sess.DisplayName != "Bob" {
		t.Errorf("gateway calls %d session %+v", len(gw.names), sess)
	}
}

func TestRun_DefaultFailureMessage(t *testing.T) {
	gw := &fakeGateway{errs: []error{errors.New("connection refused")}}
	var out bytes.Buffer
	_, err := Run(context.Background(), Options{
		In:        strings.NewReader("\nAlice\n\n"),
		Out:       &out,
		Gateway:   gw,
		Sessions:  session.NewMemoryStore(),
		AfterFunc: neverFires,
	})
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("Run err %v, want ErrInputClosed after input ran out", err)
	}
	if !strings.Contains(out.String(), "Error: Failed to create game") {
		t.Error("default create failure not shown")
	}
}

func TestRun_InterruptDiscardsPendingResult(t *testing.T) {
	gw := &fakeGateway{block: true, started: make(chan struct{})}
	store := session.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-gw.started
		cancel()
	}()

	_, err := Run(ctx, Options{
		In:        strings.NewReader("Bob\n\n"),
		Out:       &bytes.Buffer{},
		Gateway:   gw,
		Sessions:  store,
		JoinCode:  "AB12",
		AfterFunc: neverFires,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err %v, want context.Canceled", err)
	}
	if _, ok, _ := store.Load(context.Background()); ok {
		t.Error("no session should be stored after an interrupt")
	}
}

func TestRosterURL(t *testing.T) {
	got, err := RosterURL("https://x.test/base/", session.Session{JoinCode: "AB12"})
	if err != nil {
		t.Fatalf("RosterURL: %v", err)
	}
	if got != "wss://x.test/base/api/games/AB12/ws" {
		t.Errorf("RosterURL = %q", got)
	}
	if _, err := RosterURL("ftp://x.test", session.Session{JoinCode: "AB12"}); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestWatchRoster(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(game.Snapshot{Code: "AB12", Status: game.StatusLobby, MaxPlayers: 8, Players: []game.RosterEntry{
			{Name: "Alice", AvatarID: "1", IsHost: true},
		}})
		_ = conn.WriteJSON(game.Snapshot{Code: "AB12", Status: game.StatusInProgress, MaxPlayers: 8, Players: []game.RosterEntry{
			{Name: "Alice", AvatarID: "1", IsHost: true},
			{Name: "Bob", AvatarID: "2"},
		}})
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := WatchRoster(context.Background(), &out, srv.URL, session.Session{Token: "tok", JoinCode: "AB12"})
	if err != nil {
		t.Fatalf("WatchRoster: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Players 1/8", "Alice (host)", "Players 2/8", "Bob", "The game has started!"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPrintSession(t *testing.T) {
	var out bytes.Buffer
	PrintSession(&out, session.Session{}, false)
	if !strings.Contains(out.String(), "No stored session") {
		t.Error("empty store message missing")
	}
	out.Reset()
	PrintSession(&out, session.Session{JoinCode: "AB12", DisplayName: "Alice", AvatarID: "1", IsHost: true}, true)
	if !strings.Contains(out.String(), "AB12") || !strings.Contains(out.String(), "host") {
		t.Errorf("session output %q", out.String())
	}
}

func TestReadLines_StopsWhenDone(t *testing.T) {
	const total = 100000
	done := make(chan struct{})
	lines := readLines(strings.NewReader(strings.Repeat("x\n", total)), done)
	if got := <-lines; got != "x" {
		t.Fatalf("first line %q", got)
	}
	close(done)

	received := 1
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				if received >= total {
					t.Errorf("reader delivered all %d lines after done", received)
				}
				return
			}
			received++
		case <-deadline:
			t.Fatal("reader did not stop after done")
		}
	}
}
