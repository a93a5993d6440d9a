package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"simonseq/internal/viewmodel"
)

func TestEntryPage_Form(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.EntryPage{
		Title:        "Join",
		ShowForm:     true,
		IsJoin:       true,
		JoinCode:     "AB12",
		DisplayName:  "<b>Bob</b>",
		Avatars:      []viewmodel.AvatarOption{{ID: "1", Glyph: "🦁", Name: "Lion", Selected: true}},
		ErrorMessage: "Room is full",
		MinLength:    3,
		MaxLength:    12,
	}
	if err := EntryPage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Join Game", "AB12", "Room is full", `maxlength="12"`, `value="1" checked`} {
		if !strings.Contains(out, want) {
			t.Errorf("entry form missing %q", want)
		}
	}
	if strings.Contains(out, "<b>Bob</b>") {
		t.Error("display name was not escaped")
	}
}

func TestEntryPage_Splash(t *testing.T) {
	var buf bytes.Buffer
	if err := EntryPage(viewmodel.EntryPage{Title: "Simon", SplashMs: 3000}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/?start=1"`) {
		t.Error("splash should link to the form")
	}
	if !strings.Contains(out, "3000") {
		t.Error("splash delay missing")
	}
	if strings.Contains(out, "<form") {
		t.Error("splash should not render the form")
	}
}

func TestWaitingPage(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.WaitingPage{
		Title:      "Waiting",
		JoinCode:   "AB12",
		ShareURL:   "http://example.test/?join=AB12",
		QRPath:     "/api/games/AB12/qr",
		SocketPath: "/api/games/AB12/ws",
		Token:      "tok",
		IsHost:     true,
		Status:     "lobby",
		MaxPlayers: 8,
		Players:    []viewmodel.RosterEntry{{Name: "Alice", Glyph: "🦁", IsHost: true, IsSelf: true}},
	}
	if err := WaitingPage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"AB12", "Alice", "/api/games/AB12/qr", "Start Game", "/logout"} {
		if !strings.Contains(out, want) {
			t.Errorf("waiting page missing %q", want)
		}
	}
}
