package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestMemoryStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Load(ctx); ok || err != nil {
		t.Fatalf("empty store Load ok=%v err=%v, want false nil", ok, err)
	}
	want := Session{Token: "tok", PlayerID: "p1", GameID: "g1", JoinCode: "AB12"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load ok=%v err=%v", ok, err)
	}
	if !sameSession(got, want) {
		t.Errorf("Load %+v, want %+v", got, want)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Error("Load after Clear should report no session")
	}
}

func TestMemoryStore_RejectsEmptySession(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Save(context.Background(), Session{PlayerID: "p1"}); !errors.Is(err, ErrEmptySession) {
		t.Errorf("Save err %v, want ErrEmptySession", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Load(ctx); ok || err != nil {
		t.Fatalf("empty Load ok=%v err=%v", ok, err)
	}

	first := Session{
		Token:       "tok-1",
		PlayerID:    "p1",
		GameID:      "g1",
		JoinCode:    "AB12",
		DisplayName: "Alice",
		AvatarID:    "3",
		IsHost:      true,
		ExpiresAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := first
	second.Token = "tok-2"
	second.IsHost = false
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save replace: %v", err)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load ok=%v err=%v", ok, err)
	}
	if !sameSession(got, second) {
		t.Errorf("Load %+v, want %+v", got, second)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Error("Load after Clear should report no session")
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Save(ctx, Session{Token: "tok", PlayerID: "p", GameID: "g"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load ok=%v err=%v", ok, err)
	}
	if got.Token != "tok" {
		t.Errorf("Token %q, want tok", got.Token)
	}
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestIssuer_IssueParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(testKey, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	iss.Now = func() time.Time { return now }

	issued, err := iss.Issue(Identity{
		PlayerID:    "p1",
		GameID:      "g1",
		JoinCode:    "AB12",
		DisplayName: "Alice",
		AvatarID:    "2",
		IsHost:      true,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !issued.Valid() {
		t.Fatal("issued session has no token")
	}
	if !issued.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt %v, want %v", issued.ExpiresAt, now.Add(time.Hour))
	}

	parsed, err := iss.Parse(issued.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !sameSession(parsed, issued) {
		t.Errorf("Parse %+v, want %+v", parsed, issued)
	}
}

func TestIssuer_ParseRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, _ := NewIssuer(testKey, time.Minute)
	iss.Now = func() time.Time { return now }
	issued, err := iss.Issue(Identity{PlayerID: "p1", GameID: "g1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := iss.Parse(""); !errors.Is(err, ErrTokenRequired) {
		t.Errorf("empty token err %v, want ErrTokenRequired", err)
	}

	other, _ := NewIssuer([]byte(strings.Repeat("x", 32)), time.Minute)
	other.Now = iss.Now
	if _, err := other.Parse(issued.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("foreign key err %v, want ErrTokenInvalid", err)
	}

	iss.Now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := iss.Parse(issued.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token err %v, want ErrTokenExpired", err)
	}
}

func TestNewIssuer_ShortKey(t *testing.T) {
	if _, err := NewIssuer([]byte("short"), 0); err == nil {
		t.Error("expected error for short key")
	}
}

func sameSession(a, b Session) bool {
	if !a.ExpiresAt.Equal(b.ExpiresAt) {
		return false
	}
	a.ExpiresAt, b.ExpiresAt = time.Time{}, time.Time{}
	return a == b
}
