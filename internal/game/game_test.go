package game

import (
	"errors"
	"testing"
)

func TestNewGame(t *testing.T) {
	g := newGame("AB12", 4)
	if g.ID == "" {
		t.Error("ID is empty")
	}
	if g.Code != "AB12" {
		t.Errorf("Code %q, want AB12", g.Code)
	}
	if g.Status != StatusLobby {
		t.Errorf("Status %q, want %q", g.Status, StatusLobby)
	}
	if g.MaxPlayers != 4 {
		t.Errorf("MaxPlayers %d, want 4", g.MaxPlayers)
	}
}

func TestGame_AddPlayer(t *testing.T) {
	g := newGame("AB12", 4)
	p1, err := g.addPlayer("alice", "1")
	if err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if p1.Name != "alice" {
		t.Errorf("Name %q, want alice", p1.Name)
	}
	if g.HostID != p1.ID {
		t.Errorf("HostID %q, want first player %q", g.HostID, p1.ID)
	}

	p2, err := g.addPlayer("bob", "2")
	if err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if p2.ID == p1.ID {
		t.Error("second player should have different ID")
	}
	if !g.IsHost(p1.ID) || g.IsHost(p2.ID) {
		t.Error("host should stay the first player")
	}
	if len(g.Players) != 2 {
		t.Errorf("len(Players) %d, want 2", len(g.Players))
	}
}

func TestGame_AddPlayerRejections(t *testing.T) {
	g := newGame("AB12", 2)
	if _, err := g.addPlayer("alice", "1"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if _, err := g.addPlayer("ALICE", "2"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate name err %v, want ErrNameTaken", err)
	}
	if _, err := g.addPlayer("bob", "2"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if _, err := g.addPlayer("carol", "3"); !errors.Is(err, ErrGameFull) {
		t.Errorf("full game err %v, want ErrGameFull", err)
	}
}

func TestGame_Start(t *testing.T) {
	g := newGame("AB12", 4)
	host, _ := g.addPlayer("alice", "1")
	guest, _ := g.addPlayer("bob", "2")

	if err := g.start(guest.ID); !errors.Is(err, ErrNotHost) {
		t.Errorf("guest start err %v, want ErrNotHost", err)
	}
	if err := g.start(host.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if g.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", g.Status, StatusInProgress)
	}
	if err := g.start(host.ID); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("second start err %v, want ErrGameInProgress", err)
	}
	if _, err := g.addPlayer("carol", "3"); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("late join err %v, want ErrGameInProgress", err)
	}
}

func TestGame_RemoveHostPromotesEarliest(t *testing.T) {
	g := newGame("AB12", 4)
	host, _ := g.addPlayer("alice", "1")
	second, _ := g.addPlayer("bob", "2")
	g.addPlayer("carol", "3")

	remaining, err := g.removePlayer(host.ID)
	if err != nil {
		t.Fatalf("removePlayer: %v", err)
	}
	if remaining != 2 {
		t.Errorf("remaining %d, want 2", remaining)
	}
	if g.HostID != second.ID {
		t.Errorf("HostID %q, want %q", g.HostID, second.ID)
	}
	if _, err := g.removePlayer(host.ID); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("second remove err %v, want ErrPlayerNotFound", err)
	}
}

func TestGame_SnapshotJoinOrder(t *testing.T) {
	g := newGame("AB12", 4)
	g.addPlayer("alice", "1")
	g.addPlayer("bob", "5")

	snap := g.Snapshot()
	if snap.Code != "AB12" || snap.Status != StatusLobby {
		t.Errorf("snapshot %+v", snap)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("len(Players) %d, want 2", len(snap.Players))
	}
	if snap.Players[0].Name != "alice" || !snap.Players[0].IsHost {
		t.Errorf("first entry %+v, want host alice", snap.Players[0])
	}
	if snap.Players[1].AvatarID != "5" || snap.Players[1].IsHost {
		t.Errorf("second entry %+v", snap.Players[1])
	}
}
