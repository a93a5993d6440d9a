package game

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	StatusLobby      = "lobby"
	StatusInProgress = "in_progress"
)

// Game is one lobby and the players admitted to it.
type Game struct {
	mu         sync.Mutex
	ID         string
	Code       string
	CreatedAt  time.Time
	Status     string
	HostID     string
	MaxPlayers int
	Players    map[string]*Player
	lastActive time.Time
}

// Player is a participant admitted by the authority.
type Player struct {
	ID       string
	Name     string
	AvatarID string
	JoinedAt time.Time
}

func newGame(code string, maxPlayers int) *Game {
	now := time.Now().UTC()
	return &Game{
		ID:         uuid.NewString(),
		Code:       code,
		CreatedAt:  now,
		Status:     StatusLobby,
		MaxPlayers: maxPlayers,
		Players:    make(map[string]*Player),
		lastActive: now,
	}
}

func (g *Game) addPlayer(name, avatarID string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusLobby {
		return nil, ErrGameInProgress
	}
	if len(g.Players) >= g.MaxPlayers {
		return nil, ErrGameFull
	}
	for _, p := range g.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}
	now := time.Now().UTC()
	player := &Player{
		ID:       uuid.NewString(),
		Name:     name,
		AvatarID: avatarID,
		JoinedAt: now,
	}
	g.Players[player.ID] = player
	if g.HostID == "" {
		g.HostID = player.ID
	}
	g.lastActive = now
	return player, nil
}

func (g *Game) removePlayer(playerID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.Players[playerID]; !ok {
		return len(g.Players), ErrPlayerNotFound
	}
	delete(g.Players, playerID)
	if g.HostID == playerID {
		g.HostID = g.earliestPlayerLocked()
	}
	g.lastActive = time.Now().UTC()
	return len(g.Players), nil
}

func (g *Game) start(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if playerID == "" || playerID != g.HostID {
		return ErrNotHost
	}
	if g.Status != StatusLobby {
		return ErrGameInProgress
	}
	g.Status = StatusInProgress
	g.lastActive = time.Now().UTC()
	return nil
}

func (g *Game) earliestPlayerLocked() string {
	var first *Player
	for _, p := range g.Players {
		if first == nil || p.JoinedAt.Before(first.JoinedAt) {
			first = p
		}
	}
	if first == nil {
		return ""
	}
	return first.ID
}

// IsHost reports whether playerID hosts the game.
func (g *Game) IsHost(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return playerID != "" && playerID == g.HostID
}

// HasPlayer reports whether playerID is still in the game.
func (g *Game) HasPlayer(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.Players[playerID]
	return ok
}

// LastActive returns the time of the last roster or status change.
func (g *Game) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// RosterEntry is a player as shown in the waiting room.
type RosterEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AvatarID string `json:"avatarId"`
	IsHost   bool   `json:"isHost"`
}

// Snapshot captures what the waiting room renders.
type Snapshot struct {
	ID         string        `json:"id"`
	Code       string        `json:"code"`
	Status     string        `json:"status"`
	MaxPlayers int           `json:"maxPlayers"`
	Players    []RosterEntry `json:"players"`
}

// Snapshot returns a consistent view of the game, players in join order.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	players := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].Name < players[j].Name
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	roster := make([]RosterEntry, 0, len(players))
	for _, p := range players {
		roster = append(roster, RosterEntry{
			ID:       p.ID,
			Name:     p.Name,
			AvatarID: p.AvatarID,
			IsHost:   p.ID == g.HostID,
		})
	}
	return Snapshot{
		ID:         g.ID,
		Code:       g.Code,
		Status:     g.Status,
		MaxPlayers: g.MaxPlayers,
		Players:    roster,
	}
}
