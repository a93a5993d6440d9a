package game

import (
	"crypto/rand"
	"errors"
	"log"
	"strings"
	"time"

	"simonseq/internal/avatar"
	"simonseq/pkg/realtime"
)

const (
	DefaultMaxPlayers = 8
	DefaultLobbyTTL   = 60 * time.Minute

	codeLength   = 4
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Events published on a game's broadcaster.
const (
	EventRoster  = "roster"
	EventStarted = "started"
)

var (
	ErrCodeNotFound   = errors.New("game code not found")
	ErrGameFull       = errors.New("game is full")
	ErrGameInProgress = errors.New("game already in progress")
	ErrInvalidName    = errors.New("display name must be 3-12 characters")
	ErrInvalidAvatar  = errors.New("unknown avatar")
	ErrNameTaken      = errors.New("display name already taken")
	ErrNotHost        = errors.New("only the host can do that")
	ErrPlayerNotFound = errors.New("player not found")
)

// Options tunes a Store. Zero values fall back to the defaults.
type Options struct {
	MaxPlayers int
	LobbyTTL   time.Duration
}

// Store is the authority's registry of live games, keyed by join code.
type Store struct {
	r    *realtime.RoomStore[*Game]
	opts Options
}

// NewStore creates an in-memory game store.
func NewStore(opts Options) *Store {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}
	if opts.LobbyTTL <= 0 {
		opts.LobbyTTL = DefaultLobbyTTL
	}
	return &Store{r: realtime.NewRoomStore[*Game](), opts: opts}
}

// CreateGame opens a new lobby hosted by the named player.
func (s *Store) CreateGame(name, avatarID string) (*Game, *Player, error) {
	name, err := normalizeEntrant(name, avatarID)
	if err != nil {
		return nil, nil, err
	}
	var g *Game
	for {
		g = newGame(newCode(), s.opts.MaxPlayers)
		if _, created := s.r.Create(g.Code, g); created {
			break
		}
	}
	host, err := g.addPlayer(name, avatarID)
	if err != nil {
		s.r.Delete(g.Code)
		return nil, nil, err
	}
	s.ensureExpiryLoop(g.Code)
	log.Printf("game created game=%s code=%s host=%s", g.ID, g.Code, host.ID)
	return g, host, nil
}

// JoinGame adds a player to the lobby behind code.
func (s *Store) JoinGame(code, name, avatarID string) (*Game, *Player, error) {
	name, err := normalizeEntrant(name, avatarID)
	if err != nil {
		return nil, nil, err
	}
	g, ok := s.GetGame(code)
	if !ok {
		return nil, nil, ErrCodeNotFound
	}
	player, err := g.addPlayer(name, avatarID)
	if err != nil {
		return nil, nil, err
	}
	s.r.Wake(g.Code)
	s.r.Publish(g.Code, EventRoster)
	log.Printf("player joined game=%s code=%s player=%s", g.ID, g.Code, player.ID)
	return g, player, nil
}

// GetGame returns the game for code. Codes are case-insensitive.
func (s *Store) GetGame(code string) (*Game, bool) {
	room, ok := s.r.Get(NormalizeCode(code))
	if !ok {
		return nil, false
	}
	return room.State, true
}

// StartGame moves the lobby into play. Only the host may start it.
func (s *Store) StartGame(code, playerID string) error {
	g, ok := s.GetGame(code)
	if !ok {
		return ErrCodeNotFound
	}
	if err := g.start(playerID); err != nil {
		return err
	}
	s.r.Wake(g.Code)
	s.r.Publish(g.Code, EventStarted)
	log.Printf("game started game=%s code=%s", g.ID, g.Code)
	return nil
}

// Leave removes a player. A lobby left empty is closed.
func (s *Store) Leave(code, playerID string) error {
	g, ok := s.GetGame(code)
	if !ok {
		return ErrCodeNotFound
	}
	remaining, err := g.removePlayer(playerID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		s.r.Delete(g.Code)
		log.Printf("game closed game=%s code=%s reason=empty", g.ID, g.Code)
		return nil
	}
	s.r.Wake(g.Code)
	s.r.Publish(g.Code, EventRoster)
	return nil
}

// Broadcaster returns the event hub for a live game.
func (s *Store) Broadcaster(code string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(NormalizeCode(code))
}

// Len returns the number of live games.
func (s *Store) Len() int {
	return s.r.Len()
}

// ensureExpiryLoop closes the game once it has been idle for the lobby TTL.
func (s *Store) ensureExpiryLoop(code string) {
	getState := func() *Game {
		room, ok := s.r.Get(code)
		if !ok {
			return nil
		}
		return room.State
	}
	tick := func(state *Game, now time.Time) (time.Time, []string, bool) {
		if state == nil {
			return time.Time{}, nil, true
		}
		expires := state.LastActive().Add(s.opts.LobbyTTL)
		if !now.Before(expires) {
			s.r.Delete(code)
			log.Printf("game closed game=%s code=%s reason=idle", state.ID, code)
			return time.Time{}, nil, true
		}
		return expires, nil, false
	}
	s.r.RunLoop(code, getState, tick)
}

// NormalizeCode uppercases and trims a join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeEntrant(name, avatarID string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 3 || n > 12 {
		return "", ErrInvalidName
	}
	if !avatar.Valid(avatarID) {
		return "", ErrInvalidAvatar
	}
	return name, nil
}

func newCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, codeLength)
	for i := range out {
		out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(out)
}
