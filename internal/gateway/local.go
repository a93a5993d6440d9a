package gateway

import (
	"context"
	"errors"
	"fmt"

	"simonseq/internal/game"
	"simonseq/internal/session"
)

// Local is the in-process authority: it admits players into the game store
// and signs their session credentials.
type Local struct {
	games  *game.Store
	issuer *session.Issuer
}

// NewLocal returns a gateway backed by games and issuer.
func NewLocal(games *game.Store, issuer *session.Issuer) *Local {
	return &Local{games: games, issuer: issuer}
}

func (l *Local) CreateSession(ctx context.Context, displayName, avatarID string) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, &Error{Kind: KindNetwork, Err: err}
	}
	g, host, err := l.games.CreateGame(displayName, avatarID)
	if err != nil {
		return session.Session{}, fromGameError(err)
	}
	return l.issue(g, host)
}

func (l *Local) JoinGame(ctx context.Context, displayName, avatarID, code string) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, &Error{Kind: KindNetwork, Err: err}
	}
	g, player, err := l.games.JoinGame(code, displayName, avatarID)
	if err != nil {
		return session.Session{}, fromGameError(err)
	}
	return l.issue(g, player)
}

func (l *Local) issue(g *game.Game, p *game.Player) (session.Session, error) {
	sess, err := l.issuer.Issue(session.Identity{
		PlayerID:    p.ID,
		GameID:      g.ID,
		JoinCode:    g.Code,
		DisplayName: p.Name,
		AvatarID:    p.AvatarID,
		IsHost:      g.IsHost(p.ID),
	})
	if err != nil {
		return session.Session{}, &Error{Kind: KindServer, Err: fmt.Errorf("issue session: %w", err)}
	}
	return sess, nil
}

// fromGameError translates authority rule violations into gateway kinds
// with player-facing messages.
func fromGameError(err error) *Error {
	switch {
	case errors.Is(err, game.ErrCodeNotFound):
		return &Error{Kind: KindCodeNotFound, Message: "Game not found. Check the code and try again.", Err: err}
	case errors.Is(err, game.ErrGameFull):
		return &Error{Kind: KindGameFull, Message: "Room is full", Err: err}
	case errors.Is(err, game.ErrGameInProgress):
		return &Error{Kind: KindGameInProgress, Message: "That game has already started", Err: err}
	case errors.Is(err, game.ErrInvalidName):
		return &Error{Kind: KindValidation, Message: "Name must be 3-12 characters", Err: err}
	case errors.Is(err, game.ErrNameTaken):
		return &Error{Kind: KindValidation, Message: "That name is already taken in this game", Err: err}
	case errors.Is(err, game.ErrInvalidAvatar):
		return &Error{Kind: KindValidation, Message: "Pick one of the listed avatars", Err: err}
	default:
		return &Error{Kind: KindServer, Err: err}
	}
}
