package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued credential stays valid.
const DefaultTTL = 12 * time.Hour

const tokenIssuer = "simonseq"

var (
	ErrTokenRequired = errors.New("session token is required")
	ErrTokenInvalid  = errors.New("session token is invalid")
	ErrTokenExpired  = errors.New("session token has expired")
)

// Identity is what the authority knows about a player when it issues a token.
type Identity struct {
	PlayerID    string
	GameID      string
	JoinCode    string
	DisplayName string
	AvatarID    string
	IsHost      bool
}

type claims struct {
	jwt.RegisteredClaims
	GameID      string `json:"gid"`
	JoinCode    string `json:"code"`
	DisplayName string `json:"name"`
	AvatarID    string `json:"avatar"`
	IsHost      bool   `json:"host,omitempty"`
}

// Issuer signs and verifies session tokens with a shared HMAC key.
type Issuer struct {
	key []byte
	ttl time.Duration
	Now func() time.Time
}

// NewIssuer returns an issuer for key. A zero ttl uses DefaultTTL.
func NewIssuer(key []byte, ttl time.Duration) (*Issuer, error) {
	if len(key) < 16 {
		return nil, fmt.Errorf("token key must be at least 16 bytes, got %d", len(key))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, Now: time.Now}, nil
}

// Issue signs a credential for id and returns the full session.
func (i *Issuer) Issue(id Identity) (Session, error) {
	now := i.Now().UTC()
	expires := now.Add(i.ttl)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.PlayerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		GameID:      id.GameID,
		JoinCode:    id.JoinCode,
		DisplayName: id.DisplayName,
		AvatarID:    id.AvatarID,
		IsHost:      id.IsHost,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return Session{
		Token:       token,
		PlayerID:    id.PlayerID,
		GameID:      id.GameID,
		JoinCode:    id.JoinCode,
		DisplayName: id.DisplayName,
		AvatarID:    id.AvatarID,
		IsHost:      id.IsHost,
		ExpiresAt:   expires.Truncate(time.Second),
	}, nil
}

// Parse verifies token and rebuilds the session it encodes.
func (i *Issuer) Parse(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrTokenRequired
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrTokenExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.Subject == "" || c.GameID == "" {
		return Session{}, ErrTokenInvalid
	}
	var expires time.Time
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.Time.UTC()
	}
	return Session{
		Token:       token,
		PlayerID:    c.Subject,
		GameID:      c.GameID,
		JoinCode:    c.JoinCode,
		DisplayName: c.DisplayName,
		AvatarID:    c.AvatarID,
		IsHost:      c.IsHost,
		ExpiresAt:   expires,
	}, nil
}
