package gateway

import (
	"net/url"

	"simonseq/internal/session"
)

// Paths served by the authority API.
const (
	PathCreateSession = "/api/sessions"
	PathJoinGame      = "/api/games/join"
)

// GamePath returns the path of a per-game action such as "leave" or "ws".
func GamePath(code, action string) string {
	return "/api/games/" + url.PathEscape(code) + "/" + action
}

// EntryRequest is the body of both entry calls. Code is only sent when joining.
type EntryRequest struct {
	DisplayName string `json:"displayName"`
	AvatarID    string `json:"avatarId"`
	Code        string `json:"code,omitempty"`
}

// SessionResponse wraps an issued session.
type SessionResponse struct {
	Session session.Session `json:"session"`
}

// ErrorBody is the payload of a failed call.
type ErrorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
