package gateway

import (
	"errors"
	"net/http"
)

// Kind classifies why the authority refused or failed a request.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindCodeNotFound   Kind = "code_not_found"
	KindGameFull       Kind = "game_full"
	KindGameInProgress Kind = "game_in_progress"
)

// Error is a failure returned by a gateway. Message is safe to show to the
// player and may be empty; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return string(e.Kind) + ": " + e.Message
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the player-facing text, if any.
func (e *Error) UserMessage() string {
	return e.Message
}

// Is lets errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// KindOf returns the kind of a gateway error, or "" for foreign errors.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// HTTPStatus maps a kind onto the status the authority API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindCodeNotFound:
		return http.StatusNotFound
	case KindGameFull, KindGameInProgress:
		return http.StatusConflict
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus is the client-side fallback when an error body has no kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusNotFound:
		return KindCodeNotFound
	case status == http.StatusConflict:
		return KindGameInProgress
	default:
		return KindServer
	}
}

func validKind(k Kind) bool {
	switch k {
	case KindValidation, KindNetwork, KindServer, KindCodeNotFound, KindGameFull, KindGameInProgress:
		return true
	}
	return false
}
