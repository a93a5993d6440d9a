package entry

import (
	"errors"
	"strings"
)

const (
	defaultJoinFailure   = "Failed to join game"
	defaultCreateFailure = "Failed to create game"
)

// userMessager is implemented by failures that carry player-facing text.
type userMessager interface {
	UserMessage() string
}

// failureMessage degrades any submission failure to one display string.
func failureMessage(err error, intent Intent) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return defaultFailure(intent)
}

func defaultFailure(intent Intent) string {
	if intent == IntentJoin {
		return defaultJoinFailure
	}
	return defaultCreateFailure
}
