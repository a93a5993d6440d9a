package entry

import (
	"strings"
	"unicode/utf8"
)

const (
	MinDisplayNameLength = 3
	// MaxDisplayNameLength is a soft cap applied where input is read, not
	// an invariant of the controller.
	MaxDisplayNameLength = 12
)

// ValidDisplayName reports whether name passes the minimum-length gate.
func ValidDisplayName(name string) bool {
	return utf8.RuneCountInString(name) >= MinDisplayNameLength
}

// ClampDisplayName truncates raw input to MaxDisplayNameLength characters.
func ClampDisplayName(raw string) string {
	if utf8.RuneCountInString(raw) <= MaxDisplayNameLength {
		return raw
	}
	return string([]rune(raw)[:MaxDisplayNameLength])
}

// NormalizeJoinCode uppercases an incoming join code. Blank codes normalize
// to "" and mean create intent.
func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
