package viewmodel

// AvatarOption is one selectable avatar on the entry form.
type AvatarOption struct {
	ID       string
	Glyph    string
	Name     string
	Selected bool
}

// EntryPage holds data for the landing screen and the entry form.
type EntryPage struct {
	Title        string
	ShowForm     bool
	IsJoin       bool
	JoinCode     string
	DisplayName  string
	Avatars      []AvatarOption
	ErrorMessage string
	// SplashMs is how long the landing screen waits before showing the form.
	SplashMs  int64
	MinLength int
	MaxLength int
}

// RosterEntry is one player in the waiting room.
type RosterEntry struct {
	Name   string
	Glyph  string
	IsHost bool
	IsSelf bool
}

// WaitingPage holds data for the post-entry hand-off screen.
type WaitingPage struct {
	Title       string
	JoinCode    string
	ShareURL    string
	QRPath      string
	SocketPath  string
	Token       string
	DisplayName string
	Glyph       string
	IsHost      bool
	Status      string
	Players     []RosterEntry
	MaxPlayers  int
}
