package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS current_session (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	token        TEXT    NOT NULL,
	player_id    TEXT    NOT NULL,
	game_id      TEXT    NOT NULL,
	join_code    TEXT    NOT NULL,
	display_name TEXT    NOT NULL,
	avatar_id    TEXT    NOT NULL,
	is_host      INTEGER NOT NULL,
	expires_at   INTEGER NOT NULL,
	saved_at     INTEGER NOT NULL
)`

// SQLiteStore persists the current session in a single-row SQLite table so
// it survives restarts of the client.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session store path is required")
	}
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", clean+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token, player_id, game_id, join_code,
		display_name, avatar_id, is_host, expires_at FROM current_session WHERE id = 1`)
	var (
		out     Session
		isHost  int
		expires int64
	)
	err := row.Scan(&out.Token, &out.PlayerID, &out.GameID, &out.JoinCode,
		&out.DisplayName, &out.AvatarID, &isHost, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	out.IsHost = isHost != 0
	if expires != 0 {
		out.ExpiresAt = time.UnixMilli(expires).UTC()
	}
	return out, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return ErrEmptySession
	}
	isHost := 0
	if sess.IsHost {
		isHost = 1
	}
	var expires int64
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.UTC().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO current_session
		(id, token, player_id, game_id, join_code, display_name, avatar_id, is_host, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			player_id = excluded.player_id,
			game_id = excluded.game_id,
			join_code = excluded.join_code,
			display_name = excluded.display_name,
			avatar_id = excluded.avatar_id,
			is_host = excluded.is_host,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		sess.Token, sess.PlayerID, sess.GameID, sess.JoinCode,
		sess.DisplayName, sess.AvatarID, isHost, expires, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM current_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
