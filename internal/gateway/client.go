package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simonseq/internal/session"
)

const maxResponseBytes = 64 << 10

// Client calls a remote authority over its JSON API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the authority at baseURL. A nil httpClient
// uses one with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https: %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url has no host: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: u, http: httpClient}, nil
}

// BaseURL returns the authority's base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) CreateSession(ctx context.Context, displayName, avatarID string) (session.Session, error) {
	return c.post(ctx, PathCreateSession, EntryRequest{
		DisplayName: displayName,
		AvatarID:    avatarID,
	})
}

func (c *Client) JoinGame(ctx context.Context, displayName, avatarID, code string) (session.Session, error) {
	return c.post(ctx, PathJoinGame, EntryRequest{
		DisplayName: displayName,
		AvatarID:    avatarID,
		Code:        code,
	})
}

// Leave gives up the seat held by sess.
func (c *Client) Leave(ctx context.Context, sess session.Session) error {
	endpoint := c.base.JoinPath(GamePath(sess.JoinCode, "leave"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return decodeError(resp.StatusCode, data)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body EntryRequest) (session.Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return session.Session{}, &Error{Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
	}
	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return session.Session{}, &Error{Kind: KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return session.Session{}, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return session.Session{}, &Error{Kind: KindNetwork, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.Session{}, decodeError(resp.StatusCode, data)
	}

	var out SessionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return session.Session{}, &Error{Kind: KindServer, Err: fmt.Errorf("decode session: %w", err)}
	}
	if !out.Session.Valid() {
		return session.Session{}, &Error{Kind: KindServer, Err: errors.New("response carried no session token")}
	}
	return out.Session, nil
}

func decodeError(status int, data []byte) *Error {
	cause := fmt.Errorf("authority answered %d %s", status, http.StatusText(status))
	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return &Error{Kind: kindForStatus(status), Err: cause}
	}
	kind := body.Error.Kind
	if !validKind(kind) {
		kind = kindForStatus(status)
	}
	return &Error{Kind: kind, Message: strings.TrimSpace(body.Error.Message), Err: cause}
}
