package handlers

import (
	"net/http"
	"net/url"
	"strings"
)

// shareURL is the link a host hands out: the entry page with the join code.
func shareURL(r *http.Request, baseURL, code string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
		case "http", "https":
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?join=" + url.QueryEscape(code)
}

// bearerToken reads "Authorization: Bearer <token>", falling back to ?token=.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
