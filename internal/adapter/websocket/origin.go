package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
)

// NewCheckOrigin returns a CheckOrigin function for the session upgrader.
// It allows requests without an Origin header and the app's own origin
// (derived from appURL). When isDevelopment is true, localhost origins on any
// port are allowed as well, so the page can be served by a dev server.
func NewCheckOrigin(appURL string, isDevelopment bool) func(r *http.Request) bool {
	appOrigin := extractOrigin(appURL)

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
			return true
		case appOrigin != "" && origin == appOrigin:
			return true
		case origin == requestOrigin(r):
			return true
		case isDevelopment && isLocalhostOrigin(origin):
			return true
		}

		slog.Warn("WebSocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
		return false
	}
}

// requestOrigin is the origin the page was served from when no app URL is
// configured and the server is reached directly.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func extractOrigin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
