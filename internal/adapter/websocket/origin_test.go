package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckOrigin(t *testing.T) {
	appURL := "https://lingobridge.example.com/"

	tests := []struct {
		name          string
		origin        string
		host          string
		isDevelopment bool
		want          bool
	}{
		{"no origin header", "", "internal:3000", false, true},
		{"app origin", "https://lingobridge.example.com", "internal:3000", false, true},
		{"same host as request", "http://10.0.0.5:3000", "10.0.0.5:3000", false, true},

		{"foreign site", "https://evil.example.org", "internal:3000", false, false},
		{"app host on other port", "https://lingobridge.example.com:9090", "internal:3000", false, false},
		{"plain http app origin", "http://lingobridge.example.com", "internal:3000", false, false},
		{"subdomain", "https://cdn.lingobridge.example.com", "internal:3000", false, false},

		{"localhost in development", "http://localhost:5173", "internal:3000", true, true},
		{"loopback in development", "http://127.0.0.1:8080", "internal:3000", true, true},
		{"localhost in production", "http://localhost:5173", "internal:3000", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCheckOrigin(appURL, tt.isDevelopment)
			r := httptest.NewRequest(http.MethodGet, "/ws/session", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checker(r))
		})
	}
}

func TestNewCheckOrigin_WithoutAppURL(t *testing.T) {
	checker := NewCheckOrigin("", false)

	r := httptest.NewRequest(http.MethodGet, "/ws/session", nil)
	r.Host = "translate.local:3000"
	r.Header.Set("Origin", "http://translate.local:3000")
	assert.True(t, checker(r))

	r.Header.Set("Origin", "http://other.local:3000")
	assert.False(t, checker(r))
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://example.com/app/index.html", "https://example.com"},
		{"https://example.com:8443/path", "https://example.com:8443"},
		{"http://localhost:3000", "http://localhost:3000"},
		{"", ""},
		{"mailto:user@example.com", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractOrigin(tt.rawURL), tt.rawURL)
	}
}
