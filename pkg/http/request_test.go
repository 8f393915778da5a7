package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/warden/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	cfg, err := pkghttp.NewIPConfig([]string{"10.0.0.0/8", " 127.0.0.1/32 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		expected   string
	}{
		{"direct client ignores headers", "203.0.113.10:54321", "1.2.3.4", "192.168.1.1", "203.0.113.10"},
		{"trusted proxy uses first forwarded ip", "10.1.2.3:443", "198.51.100.7, 10.1.2.3", "", "198.51.100.7"},
		{"trusted proxy skips junk entries", "10.1.2.3:443", "garbage, 198.51.100.8", "", "198.51.100.8"},
		{"trusted proxy falls back to real ip", "127.0.0.1:80", "", "198.51.100.9", "198.51.100.9"},
		{"trusted proxy with bad headers", "127.0.0.1:80", "nope", "also-nope", "127.0.0.1"},
		{"remote addr without port", "203.0.113.11", "", "", "203.0.113.11"},
		{"ipv6 remote", "[2001:db8::1]:8080", "1.2.3.4", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.expected, pkghttp.ExtractClientIP(req, cfg))
		})
	}
}

func TestExtractClientIP_NilConfig(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "10.0.0.1", pkghttp.ExtractClientIP(req, nil))
}

func TestNewIPConfig_InvalidCIDR(t *testing.T) {
	_, err := pkghttp.NewIPConfig([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}
