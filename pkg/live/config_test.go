package live

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 64, cfg.MaxDispatchQueue)
	assert.Zero(t, cfg.MaxSessions)
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.MaxSessions = 9
	assert.Zero(t, cfg.MaxSessions)

	var nilCfg *Config
	assert.Nil(t, nilCfg.Clone())
}

func TestAllowOrigins(t *testing.T) {
	check := AllowOrigins("https://app.example.com")

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://app.example.com", true},
		{"http://toast.local", true}, // same origin
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "http://toast.local/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(r), "origin %q", tt.origin)
	}
}
