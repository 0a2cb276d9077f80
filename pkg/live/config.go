package live

import (
	"net/http"
	"time"
)

// Config holds settings shared by the hub and its sessions.
type Config struct {
	// ReadTimeout is the maximum time to wait for a message from the page.
	// Heartbeat pongs reset it. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write. Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout bounds the wait for the ClientHello.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between server pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the largest message accepted from a page.
	// Default: 4KB.
	MaxMessageSize int64

	// MaxDispatchQueue is the buffer size of a session's dispatch queue.
	// Default: 64.
	MaxDispatchQueue int

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int

	// CheckOrigin validates the upgrade request's origin.
	// Default: nil, which lets gorilla/websocket enforce same-origin.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    4 * 1024,
		MaxDispatchQueue:  64,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// AllowOrigins returns a CheckOrigin function accepting same-origin
// requests and requests whose Origin header is in origins.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
