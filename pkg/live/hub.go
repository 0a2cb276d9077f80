package live

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/courtbook/toastpop/pkg/protocol"
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/gorilla/websocket"
)

// Hub accepts page connections and routes toasts to them.
type Hub struct {
	config  *Config
	logger  *slog.Logger
	metrics *Metrics

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the hub logger. Sessions derive their loggers from it.
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithMetrics sets the collectors the hub and its sessions record to.
func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// NewHub creates a hub. A nil config uses DefaultConfig.
func NewHub(config *Config, opts ...HubOption) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	h := &Hub{
		config:   config.Clone(),
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "live")
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: h.config.HandshakeTimeout,
		CheckOrigin:      h.config.CheckOrigin,
	}
	return h
}

// ServeHTTP upgrades the request and runs the handshake. On success the
// session is registered and started; the handler returns immediately.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(h.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.config.HandshakeTimeout))

	hello, status := h.readHello(conn)
	if status != protocol.HandshakeOK {
		h.rejectHandshake(conn, status)
		return
	}

	session := newSession(conn, hello.Elements, h.config, h.logger, h.metrics)
	if err := h.register(session); err != nil {
		h.logger.Warn("handshake rejected", "error", err)
		h.rejectHandshake(conn, protocol.HandshakeServerBusy)
		return
	}
	h.metrics.sessionOpened()

	payload := protocol.EncodeServerHello(protocol.NewServerHello(session.ID, uint64(time.Now().UnixMilli())))
	if _, err := session.writeFrame(protocol.FrameHandshake, payload); err != nil {
		h.logger.Error("server hello failed", "error", err)
		session.Close()
		return
	}

	h.metrics.handshake(protocol.HandshakeOK.String())
	session.logger.Info("session started",
		"remote_addr", r.RemoteAddr,
		"elements", len(hello.Elements),
		"can_present", session.CanPresent())

	session.Start()
}

// readHello reads the first frame and decodes it as a ClientHello.
func (h *Hub) readHello(conn *websocket.Conn) (*protocol.ClientHello, protocol.HandshakeStatus) {
	_, r, err := conn.NextReader()
	if err != nil {
		h.logger.Debug("handshake read failed", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}

	frame, err := protocol.ReadFrame(r)
	if err != nil {
		h.logger.Debug("handshake frame invalid", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}
	if frame.Type != protocol.FrameHandshake {
		h.logger.Debug("handshake frame type mismatch",
			"got", frame.Type,
			"expected", protocol.FrameHandshake)
		return nil, protocol.HandshakeInvalidFormat
	}

	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		h.logger.Debug("client hello invalid", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}
	if !hello.Version.Compatible() {
		h.logger.Warn("protocol version mismatch",
			"client_major", hello.Version.Major,
			"client_minor", hello.Version.Minor)
		return nil, protocol.HandshakeVersionMismatch
	}
	return hello, protocol.HandshakeOK
}

// rejectHandshake sends an error ServerHello and closes conn.
func (h *Hub) rejectHandshake(conn *websocket.Conn, status protocol.HandshakeStatus) {
	h.metrics.handshake(status.String())

	payload := protocol.EncodeServerHello(protocol.NewServerHelloError(status))
	conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	if _, err := writeFrames(conn, []*protocol.Frame{protocol.NewFrame(protocol.FrameHandshake, payload)}); err != nil {
		h.logger.Debug("handshake rejection not sent", "error", err)
	}
	conn.Close()
}

func (h *Hub) register(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrSessionClosed
	}
	if h.config.MaxSessions > 0 && len(h.sessions) >= h.config.MaxSessions {
		return ErrMaxSessionsReached
	}
	h.sessions[s.ID] = s
	s.onClose = h.remove
	return nil
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
}

// Get returns the session with the given id.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// IDs returns the ids of connected sessions in sorted order.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast presents req on every connected page and returns the number of
// pages that have a toast overlay and accepted the request. Pages without
// an overlay still receive the call, which they drop.
func (h *Hub) Broadcast(req toast.Request) int {
	reached := 0
	for _, s := range h.snapshot() {
		if err := s.Present(req); err != nil {
			s.logger.Debug("broadcast skipped", "error", err)
			continue
		}
		if s.CanPresent() {
			reached++
		}
	}
	return reached
}

// Present presents req on a single page.
func (h *Hub) Present(id string, req toast.Request) error {
	s, ok := h.Get(id)
	if !ok {
		return &SessionError{SessionID: id, Op: "present", Err: ErrSessionNotFound}
	}
	if err := s.Present(req); err != nil {
		return &SessionError{SessionID: id, Op: "present", Err: err}
	}
	return nil
}

// Close tells every page the server is shutting down and closes all
// sessions. New connections are rejected afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	sessions := h.snapshot()
	for _, s := range sessions {
		s.SendClose(protocol.CloseServerShutdown, "server shutting down")
		s.Close()
	}
	h.logger.Info("hub closed", "sessions", len(sessions))
}
