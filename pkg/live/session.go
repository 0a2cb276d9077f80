package live

import (
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/courtbook/toastpop/pkg/dom"
	"github.com/courtbook/toastpop/pkg/protocol"
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

// messageWriter opens one outgoing WebSocket message at a time.
type messageWriter interface {
	NextWriter(messageType int) (io.WriteCloser, error)
}

// conn is the subset of *websocket.Conn a session uses.
type conn interface {
	messageWriter
	NextReader() (int, io.Reader, error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is one connected page.
type Session struct {
	// ID is a ULID assigned at handshake.
	ID        string
	CreatedAt time.Time

	conn   conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	sendSeq atomic.Uint64

	surface   *dom.PatchSurface
	presenter *toast.Presenter
	batch     []protocol.Patch // Owned by the event loop

	dispatchCh chan func()
	done       chan struct{}

	config  *Config
	logger  *slog.Logger
	metrics *Metrics
	onClose func(*Session)

	patchCount atomic.Uint64
	bytesSent  atomic.Uint64
}

// newSessionID returns a new ULID string.
func newSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// newSession creates a session for conn. elements is the list of toast
// element ids the page reported; ids outside toast.IDs are ignored.
func newSession(c conn, elements []string, config *Config, logger *slog.Logger, metrics *Metrics) *Session {
	id := newSessionID()
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		conn:       c,
		dispatchCh: make(chan func(), config.MaxDispatchQueue),
		done:       make(chan struct{}),
		config:     config,
		logger:     logger.With("session_id", id),
		metrics:    metrics,
	}

	known := slices.DeleteFunc(slices.Clone(elements), func(e string) bool {
		return !slices.Contains(toast.IDs, e)
	})
	s.surface = dom.NewPatchSurface(known, s.queuePatch)
	s.presenter = toast.NewPresenter(s.surface,
		toast.WithScheduler(toast.SchedulerFunc(s.scheduleHide)),
		toast.WithObserver(metrics),
		toast.WithLogger(s.logger),
	)
	return s
}

// Start launches the session's goroutines. Call it after the handshake.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// Present queues req for presentation on this page.
func (s *Session) Present(req toast.Request) error {
	return s.Dispatch(func() {
		s.presenter.Present(req)
	})
}

// CanPresent reports whether the page reported a toast overlay.
func (s *Session) CanPresent() bool {
	return s.surface.Has(toast.OverlayID)
}

// scheduleHide runs fn on the event loop after d. Unlike Dispatch it
// waits for room in a full queue, so a hide is only lost when the session
// ends.
func (s *Session) scheduleHide(d time.Duration, fn func()) toast.Task {
	return time.AfterFunc(d, func() {
		select {
		case s.dispatchCh <- fn:
		case <-s.done:
		}
	})
}

// Dispatch queues fn to run on the session's event loop. It is safe to
// call from any goroutine.
func (s *Session) Dispatch(fn func()) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.dispatchCh <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		s.logger.Warn("dispatch queue full, discarding callback")
		return ErrDispatchQueueFull
	}
}

// EventLoop runs dispatched functions until the session closes.
func (s *Session) EventLoop() {
	for {
		select {
		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)
		case <-s.done:
			return
		}
	}
}

// executeDispatch runs fn with panic recovery and flushes the patches it
// queued as a single frame.
func (s *Session) executeDispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
			s.batch = s.batch[:0]
		}
	}()

	fn()
	s.flush()
}

func (s *Session) queuePatch(p protocol.Patch) {
	s.batch = append(s.batch, p)
}

func (s *Session) flush() {
	if len(s.batch) == 0 {
		return
	}
	patches := s.batch
	s.batch = nil
	s.sendPatches(patches)
}

// sendPatches encodes patches as one message and writes it, fragmented
// when it exceeds a single frame. A batch too large to send at all is
// dropped and the session stays open.
func (s *Session) sendPatches(patches []protocol.Patch) {
	pf := &protocol.PatchesFrame{
		Seq:     s.sendSeq.Add(1),
		Patches: patches,
	}
	n, err := s.writeFrame(protocol.FramePatches, protocol.EncodePatches(pf))
	if errors.Is(err, ErrSessionClosed) {
		return
	}
	if errors.Is(err, protocol.ErrMessageTooLarge) {
		s.logger.Warn("patches dropped", "error", err, "seq", pf.Seq, "count", len(patches))
		s.metrics.patchesDropped()
		return
	}
	if err != nil {
		s.logger.Error("write error", "error", err, "seq", pf.Seq)
		s.Close()
		return
	}

	s.bytesSent.Add(uint64(n))
	s.patchCount.Add(uint64(len(patches)))
	s.metrics.framesSent(len(patches), n)

	s.logger.Debug("sent patches",
		"seq", pf.Seq,
		"count", len(patches),
		"bytes", n)
}

// writeFrame writes payload under the connection lock, fragmenting it as
// needed, and returns the number of bytes written. Fragments of one
// payload are never interleaved with other writes.
func (s *Session) writeFrame(ft protocol.FrameType, payload []byte) (int, error) {
	frames, err := protocol.Fragment(ft, payload)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return writeFrames(s.conn, frames)
}

// writeFrames writes each frame as its own binary WebSocket message.
func writeFrames(c messageWriter, frames []*protocol.Frame) (int, error) {
	n := 0
	for _, f := range frames {
		w, err := c.NextWriter(websocket.BinaryMessage)
		if err != nil {
			return n, err
		}
		if err := protocol.WriteFrame(w, f); err != nil {
			w.Close()
			return n, err
		}
		if err := w.Close(); err != nil {
			return n, err
		}
		n += protocol.FrameHeaderSize + len(f.Payload)
	}
	return n, nil
}

// ReadLoop reads control frames until the connection fails or closes.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, r, err := s.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.ReadFrame(r)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
			continue
		}

		switch frame.Type {
		case protocol.FrameControl:
			if s.handleControl(frame.Payload) {
				return
			}
		case protocol.FrameHandshake:
			s.sendError(protocol.NewError(protocol.ErrInvalidHello, "handshake already completed"))
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.sendError(protocol.NewError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame"))
		}
	}
}

// handleControl processes a control frame and reports whether the page
// asked to close.
func (s *Session) handleControl(payload []byte) bool {
	ct, data, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return false
	}

	switch ct {
	case protocol.ControlPing:
		if pp, ok := data.(*protocol.PingPong); ok {
			ct, pong := protocol.NewPong(pp.Timestamp)
			if _, err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(ct, pong)); err != nil {
				s.logger.Error("pong error", "error", err)
			}
		}
	case protocol.ControlPong:
		s.logger.Debug("received pong")
	case protocol.ControlClose:
		if cm, ok := data.(*protocol.CloseMessage); ok {
			s.logger.Info("page closing", "reason", cm.Reason, "message", cm.Message)
		}
		return true
	}
	return false
}

// WriteLoop sends heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ct, ping := protocol.NewPing(uint64(time.Now().UnixMilli()))
			if _, err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(ct, ping)); err != nil {
				if !errors.Is(err, ErrSessionClosed) {
					s.logger.Error("ping error", "error", err)
				}
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// sendError reports a protocol error to the page.
func (s *Session) sendError(em *protocol.ErrorMessage) {
	if _, err := s.writeFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)); err != nil {
		s.logger.Debug("error frame not sent", "error", err)
	}
}

// SendClose tells the page the session is ending. It does not close the
// session itself.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	ct, cm := protocol.NewClose(reason, message)
	if _, err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(ct, cm)); err != nil {
		s.logger.Debug("close message not sent", "error", err)
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed.Swap(true) {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()
	s.mu.Unlock()

	s.presenter.Stop()
	s.metrics.sessionClosed()
	if s.onClose != nil {
		s.onClose(s)
	}

	s.logger.Info("session closed",
		"patches", s.patchCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"age", time.Since(s.CreatedAt).Round(time.Millisecond))
}

// IsClosed reports whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// SessionStats is a snapshot of a session's counters.
type SessionStats struct {
	ID         string
	CreatedAt  time.Time
	Elements   int
	Patches    uint64
	BytesSent  uint64
	LastSeq    uint64
	CanPresent bool
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() SessionStats {
	n := 0
	for _, id := range toast.IDs {
		if s.surface.Has(id) {
			n++
		}
	}
	return SessionStats{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Elements:   n,
		Patches:    s.patchCount.Load(),
		BytesSent:  s.bytesSent.Load(),
		LastSeq:    s.sendSeq.Load(),
		CanPresent: s.CanPresent(),
	}
}
