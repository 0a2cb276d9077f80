package live

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/courtbook/toastpop/pkg/protocol"
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every binary message written to it.
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeConn) NextReader() (int, io.Reader, error) { return 0, nil, io.EOF }

func (c *fakeConn) NextWriter(int) (io.WriteCloser, error) {
	return &fakeWriter{conn: c}, nil
}

func (c *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error          { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error         { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

type fakeWriter struct {
	bytes.Buffer
	conn *fakeConn
}

func (w *fakeWriter) Close() error {
	w.conn.mu.Lock()
	w.conn.messages = append(w.conn.messages, bytes.Clone(w.Bytes()))
	w.conn.mu.Unlock()
	return nil
}

func newTestSession(t *testing.T, mutate func(*Config)) (*Session, *fakeConn) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	fc := &fakeConn{}
	s := newSession(fc, toast.IDs, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	t.Cleanup(s.Close)
	return s, fc
}

func TestSession_HideWaitsForRoomInFullQueue(t *testing.T) {
	s, _ := newTestSession(t, func(c *Config) { c.MaxDispatchQueue = 1 })

	require.NoError(t, s.Dispatch(func() {}))
	require.ErrorIs(t, s.Dispatch(func() {}), ErrDispatchQueueFull)

	hidden := make(chan struct{})
	s.scheduleHide(time.Millisecond, func() { close(hidden) })

	// The timer fires while the queue is still full.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-hidden:
		t.Fatal("hide ran before the event loop started")
	default:
	}

	go s.EventLoop()

	select {
	case <-hidden:
	case <-time.After(2 * time.Second):
		t.Fatal("hide was lost")
	}
}

func TestSession_WriteFrameFragmentsLongPayload(t *testing.T) {
	s, fc := newTestSession(t, nil)

	payload := bytes.Repeat([]byte{0x42}, 70000)
	n, err := s.writeFrame(protocol.FramePatches, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload)+2*protocol.FrameHeaderSize, n)

	msgs := fc.written()
	require.Len(t, msgs, 2)

	var a protocol.Assembler
	first, err := protocol.DecodeFrame(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.FlagMore, first.Flags)
	got, err := a.Add(first)
	require.NoError(t, err)
	assert.Nil(t, got)

	last, err := protocol.DecodeFrame(msgs[1])
	require.NoError(t, err)
	got, err = a.Add(last)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payload, got.Payload)
}

func TestSession_OversizedPatchesKeepSessionOpen(t *testing.T) {
	s, fc := newTestSession(t, nil)

	huge := strings.Repeat("x", protocol.MaxMessageSize)
	s.sendPatches([]protocol.Patch{protocol.NewSetTextPatch(toast.MessageID, huge)})

	assert.False(t, s.IsClosed())
	assert.Empty(t, fc.written())
	assert.Zero(t, s.Stats().Patches)

	s.sendPatches([]protocol.Patch{protocol.NewSetTextPatch(toast.MessageID, "ok")})
	assert.Len(t, fc.written(), 1)
	assert.Equal(t, uint64(1), s.Stats().Patches)
}
