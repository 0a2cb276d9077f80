package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535

	// MaxMessageSize bounds a payload reassembled from fragments.
	MaxMessageSize = 1 << 20
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // ClientHello / ServerHello
	FramePatches   FrameType = 0x02 // Server → Client patches
	FrameControl   FrameType = 0x03 // Ping, Pong, Close
	FrameError     FrameType = 0x05 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (ft FrameType) valid() bool {
	switch ft {
	case FrameHandshake, FramePatches, FrameControl, FrameError:
		return true
	}
	return false
}

// FrameFlags are optional per-frame flags.
type FrameFlags uint8

// FlagMore marks a fragment whose payload continues in the next frame.
// The last fragment of a message has it cleared. Undefined bits must be
// zero on send.
const FlagMore FrameFlags = 0x01

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrMessageTooLarge  = errors.New("protocol: message exceeds limit")
	ErrFragmentMismatch = errors.New("protocol: fragment type mismatch")
)

// Frame is a protocol frame: a 4-byte header followed by the payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame with no flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the header and payload as one slice. Payloads longer
// than MaxPayloadSize are rejected.
func (f *Frame) Encode() ([]byte, error) {
	n := len(f.Payload)
	if n > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, FrameHeaderSize+n)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(n >> 8)
	buf[3] = byte(n)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame decodes one complete frame. Trailing bytes after the
// declared payload are ignored.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	if !ft.valid() {
		return nil, ErrInvalidFrameType
	}
	n := int(data[2])<<8 | int(data[3])
	if len(data) < FrameHeaderSize+n {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, n)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+n])
	return &Frame{Type: ft, Flags: FrameFlags(data[1]), Payload: payload}, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	n := int(header[2])<<8 | int(header[3])
	data := make([]byte, FrameHeaderSize+n)
	copy(data, header)
	if _, err := io.ReadFull(r, data[FrameHeaderSize:]); err != nil {
		return nil, err
	}
	return DecodeFrame(data)
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Fragment splits payload into frames of at most MaxPayloadSize bytes,
// setting FlagMore on all but the last. An empty payload yields one empty
// frame.
func Fragment(ft FrameType, payload []byte) ([]*Frame, error) {
	if len(payload) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	if len(payload) <= MaxPayloadSize {
		return []*Frame{NewFrame(ft, payload)}, nil
	}

	frames := make([]*Frame, 0, (len(payload)+MaxPayloadSize-1)/MaxPayloadSize)
	for len(payload) > MaxPayloadSize {
		frames = append(frames, &Frame{Type: ft, Flags: FlagMore, Payload: payload[:MaxPayloadSize]})
		payload = payload[MaxPayloadSize:]
	}
	return append(frames, NewFrame(ft, payload)), nil
}

// Assembler joins fragmented frames back into whole messages. The zero
// value is ready to use. It is not safe for concurrent use.
type Assembler struct {
	ft      FrameType
	pending []byte
	partial bool
}

// Add feeds one frame. It returns the complete frame once the last
// fragment arrives, or nil while more are expected. On error the partial
// message is discarded.
func (a *Assembler) Add(f *Frame) (*Frame, error) {
	if !a.partial {
		if f.Flags&FlagMore == 0 {
			return f, nil
		}
		a.ft = f.Type
		a.partial = true
		a.pending = a.pending[:0]
	} else if f.Type != a.ft {
		a.Reset()
		return nil, ErrFragmentMismatch
	}

	if len(a.pending)+len(f.Payload) > MaxMessageSize {
		a.Reset()
		return nil, ErrMessageTooLarge
	}
	a.pending = append(a.pending, f.Payload...)
	if f.Flags&FlagMore != 0 {
		return nil, nil
	}

	payload := make([]byte, len(a.pending))
	copy(payload, a.pending)
	a.Reset()
	return NewFrame(f.Type, payload), nil
}

// Reset discards any partial message.
func (a *Assembler) Reset() {
	a.pending = a.pending[:0]
	a.partial = false
}
