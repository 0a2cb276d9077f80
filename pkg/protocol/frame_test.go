package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameEncodeHeader(t *testing.T) {
	f := NewFrame(FramePatches, []byte{0xAA, 0xBB, 0xCC})

	data, err := f.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC}, data)

	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, FramePatches, decoded.Type)
	assert.Equal(t, f.Payload, decoded.Payload)
}

func TestFrameEncodeTooLarge(t *testing.T) {
	_, err := NewFrame(FramePatches, make([]byte, MaxPayloadSize+1)).Encode()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame([]byte{0x02, 0x00})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeFrame([]byte{0x02, 0x00, 0x00, 0x05, 0x01})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeFrame([]byte{0x09, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrInvalidFrameType)
}

func TestReadWriteFrameStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, NewFrame(FrameControl, EncodeControl(NewPing(42)))))
	require.NoError(t, WriteFrame(&buf, NewFrame(FrameError, EncodeErrorMessage(NewError(ErrServerError, "boom")))))

	first, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, FrameControl, first.Type)

	second, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, FrameError, second.Type)

	_, err = ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameTypeString(t *testing.T) {
	assert.Equal(t, "Handshake", FrameHandshake.String())
	assert.Equal(t, "Patches", FramePatches.String())
	assert.Equal(t, "Unknown", FrameType(0x7F).String())
}

func TestFragmentSmallPayload(t *testing.T) {
	frames, err := Fragment(FramePatches, []byte{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Zero(t, frames[0].Flags)

	frames, err = Fragment(FramePatches, nil)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Empty(t, frames[0].Payload)
}

func TestFragmentAndAssemble(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5A}, 2*MaxPayloadSize+10)

	frames, err := Fragment(FramePatches, payload)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, FlagMore, frames[0].Flags)
	assert.Equal(t, FlagMore, frames[1].Flags)
	assert.Zero(t, frames[2].Flags)
	assert.Len(t, frames[2].Payload, 10)

	// Round trip through the stream codec as a peer would see it.
	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, WriteFrame(&buf, f))
	}

	var a Assembler
	var whole *Frame
	for i := range frames {
		f, err := ReadFrame(&buf)
		require.NoError(t, err)
		whole, err = a.Add(f)
		require.NoError(t, err)
		if i < len(frames)-1 {
			assert.Nil(t, whole)
		}
	}
	require.NotNil(t, whole)
	assert.Equal(t, FramePatches, whole.Type)
	assert.Zero(t, whole.Flags)
	assert.Equal(t, payload, whole.Payload)
}

func TestFragmentTooLarge(t *testing.T) {
	_, err := Fragment(FramePatches, make([]byte, MaxMessageSize+1))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestAssemblerPassesWholeFrames(t *testing.T) {
	var a Assembler
	f := NewFrame(FrameControl, EncodeControl(NewPing(1)))

	got, err := a.Add(f)
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestAssemblerTypeMismatch(t *testing.T) {
	var a Assembler
	_, err := a.Add(&Frame{Type: FramePatches, Flags: FlagMore, Payload: []byte{1}})
	require.NoError(t, err)

	_, err = a.Add(NewFrame(FrameError, []byte{2}))
	assert.ErrorIs(t, err, ErrFragmentMismatch)

	// The partial message was discarded.
	got, err := a.Add(NewFrame(FramePatches, []byte{3}))
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, got.Payload)
}

func TestAssemblerMessageTooLarge(t *testing.T) {
	var a Assembler
	chunk := make([]byte, MaxPayloadSize)

	var err error
	for i := 0; i <= MaxMessageSize/MaxPayloadSize; i++ {
		_, err = a.Add(&Frame{Type: FramePatches, Flags: FlagMore, Payload: chunk})
		if err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}
