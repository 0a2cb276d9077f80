package protocol

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toastPatches() []Patch {
	return []Patch{
		NewSetTextPatch("toast-popup-title", "Saved"),
		NewSetTextPatch("toast-popup-message", "<b>not markup</b>"),
		NewSetAttrPatch("toast-popup-content", "class", "toast-popup-content"),
		NewAddClassPatch("toast-popup-content", "success"),
		NewSetStylePatch("toast-icon-success", "display", "block"),
		NewSetStylePatch("toast-icon-error", "display", "none"),
		NewAddClassPatch("toast-popup-overlay", "is-visible"),
	}
}

func TestPatchesFrameRoundTrip(t *testing.T) {
	pf := &PatchesFrame{Seq: 300, Patches: toastPatches()}

	decoded, err := DecodePatches(EncodePatches(pf))
	require.NoError(t, err)
	assert.Equal(t, pf, decoded)
}

func TestPatchesFrameEmpty(t *testing.T) {
	decoded, err := DecodePatches(EncodePatches(&PatchesFrame{Seq: 1}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), decoded.Seq)
	assert.Empty(t, decoded.Patches)
}

func TestRemoveClassPatchLayout(t *testing.T) {
	data := EncodePatches(&PatchesFrame{
		Seq:     1,
		Patches: []Patch{NewRemoveClassPatch("o", "is-visible")},
	})

	want := []byte{0x01, 0x01, byte(PatchRemoveClass), 0x01, 'o', 0x0A}
	want = append(want, "is-visible"...)
	assert.Equal(t, want, data)
}

func TestDecodePatchesTruncated(t *testing.T) {
	data := EncodePatches(&PatchesFrame{Seq: 9, Patches: toastPatches()})

	for _, n := range []int{0, 1, 2, len(data) / 2, len(data) - 1} {
		_, err := DecodePatches(data[:n])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "prefix length %d", n)
	}
}

func TestDecodePatchesUnknownOp(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(1)
	e.WriteByte(0x7F)
	e.WriteString("x")

	_, err := DecodePatches(e.Bytes())
	assert.ErrorIs(t, err, ErrUnknownPatchOp)
}

func TestDecodePatchesCountLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(MaxPatchCount + 1)

	_, err := DecodePatches(e.Bytes())
	assert.ErrorIs(t, err, ErrCollectionTooLarge)
}

func TestPatchOpString(t *testing.T) {
	assert.Equal(t, "SetText", PatchSetText.String())
	assert.Equal(t, "SetStyle", PatchSetStyle.String())
	assert.Equal(t, "Unknown", PatchOp(0xEE).String())
}
