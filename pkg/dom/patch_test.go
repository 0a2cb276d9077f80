package dom

import (
	"testing"

	"github.com/courtbook/toastpop/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchSurfaceEmitsPatches(t *testing.T) {
	var got []protocol.Patch
	s := NewPatchSurface([]string{"content", "icon"}, func(p protocol.Patch) {
		got = append(got, p)
	})

	content, ok := s.Lookup("content")
	require.True(t, ok)
	icon, ok := s.Lookup("icon")
	require.True(t, ok)

	content.SetText("hi")
	content.SetClassName("toast-popup-content")
	content.AddClass("error")
	content.RemoveClass("success")
	icon.SetStyle("display", "none")

	assert.Equal(t, []protocol.Patch{
		protocol.NewSetTextPatch("content", "hi"),
		protocol.NewSetAttrPatch("content", "class", "toast-popup-content"),
		protocol.NewAddClassPatch("content", "error"),
		protocol.NewRemoveClassPatch("content", "success"),
		protocol.NewSetStylePatch("icon", "display", "none"),
	}, got)
}

func TestPatchSurfaceUnknownID(t *testing.T) {
	s := NewPatchSurface([]string{"content"}, func(protocol.Patch) {
		t.Fatal("no patch expected")
	})

	_, ok := s.Lookup("overlay")
	assert.False(t, ok)
	assert.False(t, s.Has("overlay"))
	assert.True(t, s.Has("content"))
}
