package dom

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLookup(t *testing.T) {
	doc := NewDocument()
	doc.Create("title", "")

	el, ok := doc.Lookup("title")
	require.True(t, ok)
	el.SetText("<i>hello</i>")
	assert.Equal(t, "<i>hello</i>", doc.Node("title").Text())

	_, ok = doc.Lookup("missing")
	assert.False(t, ok)
	assert.Nil(t, doc.Node("missing"))
}

func TestDocumentClassList(t *testing.T) {
	doc := NewDocument()
	n := doc.Create("box", "base  base extra")
	assert.Equal(t, []string{"base", "extra"}, n.ClassList())

	n.AddClass("extra")
	n.AddClass("error")
	assert.Equal(t, "base extra error", n.ClassName())

	n.RemoveClass("extra")
	n.RemoveClass("never-there")
	assert.Equal(t, []string{"base", "error"}, n.ClassList())
	assert.True(t, n.HasClass("error"))

	n.SetClassName("base")
	assert.Equal(t, []string{"base"}, n.ClassList())
	assert.False(t, n.HasClass("error"))
}

func TestDocumentStyle(t *testing.T) {
	n := NewDocument().Create("icon", "")
	assert.Empty(t, n.Style("display"))

	n.SetStyle("display", "block")
	n.SetStyle("display", "none")
	assert.Equal(t, "none", n.Style("display"))
}

func TestDocumentReplaceDetachesOldHandle(t *testing.T) {
	doc := NewDocument()
	old := doc.Create("title", "")
	fresh := doc.Create("title", "")

	old.SetText("stale")
	assert.Empty(t, fresh.Text())
	assert.Same(t, fresh, doc.Node("title"))

	doc.Remove("title")
	assert.Empty(t, doc.IDs())
}

func TestDocumentConcurrentWrites(t *testing.T) {
	doc := NewDocument()
	n := doc.Create("overlay", "")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.AddClass("is-visible")
			n.RemoveClass("is-visible")
			_ = n.ClassList()
		}()
	}
	wg.Wait()
	assert.False(t, n.HasClass("is-visible"))
}
