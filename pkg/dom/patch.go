package dom

import "github.com/courtbook/toastpop/pkg/protocol"

// PatchSurface is a Surface whose elements turn every mutation into a
// protocol.Patch. Only ids in the known set resolve, mirroring what the
// remote page reported it contains.
type PatchSurface struct {
	known map[string]struct{}
	emit  func(protocol.Patch)
}

// NewPatchSurface creates a surface that resolves the given ids and
// passes every patch to emit. emit is called synchronously from the
// mutating goroutine.
func NewPatchSurface(ids []string, emit func(protocol.Patch)) *PatchSurface {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return &PatchSurface{known: known, emit: emit}
}

// Lookup implements Surface.
func (s *PatchSurface) Lookup(id string) (Element, bool) {
	if _, ok := s.known[id]; !ok {
		return nil, false
	}
	return patchElement{id: id, emit: s.emit}, true
}

// Has reports whether id resolves on this surface.
func (s *PatchSurface) Has(id string) bool {
	_, ok := s.known[id]
	return ok
}

type patchElement struct {
	id   string
	emit func(protocol.Patch)
}

func (e patchElement) SetText(text string) {
	e.emit(protocol.NewSetTextPatch(e.id, text))
}

func (e patchElement) SetClassName(class string) {
	e.emit(protocol.NewSetAttrPatch(e.id, "class", class))
}

func (e patchElement) AddClass(class string) {
	e.emit(protocol.NewAddClassPatch(e.id, class))
}

func (e patchElement) RemoveClass(class string) {
	e.emit(protocol.NewRemoveClassPatch(e.id, class))
}

func (e patchElement) SetStyle(property, value string) {
	e.emit(protocol.NewSetStylePatch(e.id, property, value))
}
