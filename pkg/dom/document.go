package dom

import (
	"slices"
	"strings"
	"sync"
)

// Document is an in-memory Surface. All reads and writes go through a
// single mutex, so a Document may be mutated from timer goroutines.
type Document struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]*Node)}
}

// Node is an element held by a Document.
type Node struct {
	doc     *Document
	id      string
	text    string
	classes []string
	style   map[string]string
}

// Create adds an element with the given id and initial class attribute,
// replacing any existing element with that id. Handles to the replaced
// element stay usable but no longer affect the document.
func (d *Document) Create(id, class string) *Node {
	n := &Node{
		doc:     d,
		id:      id,
		classes: splitClasses(class),
		style:   make(map[string]string),
	}

	d.mu.Lock()
	d.nodes[id] = n
	d.mu.Unlock()
	return n
}

// Remove deletes the element with the given id.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	delete(d.nodes, id)
	d.mu.Unlock()
}

// Node returns the element with the given id, or nil.
func (d *Document) Node(id string) *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nodes[id]
}

// Lookup implements Surface.
func (d *Document) Lookup(id string) (Element, bool) {
	n := d.Node(id)
	if n == nil {
		return nil, false
	}
	return n, true
}

// IDs returns the ids of all elements in sorted order.
func (d *Document) IDs() []string {
	d.mu.RLock()
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	d.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// ID returns the element id.
func (n *Node) ID() string {
	return n.id
}

// SetText implements Element.
func (n *Node) SetText(text string) {
	n.doc.mu.Lock()
	n.text = text
	n.doc.mu.Unlock()
}

// SetClassName implements Element.
func (n *Node) SetClassName(class string) {
	n.doc.mu.Lock()
	n.classes = splitClasses(class)
	n.doc.mu.Unlock()
}

// AddClass implements Element.
func (n *Node) AddClass(class string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if !slices.Contains(n.classes, class) {
		n.classes = append(n.classes, class)
	}
}

// RemoveClass implements Element.
func (n *Node) RemoveClass(class string) {
	n.doc.mu.Lock()
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == class })
	n.doc.mu.Unlock()
}

// SetStyle implements Element.
func (n *Node) SetStyle(property, value string) {
	n.doc.mu.Lock()
	n.style[property] = value
	n.doc.mu.Unlock()
}

// Text returns the text content.
func (n *Node) Text() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.text
}

// ClassList returns a copy of the class list in insertion order.
func (n *Node) ClassList() []string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return slices.Clone(n.classes)
}

// ClassName returns the class attribute as a single string.
func (n *Node) ClassName() string {
	return strings.Join(n.ClassList(), " ")
}

// HasClass reports whether class is in the class list.
func (n *Node) HasClass(class string) bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return slices.Contains(n.classes, class)
}

// Style returns an inline style property, or "" when unset.
func (n *Node) Style(property string) string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.style[property]
}

// splitClasses parses a class attribute, dropping duplicates the way a
// browser's classList does.
func splitClasses(class string) []string {
	var out []string
	for _, c := range strings.Fields(class) {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
