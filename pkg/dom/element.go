package dom

// Element is a mutable handle to one page element.
type Element interface {
	// SetText replaces the element's text content. The value is never
	// interpreted as markup.
	SetText(text string)

	// SetClassName replaces the whole class attribute.
	SetClassName(class string)

	// AddClass adds class to the class list if it is not already there.
	AddClass(class string)

	// RemoveClass removes class from the class list. Removing an absent
	// class is a no-op.
	RemoveClass(class string)

	// SetStyle sets an inline style property.
	SetStyle(property, value string)
}

// Surface resolves elements by id.
type Surface interface {
	// Lookup returns the element with the given id, or false when the
	// surface has no such element.
	Lookup(id string) (Element, bool)
}
