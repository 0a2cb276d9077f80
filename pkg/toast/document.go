package toast

import "github.com/courtbook/toastpop/pkg/dom"

// NewDocument returns an in-memory document holding the six toast
// elements in their initial state: overlay hidden, content box carrying
// only its base class, both icons hidden.
func NewDocument() *dom.Document {
	doc := dom.NewDocument()
	doc.Create(OverlayID, "toast-popup-overlay")
	doc.Create(ContentID, ContentClass)
	doc.Create(TitleID, "toast-popup-title")
	doc.Create(MessageID, "toast-popup-message")
	doc.Create(SuccessIconID, "toast-icon").SetStyle("display", displayHidden)
	doc.Create(ErrorIconID, "toast-icon").SetStyle("display", displayHidden)
	return doc
}
