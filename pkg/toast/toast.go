package toast

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/courtbook/toastpop/pkg/dom"
)

// Element ids the page template must provide.
const (
	OverlayID     = "toast-popup-overlay"
	ContentID     = "toast-popup-content"
	TitleID       = "toast-popup-title"
	MessageID     = "toast-popup-message"
	SuccessIconID = "toast-icon-success"
	ErrorIconID   = "toast-icon-error"
)

// IDs lists every element id a toast uses, overlay first.
var IDs = []string{OverlayID, ContentID, TitleID, MessageID, SuccessIconID, ErrorIconID}

const (
	// ContentClass is the content box's base class.
	ContentClass = "toast-popup-content"

	// VisibleClass marks the overlay as shown.
	VisibleClass = "is-visible"

	// HideDelay is how long a toast stays visible.
	HideDelay = 3000 * time.Millisecond

	displayShown  = "block"
	displayHidden = "none"
)

// Kind selects a toast's theme and icon.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Normalize returns KindSuccess for the empty kind and k otherwise.
func (k Kind) Normalize() Kind {
	if k == "" {
		return KindSuccess
	}
	return k
}

// modifier returns the class added to the content box, or "" when the
// kind cannot be used as a single class token.
func (k Kind) modifier() string {
	c := strings.ToLower(string(k.Normalize()))
	if strings.ContainsAny(c, " \t\n\f\r") {
		return ""
	}
	return c
}

// Request describes one toast. An empty Kind means KindSuccess.
type Request struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind,omitempty"`
}

// Observer receives presentation events. Implementations must not block.
type Observer interface {
	Presented(kind Kind)
	Dropped()
	Hidden()
}

// Presenter draws toasts on a surface.
//
// A Presenter is meant to be driven from one goroutine at a time (the UI
// thread of whatever owns the surface). The hide slot is guarded so that
// Stop may be called from elsewhere.
type Presenter struct {
	surface   dom.Surface
	scheduler Scheduler
	observer  Observer
	logger    *slog.Logger

	mu   sync.Mutex
	hide Task
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithScheduler sets the scheduler used for the hide task.
// Default: wall-clock timers.
func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) {
		p.scheduler = s
	}
}

// WithObserver sets an observer for presentation events.
func WithObserver(o Observer) Option {
	return func(p *Presenter) {
		p.observer = o
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) {
		p.logger = l
	}
}

// NewPresenter creates a presenter for surface.
func NewPresenter(surface dom.Surface, opts ...Option) *Presenter {
	p := &Presenter{
		surface:   surface,
		scheduler: WallClock{},
		observer:  nopObserver{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present shows req. It never fails: when the overlay element cannot be
// resolved the call is a no-op.
func (p *Presenter) Present(req Request) {
	overlay, ok := p.surface.Lookup(OverlayID)
	if !ok {
		p.logger.Debug("toast surface missing", "title", req.Title)
		p.observer.Dropped()
		return
	}
	content, _ := p.surface.Lookup(ContentID)
	title, _ := p.surface.Lookup(TitleID)
	message, _ := p.surface.Lookup(MessageID)
	successIcon, _ := p.surface.Lookup(SuccessIconID)
	errorIcon, _ := p.surface.Lookup(ErrorIconID)

	kind := req.Kind.Normalize()

	if title != nil {
		title.SetText(req.Title)
	}
	if message != nil {
		message.SetText(req.Message)
	}

	if content != nil {
		content.SetClassName(ContentClass)
		if m := kind.modifier(); m != "" {
			content.AddClass(m)
		}
	}

	switch kind {
	case KindSuccess:
		setDisplay(successIcon, displayShown)
		setDisplay(errorIcon, displayHidden)
	case KindError:
		setDisplay(successIcon, displayHidden)
		setDisplay(errorIcon, displayShown)
	}

	overlay.AddClass(VisibleClass)
	p.observer.Presented(kind)

	// The previous task is overwritten, not stopped.
	task := p.scheduler.AfterFunc(HideDelay, p.hideOverlay)
	p.mu.Lock()
	p.hide = task
	p.mu.Unlock()
}

// Show presents a toast; kind defaults to KindSuccess when omitted.
func (p *Presenter) Show(title, message string, kind ...Kind) {
	req := Request{Title: title, Message: message}
	if len(kind) > 0 {
		req.Kind = kind[0]
	}
	p.Present(req)
}

// Success presents a success toast.
func (p *Presenter) Success(title, message string) {
	p.Present(Request{Title: title, Message: message, Kind: KindSuccess})
}

// Error presents an error toast.
func (p *Presenter) Error(title, message string) {
	p.Present(Request{Title: title, Message: message, Kind: KindError})
}

// Stop cancels the most recently scheduled hide task. It reports whether
// a pending task was cancelled.
func (p *Presenter) Stop() bool {
	p.mu.Lock()
	task := p.hide
	p.hide = nil
	p.mu.Unlock()

	if task == nil {
		return false
	}
	return task.Stop()
}

// hideOverlay resolves the overlay again at fire time, so a replaced or
// removed overlay is handled like any other lookup.
func (p *Presenter) hideOverlay() {
	overlay, ok := p.surface.Lookup(OverlayID)
	if !ok {
		return
	}
	overlay.RemoveClass(VisibleClass)
	p.observer.Hidden()
}

func setDisplay(el dom.Element, value string) {
	if el != nil {
		el.SetStyle("display", value)
	}
}

type nopObserver struct{}

func (nopObserver) Presented(Kind) {}
func (nopObserver) Dropped()       {}
func (nopObserver) Hidden()        {}
