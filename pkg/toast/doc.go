// Package toast presents transient notifications on a page.
//
// A toast is drawn by mutating six elements the page template already
// contains (see the ID constants): the overlay, the content box, the title
// and message slots, and a success and an error icon. Presenting a toast
// writes the text, switches the content box's modifier class and the
// icons, adds the visible marker to the overlay, and schedules the marker's
// removal after HideDelay.
//
// # Usage
//
//	p := toast.NewPresenter(surface)
//	p.Success("Saved", "Your changes were saved.")
//	p.Error("Failed", "Could not save.")
//	p.Present(toast.Request{Title: "Booked", Message: "Court 3, 19:00"})
//
// # Missing surface
//
// When the surface has no overlay element, Present does nothing: no
// element is touched and no timer is scheduled. Calling code never has to
// check whether the page can show toasts.
//
// # Overlapping toasts
//
// Presenting while a toast is visible rewrites its content but does not
// cancel the earlier hide task. Two toasts one second apart are therefore
// both hidden when the first one's delay elapses. The presenter keeps the
// most recent task in a single slot so Stop can cancel it on shutdown.
package toast
