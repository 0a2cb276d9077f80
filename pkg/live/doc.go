// Package live drives toasts on connected browser pages over WebSocket.
//
// Each page opens a socket and sends a ClientHello listing the toast
// elements it contains. The Hub answers with a ServerHello and creates a
// Session. A Session owns a toast.Presenter whose surface turns element
// mutations into protocol patches.
//
// # Event loop
//
// Every mutation of a page runs on its session's event loop: presenting a
// toast is queued with Dispatch, and the delayed hide waits for room in
// the same queue. After each dispatched function the patches it produced
// are sent as one Patches message, so the page applies a toast atomically.
// A message longer than one frame goes out as fragments.
//
// # Goroutines
//
// A started session runs three goroutines: ReadLoop (control frames),
// WriteLoop (heartbeat pings) and EventLoop (dispatched work). All three
// exit when the session closes.
package live
