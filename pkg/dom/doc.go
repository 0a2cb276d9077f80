// Package dom describes the rendering surface a toast is drawn on.
//
// A Surface resolves elements by their stable id. An Element exposes the
// handful of mutations a toast needs: text content, class list, and inline
// style. The package ships two surfaces:
//
//   - Document: an in-memory element set, safe for concurrent use. Used
//     for headless rendering and as the reference surface in tests.
//   - PatchSurface: translates each mutation into a protocol.Patch and
//     hands it to an emitter, which is how a remote browser page is driven.
//
// Elements are resolved on every use and never cached, so a page may swap
// an element out between two toasts without leaving stale handles behind.
package dom
