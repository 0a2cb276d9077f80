// Package web serves the toast page, its client assets, the live websocket
// endpoint, and a small JSON API for triggering toasts.
//
// Routes:
//
//	GET  /            page carrying the toast elements
//	GET  /static/*    embedded toast.js and toast.css
//	GET  /ws          live session upgrade
//	POST /api/toast   present a toast on one page or all pages
//	GET  /metrics     Prometheus metrics
//	GET  /healthz     liveness
package web
