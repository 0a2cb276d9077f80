package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/courtbook/toastpop/pkg/live"
	"github.com/courtbook/toastpop/pkg/toast"
)

// maxBodySize caps /api/toast request bodies.
const maxBodySize = 16 << 10

// ToastRequest is the body of POST /api/toast. Status is accepted in place
// of ToastType when it names a toast kind.
type ToastRequest struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	ToastType string `json:"toast_type,omitempty"`
	Status    string `json:"status,omitempty"`
	Session   string `json:"session,omitempty"`
}

// Kind resolves the toast kind for the request. Kinds are matched
// case-insensitively, so "Success" selects the success icon too.
func (tr ToastRequest) Kind() toast.Kind {
	if k := apiKind(tr.ToastType); k != "" {
		return k
	}
	switch k := apiKind(tr.Status); k {
	case toast.KindSuccess, toast.KindError:
		return k
	}
	return toast.KindSuccess
}

func apiKind(s string) toast.Kind {
	return toast.Kind(strings.ToLower(strings.TrimSpace(s)))
}

// ToastResponse is the body returned by POST /api/toast.
type ToastResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ToastType string `json:"toast_type,omitempty"`
	Sessions  int    `json:"sessions"`
}

func (s *Server) handleToast(w http.ResponseWriter, r *http.Request) {
	var body ToastRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		s.logger.Debug("toast request rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, ToastResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	req := toast.Request{Title: body.Title, Message: body.Message, Kind: body.Kind()}

	if body.Session == "" {
		n := s.hub.Broadcast(req)
		s.logger.Info("toast broadcast", "kind", req.Kind, "sessions", n)
		writeJSON(w, http.StatusAccepted, ToastResponse{
			Status:    "success",
			Message:   "toast queued",
			ToastType: string(req.Kind),
			Sessions:  n,
		})
		return
	}

	if err := s.hub.Present(body.Session, req); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, live.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		s.logger.Info("toast not delivered", "session_id", body.Session, "error", err)
		writeJSON(w, status, ToastResponse{
			Status:    "error",
			Message:   err.Error(),
			ToastType: string(req.Kind),
		})
		return
	}

	writeJSON(w, http.StatusAccepted, ToastResponse{
		Status:    "success",
		Message:   "toast queued",
		ToastType: string(req.Kind),
		Sessions:  1,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
