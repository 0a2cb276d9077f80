package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/courtbook/toastpop/pkg/toast"
)

//go:embed assets
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html.tmpl"))

// pageData feeds the page template. The ids come from the toast package
// so the markup and the presenter cannot drift apart.
type pageData struct {
	Title         string
	OverlayID     string
	ContentID     string
	ContentClass  string
	TitleID       string
	MessageID     string
	SuccessIconID string
	ErrorIconID   string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:         s.pageTitle,
		OverlayID:     toast.OverlayID,
		ContentID:     toast.ContentID,
		ContentClass:  toast.ContentClass,
		TitleID:       toast.TitleID,
		MessageID:     toast.MessageID,
		SuccessIconID: toast.SuccessIconID,
		ErrorIconID:   toast.ErrorIconID,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
