package handlers

import (
	"bytes"
	"log"
	"net/http"

	"pathvest-web/internal/middleware"
	"pathvest-web/internal/web"
)

type PageHandler struct {
	sessions widgetSource
	renderer *web.Renderer
}

func NewPageHandler(sessions widgetSource, renderer *web.Renderer) *PageHandler {
	return &PageHandler{sessions: sessions, renderer: renderer}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Widget(middleware.GetSessionID(r.Context())).State()

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, web.NewPageData(state)); err != nil {
		log.Printf("Failed to render page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// SubmitForm is the no-script path: run the turn, then show the page again.
func (h *PageHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	wg := h.sessions.Widget(middleware.GetSessionID(r.Context()))
	submit(r.Context(), wg, r.FormValue("message"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
