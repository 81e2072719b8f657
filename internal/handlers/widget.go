package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"pathvest-web/internal/middleware"
	"pathvest-web/internal/models"
	"pathvest-web/internal/services"
	"pathvest-web/internal/widget"
)

type widgetSource interface {
	Widget(id uuid.UUID) *widget.Widget
}

type WidgetHandler struct {
	sessions widgetSource
}

func NewWidgetHandler(sessions widgetSource) *WidgetHandler {
	return &WidgetHandler{sessions: sessions}
}

func (h *WidgetHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.widgetFor(r).State())
}

// Submit runs one chat turn. An upstream failure is part of the returned
// state, not an HTTP error.
func (h *WidgetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	wg := h.widgetFor(r)
	if err := submit(r.Context(), wg, req.Message); errors.Is(err, widget.ErrEmptyMessage) {
		handleServiceError(w, r, &services.ValidationError{Fields: map[string]string{"message": "Message is required"}})
		return
	}

	writeJSON(w, http.StatusOK, wg.State())
}

func (h *WidgetHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	wg := h.widgetFor(r)
	wg.ClearError()
	writeJSON(w, http.StatusOK, wg.State())
}

func (h *WidgetHandler) widgetFor(r *http.Request) *widget.Widget {
	return h.sessions.Widget(middleware.GetSessionID(r.Context()))
}

// submit detaches the turn from the request so a closed tab does not
// cancel a reply the session is still waiting for.
func submit(ctx context.Context, wg *widget.Widget, message string) error {
	return wg.Submit(context.WithoutCancel(ctx), message)
}
