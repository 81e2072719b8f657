package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"pathvest-web/internal/models"
	"pathvest-web/internal/services"
)

const proxyErrorMessage = "Failed to get response from AI service"

type relayer interface {
	Relay(ctx context.Context, req models.ProxyRequest) (json.RawMessage, error)
}

// ChatHandler is the server-side relay to the chat service.
type ChatHandler struct {
	chatbot relayer
}

func NewChatHandler(chatbot relayer) *ChatHandler {
	return &ChatHandler{chatbot: chatbot}
}

// Proxy forwards {message} upstream and returns the reply untouched. Every
// failure becomes the same 500 body.
func (h *ChatHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProxyRequest(r.Body)
	if err != nil {
		log.Printf("Error in chat route: invalid request body: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ProxyErrorResponse{Error: proxyErrorMessage})
		return
	}

	data, err := h.chatbot.Relay(r.Context(), req)
	if err != nil {
		var statusErr *services.UpstreamStatusError
		if errors.As(err, &statusErr) {
			log.Printf("API Error: %s", statusErr.Body)
		}
		log.Printf("Error in chat route: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ProxyErrorResponse{Error: proxyErrorMessage})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

var errNullBody = errors.New("request body is null")

// decodeProxyRequest reads any JSON value. Objects yield their message
// field; null is rejected; every other value carries no message and is
// forwarded as {}.
func decodeProxyRequest(body io.Reader) (models.ProxyRequest, error) {
	var req models.ProxyRequest

	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return req, err
	}

	switch raw[0] {
	case 'n':
		return req, errNullBody
	case '{':
		if err := json.Unmarshal(raw, &req); err != nil {
			return req, err
		}
	}
	return req, nil
}
