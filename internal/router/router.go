package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pathvest-web/internal/handlers"
	"pathvest-web/internal/middleware"
	"pathvest-web/internal/websocket"
)

func New(
	pageHandler *handlers.PageHandler,
	chatHandler *handlers.ChatHandler,
	widgetHandler *handlers.WidgetHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	secureCookies bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Proxy Route (stateless) ────
	r.Post("/api/chat", chatHandler.Proxy)

	// ──── Session-scoped Routes ────
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(secureCookies))

		r.Get("/", pageHandler.Index)
		r.Post("/chat", pageHandler.SubmitForm)

		r.Route("/api/v1/widget", func(r chi.Router) {
			r.Get("/", widgetHandler.State)
			r.Post("/messages", widgetHandler.Submit)
			r.Delete("/error", widgetHandler.ClearError)
			r.Get("/ws", wsHub.HandleWebSocket)
		})
	})

	return r
}
