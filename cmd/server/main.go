package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"pathvest-web/internal/config"
	"pathvest-web/internal/database"
	"pathvest-web/internal/handlers"
	"pathvest-web/internal/models"
	"pathvest-web/internal/router"
	"pathvest-web/internal/services"
	"pathvest-web/internal/session"
	"pathvest-web/internal/web"
	"pathvest-web/internal/websocket"
	"pathvest-web/internal/widget"
)

func main() {
	log.Println("🚀 Starting PathVest Web...")

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration invalid: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Connect Redis (optional) ────
	redisClient, err := database.NewRedisPubSub(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("✓ Redis connected (widget updates fan out across instances)")
	} else {
		log.Println("✓ Redis not configured (single-instance widget updates)")
	}

	// ──── Step 3: Upstream Chat Client ────
	chatbot := services.NewChatbotService(cfg.UpstreamURL, cfg.UpstreamTimeout)
	log.Printf("✓ Chat upstream: %s", cfg.UpstreamURL)

	// ──── Step 4: Sessions & WebSocket Hub ────
	var sessions *session.Store
	wsHub := websocket.NewHub(redisClient, func(id uuid.UUID) interface{} {
		return models.WSMessage{Type: models.WSTypeWidgetState, Payload: sessions.Widget(id).State()}
	})
	sessions = session.NewStore(cfg.SessionIdleTimeout, func(id uuid.UUID) *widget.Widget {
		return widget.New(chatbot, widget.WithObserver(func(s widget.State) {
			wsHub.Publish(context.Background(), id, models.WSMessage{Type: models.WSTypeWidgetState, Payload: s})
		}))
	})
	log.Println("✓ Session store and WebSocket hub ready")

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("✗ Template parsing failed: %v", err)
	}

	// ──── Step 5: HTTP Server ────
	r := router.New(
		handlers.NewPageHandler(sessions, renderer),
		handlers.NewChatHandler(chatbot),
		handlers.NewWidgetHandler(sessions),
		wsHub,
		cfg.FrontendURL,
		cfg.IsProduction(),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() { sessions.Run(ctx) })
	wg.Go(func() {
		log.Printf("✓ PathVest Web ready on http://localhost:%s", cfg.Port)
		log.Printf("  Proxy:  POST http://localhost:%s/api/chat", cfg.Port)
		log.Printf("  Widget: http://localhost:%s/api/v1/widget", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	})

	// Graceful shutdown
	wg.Go(func() {
		<-ctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Close()
	})

	wg.Wait()
}
