package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contacto/backend/internal/config"
	"github.com/contacto/backend/internal/handler"
	"github.com/contacto/backend/internal/logging"
	"github.com/contacto/backend/internal/repository"
	"github.com/contacto/backend/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadInbox()
	logging.Setup(cfg.LogLevel)

	if cfg.InboxToken == "" {
		// Fail closed: the handler rejects everything without a token,
		// but make the misconfiguration loud.
		slog.Warn("CONTACT_INBOX_TOKEN not set; rejecting all requests")
	}

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	contactRepo := repository.NewPgContactRepository(pool)
	inboxService := service.NewInboxService(contactRepo)
	inboxHandler := handler.NewInboxHandler(inboxService, cfg.InboxToken, pool)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", inboxHandler.Health)
	mux.HandleFunc("POST /contact/inbox", inboxHandler.Receive)
	mux.HandleFunc("GET /contact/inbox", inboxHandler.List)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.RequestLogger(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("inbox listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
