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
	"github.com/contacto/backend/internal/service"
	"github.com/contacto/backend/pkg/recaptcha"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadGate()
	logging.Setup(cfg.LogLevel)

	if cfg.RecaptchaSecret == "" {
		slog.Warn("RECAPTCHA_SECRET_KEY not set; every submission will fail verification")
	}
	if cfg.InboxToken == "" {
		slog.Warn("CONTACT_INBOX_TOKEN not set; the inbox will reject forwarded messages")
	}

	verifier := recaptcha.NewClient(cfg.RecaptchaSecret, "")
	inboxClient := service.NewInboxClient(cfg.InboxURL, cfg.InboxToken)
	gateService := service.NewGateService(verifier, inboxClient)
	gateHandler := handler.NewGateHandler(gateService, cfg.AllowedOrigins, cfg.EnforceOrigin)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("POST /submit-contact", gateHandler.Submit)

	chain := handler.CORS(cfg.AllowedOrigins)(handler.SecurityHeaders(handler.RequestLogger(mux)))

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     chain,
		ReadTimeout: 10 * time.Second,
		// The pipeline makes two sequential 10s-bounded downstream calls,
		// so the write deadline must outlast both.
		WriteTimeout: 25 * time.Second,
	}

	go func() {
		slog.Info("gate listening", "addr", server.Addr, "enforce_origin", cfg.EnforceOrigin)
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
