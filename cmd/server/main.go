package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"atrangi/internal/app"
	"atrangi/internal/config"
	"atrangi/internal/googletoken"
	"atrangi/internal/notify"
	"atrangi/internal/server"
	"atrangi/internal/store"
	"atrangi/internal/token"
	"atrangi/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	sessions, err := token.New(cfg.JWTSecret, sessionTTL)
	if err != nil {
		log.Fatalf("failed to init session issuer: %v", err)
	}

	var google app.GoogleVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := googletoken.NewVerifier(googletoken.Config{
			ClientID: cfg.GoogleClientID,
			JWKSURL:  cfg.GoogleJWKSURL,
		})
		if err != nil {
			log.Fatalf("failed to init google verifier: %v", err)
		}
		google = verifier
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier, err := notify.NewRedisNotifier(notify.RedisConfig{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		Stream:     cfg.NotifyStream,
		AdminEmail: cfg.AdminEmail,
	})
	if err != nil {
		log.Fatalf("failed to init notifier: %v", err)
	}
	notifier.Start(ctx, 2, &notify.LogMailer{})

	appCore, err := app.New(app.Config{
		Store:         dataStore,
		Sessions:      sessions,
		Google:        google,
		Notifier:      notifier,
		AdminEmail:    cfg.AdminEmail,
		TwoPhaseStock: cfg.TwoPhaseStock,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:  cfg.LoginRateLimitPerMinute,
		TrustedProxyCIDRs:        cfg.TrustedProxyCIDRs,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
	}
}
