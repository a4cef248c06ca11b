package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	config "github.com/Galaktikon/trust-cart/configs"
	"github.com/Galaktikon/trust-cart/internal/accounts"
	"github.com/Galaktikon/trust-cart/internal/auth"
	"github.com/Galaktikon/trust-cart/internal/banklink"
	"github.com/Galaktikon/trust-cart/internal/blob"
	"github.com/Galaktikon/trust-cart/internal/cart"
	"github.com/Galaktikon/trust-cart/internal/catalog"
	"github.com/Galaktikon/trust-cart/internal/db"
	"github.com/Galaktikon/trust-cart/internal/events"
	"github.com/Galaktikon/trust-cart/internal/handlers"
	"github.com/Galaktikon/trust-cart/internal/idempotency"
	"github.com/Galaktikon/trust-cart/internal/notifier"
	"github.com/Galaktikon/trust-cart/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	// ── database ──
	conn, err := db.Open(cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	repo := store.New(conn)

	// ── identity provider ──
	oidcClient, err := auth.NewOIDC(ctx, cfg.OIDC)
	if err != nil {
		log.Fatalf("OIDC provider init error: %v", err)
	}
	authn := auth.NewAuthenticator(oidcClient, oidcClient, logger)

	// ── blob storage ──
	blobs, err := blob.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("blob store init error: %v", err)
	}

	// ── cart events ──
	var publisher events.Publisher = events.Nop{}
	var producer *events.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, logger)
		producer.Start()
		publisher = producer
	} else {
		logger.Info("KAFKA_BROKERS not set, cart events disabled")
	}

	// ── e-mail ──
	var mailer notifier.Notifier = notifier.Nop{}
	if cfg.Email.SenderEmail != "" {
		ses, err := notifier.NewSESNotifier(ctx, cfg.Email)
		if err != nil {
			log.Fatalf("email notifier init error: %v", err)
		}
		mailer = ses
	} else {
		logger.Info("AWS_SENDER_ADDRESS not set, welcome e-mails disabled")
	}

	// ── bank linking ──
	var banks banklink.Client = banklink.Stub{}
	if cfg.Plaid.Configured() {
		banks = banklink.NewPlaidClient(cfg.Plaid)
	} else {
		logger.Warn("Plaid credentials not set, using stub bank-link client")
	}

	// ── idempotency ──
	var guard gin.HandlerFunc
	if cfg.RedisAddr != "" {
		rdb := idempotency.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		guard = idempotency.Guard(rdb, "add_to_cart", idempotency.TTL, logger)
	}

	carts := cart.NewReconciler(repo, publisher, logger)
	h := handlers.New(
		carts,
		catalog.NewService(repo, blobs, logger),
		accounts.NewService(repo, carts, mailer, logger),
		banks,
		repo,
		logger,
	)

	router := handlers.NewRouter(h, authn, handlers.RouterConfig{
		SessionSecret:  cfg.SessionSecret,
		RequestTimeout: cfg.RequestTimeout,
		AddToCartGuard: guard,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if producer != nil {
		producer.Close()
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
