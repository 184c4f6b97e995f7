package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worksphere-portal/internal/client"
	"worksphere-portal/internal/config"
	"worksphere-portal/internal/repository"
	"worksphere-portal/internal/server"
	"worksphere-portal/internal/service"
	"worksphere-portal/internal/session"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(&cfg.Log)

	db, err := client.InitSqliteClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("init local store")
	}

	portalClient := client.NewPortalClient(&cfg.Backend)
	collector := newCollector(cfg, log)

	credentialRepo := repository.NewCredentialRepository(db)
	sessionStore := session.NewStore(
		session.NewCookieCodec(cfg.Session.CookieSecret),
		credentialRepo,
		time.Duration(cfg.Session.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Session.RefreshTTLDays)*24*time.Hour,
		cfg.Session.CookieSecure,
		log,
	)

	authService := service.NewAuthService(portalClient, log)
	checkoutService := service.NewCheckoutService(portalClient, collector, log)
	historyService := service.NewHistoryService(portalClient, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(sessionStore, authService, checkoutService, historyService)

	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func newLogger(cfg *config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	logger := zerolog.New(out)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}

	return logger.Level(level).With().Timestamp().Logger()
}

func newCollector(cfg *config.Config, log zerolog.Logger) client.PaymentCollector {
	var (
		collector client.PaymentCollector
		err       error
	)

	switch cfg.PaymentProvider {
	case "braintree":
		collector, err = client.NewBraintreeCollector(&cfg.Braintree)
	case "stripe":
		collector, err = client.NewStripeCollector(&cfg.Stripe)
	default:
		log.Fatal().Str("provider", cfg.PaymentProvider).Msg("unknown payment provider")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("init payment collector")
	}

	return collector
}
