package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/uslaccafrica/registration-mailer/internal/config"
	"github.com/uslaccafrica/registration-mailer/internal/email"
	httpx "github.com/uslaccafrica/registration-mailer/internal/http"
	healthctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/health"
	resendctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/resend"
	"github.com/uslaccafrica/registration-mailer/internal/http/router"
	resendsvc "github.com/uslaccafrica/registration-mailer/internal/http/services/resend"
	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
	"github.com/uslaccafrica/registration-mailer/internal/rate"
	"github.com/uslaccafrica/registration-mailer/internal/store/pg"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config")
	flag.Parse()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.L().Fatal("config load failed", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       "info",
		ServiceName: "registration-mailer",
	})
	defer func() { _ = logger.Sync() }()

	log := logger.L().With(logger.Component("main"))

	// Refuse to start with a half-configured mail identity: a missing host
	// or sender would only surface as send failures at request time.
	if err := cfg.ValidateSMTP(); err != nil {
		log.Fatal("smtp configuration incomplete", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- storage ----
	pool, err := pg.NewPool(ctx, cfg.Storage.DSN, pg.PoolOptions{
		MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
		ConnMaxLifetime: config.Dur(cfg.Storage.Postgres.ConnMaxLifetime),
	})
	if err != nil {
		log.Fatal("database unavailable", logger.Err(err))
	}
	defer pool.Close()
	registrations := pg.NewRegistrationStore(pool)

	// ---- mail ----
	tmpl, err := loadTemplates(cfg)
	if err != nil {
		log.Fatal("template load failed", logger.Err(err))
	}
	composer := email.NewComposer(tmpl)
	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		FromEmail:          cfg.SMTP.From,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	})

	// ---- optional per-IP limiter ----
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		window := config.Dur(cfg.Rate.Window)
		if cfg.Redis.Addr != "" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
			limiter = rate.NewRedisLimiter(client, cfg.Redis.Prefix, cfg.Rate.MaxRequests, window)
			log.Info("per-ip rate limiting enabled",
				logger.String("backend", "redis"),
				logger.String("addr", cfg.Redis.Addr),
			)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)
			log.Info("per-ip rate limiting enabled", logger.String("backend", "memory"))
		}
	}

	// ---- metrics ----
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Pool: func() *pgxpool.Pool { return pool },
	})
	if err != nil {
		log.Fatal("metrics registration failed", logger.Err(err))
	}

	// ---- wiring ----
	service := resendsvc.NewService(resendsvc.Deps{
		Registrations: registrations,
		Sender:        sender,
		Composer:      composer,
		BaseURL:       cfg.Email.BaseURL,
		Subject:       cfg.Email.Subject,
		Now:           time.Now,
	})

	handler := router.New(router.Deps{
		Resend:             resendctrl.NewController(service),
		Health:             healthctrl.NewController(registrations),
		Metrics:            metricsHandler,
		Instrument:         httpx.WithMetrics,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.Dur(cfg.Server.ReadTimeout),
		WriteTimeout: config.Dur(cfg.Server.WriteTimeout),
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func loadTemplates(cfg *config.Config) (*email.Templates, error) {
	if dir := cfg.Email.TemplatesDir; dir != "" {
		return email.LoadTemplates(dir)
	}
	return email.DefaultTemplates()
}
