package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"parkdesk/config"
	"parkdesk/database"
	"parkdesk/handlers"
	"parkdesk/metrics"
	"parkdesk/routes"
	"parkdesk/services"
	"parkdesk/utils"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		logrus.Infof("No .env file found, using environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	time.Local = cfg.Location()
	gin.SetMode(cfg.GinMode)
	log.WithFields(logrus.Fields{"gin_mode": cfg.GinMode, "timezone": time.Local.String()}).Info("config loaded")

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	svc := services.New(services.Options{
		Store:             database.NewStore(db),
		Clock:             clockwork.NewRealClock(),
		Log:               log,
		Metrics:           m,
		DefaultHourlyRate: cfg.DefaultHourlyRate,
		NightRate:         cfg.NightRate,
		PageSize:          cfg.PageSize,
		Location:          time.Local,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminRole); err != nil {
		log.Fatalf("Failed to create seed admin: %v", err)
	}

	signer, err := utils.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL, nil)
	if err != nil {
		log.Fatalf("Failed to initialise sessions: %v", err)
	}

	// Timers whose session was written but whose delete failed
	c := cron.New(cron.WithLocation(time.Local))
	_, err = c.AddFunc(cfg.SweepSchedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := svc.SweepSettledTimers(sweepCtx); err != nil {
			log.WithError(err).Error("Failed to sweep settled timers")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule timer sweep %q: %v", cfg.SweepSchedule, err)
	}
	c.Start()
	log.WithField("schedule", cfg.SweepSchedule).Info("Cron jobs started")

	r := routes.NewRouter(handlers.New(svc, signer, log), signer, m, registry, log)

	corsOpts := cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors.New(corsOpts).Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}
}
