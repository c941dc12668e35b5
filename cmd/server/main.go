package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/api"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/assist"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/auditlog"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/config"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/database"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/fallback"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/repository"
	"github.com/rbrowning13/IMC-CMS-sub001/internal/session"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := buildLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting claims assist server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.MigrationsPath != "" {
		runner, err := database.NewMigrationRunner(database.URL(cfg.Database), cfg.Database.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize migrations")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to apply migrations")
		}
		runner.Close()
	}

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	claims := repository.NewClaimStore(db, logger)

	var sessions domain.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		redisStore, err := session.NewRedisStore(ctx, cfg.Session.RedisURL, cfg.Session.TTL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to session store")
		}
		defer redisStore.Close()
		sessions = redisStore
	default:
		sessions = session.NewMemoryStore()
	}

	var answerer domain.FallbackAnswerer
	if cfg.Fallback.Enabled {
		answerer, err = fallback.NewOpenAIAnswerer(cfg.Fallback, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize fallback answerer")
		}
	} else {
		logger.Info("Probabilistic fallback disabled; unresolved questions get guess answers")
	}

	var audit domain.TurnLogger
	if cfg.AuditLog.Enabled {
		sqliteLog, err := auditlog.NewSQLiteLog(cfg.AuditLog.Path)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open audit log")
		}
		defer sqliteLog.Close()
		audit = sqliteLog
	}

	engine := assist.NewEngine(claims, sessions, answerer, audit, logger)
	server := api.NewServer(cfg, engine, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func buildLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}
	return logger
}
