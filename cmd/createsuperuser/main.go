package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dorm-admin-api/internal/repository"
	"github.com/noah-isme/dorm-admin-api/internal/service"
	"github.com/noah-isme/dorm-admin-api/pkg/config"
	"github.com/noah-isme/dorm-admin-api/pkg/database"
	"github.com/noah-isme/dorm-admin-api/pkg/logger"
)

func main() {
	var (
		username  string
		password  string
		superuser bool
		timeout   time.Duration
	)

	flag.StringVar(&username, "username", "admin", "Account username")
	flag.StringVar(&password, "password", os.Getenv("DORM_ADMIN_PASSWORD"), "Account password (defaults to $DORM_ADMIN_PASSWORD)")
	flag.BoolVar(&superuser, "superuser", true, "Grant access to every account's records")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if password == "" {
		log.Fatal("password is required: pass -password or set DORM_ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.NewMigrator(db, logr).Up(ctx); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	sessions := service.NewSessionService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		nil,
		nil,
		logr,
		service.SessionConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL, Issuer: cfg.Session.Issuer},
	)

	user, created, err := sessions.EnsureAccount(ctx, username, password, superuser)
	if err != nil {
		logr.Fatal("failed to provision account", zap.String("username", username), zap.Error(err))
	}

	action := "updated"
	if created {
		action = "created"
	}
	logr.Info("account "+action,
		zap.Int64("id", user.ID),
		zap.String("username", user.Username),
		zap.Bool("superuser", user.IsSuperuser),
	)
}
