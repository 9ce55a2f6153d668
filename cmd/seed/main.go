package main

import (
	"context"
	"log"
	"time"

	"finbook/internal/models"
	"finbook/internal/repository"
	"finbook/pkg/auth"
	"finbook/pkg/config"
	"finbook/pkg/logger"
	"finbook/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS statement_rows (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		upload_batch_id UUID NOT NULL,
		date DATE NOT NULL,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_statement_rows_batch ON statement_rows (user_id, upload_batch_id, status)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		batch_id UUID,
		date DATE NOT NULL,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		category TEXT NOT NULL,
		from_statement BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses (user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_batch ON expenses (batch_id)`,
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Creating schema...")
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Failed to apply schema statement", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	if err := seedDemoUser(ctx, userRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed demo user", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seedDemoUser(ctx context.Context, userRepo *repository.UserRepository, appLogger *zap.Logger) error {
	const demoEmail = "demo@finbook.local"

	if existing, _ := userRepo.GetByEmail(ctx, demoEmail); existing != nil {
		appLogger.Info("Demo user already present", zap.String("email", demoEmail))
		return nil
	}

	hashed, err := auth.HashPassword("demo-password")
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     demoEmail,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}

	appLogger.Info("Demo user created",
		zap.String("email", demoEmail),
		zap.String("user_id", user.ID.String()),
	)
	return nil
}
