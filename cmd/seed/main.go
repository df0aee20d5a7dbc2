package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/stuurdean/municipality-dashboards/internal/auth"
	"github.com/stuurdean/municipality-dashboards/internal/config"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/observability"
	"github.com/stuurdean/municipality-dashboards/internal/persistence"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
)

type seedUser struct {
	email      string
	fullName   string
	userType   domain.UserType
	department string
	skills     []string
	maxLoad    int
}

var seedUsers = []seedUser{
	{"admin@city.example", "Dashboard Admin", domain.UserTypeAdmin, "", nil, 0},
	{"m.okafor@city.example", "Maya Okafor", domain.UserTypeEmployee, "Roads and Transport", []string{"pothole", "traffic_signal"}, 10},
	{"j.vanwyk@city.example", "Johan van Wyk", domain.UserTypeEmployee, "Water and Sanitation", []string{"water_leak", "drainage"}, 10},
	{"l.singh@city.example", "Lerato Singh", domain.UserTypeEmployee, "Parks and Environment", []string{"vegetation", "garbage"}, 8},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger, cfg.Postgres.MigrationsDir); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "change-me-now"
	}
	passwordHash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}

	users := repository.NewUserRepository(pg.PoolHandle())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	for _, seed := range seedUsers {
		existing, err := users.GetByEmail(ctx, seed.email)
		if err == nil {
			logger.Info("user already seeded", zap.String("email", existing.Email))
			printToken(tokens, existing, logger)
			continue
		}

		user := &domain.User{
			Email:        seed.email,
			FullName:     seed.fullName,
			PasswordHash: passwordHash,
			UserType:     seed.userType,
			Department:   seed.department,
			Skills:       seed.skills,
			IsActive:     true,
			MaxWorkload:  seed.maxLoad,
		}
		if err := users.Create(ctx, user); err != nil {
			logger.Fatal("failed to seed user", zap.String("email", seed.email), zap.Error(err))
		}
		logger.Info("seeded user",
			zap.String("email", user.Email),
			zap.String("user_type", string(user.UserType)),
		)
		printToken(tokens, user, logger)
	}
}

func printToken(tokens *auth.TokenManager, user *domain.User, logger *zap.Logger) {
	token, expiresAt, err := tokens.GenerateToken(user.ID, user.UserType)
	if err != nil {
		logger.Warn("failed to issue token", zap.String("email", user.Email), zap.Error(err))
		return
	}
	fmt.Printf("%s\t%s\texpires %s\n%s\n\n", user.Email, user.UserType, expiresAt.Format("2006-01-02 15:04"), token)
}
