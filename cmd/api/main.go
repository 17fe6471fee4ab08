package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"

	_ "github.com/anisurarzu/goBeyondServer/docs" // Swagger docs (generated)
	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/config"
	"github.com/anisurarzu/goBeyondServer/internal/database"
	"github.com/anisurarzu/goBeyondServer/internal/email"
	httpServer "github.com/anisurarzu/goBeyondServer/internal/http"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/mentor"
	"github.com/anisurarzu/goBeyondServer/internal/profile"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// @title           GoBeyond Server
// @version         1.0
// @description     REST backend for user accounts, Google login and a mentor directory.

// @contact.name   API Support
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	mentorRepo := mentor.NewRepository(db)

	// Initialize token service (JWT or PASETO per config)
	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize email service; without SMTP credentials the welcome
	// email is skipped entirely.
	var emailService auth.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FrontendURL,
		)
	} else {
		logger.Warn("SMTP not configured, welcome emails disabled")
	}

	// Initialize services
	authService := auth.NewService(userRepo, tokenService, emailService, logger)
	profileService := profile.NewService(userRepo)
	mentorService := mentor.NewService(mentorRepo, tokenService, logger)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:    auth.NewHandler(authService),
		Profile: profile.NewHandler(profileService),
		Mentor:  mentor.NewHandler(mentorService),
	}
	authMiddleware := auth.NewMiddleware(tokenService)

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}
