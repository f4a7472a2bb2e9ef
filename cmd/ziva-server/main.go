package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zivahealth/ziva/internal/config"
	"github.com/zivahealth/ziva/internal/domain/assessment"
	"github.com/zivahealth/ziva/internal/domain/catalog"
	"github.com/zivahealth/ziva/internal/domain/settings"
	"github.com/zivahealth/ziva/internal/domain/sharing"
	"github.com/zivahealth/ziva/internal/domain/wallet"
	"github.com/zivahealth/ziva/internal/platform/auth"
	"github.com/zivahealth/ziva/internal/platform/db"
	"github.com/zivahealth/ziva/internal/platform/middleware"
	"github.com/zivahealth/ziva/internal/platform/notification"
	"github.com/zivahealth/ziva/internal/platform/verification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ziva-server",
		Short: "Ziva sexual health testing platform API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a backup or write a forward migration that reverses the change.")
			return nil
		},
	})

	return cmd
}

// tokenCmd issues a signed JWT for local testing against a server running
// with a configured JWT_SECRET.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			roles, _ := cmd.Flags().GetStringSlice("roles")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET must be set to issue tokens")
			}

			token, err := auth.SignToken(auth.JWTConfig{
				Issuer:     cfg.JWTIssuer,
				SigningKey: []byte(cfg.JWTSecret),
			}, subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("subject", "dev-user", "Token subject (user ID)")
	cmd.Flags().StringSlice("roles", []string{auth.RoleAdmin}, "Roles to embed in the token")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.JWTIssuer,
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Notification dispatch. Senders write to the log until real email/SMS
	// providers are integrated; a background pool retries failed sends.
	templates := notification.NewTemplateEngine()
	dispatcher := notification.NewDispatcher(
		&notification.LogEmailSender{Logger: logger},
		&notification.LogSMSSender{Logger: logger},
		templates,
		cfg.NotifyMaxAttempts,
	)
	retryCtx, retryCancel := context.WithCancel(ctx)
	defer retryCancel()
	dispatcher.StartRetryWorkers(retryCtx, cfg.NotifyWorkers, time.Minute)

	// Bank account verification. Production requires a real resolver
	// endpoint; development falls back to a static resolver seeded with
	// test accounts.
	var verifier verification.AccountVerifier
	if cfg.BankVerifyURL != "" {
		verifier = verification.NewHTTPVerifier(cfg.BankVerifyURL, cfg.BankVerifyAPIKey)
	} else {
		static := verification.NewStaticVerifier()
		static.Register("Access Bank", "0123456789", "Ziva Test Center")
		static.Register("GTBank", "9876543210", "Demo Diagnostics Ltd")
		verifier = static
		logger.Warn().Msg("BANK_VERIFY_URL not set; using static dev account resolver")
	}

	// Payment gateway. The dev gateway approves every payout.
	var gateway wallet.PaymentGateway = &wallet.DevGateway{}
	if cfg.IsProduction() {
		logger.Warn().Msg("no production payment gateway configured; payouts use the dev gateway")
	}

	// -- Domain services --

	// Platform settings (also the live fee policy for withdrawals)
	settingsRepo := settings.NewRepoPG(pool)
	settingsSvc := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(settingsSvc)
	settingsHandler.RegisterRoutes(apiV1)

	// Catalog: test standards, add-ons, diagnostic centers, pricing
	standardRepo := catalog.NewStandardRepoPG(pool)
	addOnRepo := catalog.NewAddOnRepoPG(pool)
	centerRepo := catalog.NewCenterRepoPG(pool)
	catalogSvc := catalog.NewService(standardRepo, addOnRepo, centerRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)
	catalogHandler.RegisterRoutes(apiV1)

	// Assessment codes
	codeRepo := assessment.NewRepoPG(pool)
	codeSvc := assessment.NewService(codeRepo, dispatcher)
	codeHandler := assessment.NewHandler(codeSvc)
	codeHandler.RegisterRoutes(apiV1)

	// Result sharing
	grantRepo := sharing.NewRepoPG(pool)
	shareSvc := sharing.NewService(grantRepo, dispatcher)
	shareHandler := sharing.NewHandler(shareSvc)
	shareHandler.RegisterRoutes(apiV1)

	// Wallets and withdrawals
	walletRepo := wallet.NewWalletRepoPG(pool)
	withdrawalRepo := wallet.NewWithdrawalRepoPG(pool)
	walletSvc := wallet.NewService(walletRepo, withdrawalRepo, verifier, gateway, settingsSvc, dispatcher)
	walletHandler := wallet.NewHandler(walletSvc)
	walletHandler.RegisterRoutes(apiV1)

	// Notification admin surface
	notifyHandler := notification.NewHandler(dispatcher)
	notifyAdmin := apiV1.Group("", auth.RequireRole(auth.RoleAdmin))
	notifyHandler.RegisterRoutes(notifyAdmin)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
