package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/configs"
	"github.com/Rakhulsr/go-tours/app/db/seeders"
	"github.com/Rakhulsr/go-tours/app/logger"
	"github.com/Rakhulsr/go-tours/app/models/migrations"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/routes"
	"github.com/Rakhulsr/go-tours/app/services"
	"github.com/Rakhulsr/go-tours/app/storage"
	"github.com/Rakhulsr/go-tours/app/utils/renderer"
	"github.com/Rakhulsr/go-tours/app/utils/sessions"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "natours",
		Usage:  "Tour booking server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					env := setup()
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info().Msg("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Load tour, user and review fixtures plus optional fake users",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Value: "data/tours.yaml",
						Usage: "fixture file to load",
					},
					&cli.IntFlag{
						Name:  "fake-users",
						Value: 0,
						Usage: "number of generated users, each reviewing a random tour",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					env := setup()
					fx, err := seeders.LoadFixtures(c.String("file"))
					if err != nil {
						return err
					}
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					_, err = seeders.DBSeed(ctx, db, fx, c.Int("fake-users"))
					return err
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication and encryption keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.WriteSessionKeys(os.Stdout)
				},
			},
		},
	}
}

func RunCli() {
	if err := NewCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setup() configs.ENV {
	env := configs.LoadEnv()
	logger.Configure(logger.Config{Level: env.LogLevel, Pretty: !env.IsProduction()})
	return env
}

func serve(ctx context.Context, _ *cli.Command) error {
	env := setup()

	if env.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		return err
	}

	photos, err := storage.NewMinioStorage(env)
	if err != nil {
		return err
	}
	if err := photos.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("prepare photo bucket: %w", err)
	}

	v := validation.New()
	userRepo := repositories.NewUserRepository(db)
	tourRepo := repositories.NewTourRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	mailer := services.NewMailer(services.MailerConfigFromEnv(env))
	tourService := services.NewTourService(tourRepo, userRepo, v)
	userService := services.NewUserService(userRepo, v, mailer, photos, env.AppBaseURL)
	reviewService := services.NewReviewService(reviewRepo, tourRepo, v)
	bookingService := services.NewBookingService(
		bookingRepo,
		tourRepo,
		configs.NewMidtransSnapClient(env),
		configs.NewMidtransCoreAPIClient(env),
		env.AppBaseURL,
	)

	handler := routes.NewRouter(
		routes.Services{
			Tours:    tourService,
			Reviews:  reviewService,
			Users:    userService,
			Bookings: bookingService,
		},
		routes.Options{
			Render:      renderer.New(renderer.Options{Development: !env.IsProduction()}),
			Tokens:      auth.NewTokenService(env.JWTSecret, env.JWTExpires),
			Sessions:    sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey),
			Logger:      log.Logger,
			CSRFKey:     keys.AuthKey[:32],
			Secure:      env.IsProduction(),
			CORSOrigins: []string{env.AppBaseURL},
		},
	)

	server := &http.Server{
		Addr:              env.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", env.AppEnv).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
	return nil
}
