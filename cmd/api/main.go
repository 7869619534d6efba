package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/pattarapol/jotter-api/internal/config"
	"github.com/pattarapol/jotter-api/internal/handler"
	"github.com/pattarapol/jotter-api/internal/notification"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/internal/usecase"
	"github.com/pattarapol/jotter-api/shared/auth"
	"github.com/pattarapol/jotter-api/shared/mailer"
	"github.com/pattarapol/jotter-api/shared/provider"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.MongoDatabase)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndex()

	userRepo := repository.NewUserMongoRepository(indexCtx, &logger, db)
	keyRepo := repository.NewOneTimeKeyMongoRepository(indexCtx, &logger, db, cfg.Key.TTL)
	noteRepo := repository.NewNoteMongoRepository(db)
	taskRepo := repository.NewTaskMongoRepository(db)

	m := mailer.NewMailer(&logger)
	notifier := notification.NewEmailNotifier(m, &logger, cfg.AppBaseURL, cfg.Key.TTL)

	verifiers := map[string]provider.Verifier{
		provider.Google: provider.NewGoogleVerifier(
			&logger,
			cfg.Provider.GoogleUserInfoURL,
			cfg.Provider.GoogleRevokeURL,
		),
		provider.Facebook: provider.NewFacebookVerifier(&logger, cfg.Provider.FacebookGraphURL),
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	issuer := auth.NewTokenIssuer(
		jwtAuth,
		cfg.Token.Issuer,
		cfg.Token.AccessTokenSecret,
		cfg.Token.RefreshTokenSecret,
		cfg.Token.AccessTokenExpiresIn,
		cfg.Token.RefreshTokenExpiresIn,
	)

	authUsecase := usecase.NewAuthUsecase(userRepo, issuer, verifiers, notifier)
	verificationUsecase := usecase.NewVerificationUsecase(userRepo, keyRepo, notifier)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, keyRepo, notifier)
	accountUsecase := usecase.NewAccountUsecase(userRepo, verifiers, notifier)
	noteUsecase := usecase.NewNoteUsecase(noteRepo)
	taskUsecase := usecase.NewTaskUsecase(taskRepo)

	authHandler := handler.NewAuthHandler(
		authUsecase,
		verificationUsecase,
		passwordResetUsecase,
		issuer,
		cfg.Token.RefreshTokenExpiresIn,
		&logger,
	)
	accountHandler := handler.NewAccountHandler(accountUsecase, &logger)
	noteHandler := handler.NewNoteHandler(noteUsecase, &logger)
	taskHandler := handler.NewTaskHandler(taskUsecase, &logger)

	router := handler.NewRouter(authHandler, accountHandler, noteHandler, taskHandler, issuer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to serve http")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down http server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down http server gracefully")
	}
}
