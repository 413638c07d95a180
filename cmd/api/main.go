package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jobtrail/jobtrail/internal/auth"
	"github.com/jobtrail/jobtrail/internal/config"
	"github.com/jobtrail/jobtrail/internal/database"
	"github.com/jobtrail/jobtrail/internal/handlers"
	"github.com/jobtrail/jobtrail/internal/services"
	"github.com/jobtrail/jobtrail/internal/storage/postgres"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Missing .env is fine outside local development.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("database connection established")

	provider := auth.NewSupabaseClient(auth.Config{
		URL:       cfg.SupabaseURL,
		AnonKey:   cfg.SupabaseAnonKey,
		JWTSecret: cfg.SupabaseJWTSecret,
	})

	svc := services.NewApplicationService(postgres.NewStore(db), log)
	router := handlers.NewRouter(cfg, provider, svc, db, log)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server failed to start")
	}
}
