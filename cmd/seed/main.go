// seed creates a demo student and a parent linked to it. Idempotent: an
// account whose email already exists is left alone.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/config"
	"psychaid/backend/internal/db"
	identityservice "psychaid/backend/internal/identity/service"
	moodrepo "psychaid/backend/internal/mood/repository"
	moodservice "psychaid/backend/internal/mood/service"
	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/security"
	sessionrepo "psychaid/backend/internal/session/repository"
	userrepo "psychaid/backend/internal/user/repository"
)

const (
	studentEmail = "student@example.com"
	parentEmail  = "parent@example.com"
	demoPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	secret, err := security.LoadSecret(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("jwt secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer conn.Close()

	v := validation.New()
	tokens := security.NewTokenProvider(secret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	auth := identityservice.NewAuthService(userrepo.NewPostgresRepository(conn), sessionrepo.NewMemoryRevocationStore(),
		security.NewHasher(cfg.BcryptCost), tokens, v, log)
	mood := moodservice.NewMoodService(moodrepo.NewPostgresRepository(conn), v, log)

	accounts := []identityservice.SignupInput{
		{Email: studentEmail, Password: demoPassword, Name: "Sam", LastName: "Student", Role: "student"},
		{Email: parentEmail, Password: demoPassword, Name: "Pat", LastName: "Parent", Role: "parent", ChildEmail: studentEmail},
	}
	for _, in := range accounts {
		res, err := auth.Signup(ctx, in)
		if errors.Is(err, userrepo.ErrEmailTaken) {
			log.WithField("email", in.Email).Info("seed: account exists, skipping")
			continue
		}
		if err != nil {
			log.WithError(err).WithField("email", in.Email).Fatal("seed: signup")
		}
		log.WithFields(logrus.Fields{"email": in.Email, "user_id": res.User.ID}).Info("seed: account created")
		if in.Role == "student" {
			for _, m := range []string{"calm", "anxious", "happy"} {
				if _, err := mood.Record(ctx, res.User.ID, moodservice.RecordInput{Mood: m}); err != nil {
					log.WithError(err).Fatal("seed: mood")
				}
			}
		}
	}
	log.Info("seed complete")
}
