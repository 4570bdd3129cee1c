package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campusbuzz/event-registration/internal/auth"
	"github.com/campusbuzz/event-registration/internal/config"
	"github.com/campusbuzz/event-registration/internal/database"
	"github.com/campusbuzz/event-registration/internal/handler"
	"github.com/campusbuzz/event-registration/internal/mailer"
	"github.com/campusbuzz/event-registration/internal/queue"
	"github.com/campusbuzz/event-registration/internal/repository"
	"github.com/campusbuzz/event-registration/internal/router"
	"github.com/campusbuzz/event-registration/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	reset := service.NewResetService(users, mail, cfg.BaseURL, cfg.BcryptCost)
	registration := service.NewRegistrationService(events)

	authHandler := handler.NewAuthHandler(users, tokens, reset, cfg.BcryptCost)
	eventHandler := handler.NewEventHandler(events, registration)

	// Redis is optional: rate limiting and caching disable themselves
	// when the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	// Background consumer mirrors registration activity into the local
	// audit log.
	go queue.StartActivityConsumer()

	e := echo.New()
	router.Register(e, authHandler, eventHandler, tokens, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
