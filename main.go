package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tokoadmin/internal/app"
	"tokoadmin/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

func main() {
	cfg, err := config.Load(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	app.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("error while releasing resources")
		}
	}()

	// audit trail of product changes
	if a.MQ != nil {
		err := a.MQ.ConsumeProductEvents(func(msg amqp.Delivery) error {
			log.Info().
				Str("routing_key", msg.RoutingKey).
				RawJSON("event", msg.Body).
				Msg("product event")
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to start product event consumer")
		}
	}

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := a.Fiber.Listen(cfg.AppPort); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := a.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
