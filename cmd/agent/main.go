package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
	"github.com/neorya/arena/internal/agent"
	"github.com/neorya/arena/internal/config"
	"github.com/neorya/arena/internal/events"
	"github.com/neorya/arena/internal/workspace"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("api_url", cfg.APIBaseURL).
		Int("participant_id", cfg.ParticipantID).
		Str("nats_url", cfg.NATSUrl).
		Msg("starting arena agent")

	client := arena.NewClient(cfg.APIBaseURL, arena.WithToken(cfg.APIToken))

	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATSUrl
	publisher, err := events.NewJetStreamPublisher(jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	drafts := workspace.NewRedisDraftStore(rdb, 6*time.Hour)

	deps := agent.Deps{
		Status:       client,
		Reviews:      client,
		Results:      client,
		Sink:         publisher,
		PollInterval: cfg.PollInterval,
		WorkspaceFor: func(gameID int) agent.CodingWorkspace {
			return workspace.New(client, drafts, cfg.ParticipantID, gameID)
		},
	}

	a := agent.New(deps, cfg.ParticipantID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("agent stopped")
			return
		}
		log.Fatal().Err(err).Msg("agent failed")
	}

	log.Info().Msg("session complete")
}
