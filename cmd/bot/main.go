package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kudoslabs/discord-kudos-bot/config"
	"github.com/kudoslabs/discord-kudos-bot/discord"
	"github.com/kudoslabs/discord-kudos-bot/kudos"
	"github.com/kudoslabs/discord-kudos-bot/ledger"
	"github.com/kudoslabs/discord-kudos-bot/postgres"
	"github.com/kudoslabs/discord-kudos-bot/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath := flag.String("config", "config.toml", "Path to the TOML configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Could not load configuration", "error", err.Error())
		os.Exit(1)
	}

	pg, err := postgres.Connect(ctx, cfg.Postgres.ConnString)
	if err != nil {
		logger.Error("Could not connect to PostgreSQL", "error", err.Error())
		os.Exit(1)
	}

	cache, err := redis.Connect(ctx, cfg.Redis.Address)
	if err != nil {
		logger.Error("Could not connect to Redis", "error", err.Error())
		os.Exit(1)
	}

	ledgerClient := &ledger.Client{
		BaseURL:    cfg.Ledger.BaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}

	session, err := discord.New(cfg.Discord.Token, logger)
	if err != nil {
		logger.Error("Could not create Discord session", "error", err.Error())
		os.Exit(1)
	}

	bot := &kudos.Bot{
		Logger:    logger,
		Registry:  kudos.NewEmojiRegistry(cfg.Kudos.EmojiDefinitions(), cfg.Kudos.UseEmojiNames),
		Directory: pg,
		Cache:     cache,
		Gateway:   ledgerClient,
		Platform:  session,
		Renderer:  kudos.Renderer{Default: cfg.Kudos.DefaultMessage},
	}

	commands := &discord.Commands{
		Logger: logger,
		Store:  pg,
		Cache:  cache,
		Ledger: ledgerClient,
	}

	if err := session.Open(bot, commands); err != nil {
		logger.Error("Could not open Discord session", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Listening for reactions")
	<-ctx.Done()
	stop()

	if err := session.Close(); err != nil {
		logger.Error("Could not close Discord session", "error", err.Error())
	}
	bot.Wait()
}
