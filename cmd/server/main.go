package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/api"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/bot"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/config"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/database"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/game"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/logging"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/referral"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/store"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/worker"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel)

	if cfg.BotToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is not set")
		os.Exit(1)
	}
	log.Info("starting", "bot_token", logging.MaskToken(cfg.BotToken), "listen", cfg.ListenAddr)

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Error("could not connect to redis", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userStore := store.NewPostgres(db)

	tgBot, err := bot.NewBot(cfg.BotToken, userStore, rdb, log, cfg.WebAppURL)
	if err != nil {
		log.Error("could not create bot", "error", err)
		os.Exit(1)
	}

	ledger := referral.NewLedger(userStore, log, tgBot)
	invoicer := game.NewStarsInvoicer(tgBot.Instance)
	svc := game.NewService(userStore, ledger, invoicer, cfg.BotToken, log)
	server := api.NewServer(log, svc, rdb, cfg)

	go tgBot.Start(ctx)
	go worker.NewReminder(db, rdb, tgBot.Instance, log).Start(ctx)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}
	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	log.Info("service started")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
