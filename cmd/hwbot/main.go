package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/conf"
	"github.com/programme-lv/hwlog/discord"
	"github.com/programme-lv/hwlog/http"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/tracker"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	if err := run(ctx); err != nil {
		log.Error("hwbot stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	cfg, err := conf.Load()
	if err != nil {
		return err
	}
	policy, err := cfg.Bot.ReactionPolicy()
	if err != nil {
		return err
	}

	awsCfg, err := conf.NewAwsConfig(ctx, cfg.AwsRegion)
	if err != nil {
		return err
	}
	token, err := cfg.ResolveDiscordToken(ctx, secretsmanager.NewFromConfig(awsCfg))
	if err != nil {
		return err
	}

	ddb := dynamodb.NewFromConfig(awsCfg)
	classes := classdir.NewCachedDirectory(
		classdir.NewDdbClassTable(ddb, cfg.ClassTableName),
		classdir.DefaultCacheTTL)
	store := hwsubm.NewDdbSubmTable(ddb, cfg.HwTableName, cfg.HwWindowIndex)

	session, err := discord.NewSession(token)
	if err != nil {
		return err
	}
	platform := discord.NewPlatform(session)

	gen := logbook.NewGenerator(classes, store)
	logbooks := logbook.NewService(gen,
		logbook.NewDeliverer(platform, cfg.Bot.OutputChannels, cfg.Bot.ChunkLimit()))
	hwTracker := tracker.New(classes, store, platform, policy)
	bot := discord.NewBot(session, hwTracker, logbooks, classes, cfg.CommandGuildID)

	log.Info("starting hwbot",
		"mode", string(policy.Mode),
		"student", string(policy.Student),
		"validate_range", policy.ValidateRange,
		"class_table", cfg.ClassTableName,
		"hw_table", cfg.HwTableName)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	if len(cfg.JwtKey) > 0 {
		srv := http.NewHttpServer(gen, classes, http.Options{
			JwtKey:        []byte(cfg.JwtKey),
			StatsInterval: 5 * time.Minute,
		})
		g.Go(func() error {
			log.Info("starting http server", "address", cfg.HttpAddr)
			return srv.Start(ctx, cfg.HttpAddr)
		})
	} else {
		log.Warn("JWT_KEY is not set, http server disabled")
	}
	return g.Wait()
}
