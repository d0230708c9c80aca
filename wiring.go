package main

import (
	"math"
	"os"

	"github.com/Tattsum/slack-insight/internal/config"
	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/Tattsum/slack-insight/internal/infrastructure/inference"
	slackinfra "github.com/Tattsum/slack-insight/internal/infrastructure/slack"
	"github.com/Tattsum/slack-insight/internal/logging"
	"github.com/Tattsum/slack-insight/internal/service"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

// components はコマンドから使う組み立て済みの部品
type components struct {
	client  *slack.Client
	insight *service.Insight
}

// loadConfig は --config の指定に従って設定とロガーを用意する
func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Log, os.Stderr), nil
}

func buildComponents(cfg *config.Config, logger zerolog.Logger) (*components, error) {
	table := domain.DefaultBucketTable
	if err := table.Validate(); err != nil {
		return nil, err
	}

	opts := []slack.Option{slack.OptionDebug(cfg.Slack.Debug), slack.OptionLog(logging.NewSlackAdapter(logger))}
	if cfg.Slack.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.Slack.AppToken))
	}
	client := slack.New(cfg.Slack.BotToken, opts...)

	messageRepo := slackinfra.NewMessageRepository(client, logger,
		slackinfra.WithLimiter(newLimiter(cfg.Collector.RequestsPerSecond)),
		slackinfra.WithPageLimit(cfg.Collector.PageLimit),
	)
	collector := service.NewCollector(
		slackinfra.NewChannelRepository(client, cfg.Collector.PageLimit),
		messageRepo,
		logger,
		cfg.Collector.Concurrency,
	)

	inferenceClient := inference.NewClient(inference.Config{
		BaseURL:       cfg.Inference.BaseURL,
		SentimentPath: cfg.Inference.SentimentPath,
		SearchPath:    cfg.Inference.SearchPath,
		Timeout:       cfg.Inference.Timeout,
	}, logger)

	insight := service.NewInsight(
		collector,
		service.NewSentimentAggregator(table),
		inferenceClient,
		inferenceClient,
		slackinfra.NewPermalinkResolver(client),
		slackinfra.NewUserRepository(client),
	)

	return &components{
		client:  client,
		insight: insight,
	}, nil
}

// newLimiter は1秒あたりのリクエスト数からリミッタを作る。0以下は無制限
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 || math.IsInf(rps, 1) {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
