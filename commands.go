package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Tattsum/slack-insight/internal/bot"
	"github.com/Tattsum/slack-insight/internal/config"
	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/Tattsum/slack-insight/internal/presentation"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

var dateFlags = []cli.Flag{
	&cli.StringFlag{Name: "start", Usage: "開始日（YYYY-MM-DD形式、省略可）"},
	&cli.StringFlag{Name: "end", Usage: "終了日（YYYY-MM-DD形式、省略可）"},
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "スラッシュコマンドを受け付けるボットを起動する",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("設定が不正です: %w", err)
			}

			comps, err := buildComponents(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := bot.NewHandler(comps.insight, bot.NewEphemeralResponder(comps.client), logger)
			logger.Info().Str("mode", cfg.Slack.Mode).Str("version", version).Msg("slack-insight starting")

			switch cfg.Slack.Mode {
			case config.ModeHTTP:
				return bot.NewHTTPServer(handler, cfg.Slack.SigningSecret, logger).Run(ctx, cfg.HTTP.Addr)
			default:
				return bot.NewSocketRunner(comps.client, handler, logger, cfg.Slack.Debug).Run(ctx)
			}
		},
	}
}

func sentimentCommand() *cli.Command {
	return &cli.Command{
		Name:  "sentiment",
		Usage: "感情の傾向を集計して表示する",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "対象ユーザーID（省略時は全員）"},
		}, dateFlags...),
		Action: func(c *cli.Context) error {
			comps, ctx, err := oneShot(c)
			if err != nil {
				return err
			}
			dateRange, err := parseDateRange(c.String("start"), c.String("end"))
			if err != nil {
				return err
			}

			report, err := comps.insight.SentimentReport(ctx, c.String("user"), dateRange)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, presentation.SentimentText(report))
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "クエリに関連するメッセージを検索する",
		ArgsUsage: "QUERY",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "n", Value: 5, Usage: "表示する件数"},
		}, dateFlags...),
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return fmt.Errorf("検索クエリを指定してください")
			}
			if c.Int("n") <= 0 {
				return domain.ErrInvalidResultCount
			}

			comps, ctx, err := oneShot(c)
			if err != nil {
				return err
			}
			dateRange, err := parseDateRange(c.String("start"), c.String("end"))
			if err != nil {
				return err
			}

			report, err := comps.insight.SmartSearch(ctx, query, c.Int("n"), dateRange)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, presentation.SearchText(report))
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "設定ファイルを管理する",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "サンプルの設定ファイルを作成する",
				ArgsUsage: "[FILE]",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = "slack-insight.toml"
					}
					if err := config.InitConfig(path); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "設定ファイルを作成しました: %s\n", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "読み込まれた設定を秘密情報を伏せて表示する",
				Action: func(c *cli.Context) error {
					cfg, _, err := loadConfig(c)
					if err != nil {
						return err
					}
					out, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(out))
					return nil
				},
			},
		},
	}
}

// oneShot はCLIから1回だけ分析するための部品とロガー付きのコンテキストを用意する
func oneShot(c *cli.Context) (*components, context.Context, error) {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateOneShot(); err != nil {
		return nil, nil, fmt.Errorf("設定が不正です: %w", err)
	}

	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	logger = logger.With().
		Str("invocation_id", uuid.NewString()).
		Str("command", c.Command.Name).
		Logger()
	return comps, logger.WithContext(c.Context), nil
}

// parseDateRange はYYYY-MM-DD形式の開始日と終了日を日付範囲に変換する
// 終了日はその日の終わり（23:59:59）までを含む
func parseDateRange(start, end string) (*domain.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	var dr domain.DateRange
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, time.Local)
		if err != nil {
			return nil, fmt.Errorf("開始日時の形式が無効です: %w", err)
		}
		dr.Start = t
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, time.Local)
		if err != nil {
			return nil, fmt.Errorf("終了日時の形式が無効です: %w", err)
		}
		dr.End = t.Add(24*time.Hour - time.Second)
	}

	if !dr.IsValid() {
		return nil, fmt.Errorf("開始日が終了日より後になっています")
	}
	return &dr, nil
}
