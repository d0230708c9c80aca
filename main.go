package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "slack-insight",
		Usage:   "Slackの会話履歴から感情の傾向を集計し、関連メッセージを検索するボット",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default: ./slack-insight.toml, ~/.slack-insight.toml)",
				EnvVars: []string{"INSIGHT_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			sentimentCommand(),
			searchCommand(),
			configCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %s\n", err)
		os.Exit(1)
	}
}
