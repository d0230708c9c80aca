// Package logging はzerologのロガーを設定から組み立てる
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config はロガーの設定
type Config struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console | json
}

// New は設定に従ったロガーを作成する。不正なレベルはinfoとして扱う
func New(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writer := out
	if !strings.EqualFold(cfg.Format, "json") {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// SlackAdapter はslack-goのログ出力をzerologに流す
type SlackAdapter struct {
	logger zerolog.Logger
}

// NewSlackAdapter は新しいSlackAdapterを作成する
func NewSlackAdapter(logger zerolog.Logger) *SlackAdapter {
	return &SlackAdapter{logger: logger.With().Str("component", "slack-api").Logger()}
}

// Output はslack.OptionLogが要求するインターフェースを満たす
func (a *SlackAdapter) Output(calldepth int, s string) error {
	a.logger.Debug().Msg(strings.TrimRight(s, "\n"))
	return nil
}
