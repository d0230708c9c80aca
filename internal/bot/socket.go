package bot

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// SocketRunner はSocket Modeでスラッシュコマンドを受信する
type SocketRunner struct {
	socketMode *socketmode.Client
	handler    *Handler
	logger     zerolog.Logger
}

// NewSocketRunner は新しいSocketRunnerを作成する
// clientはslack.OptionAppLevelTokenでアプリトークンが設定されている必要がある
func NewSocketRunner(client *slack.Client, handler *Handler, logger zerolog.Logger, debug bool) *SocketRunner {
	return &SocketRunner{
		socketMode: socketmode.New(client, socketmode.OptionDebug(debug)),
		handler:    handler,
		logger:     logger.With().Str("transport", "socket").Logger(),
	}
}

// Run はctxがキャンセルされるまでイベントを処理する。終了時は処理中のコマンドを待つ
func (r *SocketRunner) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.consume(loopCtx, ctx, r.socketMode.Events)
	}()

	err := r.socketMode.RunContext(ctx)

	// イベントループが止まってからでないとDispatchとWaitが競合する
	stopLoop()
	<-done
	r.handler.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// consume はloopCtxが終わるかeventsが閉じられるまでイベントを処理する
// コマンドにはloopCtxではなくcmdCtxを渡す
func (r *SocketRunner) consume(loopCtx, cmdCtx context.Context, events <-chan socketmode.Event) {
	for {
		select {
		case <-loopCtx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(cmdCtx, evt)
		}
	}
}

func (r *SocketRunner) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		r.logger.Info().Msg("connecting to socket mode")

	case socketmode.EventTypeConnected:
		r.logger.Info().Msg("connected to socket mode")

	case socketmode.EventTypeConnectionError:
		r.logger.Warn().Interface("data", evt.Data).Msg("socket mode connection error")

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			r.logger.Warn().Msg("unexpected slash command payload")
			return
		}
		r.socketMode.Ack(*evt.Request)
		r.handler.Dispatch(ctx, cmd)
	}
}
