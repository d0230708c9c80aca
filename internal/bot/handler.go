package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/Tattsum/slack-insight/internal/presentation"
	"github.com/Tattsum/slack-insight/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// 利用者向けの通知文
const (
	upstreamNotice   = ":warning: The analysis service is unavailable right now. Please try again later."
	noMessagesNotice = "No messages matched. Nothing to analyze."
	failureNotice    = ":warning: Something went wrong while handling your command."
)

// Insighter はコマンドが呼び出すユースケース
type Insighter interface {
	SentimentReport(ctx context.Context, authorID string, dateRange *domain.DateRange) (*service.SentimentReport, error)
	SmartSearch(ctx context.Context, query string, n int, dateRange *domain.DateRange) (*service.SearchReport, error)
}

// Responder はコマンドを実行した利用者だけに返信する
type Responder interface {
	Respond(ctx context.Context, channelID, userID, fallback string, blocks []slack.Block) error
}

// Handler はスラッシュコマンドを呼び出しごとに独立したgoroutineで処理する
type Handler struct {
	insight   Insighter
	responder Responder
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// NewHandler は新しいHandlerを作成する
func NewHandler(insight Insighter, responder Responder, logger zerolog.Logger) *Handler {
	return &Handler{
		insight:   insight,
		responder: responder,
		logger:    logger,
	}
}

// Dispatch は受信したコマンドを非同期に処理する。受信側はすぐにackできる
func (h *Handler) Dispatch(ctx context.Context, cmd slack.SlashCommand) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.Handle(ctx, cmd)
	}()
}

// Wait は処理中のコマンドがすべて終わるまで待つ
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Handle は1件のコマンドを同期的に処理して返信する
func (h *Handler) Handle(ctx context.Context, cmd slack.SlashCommand) {
	logger := h.logger.With().
		Str("invocation_id", uuid.NewString()).
		Str("command", cmd.Command).
		Str("user_id", cmd.UserID).
		Str("channel_id", cmd.ChannelID).
		Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("command handler panicked")
			h.notify(ctx, cmd, failureNotice)
		}
	}()

	parsed, err := ParseCommand(cmd.Command, cmd.Text)
	if err != nil {
		var usageErr *UsageError
		switch {
		case errors.As(err, &usageErr):
			logger.Info().Str("reason", usageErr.Reason).Msg("invalid command arguments")
			h.notify(ctx, cmd, usageErr.Usage)
		case errors.Is(err, ErrUnknownCommand):
			logger.Warn().Msg("unknown command")
			h.notify(ctx, cmd, "Unknown command: "+cmd.Command)
		default:
			logger.Error().Err(err).Msg("command parse failed")
			h.notify(ctx, cmd, failureNotice)
		}
		return
	}

	logger.Info().Msg("command received")

	switch parsed.Kind {
	case KindSentiment:
		report, err := h.insight.SentimentReport(ctx, parsed.AuthorID, nil)
		if err != nil {
			h.fail(ctx, cmd, err)
			return
		}
		h.respond(ctx, cmd, presentation.SentimentText(report), presentation.SentimentBlocks(report))

	case KindSearch:
		report, err := h.insight.SmartSearch(ctx, parsed.Query, parsed.N, nil)
		if err != nil {
			h.fail(ctx, cmd, err)
			return
		}
		h.respond(ctx, cmd, presentation.SearchText(report), presentation.SearchBlocks(report))
	}
}

// fail はエラーの種類に応じた通知を返す。上流の詳細は利用者に見せない
func (h *Handler) fail(ctx context.Context, cmd slack.SlashCommand, err error) {
	logger := zerolog.Ctx(ctx)

	switch {
	case errors.Is(err, domain.ErrNoMessages):
		logger.Info().Msg("no messages to analyze")
		h.notify(ctx, cmd, noMessagesNotice)
	case errors.Is(err, domain.ErrInvalidResultCount):
		h.notify(ctx, cmd, SearchUsage)
	case errors.Is(err, domain.ErrUpstream):
		logger.Error().Err(err).Msg("inference service failed")
		h.notify(ctx, cmd, upstreamNotice)
	case errors.Is(err, context.Canceled):
		logger.Warn().Msg("command canceled")
	default:
		logger.Error().Err(err).Msg("command failed")
		h.notify(ctx, cmd, failureNotice)
	}
}

func (h *Handler) notify(ctx context.Context, cmd slack.SlashCommand, text string) {
	h.respond(ctx, cmd, text, presentation.NoticeBlocks(text))
}

func (h *Handler) respond(ctx context.Context, cmd slack.SlashCommand, fallback string, blocks []slack.Block) {
	if err := h.responder.Respond(ctx, cmd.ChannelID, cmd.UserID, fallback, blocks); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to post response")
	}
}

// EphemeralResponder はchat.postEphemeralで返信する
type EphemeralResponder struct {
	client *slack.Client
}

// NewEphemeralResponder は新しいEphemeralResponderを作成する
func NewEphemeralResponder(client *slack.Client) *EphemeralResponder {
	return &EphemeralResponder{client: client}
}

// Respond はfallbackを通知用テキスト、blocksを本文として投稿する
func (r *EphemeralResponder) Respond(ctx context.Context, channelID, userID, fallback string, blocks []slack.Block) error {
	_, err := r.client.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	)
	return err
}
