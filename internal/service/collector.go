package service

import (
	"context"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultCollectConcurrency = 4

// CollectOptions は収集対象の絞り込み条件
type CollectOptions struct {
	AuthorID  string // 空の場合は全員
	DateRange *domain.DateRange
}

// CollectionResult は収集結果
type CollectionResult struct {
	Messages []domain.Message
	Channels int
	Failures []domain.ChannelFailure
}

// Collector はボットから見える全チャンネルの履歴を集めるサービス
type Collector struct {
	channelRepo domain.ChannelRepository
	messageRepo domain.MessageRepository
	logger      zerolog.Logger
	concurrency int
}

// NewCollector は新しいCollectorを作成する
func NewCollector(channelRepo domain.ChannelRepository, messageRepo domain.MessageRepository, logger zerolog.Logger, concurrency int) *Collector {
	if concurrency <= 0 {
		concurrency = defaultCollectConcurrency
	}
	return &Collector{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Collect は条件に合うメッセージをチャンネルの列挙順、チャンネル内は取得順で返す
// チャンネル一覧の取得失敗はエラーになるが、個別チャンネルの履歴取得失敗は
// Failuresに記録して残りのチャンネルの処理を続ける
func (c *Collector) Collect(ctx context.Context, opts CollectOptions) (*CollectionResult, error) {
	channels, err := c.channelRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("チャンネル一覧の取得に失敗しました: %w", err)
	}

	perChannel := make([][]domain.Message, len(channels))
	errs := make([]error, len(channels))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, channel := range channels {
		g.Go(func() error {
			messages, err := c.messageRepo.FindByChannel(ctx, channel.ID, opts.DateRange)
			if err != nil {
				// 兄弟の取得を止めないようにnilを返す
				errs[i] = err
				return nil
			}
			perChannel[i] = qualifying(messages, opts)
			return nil
		})
	}
	_ = g.Wait()

	// キャンセル時の失敗はチャンネル単位の障害として扱わない
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &CollectionResult{Channels: len(channels)}
	for i, channel := range channels {
		if errs[i] != nil {
			c.logger.Warn().
				Err(errs[i]).
				Str("channel", channel.ID).
				Str("channel_name", channel.Name).
				Msg("skipping channel: history fetch failed")
			result.Failures = append(result.Failures, domain.ChannelFailure{ChannelID: channel.ID, Err: errs[i]})
			continue
		}
		result.Messages = append(result.Messages, perChannel[i]...)
	}

	c.logger.Debug().
		Int("channels", result.Channels).
		Int("failed", len(result.Failures)).
		Int("messages", len(result.Messages)).
		Str("author", opts.AuthorID).
		Msg("collection finished")

	return result, nil
}

// qualifying はボット・システムメッセージを除き、投稿者と日付範囲で絞り込む
// Slackのlatestは排他的なので、終了時刻ちょうどの扱いはここで揃える
func qualifying(messages []*domain.Message, opts CollectOptions) []domain.Message {
	out := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || !msg.Qualifies(opts.AuthorID) {
			continue
		}
		if opts.DateRange != nil && !opts.DateRange.Contains(msg.Timestamp) {
			continue
		}
		out = append(out, *msg)
	}
	return out
}
