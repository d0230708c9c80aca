package slack

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const (
	defaultPageLimit    = 1000
	defaultMaxRetries   = 3
	defaultFallbackWait = 10 * time.Second
)

// MessageRepository はSlack APIを使用してメッセージを取得するリポジトリ
type MessageRepository struct {
	client       *slack.Client
	limiter      *rate.Limiter
	logger       zerolog.Logger
	pageLimit    int
	maxRetries   int
	fallbackWait time.Duration
}

// MessageRepositoryOption はMessageRepositoryの設定を変更する
type MessageRepositoryOption func(*MessageRepository)

// WithLimiter はconversations.historyの呼び出し間隔を制御する
func WithLimiter(limiter *rate.Limiter) MessageRepositoryOption {
	return func(r *MessageRepository) { r.limiter = limiter }
}

// WithPageLimit は1ページあたりの取得件数を設定する
func WithPageLimit(limit int) MessageRepositoryOption {
	return func(r *MessageRepository) {
		if limit > 0 {
			r.pageLimit = limit
		}
	}
}

// WithRetry はレート制限時の再試行回数と、Retry-Afterが無い場合の待機時間を設定する
func WithRetry(maxRetries int, fallbackWait time.Duration) MessageRepositoryOption {
	return func(r *MessageRepository) {
		r.maxRetries = maxRetries
		r.fallbackWait = fallbackWait
	}
}

// NewMessageRepository は新しいMessageRepositoryを作成する
func NewMessageRepository(client *slack.Client, logger zerolog.Logger, opts ...MessageRepositoryOption) *MessageRepository {
	r := &MessageRepository{
		client:       client,
		logger:       logger,
		pageLimit:    defaultPageLimit,
		maxRetries:   defaultMaxRetries,
		fallbackWait: defaultFallbackWait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByChannel はチャンネルのメッセージをSlackの返す順序のまま取得する
func (r *MessageRepository) FindByChannel(ctx context.Context, channelID string, dateRange *domain.DateRange) ([]*domain.Message, error) {
	oldest, latest := dateRange.SlackBounds()

	params := slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    oldest,
		Latest:    latest,
		Limit:     r.pageLimit,
	}

	var messages []*domain.Message
	hasMore := true

	for hasMore {
		history, err := r.fetchPage(ctx, &params)
		if err != nil {
			return nil, fmt.Errorf("メッセージ取得エラー (%s): %w", channelID, err)
		}

		for i := range history.Messages {
			messages = append(messages, convertToDomainMessage(&history.Messages[i], channelID))
		}

		hasMore = history.HasMore && history.ResponseMetaData.NextCursor != ""
		if hasMore {
			params.Cursor = history.ResponseMetaData.NextCursor
		}
	}

	return messages, nil
}

// fetchPage はレート制限を考慮して1ページ分の履歴を取得する
func (r *MessageRepository) fetchPage(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	for retry := 0; ; retry++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		history, err := r.client.GetConversationHistoryContext(ctx, params)
		if err == nil {
			return history, nil
		}
		if !isRateLimitError(err) || retry >= r.maxRetries {
			return nil, err
		}

		wait := retryAfter(err)
		if wait <= 0 {
			wait = r.fallbackWait + time.Duration(retry)*r.fallbackWait/2
		}
		r.logger.Warn().
			Str("channel", params.ChannelID).
			Dur("wait", wait).
			Int("retry", retry+1).
			Msg("rate limited, waiting before retry")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// convertToDomainMessage はSlackのMessageをドメインモデルに変換する
func convertToDomainMessage(msg *slack.Message, channelID string) *domain.Message {
	timestamp, _ := parseSlackTimestamp(msg.Timestamp)

	return &domain.Message{
		ID:        msg.Timestamp,
		Text:      msg.Text,
		UserID:    msg.User,
		ChannelID: channelID,
		Timestamp: timestamp,
		SubType:   msg.SubType,
		IsBot:     msg.SubType == domain.SubTypeBotMessage || msg.BotID != "",
		ThreadTS:  msg.ThreadTimestamp,
	}
}

// parseSlackTimestamp はSlackのタイムスタンプ文字列をtime.Timeに変換する
func parseSlackTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("タイムスタンプ解析エラー: %w", err)
	}

	// 小数部はマイクロ秒の6桁にそろえる（"5" は500ms）
	var usec int64
	if fracPart != "" {
		if len(fracPart) > 6 {
			fracPart = fracPart[:6]
		}
		fracPart += strings.Repeat("0", 6-len(fracPart))
		if v, err := strconv.ParseInt(fracPart, 10, 64); err == nil {
			usec = v
		}
	}
	return time.Unix(sec, usec*int64(time.Microsecond)), nil
}

// isRateLimitError はレート制限エラーかチェック
func isRateLimitError(err error) bool {
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return true
	}
	return strings.Contains(err.Error(), "rate limit exceeded")
}

// retryAfter はレート制限エラーから待機時間を取り出す
func retryAfter(err error) time.Duration {
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return time.Duration(extractRetryAfter(err.Error())) * time.Second
}

// extractRetryAfter はエラーメッセージからretry-after時間（秒）を抽出
func extractRetryAfter(errMsg string) int {
	_, after, found := strings.Cut(errMsg, "retry after ")
	if !found {
		return 0
	}
	timeStr := strings.TrimSuffix(strings.TrimSpace(after), "s")
	if retryAfter, err := strconv.Atoi(timeStr); err == nil {
		return retryAfter
	}
	return 0
}
