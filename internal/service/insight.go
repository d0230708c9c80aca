package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/rs/zerolog"
)

// Insight は履歴収集と推論サービスの呼び出しをつなぐユースケース
// 呼び出しごとの状態はすべてローカル変数で持ち、複数の呼び出しを並行に実行できる
type Insight struct {
	collector  *Collector
	aggregator *SentimentAggregator
	classifier domain.SentimentClassifier
	ranker     domain.SearchRanker
	permalinks domain.PermalinkResolver
	userRepo   domain.UserRepository
}

// NewInsight は新しいInsightサービスを作成する
func NewInsight(
	collector *Collector,
	aggregator *SentimentAggregator,
	classifier domain.SentimentClassifier,
	ranker domain.SearchRanker,
	permalinks domain.PermalinkResolver,
	userRepo domain.UserRepository,
) *Insight {
	return &Insight{
		collector:  collector,
		aggregator: aggregator,
		classifier: classifier,
		ranker:     ranker,
		permalinks: permalinks,
		userRepo:   userRepo,
	}
}

// SentimentReport は感情分析の結果
type SentimentReport struct {
	Author          *domain.User // 全員が対象の場合はnil
	Summary         domain.SentimentSummary
	MessageCount    int
	ChannelCount    int
	SkippedChannels int
}

// SentimentReport は対象メッセージを集めて感情分類し、カテゴリ分布にまとめる
func (s *Insight) SentimentReport(ctx context.Context, authorID string, dateRange *domain.DateRange) (*SentimentReport, error) {
	logger := zerolog.Ctx(ctx)

	collected, err := s.collector.Collect(ctx, CollectOptions{AuthorID: authorID, DateRange: dateRange})
	if err != nil {
		return nil, err
	}
	if len(collected.Messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	predictions, err := s.classifier.Classify(ctx, domain.Texts(collected.Messages))
	if err != nil {
		return nil, upstreamError("感情分類", err)
	}

	report := &SentimentReport{
		Summary:         s.aggregator.Aggregate(predictions),
		MessageCount:    len(collected.Messages),
		ChannelCount:    collected.Channels,
		SkippedChannels: len(collected.Failures),
	}
	if authorID != "" {
		report.Author = s.lookupUser(ctx, authorID)
	}

	event := logger.Info()
	if dominant, ok := report.Summary.Dominant(); ok {
		event = event.Str("dominant", string(dominant.Bucket))
	}
	event.
		Int("messages", report.MessageCount).
		Int("unmatched", report.Summary.Unmatched).
		Int("skipped_channels", report.SkippedChannels).
		Msg("sentiment report built")

	return report, nil
}

// SearchReport はスマート検索の結果
type SearchReport struct {
	Result          domain.SearchResult
	MessageCount    int
	SkippedChannels int
}

// SmartSearch はクエリに関連する上位n件のメッセージを検索し、元メッセージとリンクを添えて返す
func (s *Insight) SmartSearch(ctx context.Context, query string, n int, dateRange *domain.DateRange) (*SearchReport, error) {
	logger := zerolog.Ctx(ctx)

	if n <= 0 {
		return nil, domain.ErrInvalidResultCount
	}

	collected, err := s.collector.Collect(ctx, CollectOptions{DateRange: dateRange})
	if err != nil {
		return nil, err
	}
	if len(collected.Messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	ranked, err := s.ranker.Rank(ctx, domain.Texts(collected.Messages), query, n)
	if err != nil {
		return nil, upstreamError("検索", err)
	}

	result := Reassociate(collected.Messages, query, ranked)
	for i := range result.Hits {
		hit := &result.Hits[i]
		link, err := s.permalinks.Permalink(ctx, hit.Source.ChannelID, hit.Source.ID)
		if err != nil {
			// リンクが無くても結果自体は表示できる
			logger.Warn().Err(err).Int("rank", hit.Rank).Msg("permalink lookup failed")
			continue
		}
		hit.Permalink = link
	}

	logger.Info().
		Int("messages", len(collected.Messages)).
		Int("ranked", len(ranked)).
		Int("hits", len(result.Hits)).
		Int("dropped", result.Dropped).
		Msg("smart search finished")

	return &SearchReport{
		Result:          result,
		MessageCount:    len(collected.Messages),
		SkippedChannels: len(collected.Failures),
	}, nil
}

// lookupUser は表示名のためにユーザーを取得する。失敗時はIDのみのユーザーを返す
func (s *Insight) lookupUser(ctx context.Context, userID string) *domain.User {
	if s.userRepo == nil {
		return &domain.User{ID: userID}
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("user", userID).Msg("user lookup failed")
		return &domain.User{ID: userID}
	}
	return user
}

// upstreamError は推論サービスのエラーを必ず domain.ErrUpstream として扱えるようにする
func upstreamError(op string, err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		return fmt.Errorf("%sに失敗しました: %w", op, err)
	}
	return fmt.Errorf("%sに失敗しました: %w: %v", op, domain.ErrUpstream, err)
}
