package service

import (
	"sort"

	"github.com/Tattsum/slack-insight/internal/domain"
)

// SentimentAggregator は詳細ラベルの予測を感情カテゴリの分布に集計する
type SentimentAggregator struct {
	table domain.BucketTable
}

// NewSentimentAggregator は新しいSentimentAggregatorを作成する
func NewSentimentAggregator(table domain.BucketTable) *SentimentAggregator {
	return &SentimentAggregator{table: table}
}

// Aggregate は予測をカテゴリごとに数え、予測総数で割った割合を降順に並べる
// 割合が同じカテゴリはカテゴリ表の宣言順を保つ
func (a *SentimentAggregator) Aggregate(predictions []domain.Prediction) domain.SentimentSummary {
	counts := make(map[domain.EmotionBucket]int, len(a.table))
	unmatched := 0
	for _, p := range predictions {
		bucket, ok := a.table.Lookup(p.Label)
		if !ok {
			unmatched++
			continue
		}
		counts[bucket]++
	}

	total := len(predictions)
	shares := make([]domain.BucketShare, 0, len(a.table))
	for _, def := range a.table {
		share := domain.BucketShare{Bucket: def.Bucket, Count: counts[def.Bucket]}
		if total > 0 {
			share.Share = float64(share.Count) / float64(total)
		}
		shares = append(shares, share)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Share > shares[j].Share
	})

	return domain.SentimentSummary{
		Shares:    shares,
		Total:     total,
		Unmatched: unmatched,
	}
}
