package service

import "github.com/Tattsum/slack-insight/internal/domain"

// Reassociate は検索サービスが返した順位付きの本文を元のメッセージに対応付ける
// 本文が完全一致する最初のメッセージを採用し、見つからない順位は捨ててDroppedに数える
// 順位は検索サービスの返した順のまま並べ替えない
func Reassociate(messages []domain.Message, query string, ranked []string) domain.SearchResult {
	firstByText := make(map[string]int, len(messages))
	for i := range messages {
		if _, seen := firstByText[messages[i].Text]; !seen {
			firstByText[messages[i].Text] = i
		}
	}

	result := domain.SearchResult{
		Query: query,
		Hits:  make([]domain.RankedHit, 0, len(ranked)),
	}
	for rank, raw := range ranked {
		entry := domain.ParseRankedEntry(raw)
		idx, ok := firstByText[entry.Payload]
		if !ok {
			result.Dropped++
			continue
		}
		result.Hits = append(result.Hits, domain.RankedHit{
			Rank:     rank,
			Score:    entry.Score,
			HasScore: entry.HasScore,
			Text:     entry.Payload,
			Source:   messages[idx],
		})
	}
	return result
}
