package domain

import (
	"strconv"
	"strings"
)

// rankedEntrySeparator は検索サービスの返す "<score>: <text>" の区切り
const rankedEntrySeparator = ": "

// RankedEntry は検索サービスが返した1件をスコアと本文に分けたもの
type RankedEntry struct {
	Payload  string
	Score    float64
	HasScore bool
}

// ParseRankedEntry は最初の ": " より後ろを本文として取り出す
// 区切りが無い場合は全体を本文とみなす
func ParseRankedEntry(raw string) RankedEntry {
	entry := RankedEntry{Payload: raw}
	prefix, payload, found := strings.Cut(raw, rankedEntrySeparator)
	if !found {
		return entry
	}
	entry.Payload = payload
	if score, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64); err == nil {
		entry.Score = score
		entry.HasScore = true
	}
	return entry
}

// RankedHit は検索結果1件と元メッセージの対応
type RankedHit struct {
	Rank      int // 検索サービスの返した順位（0始まり）
	Score     float64
	HasScore  bool
	Text      string
	Source    Message
	Permalink string
}

// SearchResult はスマート検索の結果
type SearchResult struct {
	Query   string
	Hits    []RankedHit
	Dropped int // 元メッセージと対応付けられず捨てた件数
}
