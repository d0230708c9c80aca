package domain

import (
	"strconv"
	"time"
)

// Channel はSlackチャンネルを表すドメインモデル
type Channel struct {
	ID   string
	Name string
}

// ChannelFailure は履歴取得に失敗したチャンネルとその原因
type ChannelFailure struct {
	ChannelID string
	Err       error
}

// DateRange は日付範囲を表す値オブジェクト。ゼロ値の端は無制限として扱う
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsValid は日付範囲が有効かどうかを検証する
func (dr *DateRange) IsValid() bool {
	return dr.Start.IsZero() || dr.End.IsZero() || !dr.Start.After(dr.End)
}

// Contains は指定された時刻が日付範囲内かどうかを返す
func (dr *DateRange) Contains(t time.Time) bool {
	if !dr.Start.IsZero() && t.Before(dr.Start) {
		return false
	}
	if !dr.End.IsZero() && t.After(dr.End) {
		return false
	}
	return true
}

// SlackBounds はconversations.historyのoldest/latestに渡す値を返す
func (dr *DateRange) SlackBounds() (oldest, latest string) {
	if dr == nil {
		return "", ""
	}
	if !dr.Start.IsZero() {
		oldest = strconv.FormatInt(dr.Start.Unix(), 10)
	}
	if !dr.End.IsZero() {
		latest = strconv.FormatInt(dr.End.Unix(), 10)
	}
	return oldest, latest
}
