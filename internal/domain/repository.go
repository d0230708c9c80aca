package domain

import "context"

// ChannelRepository はチャンネル情報を取得するリポジトリインターフェース
type ChannelRepository interface {
	FindAll(ctx context.Context) ([]*Channel, error)
}

// MessageRepository はメッセージを取得するリポジトリインターフェース
type MessageRepository interface {
	FindByChannel(ctx context.Context, channelID string, dateRange *DateRange) ([]*Message, error)
}

// UserRepository はユーザー情報を取得するリポジトリインターフェース
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*User, error)
}

// PermalinkResolver はメッセージのパーマリンクを取得する
type PermalinkResolver interface {
	Permalink(ctx context.Context, channelID, timestamp string) (string, error)
}

// SentimentClassifier は外部の感情分類サービス
// 戻り値は入力と同じ順序で1対1に対応する
type SentimentClassifier interface {
	Classify(ctx context.Context, inputs []string) ([]Prediction, error)
}

// SearchRanker は外部のセマンティック検索サービス
// 関連度順に最大number件の "<score>: <text>" 形式の文字列を返す
type SearchRanker interface {
	Rank(ctx context.Context, inputs []string, query string, number int) ([]string, error)
}
