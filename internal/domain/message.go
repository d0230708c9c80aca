package domain

import "time"

// システムメッセージとして集計から除外するサブタイプ
const (
	SubTypeChannelPurpose = "channel_purpose"
	SubTypeChannelJoin    = "channel_join"
	SubTypeBotMessage     = "bot_message"
)

// Message はSlackメッセージを表すドメインモデル
type Message struct {
	ID        string // Slackのts（パーマリンク生成に使用する）
	Text      string
	UserID    string
	ChannelID string
	Timestamp time.Time
	SubType   string
	IsBot     bool
	ThreadTS  string // スレッドのタイムスタンプ（空文字列の場合は通常メッセージ）
}

// IsSystem はチャンネル参加・目的変更などのシステムメッセージかどうかを返す
func (m *Message) IsSystem() bool {
	return m.SubType == SubTypeChannelPurpose || m.SubType == SubTypeChannelJoin
}

// IsAuthoredBy は投稿者がフィルタに一致するかを返す（空のフィルタはすべてに一致）
func (m *Message) IsAuthoredBy(authorID string) bool {
	return authorID == "" || m.UserID == authorID
}

// Qualifies は集計対象のメッセージかどうかを返す
func (m *Message) Qualifies(authorID string) bool {
	return !m.IsBot && !m.IsSystem() && m.IsAuthoredBy(authorID)
}

// IsThreadReply はこのメッセージがスレッドの返信かどうかを返す
func (m *Message) IsThreadReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.ID
}

// Texts はメッセージ本文を順序どおりに取り出す
func Texts(messages []Message) []string {
	texts := make([]string, 0, len(messages))
	for i := range messages {
		texts = append(texts, messages[i].Text)
	}
	return texts
}
