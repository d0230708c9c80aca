package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// PermalinkResolver はchat.getPermalinkでメッセージのURLを取得する
type PermalinkResolver struct {
	client *slack.Client
}

// NewPermalinkResolver は新しいPermalinkResolverを作成する
func NewPermalinkResolver(client *slack.Client) *PermalinkResolver {
	return &PermalinkResolver{client: client}
}

// Permalink はチャンネルIDとtsからパーマリンクを返す
func (r *PermalinkResolver) Permalink(ctx context.Context, channelID, timestamp string) (string, error) {
	link, err := r.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("パーマリンク取得エラー (%s/%s): %w", channelID, timestamp, err)
	}
	return link, nil
}
