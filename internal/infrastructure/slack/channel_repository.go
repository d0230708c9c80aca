package slack

import (
	"context"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/slack-go/slack"
)

// ChannelRepository はSlack APIを使用してチャンネル情報を取得するリポジトリ
type ChannelRepository struct {
	client    *slack.Client
	pageLimit int
}

// NewChannelRepository は新しいChannelRepositoryを作成する
func NewChannelRepository(client *slack.Client, pageLimit int) *ChannelRepository {
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	return &ChannelRepository{
		client:    client,
		pageLimit: pageLimit,
	}
}

// FindAll はボットから見えるすべてのチャンネルを列挙順に取得する
func (r *ChannelRepository) FindAll(ctx context.Context) ([]*domain.Channel, error) {
	var allChannels []*domain.Channel
	cursor := ""

	for {
		conversations, nextCursor, err := r.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           r.pageLimit,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("チャンネル一覧取得エラー: %w", err)
		}

		for _, conversation := range conversations {
			allChannels = append(allChannels, &domain.Channel{
				ID:   conversation.ID,
				Name: conversation.Name,
			})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return allChannels, nil
}
