package slack

import (
	"context"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/slack-go/slack"
)

// UserRepository はSlack APIを使用してユーザー情報を取得するリポジトリ
type UserRepository struct {
	client *slack.Client
}

// NewUserRepository は新しいUserRepositoryを作成する
func NewUserRepository(client *slack.Client) *UserRepository {
	return &UserRepository{
		client: client,
	}
}

// FindByID はユーザーIDからユーザーを取得する
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	userInfo, err := r.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー情報取得エラー (%s): %w", userID, err)
	}

	return &domain.User{
		ID:          userInfo.ID,
		Name:        userInfo.Name,
		DisplayName: userInfo.Profile.DisplayName,
		RealName:    userInfo.RealName,
	}, nil
}
