package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Tattsum/slack-insight/internal/domain"
)

// mockChannelRepository はChannelRepositoryのモック実装
type mockChannelRepository struct {
	channels []*domain.Channel
	err      error
}

func (m *mockChannelRepository) FindAll(ctx context.Context) ([]*domain.Channel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.channels, nil
}

// mockMessageRepository はチャンネルごとのメッセージとエラーを返すモック
type mockMessageRepository struct {
	mu       sync.Mutex
	messages map[string][]*domain.Message
	errs     map[string]error
	calls    []string
}

func (m *mockMessageRepository) FindByChannel(ctx context.Context, channelID string, dateRange *domain.DateRange) ([]*domain.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, channelID)
	m.mu.Unlock()

	if err := m.errs[channelID]; err != nil {
		return nil, err
	}
	return m.messages[channelID], nil
}

// mockUserRepository はUserRepositoryのモック実装
type mockUserRepository struct {
	users map[string]*domain.User
}

func (m *mockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	if user, ok := m.users[userID]; ok {
		return user, nil
	}
	return nil, errors.New("user_not_found")
}

// mockClassifier は入力ごとにラベルを返すモック
type mockClassifier struct {
	labels map[string]string
	err    error
	calls  int
	inputs []string
}

func (m *mockClassifier) Classify(ctx context.Context, inputs []string) ([]domain.Prediction, error) {
	m.calls++
	m.inputs = inputs
	if m.err != nil {
		return nil, m.err
	}
	predictions := make([]domain.Prediction, 0, len(inputs))
	for _, in := range inputs {
		predictions = append(predictions, domain.Prediction{Input: in, Label: m.labels[in]})
	}
	return predictions, nil
}

// mockRanker は固定の結果を返すモック
type mockRanker struct {
	ranked []string
	err    error
	calls  int
	query  string
	number int
}

func (m *mockRanker) Rank(ctx context.Context, inputs []string, query string, number int) ([]string, error) {
	m.calls++
	m.query = query
	m.number = number
	if m.err != nil {
		return nil, m.err
	}
	return m.ranked, nil
}

// mockPermalinks はチャンネルとtsからURLを組み立てるモック
type mockPermalinks struct {
	failFor string
}

func (m *mockPermalinks) Permalink(ctx context.Context, channelID, timestamp string) (string, error) {
	if timestamp == m.failFor {
		return "", errors.New("message_not_found")
	}
	return "https://example.slack.com/archives/" + channelID + "/p" + timestamp, nil
}

func msg(channelID, ts, userID, text string) *domain.Message {
	return &domain.Message{ID: ts, ChannelID: channelID, UserID: userID, Text: text}
}
