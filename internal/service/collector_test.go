package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeChannels() *mockChannelRepository {
	return &mockChannelRepository{channels: []*domain.Channel{
		{ID: "C1", Name: "general"},
		{ID: "C2", Name: "random"},
		{ID: "C3", Name: "lab"},
	}}
}

func TestCollector_Collect(t *testing.T) {
	bot := msg("C1", "1.3", "B1", "deploy finished")
	bot.IsBot = true
	join := msg("C2", "2.1", "U2", "<@U2> has joined the channel")
	join.SubType = domain.SubTypeChannelJoin
	purpose := msg("C3", "3.1", "U1", "set the channel purpose")
	purpose.SubType = domain.SubTypeChannelPurpose

	messages := &mockMessageRepository{messages: map[string][]*domain.Message{
		"C1": {msg("C1", "1.2", "U1", "c1 newest"), bot, msg("C1", "1.1", "U2", "c1 oldest")},
		"C2": {join, msg("C2", "2.2", "U1", "c2 only")},
		"C3": {purpose, msg("C3", "3.2", "U2", "c3 text")},
	}}

	tests := []struct {
		name     string
		authorID string
		want     []string
	}{
		{
			name:     "フィルタなし",
			authorID: "",
			want:     []string{"c1 newest", "c1 oldest", "c2 only", "c3 text"},
		},
		{
			name:     "投稿者で絞り込み",
			authorID: "U1",
			want:     []string{"c1 newest", "c2 only"},
		},
		{
			name:     "該当者なし",
			authorID: "U9",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := NewCollector(threeChannels(), messages, zerolog.Nop(), 2)

			result, err := collector.Collect(context.Background(), CollectOptions{AuthorID: tt.authorID})
			require.NoError(t, err)

			var got []string
			for _, m := range result.Messages {
				got = append(got, m.Text)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 3, result.Channels)
			assert.Empty(t, result.Failures)
		})
	}
}

func TestCollector_Collect_IsolatesChannelFailure(t *testing.T) {
	messages := &mockMessageRepository{
		messages: map[string][]*domain.Message{
			"C1": {msg("C1", "1.1", "U1", "first")},
			"C3": {msg("C3", "3.1", "U1", "third")},
		},
		errs: map[string]error{"C2": errors.New("not_in_channel")},
	}
	collector := NewCollector(threeChannels(), messages, zerolog.Nop(), 0)

	result, err := collector.Collect(context.Background(), CollectOptions{})
	require.NoError(t, err)

	require.Len(t, result.Messages, 2)
	assert.Equal(t, "first", result.Messages[0].Text)
	assert.Equal(t, "third", result.Messages[1].Text)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "C2", result.Failures[0].ChannelID)
	assert.EqualError(t, result.Failures[0].Err, "not_in_channel")

	// 失敗したチャンネルがあっても全チャンネルを取得しに行く
	assert.ElementsMatch(t, []string{"C1", "C2", "C3"}, messages.calls)
}

func TestCollector_Collect_ListFailureIsFatal(t *testing.T) {
	messages := &mockMessageRepository{}
	collector := NewCollector(&mockChannelRepository{err: errors.New("invalid_auth")}, messages, zerolog.Nop(), 1)

	_, err := collector.Collect(context.Background(), CollectOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
	assert.Empty(t, messages.calls)
}

func TestCollector_Collect_PreservesOrderUnderConcurrency(t *testing.T) {
	channels := &mockChannelRepository{}
	messages := &mockMessageRepository{messages: map[string][]*domain.Message{}}
	var want []string
	for i := 0; i < 20; i++ {
		id := string(rune('A' + i))
		channels.channels = append(channels.channels, &domain.Channel{ID: id})
		messages.messages[id] = []*domain.Message{msg(id, "1", "U1", id+"-1"), msg(id, "2", "U1", id+"-2")}
		want = append(want, id+"-1", id+"-2")
	}

	collector := NewCollector(channels, messages, zerolog.Nop(), 8)
	result, err := collector.Collect(context.Background(), CollectOptions{})
	require.NoError(t, err)

	got := domain.Texts(result.Messages)
	assert.Equal(t, want, got)
}

// ctxMessageRepository はコンテキストが終わっていれば ctx.Err() を返す
type ctxMessageRepository struct{}

func (ctxMessageRepository) FindByChannel(ctx context.Context, channelID string, dateRange *domain.DateRange) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []*domain.Message{msg(channelID, "1", "U1", "hello")}, nil
}

func TestCollector_Collect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	collector := NewCollector(threeChannels(), ctxMessageRepository{}, zerolog.Nop(), 2)
	result, err := collector.Collect(ctx, CollectOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestCollector_Collect_DateRangeIsInclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	at := func(ts, text string, when time.Time) *domain.Message {
		m := msg("C1", ts, "U1", text)
		m.Timestamp = when
		return m
	}
	messages := &mockMessageRepository{messages: map[string][]*domain.Message{
		"C1": {
			at("1", "before", start.Add(-time.Second)),
			at("2", "first second", start),
			at("3", "last second", end),
			at("4", "after", end.Add(500*time.Millisecond)),
		},
	}}
	channels := &mockChannelRepository{channels: []*domain.Channel{{ID: "C1"}}}

	collector := NewCollector(channels, messages, zerolog.Nop(), 1)
	result, err := collector.Collect(context.Background(), CollectOptions{
		DateRange: &domain.DateRange{Start: start, End: end},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first second", "last second"}, domain.Texts(result.Messages))
}
