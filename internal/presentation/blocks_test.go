package presentation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/Tattsum/slack-insight/internal/service"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentimentReport() *service.SentimentReport {
	return &service.SentimentReport{
		Author: &domain.User{ID: "U1", DisplayName: "alice"},
		Summary: domain.SentimentSummary{
			Shares: []domain.BucketShare{
				{Bucket: domain.Joy, Count: 3, Share: 0.75},
				{Bucket: domain.Anger, Count: 1, Share: 0.25},
				{Bucket: domain.Disgust, Count: 0, Share: 0},
			},
			Total:     5,
			Unmatched: 1,
		},
		MessageCount:    5,
		ChannelCount:    3,
		SkippedChannels: 1,
	}
}

func sectionText(t *testing.T, block slack.Block) string {
	t.Helper()
	section, ok := block.(*slack.SectionBlock)
	require.True(t, ok, "section block expected, got %T", block)
	return section.Text.Text
}

func contextText(t *testing.T, block slack.Block) string {
	t.Helper()
	ctxBlock, ok := block.(*slack.ContextBlock)
	require.True(t, ok, "context block expected, got %T", block)
	require.Len(t, ctxBlock.ContextElements.Elements, 1)
	text, ok := ctxBlock.ContextElements.Elements[0].(*slack.TextBlockObject)
	require.True(t, ok)
	return text.Text
}

func TestSentimentBlocks(t *testing.T) {
	blocks := SentimentBlocks(sentimentReport())

	// header + 3 buckets + divider + context
	require.Len(t, blocks, 6)

	header, ok := blocks[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "Sentiment for alice", header.Text.Text)

	joy := sectionText(t, blocks[1])
	assert.Contains(t, joy, "*joy*")
	assert.Contains(t, joy, "75.0%")
	assert.Contains(t, joy, strings.Repeat("█", 15))
	assert.Contains(t, sectionText(t, blocks[2]), "*anger*")

	footnote := contextText(t, blocks[5])
	assert.True(t, strings.HasPrefix(footnote, "<@U1> · "))
	assert.Contains(t, footnote, "5 messages from 2 channels")
	assert.Contains(t, footnote, "1 channels skipped")
	assert.Contains(t, footnote, "1 unclassified")
}

func TestSentimentBlocks_AllAuthors(t *testing.T) {
	report := sentimentReport()
	report.Author = nil
	report.SkippedChannels = 0
	report.Summary.Unmatched = 0

	blocks := SentimentBlocks(report)

	header := blocks[0].(*slack.HeaderBlock)
	assert.Equal(t, "Sentiment across all channels", header.Text.Text)
	footnote := contextText(t, blocks[len(blocks)-1])
	assert.NotContains(t, footnote, "skipped")
	assert.NotContains(t, footnote, "unclassified")
}

func TestSentimentText(t *testing.T) {
	text := SentimentText(sentimentReport())

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Sentiment for alice", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "joy"))
	assert.Contains(t, lines[1], " 75.0% (3)")
	assert.Contains(t, lines[4], "1 unclassified")
}

func searchReport() *service.SearchReport {
	return &service.SearchReport{
		Result: domain.SearchResult{
			Query: "deploy",
			Hits: []domain.RankedHit{
				{
					Rank:      0,
					Score:     0.91,
					HasScore:  true,
					Text:      "deploy done",
					Source:    domain.Message{ID: "1.0", ChannelID: "C1"},
					Permalink: "https://example.slack.com/archives/C1/p10",
				},
				{
					Rank:   2,
					Text:   strings.Repeat("あ", 250),
					Source: domain.Message{ID: "2.0", ChannelID: "C2", ThreadTS: "1.5"},
				},
			},
			Dropped: 1,
		},
		MessageCount:    42,
		SkippedChannels: 0,
	}
}

func TestSearchBlocks(t *testing.T) {
	blocks := SearchBlocks(searchReport())

	// header + 2 hits + divider + context
	require.Len(t, blocks, 5)

	header := blocks[0].(*slack.HeaderBlock)
	assert.Equal(t, `Top messages for "deploy"`, header.Text.Text)

	first := sectionText(t, blocks[1])
	assert.Contains(t, first, "*#1*")
	assert.Contains(t, first, "`0.91`")
	assert.Contains(t, first, "<#C1>")
	assert.Contains(t, first, "<https://example.slack.com/archives/C1/p10|view message>")

	second := sectionText(t, blocks[2])
	assert.Contains(t, second, "*#3*")
	assert.Contains(t, second, "<#C2> (thread)")
	assert.NotContains(t, first, "(thread)")
	assert.NotContains(t, second, "view message")
	assert.NotContains(t, second, "`")
	assert.Contains(t, second, strings.Repeat("あ", 199)+"…")

	footnote := contextText(t, blocks[4])
	assert.Contains(t, footnote, "searched 42 messages")
	assert.Contains(t, footnote, "1 results could not be matched")
	assert.NotContains(t, footnote, "skipped")
}

func manyHits(n int) *service.SearchReport {
	report := &service.SearchReport{Result: domain.SearchResult{Query: "deploy"}, MessageCount: 500}
	for i := 0; i < n; i++ {
		report.Result.Hits = append(report.Result.Hits, domain.RankedHit{
			Rank:   i,
			Text:   fmt.Sprintf("message %d", i),
			Source: domain.Message{ID: fmt.Sprintf("%d.0", i), ChannelID: "C1"},
		})
	}
	return report
}

func TestSearchBlocks_BlockLimit(t *testing.T) {
	tests := []struct {
		name       string
		hits       int
		wantBlocks int
		wantHidden string
	}{
		{name: "上限ちょうど", hits: MaxSearchHits, wantBlocks: MaxSearchHits + 3},
		{name: "上限超過は切り詰める", hits: 60, wantBlocks: MaxSearchHits + 3, wantHidden: "40 more not shown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := SearchBlocks(manyHits(tt.hits))

			assert.LessOrEqual(t, len(blocks), 50)
			assert.Len(t, blocks, tt.wantBlocks)
			footnote := contextText(t, blocks[len(blocks)-1])
			if tt.wantHidden != "" {
				assert.Contains(t, footnote, tt.wantHidden)
			} else {
				assert.NotContains(t, footnote, "not shown")
			}
		})
	}
}

func TestSearchBlocks_NoHits(t *testing.T) {
	report := &service.SearchReport{Result: domain.SearchResult{Query: "nothing"}, MessageCount: 3}

	blocks := SearchBlocks(report)

	require.Len(t, blocks, 4)
	assert.Contains(t, sectionText(t, blocks[1]), "No matching messages")
}

func TestSearchText(t *testing.T) {
	text := SearchText(searchReport())

	assert.Contains(t, text, "1. deploy done (https://example.slack.com/archives/C1/p10)\n")
	assert.Contains(t, text, "3. ")
	assert.True(t, strings.HasSuffix(text, "1 results could not be matched to a message"))
}

func TestNoticeBlocks(t *testing.T) {
	blocks := NoticeBlocks("Usage: `/sentiment [@user]`")

	require.Len(t, blocks, 1)
	assert.Equal(t, "Usage: `/sentiment [@user]`", sectionText(t, blocks[0]))
}

func TestBar(t *testing.T) {
	tests := []struct {
		share  float64
		filled int
	}{
		{0, 0},
		{0.5, 10},
		{0.26, 5},
		{1, 20},
		{1.3, 20},
		{-0.1, 0},
	}

	for _, tt := range tests {
		got := bar(tt.share)
		assert.Equal(t, tt.filled, strings.Count(got, "█"), "share=%v", tt.share)
		assert.Equal(t, barWidth, len([]rune(got)), "share=%v", tt.share)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "日本語…", truncate("日本語テキスト", 4))
}
