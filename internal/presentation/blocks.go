// Package presentation は集計結果をSlackのBlock Kitとプレーンテキストに整形する
package presentation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/Tattsum/slack-insight/internal/service"
	"github.com/slack-go/slack"
)

const (
	barWidth       = 20
	maxHitTextRune = 200
)

// MaxSearchHits はSearchBlocksが描画する件数の上限
// ヘッダ、区切り、注記を含めてSlackの50ブロック制限に収まる
const MaxSearchHits = 20

var bucketEmoji = map[domain.EmotionBucket]string{
	domain.Anger:    ":rage:",
	domain.Disgust:  ":nauseated_face:",
	domain.Fear:     ":fearful:",
	domain.Joy:      ":joy:",
	domain.Sadness:  ":cry:",
	domain.Surprise: ":open_mouth:",
	domain.Neutral:  ":neutral_face:",
}

// SentimentBlocks は感情分布をカテゴリごとのセクションに並べる
func SentimentBlocks(report *service.SentimentReport) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, sentimentTitle(report), true, false)),
	}

	for _, share := range report.Summary.Shares {
		line := fmt.Sprintf("%s *%s*  %s  %.1f%% (%d)",
			bucketEmoji[share.Bucket], share.Bucket, bar(share.Share), share.Share*100, share.Count)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, line, false, false),
			nil, nil,
		))
	}

	footnote := sentimentFootnote(report)
	if report.Author != nil {
		footnote = report.Author.Mention() + " · " + footnote
	}
	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, footnote, false, false),
		),
	)
	return blocks
}

// SentimentText は通知やCLI向けのプレーンテキスト版
func SentimentText(report *service.SentimentReport) string {
	var sb strings.Builder
	sb.WriteString(sentimentTitle(report))
	sb.WriteString("\n")
	for _, share := range report.Summary.Shares {
		fmt.Fprintf(&sb, "%-9s %s %5.1f%% (%d)\n", share.Bucket, bar(share.Share), share.Share*100, share.Count)
	}
	sb.WriteString(sentimentFootnote(report))
	return sb.String()
}

func sentimentTitle(report *service.SentimentReport) string {
	if report.Author != nil {
		return "Sentiment for " + report.Author.GetDisplayName()
	}
	return "Sentiment across all channels"
}

func sentimentFootnote(report *service.SentimentReport) string {
	parts := []string{fmt.Sprintf("%d messages from %d channels", report.MessageCount, report.ChannelCount-report.SkippedChannels)}
	if report.SkippedChannels > 0 {
		parts = append(parts, fmt.Sprintf("%d channels skipped", report.SkippedChannels))
	}
	if report.Summary.Unmatched > 0 {
		parts = append(parts, fmt.Sprintf("%d unclassified", report.Summary.Unmatched))
	}
	return strings.Join(parts, " · ")
}

// SearchBlocks は検索結果を順位ごとのセクションに並べる
func SearchBlocks(report *service.SearchReport) []slack.Block {
	result := report.Result
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, searchTitle(result), true, false)),
	}

	if len(result.Hits) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "_No matching messages found._", false, false),
			nil, nil,
		))
	}

	hits := result.Hits
	if len(hits) > MaxSearchHits {
		hits = hits[:MaxSearchHits]
	}
	for _, hit := range hits {
		var sb strings.Builder
		fmt.Fprintf(&sb, "*#%d*", hit.Rank+1)
		if hit.HasScore {
			fmt.Fprintf(&sb, "  `%.2f`", hit.Score)
		}
		fmt.Fprintf(&sb, "  in <#%s>", hit.Source.ChannelID)
		if hit.Source.IsThreadReply() {
			sb.WriteString(" (thread)")
		}
		fmt.Fprintf(&sb, "\n>%s", truncate(hit.Text, maxHitTextRune))
		if hit.Permalink != "" {
			fmt.Fprintf(&sb, "\n<%s|view message>", hit.Permalink)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false),
			nil, nil,
		))
	}

	footnote := searchFootnote(report)
	if hidden := len(result.Hits) - len(hits); hidden > 0 {
		footnote += fmt.Sprintf(" · %d more not shown", hidden)
	}
	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, footnote, false, false),
		),
	)
	return blocks
}

// SearchText は通知やCLI向けのプレーンテキスト版
func SearchText(report *service.SearchReport) string {
	var sb strings.Builder
	sb.WriteString(searchTitle(report.Result))
	sb.WriteString("\n")
	for _, hit := range report.Result.Hits {
		fmt.Fprintf(&sb, "%d. %s", hit.Rank+1, truncate(hit.Text, maxHitTextRune))
		if hit.Permalink != "" {
			fmt.Fprintf(&sb, " (%s)", hit.Permalink)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(searchFootnote(report))
	return sb.String()
}

func searchTitle(result domain.SearchResult) string {
	return fmt.Sprintf("Top messages for \"%s\"", truncate(result.Query, 100))
}

func searchFootnote(report *service.SearchReport) string {
	parts := []string{fmt.Sprintf("searched %d messages", report.MessageCount)}
	if report.Result.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d results could not be matched to a message", report.Result.Dropped))
	}
	if report.SkippedChannels > 0 {
		parts = append(parts, fmt.Sprintf("%d channels skipped", report.SkippedChannels))
	}
	return strings.Join(parts, " · ")
}

// NoticeBlocks はエラーや使い方の案内を1セクションで返す
func NoticeBlocks(text string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}
}

func bar(share float64) string {
	filled := int(math.Round(share * barWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// truncate はルーン数で切り詰め、省略時は末尾に…を付ける
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
