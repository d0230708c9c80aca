// Package bot はスラッシュコマンドを受け取り、Insightサービスを呼び出して結果を返信する
package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Tattsum/slack-insight/internal/presentation"
)

// コマンド名
const (
	CommandSentiment = "/sentiment"
	CommandSearch    = "/smart-search"
	CommandQuery     = "/query" // /sentiment の別名
)

// 使い方の案内
const (
	SentimentUsage = "Usage: `/sentiment` for everyone, or `/sentiment @user` for one person"
	SearchUsage    = "Usage: `/smart-search <N> <query>` with N from 1 to 20, e.g. `/smart-search 5 release plan`"
)

// MaxSearchResults は1回の検索で返す件数の上限。Block Kitの50ブロック制限に収める
const MaxSearchResults = presentation.MaxSearchHits

// ErrUnknownCommand は未対応のコマンドを受け取ったことを示す
var ErrUnknownCommand = errors.New("unknown command")

// UsageError はコマンドの引数が不正な場合のエラー。Usageをそのまま利用者に返す
type UsageError struct {
	Reason string
	Usage  string
}

func (e *UsageError) Error() string {
	return e.Reason + ": " + e.Usage
}

// Kind はコマンドの種類
type Kind int

const (
	KindSentiment Kind = iota + 1
	KindSearch
)

// Command は解析済みのスラッシュコマンド
type Command struct {
	Kind     Kind
	AuthorID string // KindSentiment: 空なら全員
	Query    string // KindSearch
	N        int    // KindSearch
}

// <@U123|name> または <@U123>
var mentionPattern = regexp.MustCompile(`^<@([UW][A-Z0-9]+)(?:\|[^>]*)?>$`)

// ParseCommand はコマンド名と引数テキストを解析する
// 引数が不正な場合は *UsageError、未対応のコマンドは ErrUnknownCommand を返す
func ParseCommand(name, text string) (Command, error) {
	text = strings.TrimSpace(text)

	switch name {
	case CommandSentiment, CommandQuery:
		return parseSentiment(text)
	case CommandSearch:
		return parseSearch(text)
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

func parseSentiment(text string) (Command, error) {
	if text == "" {
		return Command{Kind: KindSentiment}, nil
	}

	match := mentionPattern.FindStringSubmatch(text)
	if match == nil {
		return Command{}, &UsageError{Reason: "expected a user mention", Usage: SentimentUsage}
	}
	return Command{Kind: KindSentiment, AuthorID: match[1]}, nil
}

func parseSearch(text string) (Command, error) {
	countText, query := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		countText, query = text[:i], text[i:]
	}
	if countText == "" {
		return Command{}, &UsageError{Reason: "missing result count", Usage: SearchUsage}
	}

	n, err := strconv.Atoi(countText)
	if err != nil || n <= 0 {
		return Command{}, &UsageError{Reason: fmt.Sprintf("%q is not a positive number", countText), Usage: SearchUsage}
	}
	if n > MaxSearchResults {
		return Command{}, &UsageError{Reason: fmt.Sprintf("at most %d results", MaxSearchResults), Usage: SearchUsage}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Command{}, &UsageError{Reason: "missing query", Usage: SearchUsage}
	}
	return Command{Kind: KindSearch, Query: query, N: n}, nil
}
