// Package inference は感情分類とセマンティック検索の外部推論サービスを呼び出す
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Tattsum/slack-insight/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultSentimentPath = "/sentiment"
	defaultSearchPath    = "/search"
	defaultTimeout       = 60 * time.Second

	// エラー本文として保持する最大バイト数
	maxErrorBody = 512
)

// Config は推論サービスの接続設定
type Config struct {
	BaseURL       string
	SentimentPath string
	SearchPath    string
	Timeout       time.Duration
}

// Client は推論サービスのHTTPクライアント
// domain.SentimentClassifier と domain.SearchRanker を実装する
type Client struct {
	baseURL       string
	sentimentPath string
	searchPath    string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient は新しいClientを作成する
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.SentimentPath == "" {
		cfg.SentimentPath = defaultSentimentPath
	}
	if cfg.SearchPath == "" {
		cfg.SearchPath = defaultSearchPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		sentimentPath: cfg.SentimentPath,
		searchPath:    cfg.SearchPath,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger.With().Str("component", "inference").Logger(),
	}
}

// postJSON はリクエストをJSONで送信し、成功時のレスポンス本文を返す
// 失敗はすべて domain.ErrUpstream でラップする
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: リクエスト作成エラー: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: レスポンス読み込みエラー: %v", domain.ErrUpstream, path, err)
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(respBody)).
		Msg("inference call finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	return respBody, nil
}

// StatusError は推論サービスが2xx以外を返したことを表す
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", domain.ErrUpstream, e.Path, e.StatusCode, e.Body)
}

// Unwrap は errors.Is(err, domain.ErrUpstream) を成立させる
func (e *StatusError) Unwrap() error {
	return domain.ErrUpstream
}
