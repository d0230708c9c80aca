package inference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
)

type searchRequest struct {
	Inputs []string `json:"inputs"`
	Query  string   `json:"query"`
	Number int      `json:"number"`
}

// Rank はメッセージ本文とクエリを検索サービスに送り、関連度順の結果文字列を返す
func (c *Client) Rank(ctx context.Context, inputs []string, query string, number int) ([]string, error) {
	body, err := c.postJSON(ctx, c.searchPath, searchRequest{
		Inputs: inputs,
		Query:  query,
		Number: number,
	})
	if err != nil {
		return nil, err
	}

	var ranked []string
	if err := json.Unmarshal(body, &ranked); err != nil {
		return nil, fmt.Errorf("%w: %s: レスポンスのデコードに失敗しました: %v", domain.ErrUpstream, c.searchPath, err)
	}

	// 要求件数を超えた分は使わない
	if number > 0 && len(ranked) > number {
		ranked = ranked[:number]
	}
	return ranked, nil
}
