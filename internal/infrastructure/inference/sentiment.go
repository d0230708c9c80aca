package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tattsum/slack-insight/internal/domain"
)

type sentimentRequest struct {
	Inputs []string `json:"inputs"`
}

// classifyEnvelope はCohere形式の {"classifications": [...]} レスポンス
type classifyEnvelope struct {
	Classifications []domain.Prediction `json:"classifications"`
}

// Classify はメッセージ本文を感情分類サービスに送り、入力順の予測を返す
func (c *Client) Classify(ctx context.Context, inputs []string) ([]domain.Prediction, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	body, err := c.postJSON(ctx, c.sentimentPath, sentimentRequest{Inputs: inputs})
	if err != nil {
		return nil, err
	}

	predictions, err := decodePredictions(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, c.sentimentPath, err)
	}
	if len(predictions) != len(inputs) {
		return nil, fmt.Errorf("%w: %s: 予測数 %d が入力数 %d と一致しません",
			domain.ErrUpstream, c.sentimentPath, len(predictions), len(inputs))
	}
	return predictions, nil
}

// decodePredictions は配列形式とclassificationsを包んだ形式の両方を受け付ける
func decodePredictions(body []byte) ([]domain.Prediction, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("レスポンスが空です")
	}

	if trimmed[0] == '{' {
		var envelope classifyEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("レスポンスのデコードに失敗しました: %w", err)
		}
		return envelope.Classifications, nil
	}

	var predictions []domain.Prediction
	if err := json.Unmarshal(trimmed, &predictions); err != nil {
		return nil, fmt.Errorf("レスポンスのデコードに失敗しました: %w", err)
	}
	return predictions, nil
}
