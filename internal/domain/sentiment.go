package domain

// Prediction は分類サービスが返すメッセージ単位の予測
type Prediction struct {
	Input      string  `json:"input,omitempty"`
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence,omitempty"`
}

// BucketShare はカテゴリごとの件数と正規化された割合
type BucketShare struct {
	Bucket EmotionBucket
	Count  int
	Share  float64
}

// SentimentSummary は感情分布の集計結果
// Sharesは割合の降順、同率はカテゴリ表の宣言順に並ぶ
type SentimentSummary struct {
	Shares    []BucketShare
	Total     int // 処理した予測の総数
	Unmatched int // どのカテゴリにも一致せず捨てた予測の数
}

// IsEmpty は集計対象の予測が無かったかどうかを返す
func (s *SentimentSummary) IsEmpty() bool {
	return s.Total == 0
}

// Dominant は最も割合の高いカテゴリを返す
func (s *SentimentSummary) Dominant() (BucketShare, bool) {
	if s.IsEmpty() || len(s.Shares) == 0 || s.Shares[0].Count == 0 {
		return BucketShare{}, false
	}
	return s.Shares[0], true
}
