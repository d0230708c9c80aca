package domain

import "fmt"

// EmotionBucket は粗い感情カテゴリ
type EmotionBucket string

// 宣言順が同率時の並び順になる
const (
	Anger    EmotionBucket = "anger"
	Disgust  EmotionBucket = "disgust"
	Fear     EmotionBucket = "fear"
	Joy      EmotionBucket = "joy"
	Sadness  EmotionBucket = "sadness"
	Surprise EmotionBucket = "surprise"
	Neutral  EmotionBucket = "neutral"
)

// EmotionBuckets は感情カテゴリの閉じた集合（宣言順）
var EmotionBuckets = []EmotionBucket{Anger, Disgust, Fear, Joy, Sadness, Surprise, Neutral}

// IsKnown は定義済みのカテゴリかどうかを返す
func (b EmotionBucket) IsKnown() bool {
	for _, known := range EmotionBuckets {
		if b == known {
			return true
		}
	}
	return false
}

// BucketDefinition はカテゴリとそれに属する詳細ラベルの組
type BucketDefinition struct {
	Bucket EmotionBucket
	Labels []string
}

// Contains は詳細ラベルがこのカテゴリに属するかを返す
func (d BucketDefinition) Contains(label string) bool {
	for _, l := range d.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// BucketTable はカテゴリ定義の順序付きリスト
type BucketTable []BucketDefinition

// DefaultBucketTable はGoEmotionsの27ラベル+neutralをEkmanの6感情+neutralに対応付ける
var DefaultBucketTable = BucketTable{
	{Bucket: Anger, Labels: []string{"anger", "annoyance", "disapproval"}},
	{Bucket: Disgust, Labels: []string{"disgust"}},
	{Bucket: Fear, Labels: []string{"fear", "nervousness"}},
	{Bucket: Joy, Labels: []string{
		"joy", "amusement", "approval", "excitement", "gratitude", "love",
		"optimism", "relief", "pride", "admiration", "desire", "caring",
	}},
	{Bucket: Sadness, Labels: []string{"sadness", "disappointment", "embarrassment", "grief", "remorse"}},
	{Bucket: Surprise, Labels: []string{"surprise", "realization", "confusion", "curiosity"}},
	{Bucket: Neutral, Labels: []string{"neutral"}},
}

// Lookup は詳細ラベルが最初に一致するカテゴリを返す
func (t BucketTable) Lookup(label string) (EmotionBucket, bool) {
	for _, def := range t {
		if def.Contains(label) {
			return def.Bucket, true
		}
	}
	return "", false
}

// Validate はカテゴリの重複と、複数カテゴリに属するラベルを検出する
func (t BucketTable) Validate() error {
	buckets := make(map[EmotionBucket]bool, len(t))
	owners := make(map[string]EmotionBucket)
	for _, def := range t {
		if !def.Bucket.IsKnown() {
			return fmt.Errorf("未定義の感情カテゴリ: %q", def.Bucket)
		}
		if buckets[def.Bucket] {
			return fmt.Errorf("感情カテゴリ %q が重複しています", def.Bucket)
		}
		buckets[def.Bucket] = true

		for _, label := range def.Labels {
			if owner, ok := owners[label]; ok {
				return fmt.Errorf("ラベル %q が %q と %q の両方に属しています", label, owner, def.Bucket)
			}
			owners[label] = def.Bucket
		}
	}
	return nil
}
