package domain

import "errors"

var (
	// ErrNoMessages は集計対象のメッセージが1件も無いことを表す
	ErrNoMessages = errors.New("対象のメッセージがありません")
	// ErrInvalidResultCount は検索件数が正の整数でないことを表す
	ErrInvalidResultCount = errors.New("検索件数は正の整数で指定してください")
	// ErrUpstream は推論サービス呼び出しの失敗を表す
	ErrUpstream = errors.New("推論サービスの呼び出しに失敗しました")
)
