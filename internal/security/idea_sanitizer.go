// Package security はアプリケーションのセキュリティ機能を提供する。
//
// IdeaSanitizerService はアイデア投稿の本文をサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// アイデア本文はプレーンテキストとして扱うため、bluemondayの
// StrictPolicyで全タグを除去する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// IdeaSanitizerService はアイデア本文のサニタイズ機能のインターフェースを定義する。
// 投稿本文の保存前に使用される。
type IdeaSanitizerService interface {
	// Sanitize は入力テキストから全HTMLタグを除去したプレーンテキストを返す。
	// script, iframe, imgを含むあらゆるタグとon*イベント属性が除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(text string) string
}

// ideaSanitizer はIdeaSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type ideaSanitizer struct {
	policy *bluemonday.Policy
}

// NewIdeaSanitizer はIdeaSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、タグはすべて除去される。
func NewIdeaSanitizer() *ideaSanitizer {
	return &ideaSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストから全HTMLタグを除去したプレーンテキストを返す。
// StrictPolicyはタグ除去後にテキストをHTMLエスケープするため、
// プレーンテキストとして保存するにはエスケープを戻す。
func (s *ideaSanitizer) Sanitize(text string) string {
	return html.UnescapeString(s.policy.Sanitize(text))
}
