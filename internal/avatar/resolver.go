// Package avatar はIdPから受け取ったアバターURLの検証を提供する。
package avatar

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/ideabank/internal/security"
)

// maxAvatarSize はアバター画像の最大サイズ（2MB）。
const maxAvatarSize = 2 * 1024 * 1024

// avatarTimeout はアバター取得のタイムアウト。
const avatarTimeout = 5 * time.Second

// Resolver はアバターURLを検証し、利用可能なURLを返す。
// IdPから渡されたURLが安全に取得できる画像を指す場合のみそのURLを採用し、
// それ以外の場合はデフォルトアバターURLにフォールバックする。
// 検証失敗はログイン失敗にしない（エラーは返さない）。
type Resolver struct {
	ssrfGuard  security.SSRFGuardService
	defaultURL string

	// テスト用にオーバーライド可能なHTTPクライアント
	client *http.Client
}

// NewResolver はResolverの新しいインスタンスを生成する。
func NewResolver(ssrfGuard security.SSRFGuardService, defaultURL string) *Resolver {
	return &Resolver{
		ssrfGuard:  ssrfGuard,
		defaultURL: defaultURL,
	}
}

// Resolve はアバターURLを検証し、採用するURLを返す。
// 空URL、SSRFブロック、取得失敗、画像以外のContent-TypeはすべてデフォルトURLに落とす。
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return r.defaultURL
	}

	// SSRF検証
	if r.ssrfGuard != nil {
		if err := r.ssrfGuard.ValidateURL(rawURL); err != nil {
			slog.Warn("アバター検証: SSRFブロック", "url", rawURL, "error", err)
			return r.defaultURL
		}
	}

	client := r.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		slog.Warn("アバター検証: リクエスト作成失敗", "url", rawURL, "error", err)
		return r.defaultURL
	}
	req.Header.Set("User-Agent", "IdeaBank/1.0")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("アバター検証: HTTPリクエスト失敗", "url", rawURL, "error", err)
		return r.defaultURL
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("アバター検証: HTTPステータス異常", "url", rawURL, "status", resp.StatusCode)
		return r.defaultURL
	}

	// 画像でない場合は採用しない
	contentType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(contentType) {
		slog.Warn("アバター検証: 画像以外のContent-Type", "url", rawURL, "contentType", contentType)
		return r.defaultURL
	}

	// サイズ超過チェック（ボディは破棄するだけなので上限+1まで読む）
	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxAvatarSize+1))
	if err != nil {
		slog.Warn("アバター検証: レスポンス読み取り失敗", "url", rawURL, "error", err)
		return r.defaultURL
	}
	if n > maxAvatarSize {
		slog.Warn("アバター検証: サイズ超過", "url", rawURL, "size", n)
		return r.defaultURL
	}

	return rawURL
}

// getHTTPClient はHTTPクライアントを取得する。
func (r *Resolver) getHTTPClient() *http.Client {
	if r.client != nil {
		return r.client
	}
	if r.ssrfGuard != nil {
		return r.ssrfGuard.NewSafeClient(avatarTimeout, maxAvatarSize)
	}
	return &http.Client{Timeout: avatarTimeout}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
