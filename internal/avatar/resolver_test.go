package avatar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testDefaultURL = "https://cdn.example.com/default-avatar.png"

// newTestResolver はSSRFガードなし・平文HTTPクライアントのResolverを生成する。
// httptestサーバーはループバックアドレスのためSSRFガードを通せない。
func newTestResolver() *Resolver {
	r := NewResolver(nil, testDefaultURL)
	r.client = &http.Client{Timeout: 2 * time.Second}
	return r
}

func TestResolver_Resolve_ImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer srv.Close()

	r := newTestResolver()
	got := r.Resolve(context.Background(), srv.URL)

	if got != srv.URL {
		t.Errorf("Resolve = %q, want 元のURL %q", got, srv.URL)
	}
}

func TestResolver_Resolve_EmptyURL(t *testing.T) {
	r := newTestResolver()
	got := r.Resolve(context.Background(), "")

	if got != testDefaultURL {
		t.Errorf("Resolve = %q, want デフォルトURL", got)
	}
}

func TestResolver_Resolve_NonImageContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	r := newTestResolver()
	got := r.Resolve(context.Background(), srv.URL)

	if got != testDefaultURL {
		t.Errorf("Resolve = %q, want デフォルトURL（画像以外）", got)
	}
}

func TestResolver_Resolve_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestResolver()
	got := r.Resolve(context.Background(), srv.URL)

	if got != testDefaultURL {
		t.Errorf("Resolve = %q, want デフォルトURL（404）", got)
	}
}

func TestResolver_Resolve_UnreachableHost(t *testing.T) {
	// 即座に閉じたサーバーのURLで接続失敗を再現する
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := newTestResolver()
	got := r.Resolve(context.Background(), url)

	if got != testDefaultURL {
		t.Errorf("Resolve = %q, want デフォルトURL（接続失敗）", got)
	}
}

func TestResolver_Resolve_OversizedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		big := make([]byte, maxAvatarSize+1)
		w.Write(big)
	}))
	defer srv.Close()

	r := newTestResolver()
	got := r.Resolve(context.Background(), srv.URL)

	if got != testDefaultURL {
		t.Errorf("Resolve = %q, want デフォルトURL（サイズ超過）", got)
	}
}

func TestExtractMimeType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"image/png", "image/png"},
		{"image/jpeg; charset=utf-8", "image/jpeg"},
		{"IMAGE/PNG", "image/png"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := extractMimeType(tt.input); got != tt.want {
			t.Errorf("extractMimeType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsImageMime(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/webp", true},
		{"text/html", false},
		{"application/json", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isImageMime(tt.mime); got != tt.want {
			t.Errorf("isImageMime(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
