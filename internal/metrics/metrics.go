// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordVoteCast(category string)
	RecordVoteNoop()
	RecordIdeaSubmitted()
	RecordProjectCreated()
	RecordRoleChange(role string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	votesCast      *prometheus.CounterVec
	voteNoop       prometheus.Counter
	ideasSubmitted prometheus.Counter
	projectCreated prometheus.Counter
	roleChanges    *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideabank_votes_cast_total",
			Help: "カウンターに反映された投票の合計数（カテゴリ別）",
		}, []string{"category"}),
		voteNoop: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideabank_vote_noop_total",
			Help: "同一カテゴリへの再投票として無視された投票の合計数",
		}),
		ideasSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideabank_ideas_submitted_total",
			Help: "投稿されたアイデアの合計数",
		}),
		projectCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideabank_projects_created_total",
			Help: "作成されたプロジェクトの合計数",
		}),
		roleChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideabank_role_changes_total",
			Help: "役割変更の合計数（変更後の役割別）",
		}, []string{"role"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideabank_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideabank_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.votesCast,
		c.voteNoop,
		c.ideasSubmitted,
		c.projectCreated,
		c.roleChanges,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordVoteCast はカウンターに反映された投票を記録する。
func (c *Collector) RecordVoteCast(category string) {
	c.votesCast.WithLabelValues(category).Inc()
}

// RecordVoteNoop は冪等ガードで無視された投票を記録する。
func (c *Collector) RecordVoteNoop() {
	c.voteNoop.Inc()
}

// RecordIdeaSubmitted はアイデア投稿を記録する。
func (c *Collector) RecordIdeaSubmitted() {
	c.ideasSubmitted.Inc()
}

// RecordProjectCreated はプロジェクト作成を記録する。
func (c *Collector) RecordProjectCreated() {
	c.projectCreated.Inc()
}

// RecordRoleChange は役割変更を記録する。
func (c *Collector) RecordRoleChange(role string) {
	c.roleChanges.WithLabelValues(role).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware はステータスコードとレイテンシを記録するHTTPミドルウェアを返す。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			c.RecordHTTPStatus(rec.statusCode)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}

// statusWriter はステータスコード記録用のResponseWriterラッパー。
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
