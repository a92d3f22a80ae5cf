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
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordCheckIn(slot string)
	RecordDuplicateCheckIn(slot string)
	RecordLogin(method, result string)
	RecordHTTPStatus(statusCode int)
	RecordReportDuration(report string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	checkIns          *prometheus.CounterVec
	duplicateCheckIns *prometheus.CounterVec
	logins            *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	reportDuration    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendman_check_ins_total",
			Help: "打刻枠別の打刻成功数",
		}, []string{"slot"}),
		duplicateCheckIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendman_duplicate_check_ins_total",
			Help: "打刻済みの枠への再打刻で拒否された数",
		}, []string{"slot"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendman_logins_total",
			Help: "ログイン方式と結果別のログイン試行数",
		}, []string{"method", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendman_report_duration_seconds",
			Help:    "レポート集計の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
	}

	reg.MustRegister(
		c.checkIns,
		c.duplicateCheckIns,
		c.logins,
		c.httpStatus,
		c.reportDuration,
	)

	return c
}

// RecordCheckIn は打刻成功を記録する。
func (c *Collector) RecordCheckIn(slot string) {
	c.checkIns.WithLabelValues(slot).Inc()
}

// RecordDuplicateCheckIn は重複打刻の拒否を記録する。
func (c *Collector) RecordDuplicateCheckIn(slot string) {
	c.duplicateCheckIns.WithLabelValues(slot).Inc()
}

// RecordLogin はログイン試行を記録する。
func (c *Collector) RecordLogin(method, result string) {
	c.logins.WithLabelValues(method, result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordReportDuration はレポート集計の所要時間を記録する。
func (c *Collector) RecordReportDuration(report string, duration time.Duration) {
	c.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
