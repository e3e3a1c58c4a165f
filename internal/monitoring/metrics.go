package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	MessagesStored   prometheus.Counter
	MessagesDeleted  prometheus.Counter
	MailboxesCreated prometheus.Counter
	MailboxesDeleted prometheus.Counter
	UsersRegistered  prometheus.Counter
	ItemsPurchased   prometheus.Counter
	DecryptFailures  prometheus.Counter

	// 链上中继指标
	RelayCalls    *prometheus.CounterVec
	RelayFailures prometheus.Counter

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suimail_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suimail_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		MessagesStored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_messages_stored_total",
				Help: "Total number of messages stored in the ledger",
			},
		),

		MessagesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_messages_deleted_total",
				Help: "Total number of messages deleted",
			},
		),

		MailboxesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_mailboxes_created_total",
				Help: "Total number of mailboxes registered",
			},
		),

		MailboxesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_mailboxes_deleted_total",
				Help: "Total number of mailboxes deleted",
			},
		),

		UsersRegistered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_users_registered_total",
				Help: "Total number of user profiles registered",
			},
		),

		ItemsPurchased: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_kiosk_items_purchased_total",
				Help: "Total number of kiosk item purchases",
			},
		),

		DecryptFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_message_decrypt_failures_total",
				Help: "Total number of message records that failed decryption",
			},
		),

		RelayCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suimail_chain_relay_calls_total",
				Help: "Total number of chain relay submissions",
			},
			[]string{"module", "function"},
		),

		RelayFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_chain_relay_failures_total",
				Help: "Total number of failed chain relay submissions",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suimail_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "suimail_panics_total",
				Help: "Total number of recovered panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRelayCall 记录链上中继调用
func (m *Metrics) RecordRelayCall(module, function string) {
	m.RelayCalls.WithLabelValues(module, function).Inc()
}

// Handler 返回 Prometheus 指标处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
