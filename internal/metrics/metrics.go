package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evalhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 轮询指标
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalhub_polls_total",
			Help: "Total number of status polls by outcome",
		},
		[]string{"kind", "outcome"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evalhub_poll_duration_seconds",
			Help:    "Status poll round-trip latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"kind"},
	)

	PollRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalhub_poll_retries_total",
			Help: "Total number of poll retries after transport failures",
		},
		[]string{"kind"},
	)

	JobsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalhub_jobs_settled_total",
			Help: "Total number of jobs that reached a terminal status",
		},
		[]string{"kind", "status"},
	)

	ActivePollers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evalhub_active_pollers",
			Help: "Number of polling loops currently scheduled",
		},
		[]string{"kind"},
	)

	// 快照镜像（Redis）指标
	MirrorDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evalhub_mirror_dropped_total",
			Help: "Snapshots dropped because the mirror buffer was full",
		},
	)

	// 错误指标
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalhub_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)
)

// 轮询结果
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeAppError  = "app_error"
	OutcomeDiscarded = "discarded"
)

// RecordHTTPRequest 记录 HTTP 请求
func RecordHTTPRequest(method, path string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordPoll 记录一次轮询
func RecordPoll(kind, outcome string, duration float64) {
	PollsTotal.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		PollDuration.WithLabelValues(kind).Observe(duration)
	}
}

// RecordPollRetry 记录一次失败后的重试
func RecordPollRetry(kind string) {
	PollRetriesTotal.WithLabelValues(kind).Inc()
}

// RecordSettled 记录作业进入终态
func RecordSettled(kind, status string) {
	JobsSettledTotal.WithLabelValues(kind, status).Inc()
}

// PollerStarted / PollerStopped 维护活跃轮询数
func PollerStarted(kind string) {
	ActivePollers.WithLabelValues(kind).Inc()
}

func PollerStopped(kind string) {
	ActivePollers.WithLabelValues(kind).Dec()
}

// RecordMirrorDrop 记录被丢弃的镜像写入
func RecordMirrorDrop() {
	MirrorDroppedTotal.Inc()
}

// RecordError 记录错误
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// statusClass 将 HTTP 状态码转为类别
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
