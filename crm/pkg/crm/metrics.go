package crm

import "github.com/prometheus/client_golang/prometheus"

var (
	apiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_api_calls_total",
			Help: "CRM API 调用次数（outcome=ok|failed，按整次调用计）",
		},
		[]string{"method", "outcome"},
	)

	attemptFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_api_attempt_failures_total",
			Help: "CRM API 单次尝试失败次数（reason=transport|http_status|decode）",
		},
		[]string{"method", "reason"},
	)

	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_api_call_duration_seconds",
			Help:    "CRM API 调用耗时（含重试等待）",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	softFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_entity_soft_failures_total",
			Help: "调用成功但响应缺少期望结果的次数",
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(apiCalls)
	prometheus.MustRegister(attemptFailures)
	prometheus.MustRegister(callDuration)
	prometheus.MustRegister(softFailures)
}
