package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pickup-ledger/server/internal/pickup"
)

// Metrics 汇总解析与提交相关的指标。方法对 nil 接收者安全，未启用指标时可直接传 nil。
type Metrics struct {
	registry        *prometheus.Registry
	linesParsed     prometheus.Counter
	linesSkipped    prometheus.Counter
	unresolvedNames prometheus.Counter
	orderRules      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
}

// New 创建独立的 Registry，避免多个实例（例如测试中）重复注册到全局默认 Registry。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		linesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pickup",
			Name:      "lines_parsed_total",
			Help:      "Lines that produced a pull session.",
		}),
		linesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pickup",
			Name:      "lines_skipped_total",
			Help:      "Non-blank lines skipped for lacking three isolated digits.",
		}),
		unresolvedNames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pickup",
			Name:      "unresolved_names_total",
			Help:      "Name tokens that matched no known student.",
		}),
		orderRules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pickup",
			Name:      "order_rule_total",
			Help:      "Tier order decisions by rule.",
		}, []string{"rule"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pickup",
			Name:      "submissions_total",
			Help:      "History submissions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.linesParsed,
		m.linesSkipped,
		m.unresolvedNames,
		m.orderRules,
		m.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveReport 记录一次解析的结果。
func (m *Metrics) ObserveReport(r pickup.Report) {
	if m == nil {
		return
	}
	m.linesParsed.Add(float64(len(r.Sessions)))
	m.linesSkipped.Add(float64(len(r.SkippedLines)))
	m.unresolvedNames.Add(float64(len(r.Unresolved)))
	for _, rule := range r.Rules {
		m.orderRules.WithLabelValues(string(rule)).Inc()
	}
}

// ObserveSubmission 记录一次提交，outcome 取 applied / duplicate / error。
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Registry 暴露底层 Registry，主要用于测试断言。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
