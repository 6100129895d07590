// Package metrics exposes prometheus collectors for the HTTP API and the reply
// notification pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reply notification outcomes.
const (
	ReplySent          = "sent"
	ReplySelf          = "skipped_self"
	ReplyParentMissing = "skipped_parent_missing"
	ReplyFailed        = "failed"
	ReplyDropped       = "dropped"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	commentMutations *prometheus.CounterVec
	replyNotices     *prometheus.CounterVec
	treeLevels       prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commenthub_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "commenthub_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		commentMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commenthub_comment_mutations_total",
			Help: "Comment lifecycle operations by operation and outcome",
		}, []string{"op", "outcome"}),
		replyNotices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commenthub_reply_notifications_total",
			Help: "Reply notification dispatch outcomes",
		}, []string{"outcome"}),
		treeLevels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "commenthub_tree_assembly_levels",
			Help:    "Number of reply levels expanded per tree assembly",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.commentMutations,
		m.replyNotices,
		m.treeLevels,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) CommentMutation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.commentMutations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ReplyNotification(outcome string) {
	if m == nil {
		return
	}
	m.replyNotices.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TreeLevels(levels int) {
	if m == nil {
		return
	}
	m.treeLevels.Observe(float64(levels))
}
