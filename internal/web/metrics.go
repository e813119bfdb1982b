package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statisticsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recruitment_statistics_requests_total",
		Help: "Total number of recruitment statistics requests",
	}, []string{"method", "status"})

	statisticsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recruitment_statistics_request_duration_seconds",
		Help:    "Duration of recruitment statistics requests in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// observeStatisticsRequest фиксирует исход одного запроса статистики.
func observeStatisticsRequest(method, status string, started time.Time) {
	statisticsRequests.WithLabelValues(method, status).Inc()
	statisticsDuration.Observe(time.Since(started).Seconds())
}
