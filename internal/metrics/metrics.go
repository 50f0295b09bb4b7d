package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mocktest_sessions_started_total",
			Help: "Total number of test sessions started",
		},
	)

	// completion: manual_submit/time_expired
	sessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mocktest_sessions_finished_total",
			Help: "Total number of test sessions finished",
		},
		[]string{"completion"},
	)

	// gateway: questions/tips
	generationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mocktest_generation_failures_total",
			Help: "Total number of failed LLM generations",
		},
		[]string{"gateway"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mocktest_generation_duration_seconds",
			Help:    "Time spent waiting for LLM generations",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"gateway"},
	)

	activeAttempts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mocktest_active_attempts",
			Help: "Current number of attempt workspaces held in memory",
		},
	)
)

const (
	GatewayQuestions = "questions"
	GatewayTips      = "tips"
)

func SessionStarted() { sessionsStarted.Inc() }

func SessionFinished(completion string) { sessionsFinished.WithLabelValues(completion).Inc() }

func GenerationFailed(gateway string) { generationFailures.WithLabelValues(gateway).Inc() }

func ObserveGeneration(gateway string, seconds float64) {
	generationDuration.WithLabelValues(gateway).Observe(seconds)
}

func AttemptOpened() { activeAttempts.Inc() }

func AttemptClosed() { activeAttempts.Dec() }

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
