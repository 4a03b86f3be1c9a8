package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialpixel"

var (
	// SubmissionsProposed compte les soumissions en attente créées
	SubmissionsProposed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "submissions_proposed_total",
		Help:      "Total number of game submissions proposed",
	})

	// Decisions compte les validations par décision (ACCEPT / REJECT)
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "decisions_total",
			Help:      "Total number of decisions taken on pending submissions",
		},
		[]string{"decision"},
	)

	LeaderboardAwards = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "leaderboard_awards_total",
		Help:      "Total number of leaderboard rows appended",
	})

	PointsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "points_awarded_total",
		Help:      "Total number of points granted by the game workflow",
	})

	// RequestDuration mesure la durée des requêtes HTTP par route
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Handler expose les métriques au format Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
