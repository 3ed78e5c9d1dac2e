package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harmonseq_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "harmonseq_sessions_open",
		Help: "Sessions currently hosted.",
	})

	analyzeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "harmonseq_analyze_seconds",
		Help:    "Time spent in harmony analysis requests.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	transposedNotes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harmonseq_transposed_notes_total",
		Help: "Notes moved by transpose requests.",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		logrus.WithFields(logrus.Fields{
			"method":  r.Method,
			"route":   route,
			"code":    rec.status,
			"elapsed": time.Since(start),
		}).Debug("request")
	})
}
