package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several routers can live in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	favorites       prometheus.Counter
}

func NewMetrics() *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibezone_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	recommendations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibezone_recommendations_total",
			Help: "Mood recommendations by mood and outcome",
		},
		[]string{"mood", "outcome"},
	)
	favorites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibezone_favorites_added_total",
		Help: "Tracks added to favorites",
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(requests, recommendations, favorites)

	return &Metrics{
		registry:        registry,
		requests:        requests,
		recommendations: recommendations,
		favorites:       favorites,
	}
}

func (m *Metrics) recommendation(mood string, err error) {
	outcome := "ok"
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		outcome = strconv.Itoa(apiErr.Code)
	} else if err != nil {
		outcome = "error"
	}
	m.recommendations.WithLabelValues(mood, outcome).Inc()
}

// Middleware counts every request once the error handler has written
// the reply.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			m.requests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return nil
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
