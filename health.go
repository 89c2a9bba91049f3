package lingo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

const (
	defaultHealthCheckPath     = "/healthz"
	defaultHealthTimeoutSecond = 2
	healthProbeKey             = "lingo:health"
)

var ErrHealthCheckFailed = errors.New("health check failed")

// Checker wraps the CheckHealth method.
//
// CheckHealth returns nil if the resource is healthy, or a non-nil
// error if the resource is not healthy. CheckHealth must be safe to
// call from multiple goroutines.
type Checker interface {
	CheckHealth() error
}

// CheckerFunc is an adapter type to allow the use of ordinary functions as
// health checks.
type CheckerFunc func() error

// CheckHealth calls f().
func (f CheckerFunc) CheckHealth() error {
	return f()
}

// WithHealthCheckPath serves the health endpoint on path instead of /healthz.
func WithHealthCheckPath(path string) Option {
	return func(_ context.Context, s *Service) {
		s.healthCheckPath = path
	}
}

// AddHealthCheck adds a checker consulted by the health endpoint.
func (s *Service) AddHealthCheck(checker Checker) {
	s.healthCheckers = append(s.healthCheckers, checker)
}

func (s *Service) HealthCheckers() []Checker {
	return s.healthCheckers
}

// slugCacheCheck reports the slug cache unhealthy when it cannot answer a lookup.
func (s *Service) slugCacheCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultHealthTimeoutSecond*time.Second)
	defer cancel()
	if _, err := s.slugCache.Exists(ctx, healthProbeKey); err != nil {
		return errors.Join(ErrHealthCheckFailed, err)
	}
	return nil
}

// HandleHealth returns 200 if it is healthy, 500 otherwise.
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.healthCheckers {
		if err := c.CheckHealth(); err != nil {
			s.Log(r.Context()).WithError(err).Warn("unhealthy")
			writeHealth(w, http.StatusInternalServerError, "unhealthy")
			return
		}
	}
	writeHealth(w, http.StatusOK, "ok")
}

func writeHealth(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
