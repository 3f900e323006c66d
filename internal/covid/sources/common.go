package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-charts/internal/cache"
	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/logger"
)

// maxBodyBytes caps an upstream body; the global time series is a few MB.
const maxBodyBytes = 64 << 20

// HTTPClientConfig bundles the HTTP client and the optional shared cache.
type HTTPClientConfig struct {
	Client *http.Client

	// Cache holds raw bodies by URL when CacheTTL > 0.
	Cache    cache.Cache
	CacheTTL time.Duration
}

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.WithFields(logrus.Fields{
				"source": name,
				"from":   from.String(),
				"to":     to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

func (cfg HTTPClientConfig) cacheEnabled() bool {
	return cfg.Cache != nil && cfg.CacheTTL > 0
}

// fetchBody performs a single GET through the circuit breaker and returns the
// body. With readCache set, a live cached body for url is returned instead;
// cached reports which. Failures are wrapped in covid.ErrNetwork. There is no retry.
func fetchBody(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, url string, readCache bool) (body []byte, cached bool, err error) {
	if cfg.Client == nil {
		return nil, false, fmt.Errorf("%w: %v", covid.ErrNetwork, errNoHTTPClient)
	}

	log := logger.Log.WithFields(logrus.Fields{"source": cb.Name(), "url": url})

	if readCache && cfg.cacheEnabled() {
		body, err := cfg.Cache.Get(ctx, url)
		if err == nil {
			log.Debug("served from cache")
			return body, true, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).Warn("cache read failed")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", covid.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		log.WithError(err).Warn("upstream fetch failed")
		return nil, false, fmt.Errorf("%w: %v", covid.ErrNetwork, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("%w: unexpected result type from circuit breaker", covid.ErrNetwork)
	}
	log.WithFields(logrus.Fields{
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	}).Info("upstream fetch completed")

	return body, false, nil
}

// storeBody caches a body that decoded and validated.
func storeBody(ctx context.Context, cfg HTTPClientConfig, url string, body []byte) {
	if !cfg.cacheEnabled() {
		return
	}
	if err := cfg.Cache.Set(ctx, url, body, cfg.CacheTTL); err != nil {
		logger.Log.WithError(err).WithField("url", url).Warn("cache write failed")
	}
}
