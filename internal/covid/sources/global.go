package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-charts/internal/covid"
)

// DefaultGlobalURL serves every country's daily totals in one document.
const DefaultGlobalURL = "https://pomber.github.io/covid19/timeseries.json"

// GlobalSource fetches the country -> series dataset.
type GlobalSource struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewGlobalSource creates a GlobalSource for url; an empty url uses DefaultGlobalURL.
func NewGlobalSource(client *http.Client, url string, cfg HTTPClientConfig) *GlobalSource {
	if url == "" {
		url = DefaultGlobalURL
	}
	cfg.Client = client
	return &GlobalSource{
		name:    "global",
		url:     url,
		httpCfg: cfg,
		circuit: newBreaker("global"),
	}
}

func (s *GlobalSource) Name() string {
	return s.name
}

// URL returns the dataset location.
func (s *GlobalSource) URL() string {
	return s.url
}

// Fetch retrieves and validates the dataset at url, preferring the shared cache.
func (s *GlobalSource) Fetch(ctx context.Context, url string) (covid.GlobalDataset, error) {
	return s.fetch(ctx, url, true)
}

// Refresh fetches the dataset from upstream regardless of the cache and
// stores the new body for later Fetch calls.
func (s *GlobalSource) Refresh(ctx context.Context) (covid.GlobalDataset, error) {
	return s.fetch(ctx, s.url, false)
}

func (s *GlobalSource) fetch(ctx context.Context, url string, readCache bool) (covid.GlobalDataset, error) {
	body, cached, err := fetchBody(ctx, s.httpCfg, s.circuit, url, readCache)
	if err != nil {
		return covid.GlobalDataset{}, err
	}

	var d covid.GlobalDataset
	if err := json.Unmarshal(body, &d); err != nil {
		return covid.GlobalDataset{}, fmt.Errorf("%w: %v", covid.ErrParse, err)
	}
	if err := d.Validate(); err != nil {
		return covid.GlobalDataset{}, err
	}

	if !cached {
		storeBody(ctx, s.httpCfg, url, body)
	}
	return d, nil
}
