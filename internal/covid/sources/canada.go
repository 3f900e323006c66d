package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-charts/internal/covid"
)

// DefaultCanadaURL serves cumulative confirmed counts for Canadian provinces.
const DefaultCanadaURL = "https://api.trackingcovid.com/api/confirmed"

// CanadaSource fetches provincial datasets, one province per request.
type CanadaSource struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewCanadaSource creates a CanadaSource; an empty baseURL uses DefaultCanadaURL.
func NewCanadaSource(client *http.Client, baseURL string, cfg HTTPClientConfig) *CanadaSource {
	if baseURL == "" {
		baseURL = DefaultCanadaURL
	}
	cfg.Client = client
	return &CanadaSource{
		name:    "canada",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newBreaker("canada"),
	}
}

func (s *CanadaSource) Name() string {
	return s.name
}

// URLFor returns the request URL for an encoded province key. The key is used
// as is: its "+" already reads as a space to the upstream query parser.
func (s *CanadaSource) URLFor(province string) string {
	return s.baseURL + "?regions=" + province
}

// Fetch retrieves and validates the dataset at url.
func (s *CanadaSource) Fetch(ctx context.Context, url string) (covid.ProvinceDataset, error) {
	body, cached, err := fetchBody(ctx, s.httpCfg, s.circuit, url, true)
	if err != nil {
		return covid.ProvinceDataset{}, err
	}

	var d covid.ProvinceDataset
	if err := json.Unmarshal(body, &d); err != nil {
		return covid.ProvinceDataset{}, fmt.Errorf("%w: %v", covid.ErrParse, err)
	}
	if err := d.Validate(); err != nil {
		return covid.ProvinceDataset{}, err
	}

	if !cached {
		storeBody(ctx, s.httpCfg, url, body)
	}
	return d, nil
}
