package view

import (
	"context"
	"sync"

	"github.com/i474232898/covid-charts/internal/chart"
	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/fetch"
	"github.com/i474232898/covid-charts/internal/selector"
)

// DefaultCountry is selected when a country view is created.
const DefaultCountry = "Canada"

// GlobalFetcher is the source of the country dataset.
type GlobalFetcher interface {
	URL() string
	Fetch(ctx context.Context, url string) (covid.GlobalDataset, error)
}

// CountryView charts one country of the global dataset, with deaths and
// recovered lines. The dataset is fetched once; selection only changes the key.
type CountryView struct {
	url  string
	sel  *selector.Selector
	data *fetch.Resource[covid.GlobalDataset]

	// optionsGen is the fetch generation the selector options were taken from.
	mu         sync.Mutex
	optionsGen uint64
}

var _ View = (*CountryView)(nil)

// NewCountryView creates the view and starts fetching the dataset.
func NewCountryView(ctx context.Context, src GlobalFetcher, def string) *CountryView {
	if def == "" {
		def = DefaultCountry
	}
	v := &CountryView{
		url:  src.URL(),
		sel:  selector.New(def, nil),
		data: fetch.NewResource[covid.GlobalDataset](ctx, src.Fetch),
	}
	v.data.Load(v.url)
	return v
}

// Select changes the country.
func (v *CountryView) Select(country string) error {
	v.syncOptions(v.data.Snapshot())
	_, err := v.sel.Set(country)
	return err
}

// Reload fetches the dataset again.
func (v *CountryView) Reload() {
	v.data.Reload()
}

// Wait blocks until the dataset settles or ctx is done.
func (v *CountryView) Wait(ctx context.Context) {
	v.data.Wait(ctx)
}

func (v *CountryView) syncOptions(s fetch.Snapshot[covid.GlobalDataset]) {
	if s.State != fetch.Ready {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.optionsGen == s.Gen {
		return
	}
	v.sel.SetOptions(s.Value.Countries())
	v.optionsGen = s.Gen
}

// Model builds the render model.
func (v *CountryView) Model() Model {
	s := v.data.Snapshot()
	v.syncOptions(s)

	country := v.sel.Value()
	m := Model{
		State:    s.State,
		Region:   country,
		Heading:  heading(country),
		Dropdown: v.sel.Dropdown("countries-select", "Choose a country:"),
		Error:    errString(s.Err),
	}
	if s.State != fetch.Ready {
		return m
	}

	series, ok := covid.GlobalSeries(s.Value, country)
	if !ok {
		return m
	}
	c := chart.Build(series, chart.Options{Deaths: true, Recovered: true})
	m.Series = series
	m.Chart = &c
	return m
}
