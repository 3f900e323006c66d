package view

import (
	"context"

	"github.com/i474232898/covid-charts/internal/chart"
	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/fetch"
	"github.com/i474232898/covid-charts/internal/selector"
)

// DefaultProvince is selected when a province view is created.
const DefaultProvince = "Quebec"

// ProvinceFetcher is the source of provincial datasets.
type ProvinceFetcher interface {
	URLFor(province string) string
	Fetch(ctx context.Context, url string) (covid.ProvinceDataset, error)
}

// ProvinceView charts confirmed cases for one Canadian province. Each change
// of province fetches that province's dataset.
type ProvinceView struct {
	src  ProvinceFetcher
	sel  *selector.Selector
	data *fetch.Resource[covid.ProvinceDataset]
}

var _ View = (*ProvinceView)(nil)

// NewProvinceView creates the view and starts fetching the default province.
// def is an encoded province key.
func NewProvinceView(ctx context.Context, src ProvinceFetcher, def string) *ProvinceView {
	if def == "" {
		def = DefaultProvince
	}
	v := &ProvinceView{
		src:  src,
		sel:  selector.New(def, covid.CanadianProvinces),
		data: fetch.NewResource[covid.ProvinceDataset](ctx, src.Fetch),
	}
	v.sel.OnChange(func(p string) {
		v.data.Load(v.src.URLFor(p))
	})
	v.data.Load(src.URLFor(def))
	return v
}

// Select changes the province. Display names are accepted and encoded.
func (v *ProvinceView) Select(province string) error {
	_, err := v.sel.Set(covid.EncodeRegion(province))
	return err
}

// Reload fetches the selected province again.
func (v *ProvinceView) Reload() {
	v.data.Reload()
}

// Wait blocks until the latest fetch settles or ctx is done.
func (v *ProvinceView) Wait(ctx context.Context) {
	v.data.Wait(ctx)
}

// Model builds the render model.
func (v *ProvinceView) Model() Model {
	s := v.data.Snapshot()

	province := v.sel.Value()
	m := Model{
		State:    s.State,
		Region:   province,
		Heading:  heading(province),
		Dropdown: v.sel.Dropdown("province-select", "Choose a province:"),
		Error:    errString(s.Err),
	}
	if s.State != fetch.Ready {
		return m
	}

	series, ok, err := covid.ProvinceSeries(s.Value, covid.DecodeRegion(province))
	if err != nil {
		m.State = fetch.Failed
		m.Error = err.Error()
		return m
	}
	if !ok {
		return m
	}
	c := chart.Build(series, chart.Options{})
	m.Series = series
	m.Chart = &c
	return m
}
