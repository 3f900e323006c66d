package view

import (
	"context"

	"github.com/i474232898/covid-charts/internal/chart"
	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/fetch"
	"github.com/i474232898/covid-charts/internal/selector"
)

// Model is what a view section renders. Chart is nil until the data is ready
// and contains the selected region.
type Model struct {
	State    fetch.State       `json:"state"`
	Region   string            `json:"region"`
	Heading  string            `json:"heading"`
	Dropdown selector.Dropdown `json:"dropdown"`
	Series   covid.Series      `json:"series,omitempty"`
	Chart    *chart.Chart      `json:"chart,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Ready reports whether the model has something to plot.
func (m Model) Ready() bool {
	return m.Chart != nil
}

// View is one selectable chart section.
type View interface {
	Select(region string) error
	Reload()
	Wait(ctx context.Context)
	Model() Model
}

func heading(region string) string {
	return "Covid-19 in " + covid.DecodeRegion(region)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
