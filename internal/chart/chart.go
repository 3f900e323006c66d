package chart

import (
	"encoding/json"
	"html/template"

	"github.com/i474232898/covid-charts/internal/covid"
)

const (
	Width  = 900
	Height = 400
)

// Line colours, one per statistic.
const (
	ColorConfirmed = "#00ccff"
	ColorDeaths    = "#ff6d6d"
	ColorRecovered = "#74ff66"
)

// Options selects the optional lines.
type Options struct {
	Deaths    bool
	Recovered bool
}

// Line is one plotted statistic. A nil value is a gap.
type Line struct {
	Key    string `json:"key"`
	Color  string `json:"color"`
	Values []*int `json:"values"`
}

// Chart is the render model of a series.
type Chart struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Labels []string `json:"labels"`
	Lines  []Line   `json:"lines"`
}

// Build turns a series into a chart: confirmed always, deaths and recovered
// only when requested. Points without the statistic leave a gap.
func Build(points covid.Series, opts Options) Chart {
	c := Chart{
		Width:  Width,
		Height: Height,
		Labels: make([]string, len(points)),
	}

	confirmed := make([]*int, len(points))
	for i := range points {
		c.Labels[i] = points[i].Date
		v := points[i].Confirmed
		confirmed[i] = &v
	}
	c.Lines = append(c.Lines, Line{Key: "confirmed", Color: ColorConfirmed, Values: confirmed})

	if opts.Deaths {
		vals := make([]*int, len(points))
		for i := range points {
			vals[i] = points[i].Deaths
		}
		c.Lines = append(c.Lines, Line{Key: "deaths", Color: ColorDeaths, Values: vals})
	}
	if opts.Recovered {
		vals := make([]*int, len(points))
		for i := range points {
			vals[i] = points[i].Recovered
		}
		c.Lines = append(c.Lines, Line{Key: "recovered", Color: ColorRecovered, Values: vals})
	}

	return c
}

// Line returns the line for key.
func (c Chart) Line(key string) (Line, bool) {
	for _, l := range c.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

type dataset struct {
	Label       string  `json:"label"`
	Data        []*int  `json:"data"`
	BorderColor string  `json:"borderColor"`
	Fill        bool    `json:"fill"`
	Tension     float64 `json:"tension"`
	SpanGaps    bool    `json:"spanGaps"`
}

type config struct {
	Type string `json:"type"`
	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []dataset `json:"datasets"`
	} `json:"data"`
	Options map[string]any `json:"options"`
}

// Config returns the Chart.js configuration for the chart, ready to embed in
// a script block.
func (c Chart) Config() (template.JS, error) {
	var cfg config
	cfg.Type = "line"
	cfg.Data.Labels = c.Labels
	for _, l := range c.Lines {
		cfg.Data.Datasets = append(cfg.Data.Datasets, dataset{
			Label:       l.Key,
			Data:        l.Values,
			BorderColor: l.Color,
			Tension:     0.4,
		})
	}
	cfg.Options = map[string]any{
		"responsive": false,
		"layout": map[string]any{
			"padding": map[string]int{"top": 5, "right": 30, "left": 20, "bottom": 5},
		},
		"plugins": map[string]any{
			"legend":  map[string]bool{"display": true},
			"tooltip": map[string]any{"mode": "index", "intersect": false},
		},
		"scales": map[string]any{
			"x": map[string]any{"grid": map[string]any{"borderDash": []int{3, 3}}},
			"y": map[string]any{"grid": map[string]any{"borderDash": []int{3, 3}}},
		},
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
