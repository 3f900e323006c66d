package covid

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// GlobalSeries returns the stored series for a country exactly as received.
// ok is false when the country is not in the dataset.
func GlobalSeries(d GlobalDataset, country string) (Series, bool) {
	s, ok := d.countries[country]
	return s, ok
}

// ProvinceSeries synthesizes a dated series for a province from its start date
// and cumulative counts: point i is dated start + i days.
// ok is false when the province is not in the dataset.
func ProvinceSeries(d ProvinceDataset, province string) (Series, bool, error) {
	rec, ok := d.Regions[province]
	if !ok {
		return nil, false, nil
	}

	start, err := ParseStartDate(rec.Start)
	if err != nil {
		return nil, true, err
	}

	out := make(Series, len(rec.Cases))
	for i, c := range rec.Cases {
		out[i] = SeriesPoint{
			Date:      start.AddDate(0, 0, i).Format(dayLayout),
			Confirmed: c,
		}
	}
	return out, true, nil
}

// ParseStartDate accepts a plain calendar date or an RFC3339 timestamp and
// returns the UTC calendar day it names.
func ParseStartDate(s string) (time.Time, error) {
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid start date %q", ErrParse, s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
