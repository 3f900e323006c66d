package covid

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SeriesPoint is one day of case statistics for a region.
// Deaths and Recovered are nil when the upstream source does not report them.
type SeriesPoint struct {
	Date      string `json:"date" validate:"required,datetime=2006-1-2"`
	Confirmed int    `json:"confirmed" validate:"gte=0"`
	Deaths    *int   `json:"deaths,omitempty" validate:"omitempty,gte=0"`
	Recovered *int   `json:"recovered,omitempty" validate:"omitempty,gte=0"`
}

// Series is an ordered-by-date sequence of points for one region.
type Series []SeriesPoint

// GlobalDataset maps a country name to its series.
// The upstream key order is kept so region lists render the way the source lists them.
type GlobalDataset struct {
	order     []string
	countries map[string]Series
}

// NewGlobalDataset builds a dataset from countries in the given order.
func NewGlobalDataset(order []string, countries map[string]Series) GlobalDataset {
	return GlobalDataset{order: order, countries: countries}
}

// Countries returns the country names in upstream order.
func (d GlobalDataset) Countries() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of countries in the dataset.
func (d GlobalDataset) Len() int {
	return len(d.order)
}

// UnmarshalJSON decodes the country -> series object while recording key order.
func (d *GlobalDataset) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("global dataset: expected object, got %v", tok)
	}

	d.order = nil
	d.countries = make(map[string]Series)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("global dataset: expected country name, got %v", tok)
		}

		var s Series
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("global dataset: country %q: %w", name, err)
		}
		if _, dup := d.countries[name]; !dup {
			d.order = append(d.order, name)
		}
		d.countries[name] = s
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes the dataset back as an object in upstream order.
func (d GlobalDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(d.countries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProvinceRecord is the raw upstream shape for one province: a start date and
// the cumulative confirmed count for each day from that date on.
type ProvinceRecord struct {
	Start string `json:"start" validate:"required"`
	Cases []int  `json:"cases" validate:"dive,gte=0"`
}

// ProvinceDataset is the Canadian provincial payload keyed by display name.
type ProvinceDataset struct {
	Regions map[string]ProvinceRecord `json:"regions" validate:"required,dive"`
}
