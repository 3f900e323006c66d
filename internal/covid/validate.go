package covid

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks every point of every country on receipt.
func (d GlobalDataset) Validate() error {
	for _, name := range d.order {
		for i, p := range d.countries[name] {
			if err := validate.Struct(p); err != nil {
				return fmt.Errorf("%w: %s[%d]: %v", ErrParse, name, i, err)
			}
		}
	}
	return nil
}

// Validate checks that regions are present, counts are non-negative and
// start dates parse.
func (d ProvinceDataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	for name, rec := range d.Regions {
		if _, err := ParseStartDate(rec.Start); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
