package covid

import "errors"

var (
	// ErrNetwork is returned when an upstream request fails before a body is read.
	ErrNetwork = errors.New("network error")

	// ErrParse is returned when an upstream body is not the expected JSON shape.
	ErrParse = errors.New("parse error")

	// ErrRegionNotFound is returned when a dataset has no entry for the selected region.
	ErrRegionNotFound = errors.New("region not found")
)
