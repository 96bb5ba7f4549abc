package models

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned when a stored status is not one of the known values.
var ErrUnknownStatus = errors.New("unknown product status")

// Status is the stock status of a product.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusSoldOut    Status = "sold_out"
	StatusComingSoon Status = "coming_soon"
)

// Badge colors used by the admin table.
const (
	ColorSuccess = "success"
	ColorDanger  = "danger"
	ColorInfo    = "info"
	ColorGray    = "gray"
)

var statusLabels = map[Status]string{
	StatusInStock:    "In stock",
	StatusSoldOut:    "Sold out",
	StatusComingSoon: "Coming soon",
}

var statusColors = map[Status]string{
	StatusInStock:    ColorSuccess,
	StatusSoldOut:    ColorDanger,
	StatusComingSoon: ColorInfo,
}

// Statuses returns every known status in display order.
func Statuses() []Status {
	return []Status{StatusInStock, StatusSoldOut, StatusComingSoon}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name, or the raw value for unknown statuses.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Color returns the badge color for s.
func (s Status) Color() (string, error) {
	color, ok := statusColors[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return color, nil
}
