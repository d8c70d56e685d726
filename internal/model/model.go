package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Item is one catalog entry (a book or product).
//
// ID is assigned by the catalog service. A zero ID means "not yet created";
// json omitempty keeps it off the wire for create payloads, so a create
// request can never carry an id by construction.
type Item struct {
	ID        int64   `json:"id,omitempty"`
	Title     string  `json:"title"`
	ISBN      string  `json:"isbn"`
	Author    string  `json:"author"`
	Publisher string  `json:"publisher"`
	Desc      string  `json:"desc"`
	Cover     string  `json:"cover"`
	Price     float64 `json:"price"`
	Extra     string  `json:"extra"`
}

// FormatPrice renders a price with exactly two fractional digits.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// ParsePrice parses user-entered price text. An empty string is 0.00.
// Non-numeric or negative input is rejected here so it is never submitted
// to the service as garbage.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", s)
	}
	if p < 0 {
		return 0, errors.New("price must not be negative")
	}
	return p, nil
}
