// Package record defines an inventory line item and its text line format.
package record

import (
	"strings"
	"unicode"
)

// Record is one inventory line item: a raw material or a product.
type Record struct {
	ID       int
	Name     string
	Quantity int
	Price    float64 // unit price
}

// Value returns the stock value of the record.
func (r Record) Value() float64 {
	return float64(r.Quantity) * r.Price
}

// ValidName reports whether name can be stored in a record line.
// A name must have at least one letter and must not contain the field
// delimiter or line breaks.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if strings.ContainsAny(name, "|\r\n") {
		return false
	}
	return strings.IndexFunc(name, unicode.IsLetter) >= 0
}
