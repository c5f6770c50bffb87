package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned by Parse for lines that don't follow
// the "<id> <name>|<quantity> <price>" layout.
var ErrMalformedLine = errors.New("malformed record line")

// Parse reads a single record from a line of the form
//
//	<id> <name>|<quantity> <price>
//
// e.g. "3 Denim|300 200.00". Field ranges are not validated.
func Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r")

	idPart, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Record{}, fmt.Errorf("%w: missing name", ErrMalformedLine)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 1 {
		return Record{}, fmt.Errorf("%w: invalid id %q", ErrMalformedLine, idPart)
	}

	name, tail, ok := strings.Cut(rest, "|")
	if !ok {
		return Record{}, fmt.Errorf("%w: missing '|' after name", ErrMalformedLine)
	}

	fields := strings.Fields(tail)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("%w: want quantity and price, got %d fields", ErrMalformedLine, len(fields))
	}
	quantity, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid quantity %q", ErrMalformedLine, fields[0])
	}
	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return Record{}, fmt.Errorf("%w: invalid price %q", ErrMalformedLine, fields[1])
	}

	return Record{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}, nil
}

// Format writes r in the layout accepted by Parse, without a line terminator.
func Format(r Record) string {
	return fmt.Sprintf("%d %s|%d %s", r.ID, r.Name, r.Quantity, formatPrice(r.Price))
}

// formatPrice keeps the familiar two decimals when they are exact and falls
// back to the shortest lossless representation otherwise.
func formatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == p {
		return s
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}
