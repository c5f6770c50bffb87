// Package inventory groups the record stores of every inventory kind.
package inventory

import (
	"fmt"
	"strings"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/record"
)

// Kind selects an inventory: raw materials or products.
type Kind string

const (
	RawMaterial Kind = "raw_material"
	Product     Kind = "product"
)

type kindInfo struct {
	file    string
	title   string
	samples []record.Record
}

// kinds is the single table the two inventories differ by.
var kinds = map[Kind]kindInfo{
	RawMaterial: {
		file:  "rawmaterial.txt",
		title: "Raw Material",
		samples: []record.Record{
			{ID: 1, Name: "Cotton Fabric", Quantity: 500, Price: 150},
			{ID: 2, Name: "Polyester Fabric", Quantity: 450, Price: 120},
			{ID: 3, Name: "Denim", Quantity: 300, Price: 200},
			{ID: 4, Name: "Silk Fabric", Quantity: 150, Price: 350},
			{ID: 5, Name: "Wool Fabric", Quantity: 200, Price: 250},
			{ID: 6, Name: "Thread", Quantity: 1000, Price: 10},
			{ID: 7, Name: "Buttons", Quantity: 2500, Price: 5},
			{ID: 8, Name: "Zippers", Quantity: 1200, Price: 15},
			{ID: 9, Name: "Elastic Bands", Quantity: 800, Price: 8},
			{ID: 10, Name: "Labels/Tags", Quantity: 1200, Price: 3},
		},
	},
	Product: {
		file:  "product.txt",
		title: "Product",
		samples: []record.Record{
			{ID: 1, Name: "Men's T-Shirts", Quantity: 200, Price: 220},
			{ID: 2, Name: "Women's Blouses", Quantity: 180, Price: 320},
			{ID: 3, Name: "Denim Jeans", Quantity: 150, Price: 650},
			{ID: 4, Name: "Hoodies", Quantity: 120, Price: 750},
			{ID: 5, Name: "Jackets", Quantity: 100, Price: 750},
			{ID: 6, Name: "Formal Trousers", Quantity: 90, Price: 340},
			{ID: 7, Name: "Skirts", Quantity: 110, Price: 490},
			{ID: 8, Name: "Dresses", Quantity: 85, Price: 300},
			{ID: 9, Name: "Shorts", Quantity: 95, Price: 270},
			{ID: 10, Name: "Polo Shirts", Quantity: 130, Price: 270},
		},
	},
}

// Kinds returns all kinds in menu order.
func Kinds() []Kind {
	return []Kind{RawMaterial, Product}
}

// ParseKind converts user input such as "raw-material" or "product" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw_material", "raw-material", "rawmaterial", "raw_materials", "raw-materials":
		return RawMaterial, nil
	case "product", "products":
		return Product, nil
	default:
		return "", fmt.Errorf("%w: %q", perrors.ErrUnknownKind, s)
	}
}

// File returns the name of the backing file inside the data directory.
func (k Kind) File() string {
	return kinds[k].file
}

// Title returns the human readable name, e.g. "Raw Material".
func (k Kind) Title() string {
	return kinds[k].title
}

// Samples returns the records written to an empty inventory on first start.
func (k Kind) Samples() []record.Record {
	src := kinds[k].samples
	out := make([]record.Record, len(src))
	copy(out, src)
	return out
}

func (k Kind) String() string {
	return string(k)
}
