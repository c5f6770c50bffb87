// Package report renders inventory listings and value reports.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abgdnv/inventory/internal/record"
)

const currency = "PHP"

// Line is a report row: a record and its stock value.
type Line struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// Report tabulates the records of one inventory with totals.
type Report struct {
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	GeneratedAt   time.Time `json:"generated_at"`
	Lines         []Line    `json:"lines"`
	TotalQuantity int       `json:"total_quantity"`
	TotalValue    float64   `json:"total_value"`
}

// Build computes a report over records, keeping their order.
func Build(kind, title string, records []record.Record, now time.Time) Report {
	r := Report{
		Kind:        kind,
		Title:       title,
		GeneratedAt: now,
		Lines:       make([]Line, 0, len(records)),
	}
	for _, rec := range records {
		value := rec.Value()
		r.Lines = append(r.Lines, Line{
			ID:       rec.ID,
			Name:     rec.Name,
			Quantity: rec.Quantity,
			Price:    rec.Price,
			Value:    value,
		})
		r.TotalQuantity += rec.Quantity
		r.TotalValue += value
	}
	return r
}

// WriteTable prints records as a fixed-width table in insertion order.
func WriteTable(w io.Writer, records []record.Record) error {
	var b bytes.Buffer
	if len(records) == 0 {
		b.WriteString("No records available.\n")
		_, err := w.Write(b.Bytes())
		return err
	}

	b.WriteString("\n------ Inventory Records ------\n")
	fmt.Fprintf(&b, "%-5s%-20s%-10s%s\n", "ID", "Name", "Quantity", "Price")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "%-5d%-20s%-10d%s%.2f\n", rec.ID, rec.Name, rec.Quantity, currency, rec.Price)
	}
	b.WriteString(strings.Repeat("-", 50) + "\n")

	_, err := w.Write(b.Bytes())
	return err
}

// WriteReport prints r as a 70 column report with a TOTAL row.
func WriteReport(w io.Writer, r Report) error {
	var b bytes.Buffer
	rule := strings.Repeat("=", 70) + "\n"
	line := strings.Repeat("-", 70) + "\n"

	b.WriteString("\n" + rule)
	fmt.Fprintf(&b, "%45s\n", strings.ToUpper(r.Title)+" INVENTORY REPORT")
	fmt.Fprintf(&b, "Generated on: %s\n", r.GeneratedAt.Format(time.ANSIC))
	b.WriteString(rule)
	fmt.Fprintf(&b, "%-5s%-25s%-10s%-15s%-15s\n", "ID", "Name", "Quantity", "Unit Price", "Value")
	b.WriteString(line)
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%-5d%-25s%-10d%s%-14.2f%s%-14.2f\n",
			l.ID, l.Name, l.Quantity, currency, l.Price, currency, l.Value)
	}
	b.WriteString(line)
	fmt.Fprintf(&b, "%-30s%-10d%-15s%s%.2f\n", "TOTAL:", r.TotalQuantity, "", currency, r.TotalValue)
	b.WriteString(rule)

	_, err := w.Write(b.Bytes())
	return err
}
