package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteTable(t *testing.T) {
	// given
	rec, err := record.Parse("1 Cotton Fabric|500 150.00")
	require.NoError(t, err)
	var out bytes.Buffer
	// when
	err = WriteTable(&out, []record.Record{rec, {ID: 2, Name: "Denim", Quantity: 300, Price: 200}})
	// then
	require.NoError(t, err)
	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "------ Inventory Records ------", lines[1])
	assert.Equal(t, "ID   Name                Quantity  Price", lines[2])
	assert.Equal(t, "1    Cotton Fabric       500       PHP150.00", lines[4])
	assert.Equal(t, "2    Denim               300       PHP200.00", lines[5])
}

func Test_WriteTable_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteTable(&out, nil))
	assert.Equal(t, "No records available.\n", out.String())
}

func Test_Build(t *testing.T) {
	// given
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	records := []record.Record{
		{ID: 1, Name: "Cotton Fabric", Quantity: 500, Price: 150},
		{ID: 3, Name: "Denim", Quantity: 300, Price: 200},
	}
	// when
	r := Build("raw_material", "Raw Material", records, now)
	// then
	assert.Equal(t, "raw_material", r.Kind)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, []Line{
		{ID: 1, Name: "Cotton Fabric", Quantity: 500, Price: 150, Value: 75000},
		{ID: 3, Name: "Denim", Quantity: 300, Price: 200, Value: 60000},
	}, r.Lines)
	assert.Equal(t, 800, r.TotalQuantity)
	assert.InDelta(t, 135000.0, r.TotalValue, 1e-9)
}

func Test_Build_Empty(t *testing.T) {
	r := Build("product", "Product", nil, time.Now())
	assert.NotNil(t, r.Lines)
	assert.Empty(t, r.Lines)
	assert.Zero(t, r.TotalQuantity)
	assert.Zero(t, r.TotalValue)
}

func Test_WriteReport(t *testing.T) {
	// given
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	r := Build("raw_material", "Raw Material", []record.Record{
		{ID: 1, Name: "Cotton Fabric", Quantity: 500, Price: 150},
		{ID: 3, Name: "Denim", Quantity: 300, Price: 200},
	}, now)
	var out bytes.Buffer
	// when
	require.NoError(t, WriteReport(&out, r))
	// then
	text := out.String()
	assert.Contains(t, text, "RAW MATERIAL INVENTORY REPORT\n")
	assert.Contains(t, text, "Generated on: Mon Oct 19 09:30:00 2026\n")
	assert.Contains(t, text, "1    Cotton Fabric            500       PHP150.00        PHP75000.00      \n")
	assert.Contains(t, text, "TOTAL:                        800                      PHP135000.00\n")
}
