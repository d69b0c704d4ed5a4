package inventory_test

import (
	"math"
	"net/url"
	"testing"

	"inventoryapi/internal/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromForm(t *testing.T) {
	form := url.Values{
		"sku":          {"42"},
		"title":        {"Widget"},
		"description":  {"1.5"},
		"quantity":     {"7"},
		"expiry":       {"1700000060000"},
		"currencyCode": {"USD"},
		"currency":     {"$"},
		"amount":       {"500"},
	}

	rec, err := inventory.RecordFromForm(form, "left")
	require.NoError(t, err)

	assert.Equal(t, inventory.Record{
		SKU:               "42",
		Title:             "Widget",
		Description:       1.5,
		Quantity:          7,
		Expiry:            1700000060000,
		CurrencyCode:      "USD",
		Currency:          "$",
		CurrencyAffixSide: "left",
		Amount:            500,
	}, rec)
}

func TestRecordFromForm_ExplicitAffixSideWins(t *testing.T) {
	rec, err := inventory.RecordFromForm(url.Values{"sku": {"1"}, "currencyAffixSide": {"right"}}, "left")
	require.NoError(t, err)
	assert.Equal(t, "right", rec.CurrencyAffixSide)
}

func TestRecordFromForm_PartialRecordIsAccepted(t *testing.T) {
	rec, err := inventory.RecordFromForm(url.Values{"sku": {"9"}}, "left")
	require.NoError(t, err)
	assert.Equal(t, inventory.Record{SKU: "9", CurrencyAffixSide: "left"}, rec)
}

func TestRecordFromForm_Rejects(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing sku", url.Values{"title": {"Widget"}}},
		{"negative amount", url.Values{"sku": {"1"}, "amount": {"-5"}}},
		{"non numeric expiry", url.Values{"sku": {"1"}, "expiry": {"tomorrow"}}},
		{"bad description", url.Values{"sku": {"1"}, "description": {"lots"}}},
		{"NaN description", url.Values{"sku": {"1"}, "description": {"NaN"}}},
		{"infinite description", url.Values{"sku": {"1"}, "description": {"Inf"}}},
		{"negative infinite description", url.Values{"sku": {"1"}, "description": {"-Inf"}}},
		{"description overflows float32", url.Values{"sku": {"1"}, "description": {"1e39"}}},
		{"amount above max long", url.Values{"sku": {"1"}, "amount": {"9223372036854775808"}}},
		{"expiry above max long", url.Values{"sku": {"1"}, "expiry": {"18446744073709551615"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inventory.RecordFromForm(tt.form, "left")
			assert.ErrorIs(t, err, inventory.ErrMissingField)
		})
	}
}

func TestRecordFromForm_AcceptsMaxLong(t *testing.T) {
	rec, err := inventory.RecordFromForm(url.Values{"sku": {"1"}, "quantity": {"9223372036854775807"}}, "left")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64), rec.Quantity)
}

func TestRecord_Summary(t *testing.T) {
	rec := inventory.Record{SKU: "42", Currency: "$", Amount: 500, Expiry: 1700000060000}
	assert.Equal(t, "Updated inventory of 42 to $500 with expiry 1700000060000", rec.Summary("Updated"))
}
