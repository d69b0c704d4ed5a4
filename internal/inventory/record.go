package inventory

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// Form field carrying the partition key on delete requests.
const EntityKeyField = "entity_type"

// Record is an inventory entry. Writes replace it whole.
type Record struct {
	SKU         string  `json:"sku" dynamodbav:"sku"`
	Title       string  `json:"title" dynamodbav:"title"`
	Description float32 `json:"description" dynamodbav:"description"`
	Quantity    uint64  `json:"quantity" dynamodbav:"quantity"`
	// Expiry is a Unix timestamp in milliseconds.
	Expiry uint64 `json:"expiry" dynamodbav:"expiry"`

	// Some currencies print their symbol before the amount ($10.99), some after.
	CurrencyCode      string `json:"currencyCode" dynamodbav:"currencyCode"`
	Currency          string `json:"currency" dynamodbav:"currency"`
	CurrencyAffixSide string `json:"currencyAffixSide" dynamodbav:"currencyAffixSide"`

	Amount uint64 `json:"amount" dynamodbav:"amount"`
}

// RecordFromForm builds a record from a urlencoded write request. Absent
// numeric fields are zero; present but unparsable ones are rejected. The
// description must be finite and integers must fit an Avro long.
func RecordFromForm(form url.Values, defaultAffixSide string) (Record, error) {
	rec := Record{
		SKU:               form.Get("sku"),
		Title:             form.Get("title"),
		CurrencyCode:      form.Get("currencyCode"),
		Currency:          form.Get("currency"),
		CurrencyAffixSide: form.Get("currencyAffixSide"),
	}
	if rec.SKU == "" {
		return Record{}, fmt.Errorf("%w: sku", ErrMissingField)
	}
	if rec.CurrencyAffixSide == "" {
		rec.CurrencyAffixSide = defaultAffixSide
	}

	if v := form.Get("description"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Record{}, fmt.Errorf("%w: description", ErrMissingField)
		}
		rec.Description = float32(f)
	}

	uints := []struct {
		name string
		dst  *uint64
	}{
		{"quantity", &rec.Quantity},
		{"expiry", &rec.Expiry},
		{"amount", &rec.Amount},
	}
	for _, u := range uints {
		v := form.Get(u.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s", ErrMissingField, u.name)
		}
		*u.dst = n
	}

	return rec, nil
}

// Summary renders the plain-text confirmation returned by writes and deletes.
func (r Record) Summary(verb string) string {
	return fmt.Sprintf("%s inventory of %s to %s%d with expiry %d", verb, r.SKU, r.Currency, r.Amount, r.Expiry)
}
