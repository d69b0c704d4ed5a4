package inventory

import "fmt"

// RecordSchema is the Avro schema registered for inventory change events.
// quantity, expiry and amount are uint64 in Record but longs here;
// RecordFromForm rejects values above math.MaxInt64 so they never wrap.
const RecordSchema = `{
  "type": "record",
  "name": "Inventory",
  "namespace": "inventory.events",
  "fields": [
    {"name": "sku", "type": "string"},
    {"name": "title", "type": "string"},
    {"name": "description", "type": "float"},
    {"name": "quantity", "type": "long"},
    {"name": "expiry", "type": "long"},
    {"name": "currencyCode", "type": "string"},
    {"name": "currency", "type": "string"},
    {"name": "currencyAffixSide", "type": "string"},
    {"name": "amount", "type": "long"}
  ]
}`

// avroDatum maps r onto the goavro native form of RecordSchema.
func (r Record) avroDatum() map[string]any {
	return map[string]any{
		"sku":               r.SKU,
		"title":             r.Title,
		"description":       r.Description,
		"quantity":          int64(r.Quantity),
		"expiry":            int64(r.Expiry),
		"currencyCode":      r.CurrencyCode,
		"currency":          r.Currency,
		"currencyAffixSide": r.CurrencyAffixSide,
		"amount":            int64(r.Amount),
	}
}

// RecordFromAvro is the inverse of avroDatum for datums decoded with
// RecordSchema.
func RecordFromAvro(datum map[string]any) (Record, error) {
	var (
		rec Record
		err error
	)
	str := func(name string) string {
		v, ok := datum[name].(string)
		if !ok && err == nil {
			err = fmt.Errorf("avro field %s: want string, got %T", name, datum[name])
		}
		return v
	}
	long := func(name string) uint64 {
		v, ok := datum[name].(int64)
		if !ok && err == nil {
			err = fmt.Errorf("avro field %s: want long, got %T", name, datum[name])
		}
		return uint64(v)
	}

	rec.SKU = str("sku")
	rec.Title = str("title")
	rec.Quantity = long("quantity")
	rec.Expiry = long("expiry")
	rec.CurrencyCode = str("currencyCode")
	rec.Currency = str("currency")
	rec.CurrencyAffixSide = str("currencyAffixSide")
	rec.Amount = long("amount")
	if d, ok := datum["description"].(float32); ok {
		rec.Description = d
	} else if err == nil {
		err = fmt.Errorf("avro field description: want float, got %T", datum["description"])
	}

	if err != nil {
		return Record{}, err
	}
	return rec, nil
}
