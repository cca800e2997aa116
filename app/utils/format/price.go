package format

import (
	"time"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var usd = accounting.Accounting{Symbol: "$", Precision: 2, Thousand: ",", Decimal: "."}

// Price renders a tour or booking amount for the views.
func Price(amount interface{}) string {
	var d decimal.Decimal
	switch v := amount.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return ""
		}
		d = *v
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return usd.FormatMoney(0)
	}
	f, _ := d.Float64()
	return usd.FormatMoney(f)
}

// Date renders a start date as "June 2026".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2006")
}
