package apcaledger

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in the account's currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// fraction returns the number of minor unit digits of the money's currency.
func (m Money) fraction() int32 {
	// unknown currencies (or none) print like dollars.
	if c := money.GetCurrency(m.cur); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// Number returns the amount without currency, with at least the currency's
// minor unit digits and every significant digit beyond them.
func (m Money) Number() string {
	return formatDecimal(m.value, m.fraction())
}

// String returns the ledger representation of the value, e.g. "522.48 USD".
func (m Money) String() string {
	if m.cur == "" {
		return m.Number()
	}
	return m.Number() + " " + m.cur
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Neg() Money               { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money     { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) DivPrice(n Money) Quantity {
	return Quantity{value: m.value.Div(n.value)}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// formatDecimal prints d with at least minFrac digits after the point.
func formatDecimal(d decimal.Decimal, minFrac int32) string {
	s := d.String() // trailing zeros are trimmed
	frac := int32(0)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = int32(len(s) - i - 1)
	}
	if frac < minFrac {
		frac = minFrac
	}
	return d.StringFixed(frac)
}
