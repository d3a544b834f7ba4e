package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// amountScale is the fixed number of fractional digits every Amount is
// rescaled to after arithmetic: 18 integer digits, 4 fractional digits.
const amountScale = 4

// Amount is a fixed-precision signed decimal: 18 integer digits, 4
// fractional digits, rounded half-to-even (banker's rounding) after every
// operation. It wraps shopspring/decimal rather than reimplementing
// fixed-point math by hand.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity at scale 4.
var Zero = Amount{d: decimal.Zero}

// oneDecimal is the unit exchange rate used to validate same-currency lines.
var oneDecimal = decimal.NewFromInt(1)

// NewAmount rescales an arbitrary-precision decimal to the Amount contract.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d.RoundBank(amountScale)}
}

// AmountFromString parses a decimal string (e.g. "1500.00") into an Amount.
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewAmount(d), nil
}

// Decimal exposes the underlying value for callers that need raw decimal math
// (e.g. persistence layers writing a NUMERIC(22,4) column).
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Add returns the banker's-rounded sum of two amounts.
func (a Amount) Add(b Amount) Amount { return NewAmount(a.d.Add(b.d)) }

// Sub returns the banker's-rounded difference of two amounts.
func (a Amount) Sub(b Amount) Amount { return NewAmount(a.d.Sub(b.d)) }

// Neg returns the additive inverse.
func (a Amount) Neg() Amount { return NewAmount(a.d.Neg()) }

// MulRate multiplies the amount by an arbitrary-precision rate (e.g. an
// exchange rate at scale 6), rescaling the product back to scale 4.
func (a Amount) MulRate(rate decimal.Decimal) Amount { return NewAmount(a.d.Mul(rate)) }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

// Equal reports exact equality at scale 4.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// AbsDiff returns |a - b|.
func (a Amount) AbsDiff(b Amount) Amount { return NewAmount(a.d.Sub(b.d).Abs()) }

// String renders the amount with exactly 4 fractional digits, as required
// by the deterministic serialization format used for hashing.
func (a Amount) String() string { return a.d.StringFixed(amountScale) }

// MarshalJSON renders the amount as a JSON string to avoid float round-trip
// loss in clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*a = NewAmount(d)
	return nil
}
