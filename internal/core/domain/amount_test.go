package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerhq/ledgercore/internal/core/domain"
)

func TestAmount_BankersRounding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "rounds half to even down", input: "1.00025", want: "1.0002"},
		{name: "rounds half to even up", input: "1.00035", want: "1.0004"},
		{name: "exact value unaffected", input: "1500.1234", want: "1500.1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := domain.AmountFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	a, err := domain.AmountFromString("100.0000")
	require.NoError(t, err)
	b, err := domain.AmountFromString("40.0000")
	require.NoError(t, err)

	assert.Equal(t, "140.0000", a.Add(b).String())
	assert.Equal(t, "60.0000", a.Sub(b).String())
	assert.Equal(t, "-100.0000", a.Neg().String())
	assert.True(t, a.GreaterThan(b))
	assert.False(t, a.Equal(b))
	assert.Equal(t, "40.0000", a.AbsDiff(b).String())
}

func TestAmount_MulRate(t *testing.T) {
	a, err := domain.AmountFromString("100.0000")
	require.NoError(t, err)
	rate := decimal.RequireFromString("0.856")
	assert.Equal(t, "85.6000", a.MulRate(rate).String())
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	a, err := domain.AmountFromString("42.5000")
	require.NoError(t, err)

	data, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"42.5000"`, string(data))

	var out domain.Amount
	require.NoError(t, out.UnmarshalJSON(data))
	assert.True(t, a.Equal(out))

	var fromNumber domain.Amount
	require.NoError(t, fromNumber.UnmarshalJSON([]byte("42.5")))
	assert.Equal(t, "42.5000", fromNumber.String())
}

func TestAmount_Predicates(t *testing.T) {
	assert.True(t, domain.Zero.IsZero())
	pos, _ := domain.AmountFromString("1")
	neg, _ := domain.AmountFromString("-1")
	assert.True(t, pos.IsPositive())
	assert.True(t, neg.IsNegative())
}
