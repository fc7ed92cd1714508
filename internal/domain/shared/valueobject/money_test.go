package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("invalid amount string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"EUR", EUR, false},
		{"usd", USD, false},
		{" pln ", PLN, false},
		{"", "", true},
		{"EURO", "", true},
		{"XYZ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, BRL.IsValid())
	assert.False(t, Currency("ABC").IsValid())
}

func TestMoney_AddSubtract(t *testing.T) {
	a := MustMoney("10.25", EUR)
	b := MustMoney("4.75", EUR)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "15.00 EUR", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.RequireFromString("5.5")))

	_, err = a.Add(MustMoney("1", USD))
	assert.Error(t, err)
	_, err = a.Subtract(MustMoney("1", USD))
	assert.Error(t, err)
}

func TestMoney_Round(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"333.333", "333.33"},
		{"125.255", "125.26"},
		{"-125.255", "-125.26"},
		{"0.005", "0.01"},
		{"10", "10"},
	}
	for _, tt := range tests {
		got := MustMoney(tt.in, EUR).Round(MonetaryPlaces)
		assert.True(t, got.Amount().Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.in, got.Amount())
	}
}

func TestMoney_Percentage(t *testing.T) {
	m := MustMoney("1000.00", EUR)
	assert.Equal(t, "333.30", m.Percentage(decimal.RequireFromString("33.33")).Amount().StringFixed(2))
	assert.Equal(t, "250.00", m.Percentage(decimal.NewFromInt(25)).Amount().StringFixed(2))
}

func TestMoney_ConvertTo(t *testing.T) {
	t.Run("converts and rounds", func(t *testing.T) {
		m := MustMoney("100.00", USD)
		got, err := m.ConvertTo(EUR, decimal.RequireFromString("0.91234"))
		require.NoError(t, err)
		assert.Equal(t, EUR, got.Currency())
		assert.True(t, got.Amount().Equal(decimal.RequireFromString("91.23")))
	})

	t.Run("same currency only rounds", func(t *testing.T) {
		m := MustMoney("10.005", EUR)
		got, err := m.ConvertTo(EUR, decimal.NewFromInt(7))
		require.NoError(t, err)
		assert.True(t, got.Amount().Equal(decimal.RequireFromString("10.01")))
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := MustMoney("1", USD).ConvertTo(EUR, decimal.Zero)
		assert.Error(t, err)
		_, err = MustMoney("1", USD).ConvertTo(EUR, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejects empty target", func(t *testing.T) {
		_, err := MustMoney("1", USD).ConvertTo("", decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("repeated conversion is stable", func(t *testing.T) {
		m := MustMoney("1234.56", USD)
		rate := decimal.RequireFromString("0.8765")
		first, err := m.ConvertTo(EUR, rate)
		require.NoError(t, err)
		for range 5 {
			again, err := m.ConvertTo(EUR, rate)
			require.NoError(t, err)
			assert.True(t, first.Equals(again))
		}
	})
}

func TestMoney_JSON(t *testing.T) {
	m := MustMoney("12.5", GBP)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.50","currency":"GBP"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(MustMoney("12.50", GBP)))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"x","currency":"GBP"}`), &back))
}
