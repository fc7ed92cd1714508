package procurement

import (
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Amounts is a subtotal/tax/total triple in a single currency
type Amounts struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ZeroAmounts returns an all-zero triple
func ZeroAmounts() Amounts {
	return Amounts{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
}

// Add sums two triples component-wise
func (a Amounts) Add(other Amounts) Amounts {
	return Amounts{
		Subtotal: a.Subtotal.Add(other.Subtotal),
		Tax:      a.Tax.Add(other.Tax),
		Total:    a.Total.Add(other.Total),
	}
}

// Equal reports component-wise equality
func (a Amounts) Equal(other Amounts) bool {
	return a.Subtotal.Equal(other.Subtotal) && a.Tax.Equal(other.Tax) && a.Total.Equal(other.Total)
}

// ComputeLineAmounts prices one item line in order currency.
// Subtotal and tax are rounded to cents; total is their exact sum.
func ComputeLineAmounts(quantity, unitPrice, taxRate decimal.Decimal) Amounts {
	subtotal := valueobject.RoundAmount(quantity.Mul(unitPrice))
	tax := valueobject.RoundAmount(subtotal.Mul(taxRate).Div(decimal.NewFromInt(percentBase)))
	return Amounts{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// MirrorAmounts converts each component into base currency. Every component is
// rounded on its own; the mirrored total is not derived from mirrored parts.
func MirrorAmounts(a Amounts, from, base valueobject.Currency, rate decimal.Decimal) (Amounts, error) {
	convert := func(d decimal.Decimal) (decimal.Decimal, error) {
		m, err := valueobject.NewMoney(d, from)
		if err != nil {
			return decimal.Zero, err
		}
		out, err := m.ConvertTo(base, rate)
		if err != nil {
			return decimal.Zero, err
		}
		return out.Amount(), nil
	}

	subtotal, err := convert(a.Subtotal)
	if err != nil {
		return Amounts{}, err
	}
	tax, err := convert(a.Tax)
	if err != nil {
		return Amounts{}, err
	}
	total, err := convert(a.Total)
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{Subtotal: subtotal, Tax: tax, Total: total}, nil
}
