package procurement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Payment terms codes known to the catalog
const (
	TermsImmediate     = "IMMEDIATE"
	TermsFull          = "FULL"
	TermsPayOnReceipt  = "PAY_ON_RECEIPT"
	TermsNet15         = "NET_15"
	TermsNet30         = "NET_30"
	TermsNet45         = "NET_45"
	TermsNet60         = "NET_60"
	TermsNet90         = "NET_90"
	TermsSplit5050     = "SPLIT_50_50"
	TermsSplitThirds   = "SPLIT_THIRDS"
	TermsSplitQuarters = "SPLIT_QUARTERS"
	TermsDeposit3070   = "DEPOSIT_30_70"
)

const (
	netPrefix   = "NET_"
	maxNetDays  = 365
	percentBase = 100
)

// InstallmentRule is one (percentage, day offset) entry of a payment terms code
type InstallmentRule struct {
	Percentage decimal.Decimal `json:"percentage"`
	DayOffset  int             `json:"day_offset"`
}

// PaymentTerms is a catalog entry. An entry with no rules means pay on receipt.
type PaymentTerms struct {
	Code  string            `json:"code"`
	Name  string            `json:"name"`
	Rules []InstallmentRule `json:"rules"`
}

// ScheduledInstallment is one computed slice of a payment schedule
type ScheduledInstallment struct {
	InstallmentNumber int             `json:"installment_number"`
	Percentage        decimal.Decimal `json:"percentage"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
}

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// third is the exact share of a three-way split; 33.33% would lose cents.
var third = decimal.NewFromInt(percentBase).Div(decimal.NewFromInt(3))

func netTerms(code string, days int) PaymentTerms {
	return PaymentTerms{
		Code:  code,
		Name:  fmt.Sprintf("Net %d days", days),
		Rules: []InstallmentRule{{Percentage: pct("100"), DayOffset: days}},
	}
}

// catalogEntries is ordered for display
var catalogEntries = []PaymentTerms{
	{Code: TermsPayOnReceipt, Name: "Pay on receipt"},
	{Code: TermsImmediate, Name: "Immediate payment", Rules: []InstallmentRule{{Percentage: pct("100"), DayOffset: 0}}},
	netTerms(TermsNet15, 15),
	netTerms(TermsNet30, 30),
	netTerms(TermsNet45, 45),
	netTerms(TermsNet60, 60),
	netTerms(TermsNet90, 90),
	{Code: TermsSplit5050, Name: "50/50 at 30 and 60 days", Rules: []InstallmentRule{
		{Percentage: pct("50"), DayOffset: 30},
		{Percentage: pct("50"), DayOffset: 60},
	}},
	{Code: TermsSplitThirds, Name: "Thirds at 30, 60 and 90 days", Rules: []InstallmentRule{
		{Percentage: third, DayOffset: 30},
		{Percentage: third, DayOffset: 60},
		{Percentage: pct("100").Sub(third.Mul(decimal.NewFromInt(2))), DayOffset: 90},
	}},
	{Code: TermsSplitQuarters, Name: "Quarters at 30, 60, 90 and 120 days", Rules: []InstallmentRule{
		{Percentage: pct("25"), DayOffset: 30},
		{Percentage: pct("25"), DayOffset: 60},
		{Percentage: pct("25"), DayOffset: 90},
		{Percentage: pct("25"), DayOffset: 120},
	}},
	{Code: TermsDeposit3070, Name: "30% deposit, 70% at 30 days", Rules: []InstallmentRule{
		{Percentage: pct("30"), DayOffset: 0},
		{Percentage: pct("70"), DayOffset: 30},
	}},
}

var catalogIndex = func() map[string]PaymentTerms {
	idx := make(map[string]PaymentTerms, len(catalogEntries)+1)
	for _, e := range catalogEntries {
		idx[e.Code] = e
	}
	idx[TermsFull] = idx[TermsImmediate]
	return idx
}()

// PaymentTermsCatalog returns the catalog in display order
func PaymentTermsCatalog() []PaymentTerms {
	out := make([]PaymentTerms, len(catalogEntries))
	copy(out, catalogEntries)
	return out
}

// NormalizePaymentTermsCode trims and upper-cases a code
func NormalizePaymentTermsCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupPaymentTerms resolves a code, including generic NET_<days> codes.
// The second return value is false for empty and unknown codes.
func LookupPaymentTerms(code string) (PaymentTerms, bool) {
	code = NormalizePaymentTermsCode(code)
	if code == "" {
		return PaymentTerms{}, false
	}
	if t, ok := catalogIndex[code]; ok {
		return t, true
	}
	if days, ok := strings.CutPrefix(code, netPrefix); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 1 && n <= maxNetDays && strconv.Itoa(n) == days {
			return netTerms(code, n), true
		}
	}
	return PaymentTerms{}, false
}

// IsPayOnReceipt reports whether code generates no scheduled obligations
func IsPayOnReceipt(code string) bool {
	t, ok := LookupPaymentTerms(code)
	return !ok || len(t.Rules) == 0
}

// ParsePaymentTerms expands code into a dated, amount-bearing schedule for total.
// Every installment but the last is rounded to cents; the last one absorbs the
// remainder so the schedule always sums to total. Unknown, empty and
// pay-on-receipt codes yield an empty schedule.
func ParsePaymentTerms(code string, total decimal.Decimal, orderDate time.Time) []ScheduledInstallment {
	t, ok := LookupPaymentTerms(code)
	if !ok {
		return []ScheduledInstallment{}
	}
	return t.Schedule(total, orderDate)
}

// Schedule computes the installments of t for total starting at orderDate
func (t PaymentTerms) Schedule(total decimal.Decimal, orderDate time.Time) []ScheduledInstallment {
	out := make([]ScheduledInstallment, 0, len(t.Rules))
	base := DateOnly(orderDate)
	allocated := decimal.Zero
	last := len(t.Rules) - 1
	percentages := t.Percentages()

	for i, rule := range t.Rules {
		var amount decimal.Decimal
		if i == last {
			amount = total.Sub(allocated)
		} else {
			amount = valueobject.RoundAmount(total.Mul(rule.Percentage).Div(decimal.NewFromInt(percentBase)))
			allocated = allocated.Add(amount)
		}
		out = append(out, ScheduledInstallment{
			InstallmentNumber: i + 1,
			Percentage:        percentages[i],
			DueDate:           base.AddDate(0, 0, rule.DayOffset),
			Amount:            amount,
		})
	}
	return out
}

// Percentages returns the rule percentages rounded to two places, the last
// one absorbing the rounding so they sum to 100.
func (t PaymentTerms) Percentages() []decimal.Decimal {
	out := make([]decimal.Decimal, len(t.Rules))
	sum := decimal.Zero
	for i, rule := range t.Rules {
		if i == len(t.Rules)-1 {
			out[i] = decimal.NewFromInt(percentBase).Sub(sum)
			break
		}
		out[i] = rule.Percentage.Round(2)
		sum = sum.Add(out[i])
	}
	return out
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
