// Package core holds the earnings arithmetic, the Indian-locale money
// formatting and the featured creator record shared by every adapter.
package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	percentScale  = decimal.New(1, -2)
	monthsPerYear = decimal.NewFromInt(12)
)

// MaxMonthlyCharge is the largest monthly charge accepted from a form: one
// hundred crore rupees.
var MaxMonthlyCharge = decimal.New(1, 9)

// Digit limits of typed amounts and percentages. Charges are rupees and
// paise.
const (
	maxChargeFraction  = 2
	maxPercentInteger  = 6
	maxPercentFraction = 4
)

var (
	ErrInvalidSubscribers = errors.New("invalid subscriber count")
	ErrInvalidCharge      = errors.New("invalid monthly charge")
	ErrInvalidCommission  = errors.New("invalid commission percent")
)

type (
	// EarningsInput is what the creator types into the calculator form.
	EarningsInput struct {
		SubscriberCount   int64
		MonthlyCharge     decimal.Decimal
		CommissionPercent decimal.Decimal
	}

	// EarningsResult keeps every figure at full precision; truncation only
	// happens when an amount is formatted for display.
	EarningsResult struct {
		GrossMonthly     decimal.Decimal
		CommissionAmount decimal.Decimal
		NetMonthly       decimal.Decimal
		NetAnnual        decimal.Decimal
	}
)

// Compute derives gross, commission, net and annualised net income.
//
// The order of evaluation is fixed:
//
//	gross      = subscribers * charge
//	commission = gross * (percent / 100)
//	net        = gross - commission
//	annual     = net * 12
//
// It never fails. A commission above 100% yields a negative net, which is
// returned as is.
func Compute(subscriberCount int64, monthlyCharge, commissionPercent decimal.Decimal) EarningsResult {
	gross := decimal.NewFromInt(subscriberCount).Mul(monthlyCharge)
	commission := gross.Mul(commissionPercent.Mul(percentScale))
	net := gross.Sub(commission)
	return EarningsResult{
		GrossMonthly:     gross,
		CommissionAmount: commission,
		NetMonthly:       net,
		NetAnnual:        net.Mul(monthsPerYear),
	}
}

// Compute evaluates the input.
func (in EarningsInput) Compute() EarningsResult {
	return Compute(in.SubscriberCount, in.MonthlyCharge, in.CommissionPercent)
}

// Validate enforces the bounds the form promises. Compute itself does not
// call it.
func (in EarningsInput) Validate() error {
	if in.SubscriberCount < 0 {
		return ErrInvalidSubscribers
	}
	if in.MonthlyCharge.IsNegative() || in.MonthlyCharge.GreaterThan(MaxMonthlyCharge) {
		return ErrInvalidCharge
	}
	if in.CommissionPercent.IsNegative() || in.CommissionPercent.GreaterThan(hundred) {
		return ErrInvalidCommission
	}
	return nil
}

// ParseSubscribers parses a whole, non-negative subscriber count. Blank
// input counts as zero.
func ParseSubscribers(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidSubscribers
	}
	return n, nil
}

// ParseAmount parses a non-negative rupee amount of at most
// MaxMonthlyCharge. Blank input counts as zero. Both "290.50" and "290,50"
// are accepted; digit grouping commas, signs and exponents are not.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, ok := parsePlainDecimal(s, len(MaxMonthlyCharge.String()), maxChargeFraction)
	if !ok || d.GreaterThan(MaxMonthlyCharge) {
		return decimal.Zero, ErrInvalidCharge
	}
	return d, nil
}

// ParsePercent parses a typed commission percentage. A leading minus is
// allowed so that ResolveCommission can clamp it; exponents are not.
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	d, ok := parsePlainDecimal(strings.TrimPrefix(s, "-"), maxPercentInteger, maxPercentFraction)
	if !ok {
		return decimal.Zero, ErrInvalidCommission
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// parsePlainDecimal accepts digits with at most one '.' or ',' separator
// and bounded digit counts on either side of it.
func parsePlainDecimal(s string, maxInt, maxFrac int) (decimal.Decimal, bool) {
	intPart, frac, hasSep := strings.Cut(strings.ReplaceAll(s, ",", "."), ".")
	if intPart == "" || len(intPart) > maxInt || len(frac) > maxFrac || (hasSep && frac == "") {
		return decimal.Zero, false
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return decimal.Zero, false
	}
	if hasSep {
		intPart += "." + frac
	}
	d, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
