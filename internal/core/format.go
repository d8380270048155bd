package core

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WordsSuffix closes every amount spelled out in words.
const WordsSuffix = " Rupees Only"

// FormattedAmount is the display form of a single amount.
type FormattedAmount struct {
	DigitGrouped string
	Words        string
}

// Format truncates the amount toward zero once and renders both the Indian
// digit grouping and the words form. It never fails; Words is empty when
// the amount cannot be spelled out.
func Format(amount decimal.Decimal) FormattedAmount {
	n := truncate(amount)
	return FormattedAmount{
		DigitGrouped: groupInteger(n),
		Words:        integerInWords(n),
	}
}

// GroupIndian renders the integer part of amount with lakh/crore grouping:
// 1234567 becomes "12,34,567". Negative amounts keep a leading "-".
func GroupIndian(amount decimal.Decimal) string {
	return groupInteger(truncate(amount))
}

// AmountInWords spells the integer part of amount using the Indian scale,
// e.g. "Two Lakh Seventy Eight Thousand Four Hundred Rupees Only".
func AmountInWords(amount decimal.Decimal) string {
	return integerInWords(truncate(amount))
}

// Rupees is the short display form used by pages and reports: "₹2,90,000",
// or "-₹5,800" for negative amounts.
func Rupees(amount decimal.Decimal) string {
	n := truncate(amount)
	if n.Sign() < 0 {
		return "-₹" + GroupDigits(new(big.Int).Abs(n).String())
	}
	return "₹" + GroupDigits(n.String())
}

// truncate drops the fractional part, rounding toward zero.
func truncate(amount decimal.Decimal) *big.Int {
	return amount.Truncate(0).BigInt()
}

func groupInteger(n *big.Int) string {
	if n.Sign() < 0 {
		return "-" + GroupDigits(new(big.Int).Abs(n).String())
	}
	return GroupDigits(n.String())
}

// GroupDigits inserts Indian grouping separators into a string of decimal
// digits. The last three digits form one group; the leading digits are
// grouped in pairs counted from the right.
func GroupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var pairs []string
	for len(head) > 2 {
		pairs = append(pairs, head[len(head)-2:])
		head = head[:len(head)-2]
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/2)
	b.WriteString(head)
	for i := len(pairs) - 1; i >= 0; i-- {
		b.WriteByte(',')
		b.WriteString(pairs[i])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// integerInWords returns "" for anything it cannot spell: negative values,
// values beyond int64, or an unexpected panic in the speller.
func integerInWords(n *big.Int) (words string) {
	defer func() {
		if recover() != nil {
			words = ""
		}
	}()
	if n.Sign() < 0 || !n.IsInt64() {
		return ""
	}
	spelled := spellIndian(uint64(n.Int64()))
	return cases.Title(language.English).String(spelled) + WordsSuffix
}

var (
	smallNumbers = [...]string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tensNames = [...]string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
	}
)

const (
	thousand = 1_000
	lakh     = 1_00_000
	crore    = 1_00_00_000
)

// spellIndian spells n in lower case. Amounts of a crore or more recurse on
// the crore count, so 10^12 reads "one lakh crore".
func spellIndian(n uint64) string {
	switch {
	case n < 20:
		return smallNumbers[n]
	case n < 100:
		if n%10 == 0 {
			return tensNames[n/10]
		}
		return tensNames[n/10] + " " + smallNumbers[n%10]
	case n < thousand:
		return scaled(n, 100, "hundred")
	case n < lakh:
		return scaled(n, thousand, "thousand")
	case n < crore:
		return scaled(n, lakh, "lakh")
	default:
		return scaled(n, crore, "crore")
	}
}

func scaled(n, unit uint64, name string) string {
	head := spellIndian(n/unit) + " " + name
	if rest := n % unit; rest != 0 {
		return head + " " + spellIndian(rest)
	}
	return head
}
