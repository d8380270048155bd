package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Platform identifies how subscribers pay, which decides the commission.
type Platform string

const (
	PlatformWeb              Platform = "web"
	PlatformAppStoreSmall    Platform = "app_store_small_business"
	PlatformAppStoreStandard Platform = "app_store_standard"
	PlatformCustom           Platform = "custom"
)

// MaxCustomCommission bounds the custom commission slider.
const MaxCustomCommission = 50

var ErrUnknownPlatform = errors.New("unknown platform")

// Preset describes one entry of the platform selector.
type Preset struct {
	Platform   Platform
	Label      string
	Help       string
	Commission int // percent; ignored for PlatformCustom
}

var presets = []Preset{
	{Platform: PlatformWeb, Label: "Web-based (OnlyFans/Fanvue)", Commission: 20,
		Help: "Creator platforms billed on the web usually keep 20%."},
	{Platform: PlatformAppStoreSmall, Label: "App Store (Small Business/Instagram)", Commission: 15,
		Help: "Small Business programs (Apple/Google) usually charge 15% for creators earning under $1M."},
	{Platform: PlatformAppStoreStandard, Label: "App Store (Standard 30%)", Commission: 30,
		Help: "Standard in-app purchase commission."},
	{Platform: PlatformCustom, Label: "Custom %",
		Help: "Pick any commission between 0% and 50%."},
}

// Presets returns the selector entries in display order.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// ResolveCommission returns the commission percent for a platform. For
// PlatformCustom the supplied value is clamped to [0, MaxCustomCommission].
func ResolveCommission(p Platform, custom decimal.Decimal) (decimal.Decimal, error) {
	if p == PlatformCustom {
		switch {
		case custom.IsNegative():
			return decimal.Zero, nil
		case custom.GreaterThan(decimal.NewFromInt(MaxCustomCommission)):
			return decimal.NewFromInt(MaxCustomCommission), nil
		default:
			return custom, nil
		}
	}
	for _, pr := range presets {
		if pr.Platform == p {
			return decimal.NewFromInt(int64(pr.Commission)), nil
		}
	}
	return decimal.Zero, ErrUnknownPlatform
}

// Tip is the advice shown under the results.
type Tip string

const (
	TipNone          Tip = ""
	TipHighFees      Tip = "high_fees"
	TipSmallBusiness Tip = "small_business"
)

var (
	webFeeShare      = decimal.NewFromFloat(0.80)
	appStoreFeeShare = decimal.NewFromFloat(0.70)
)

// Comparison contrasts the net of the same gross via the web (20% fee) and
// the app store (30% fee).
type Comparison struct {
	WebNet         decimal.Decimal
	AppStoreNet    decimal.Decimal
	MonthlySavings decimal.Decimal
}

// Insights is the analysis block rendered below the monthly summary. It is
// only populated when the monthly net is positive.
type Insights struct {
	Show       bool
	Tip        Tip
	Comparison Comparison
}

// Analyze derives the insights for a computed result.
func Analyze(in EarningsInput, res EarningsResult) Insights {
	if !res.NetMonthly.IsPositive() {
		return Insights{}
	}
	ins := Insights{Show: true}
	switch {
	case in.CommissionPercent.GreaterThanOrEqual(decimal.NewFromInt(30)):
		ins.Tip = TipHighFees
	case in.CommissionPercent.Equal(decimal.NewFromInt(15)):
		ins.Tip = TipSmallBusiness
	}
	web := res.GrossMonthly.Mul(webFeeShare)
	app := res.GrossMonthly.Mul(appStoreFeeShare)
	ins.Comparison = Comparison{
		WebNet:         web,
		AppStoreNet:    app,
		MonthlySavings: web.Sub(app),
	}
	return ins
}
