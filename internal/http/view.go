package http

import (
	"html/template"
	"io/fs"

	"github.com/shopspring/decimal"

	"kamai/internal/core"
)

// Template names.
const (
	tmplIndex       = "index.html"
	tmplResults     = "results"
	tmplCreators    = "creators"
	tmplAdmin       = "admin"
	tmplReportReady = "report_ready"
)

type presetView struct {
	Value    string
	Label    string
	Help     string
	Selected bool
}

type comparisonView struct {
	WebNet, AppStoreNet, MonthlySavings string
}

type resultView struct {
	CommissionPercent string
	Gross             string
	Fees              string
	Net               string
	NetWords          string
	ShowAnnual        bool
	Annual            string
	AnnualWords       string
	Tip               string
	Comparison        comparisonView
}

type calcView struct {
	Form     calcForm
	Presets  []presetView
	IsCustom bool
	Result   *resultView
	Problems []string
}

type creatorView struct {
	ID            int64
	Name          string
	FollowerLabel string
	ProfileLink   string
	ListedAt      string
}

type creatorsView struct {
	Creators []creatorView
	IsAdmin  bool
	Error    string
}

type adminView struct {
	Enabled bool
	IsAdmin bool
	Error   string
	Form    creatorForm
}

type reportReadyView struct {
	Filename string
	Size     string
}

type pageView struct {
	Calc        calcView
	Directory   creatorsView
	Admin       adminView
	Report      *reportReadyView
	PaymentLink string
	Year        int
}

func newCalcView(f calcForm) calcView {
	v := calcView{Form: f, IsCustom: f.Platform == string(core.PlatformCustom)}
	for _, p := range core.Presets() {
		v.Presets = append(v.Presets, presetView{
			Value:    string(p.Platform),
			Label:    p.Label,
			Help:     p.Help,
			Selected: string(p.Platform) == f.Platform,
		})
	}
	p, problems := f.Parse()
	if len(problems) > 0 {
		v.Problems = problems
		return v
	}
	v.Result = newResultView(p.Input)
	return v
}

func newResultView(in core.EarningsInput) *resultView {
	res := in.Compute()
	ins := core.Analyze(in, res)
	v := &resultView{
		CommissionPercent: in.CommissionPercent.String(),
		Gross:             core.Rupees(res.GrossMonthly),
		Fees:              core.Rupees(res.CommissionAmount.Neg()),
		Net:               core.Rupees(res.NetMonthly),
		NetWords:          core.AmountInWords(res.NetMonthly),
	}
	if ins.Show {
		v.ShowAnnual = true
		v.Annual = core.Rupees(res.NetAnnual)
		v.AnnualWords = core.AmountInWords(res.NetAnnual)
		v.Tip = string(ins.Tip)
		v.Comparison = comparisonView{
			WebNet:         core.Rupees(ins.Comparison.WebNet),
			AppStoreNet:    core.Rupees(ins.Comparison.AppStoreNet),
			MonthlySavings: core.Rupees(ins.Comparison.MonthlySavings),
		}
	}
	return v
}

func newCreatorsView(list []core.FeaturedCreator, isAdmin bool) creatorsView {
	v := creatorsView{IsAdmin: isAdmin, Creators: make([]creatorView, 0, len(list))}
	for _, c := range list {
		cv := creatorView{
			ID:            c.ID,
			Name:          c.Name,
			FollowerLabel: c.FollowerLabel,
			ProfileLink:   c.ProfileLink,
		}
		if !c.CreatedAt.IsZero() {
			cv.ListedAt = c.CreatedAt.UTC().Format("02 Jan 2006")
		}
		v.Creators = append(v.Creators, cv)
	}
	return v
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(1<<20)).StringFixed(1) + " MB"
	case n >= 1<<10:
		return decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(1<<10)).StringFixed(1) + " KB"
	default:
		return decimal.NewFromInt(int64(n)).String() + " B"
	}
}

// parseTemplates loads every page and partial from fsys.
func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.ParseFS(fsys, "templates/*.html")
}
