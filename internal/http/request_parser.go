// Package http serves the calculator page, its HTMX partials, the report
// download and the admin endpoints of the featured creators directory.
//
// This file turns form values into domain inputs.
package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"kamai/internal/core"
)

// Form defaults of the calculator.
const (
	defaultSubscribers = "100"
	defaultCharge      = "290"
	defaultCustom      = "20"
)

const (
	problemSubscribers = "Subscribers must be a whole number of zero or more."
	problemCharge      = "Monthly charge must be an amount between 0 and 1,00,00,00,000, e.g. 290 or 290.50."
)

// calcForm is the calculator form as typed, kept verbatim for redisplay.
type calcForm struct {
	Subscribers string
	Charge      string
	Platform    string
	Custom      string
	Name        string
	Handle      string
}

func defaultCalcForm() calcForm {
	return calcForm{
		Subscribers: defaultSubscribers,
		Charge:      defaultCharge,
		Platform:    string(core.PlatformWeb),
		Custom:      defaultCustom,
	}
}

func calcFormFrom(form url.Values) calcForm {
	f := calcForm{
		Subscribers: sanitizeInput(form.Get("subscribers")),
		Charge:      sanitizeInput(form.Get("charge")),
		Platform:    sanitizeInput(form.Get("platform")),
		Custom:      sanitizeInput(form.Get("custom_commission")),
		Name:        sanitizeInput(form.Get("name")),
		Handle:      sanitizeInput(form.Get("handle")),
	}
	if f.Platform == "" {
		f.Platform = string(core.PlatformWeb)
	}
	if f.Custom == "" {
		f.Custom = defaultCustom
	}
	return f
}

// parsed is a calculator form converted to domain values.
type parsed struct {
	Input    core.EarningsInput
	Platform core.Preset
}

// Parse validates the form. Every problem is reported, not only the first.
func (f calcForm) Parse() (parsed, []string) {
	var (
		p        parsed
		problems []string
		err      error
	)

	p.Input.SubscriberCount, err = core.ParseSubscribers(f.Subscribers)
	if err != nil {
		problems = append(problems, problemSubscribers)
	}
	p.Input.MonthlyCharge, err = core.ParseAmount(f.Charge)
	if err != nil {
		problems = append(problems, problemCharge)
	}

	platform := core.Platform(f.Platform)
	custom := decimal.Zero
	if platform == core.PlatformCustom {
		custom, err = core.ParsePercent(f.Custom)
		if err != nil {
			problems = append(problems, "Custom commission must be a number between 0 and 50.")
		}
	}
	p.Input.CommissionPercent, err = core.ResolveCommission(platform, custom)
	if err != nil {
		problems = append(problems, "Choose one of the listed platforms.")
	}
	for _, pr := range core.Presets() {
		if pr.Platform == platform {
			p.Platform = pr
		}
	}
	if len(problems) == 0 {
		if err := p.Input.Validate(); err != nil {
			problems = append(problems, inputProblem(err))
		}
	}
	return p, problems
}

func inputProblem(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidSubscribers):
		return problemSubscribers
	case errors.Is(err, core.ErrInvalidCharge):
		return problemCharge
	default:
		return "Commission must be between 0 and 100 percent."
	}
}

// creatorForm is the admin "add featured creator" form.
type creatorForm struct {
	Name          string
	FollowerLabel string
	ProfileLink   string
}

func creatorFormFrom(form url.Values) creatorForm {
	return creatorForm{
		Name:          sanitizeInput(form.Get("name")),
		FollowerLabel: sanitizeInput(form.Get("follower_label")),
		ProfileLink:   sanitizeInput(form.Get("profile_link")),
	}
}

// Validate runs the record checks before the store is reached.
func (f creatorForm) Validate() error {
	return core.FeaturedCreator{Name: f.Name, FollowerLabel: f.FollowerLabel, ProfileLink: f.ProfileLink}.Validate()
}

// creatorID reads the {id} URL parameter.
func creatorID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// parseForm parses the request form and returns an error response on failure.
func parseForm(w http.ResponseWriter, r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("The request could not be read.")
	}
	return nil
}

const maxFormBytes = 64 << 10
