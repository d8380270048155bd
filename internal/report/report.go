// Package report renders the downloadable earnings summary as a PDF.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"kamai/internal/core"
)

// ContentType of Render's output.
const ContentType = "application/pdf"

//go:embed fonts/*.ttf
var fontFiles embed.FS

const fontFamily = "DejaVu"

// fontStyles maps fpdf style strings to the embedded DejaVu Sans Condensed
// faces.
var fontStyles = map[string]string{
	"":  "fonts/DejaVuSansCondensed.ttf",
	"B": "fonts/DejaVuSansCondensed-Bold.ttf",
	"I": "fonts/DejaVuSansCondensed-Oblique.ttf",
}

func addFonts(pdf *fpdf.Fpdf) error {
	for _, style := range []string{"", "B", "I"} {
		b, err := fontFiles.ReadFile(fontStyles[style])
		if err != nil {
			return fmt.Errorf("read font %s: %w", fontStyles[style], err)
		}
		pdf.AddUTF8FontFromBytes(fontFamily, style, b)
	}
	return pdf.Error()
}

// Input is everything printed on a report.
type Input struct {
	CreatorName   string
	Handle        string
	PlatformLabel string
	Earnings      core.EarningsInput
	Result        core.EarningsResult
	MonthlyNet    core.FormattedAmount
	AnnualNet     core.FormattedAmount
	GeneratedAt   time.Time
	PaymentLink   string
}

// NewInput computes the result and formats the two net figures for in.
func NewInput(name, handle, platformLabel string, in core.EarningsInput, now time.Time) Input {
	res := in.Compute()
	return Input{
		CreatorName:   name,
		Handle:        handle,
		PlatformLabel: platformLabel,
		Earnings:      in,
		Result:        res,
		MonthlyNet:    core.Format(res.NetMonthly),
		AnnualNet:     core.Format(res.NetAnnual),
		GeneratedAt:   now,
	}
}

// Render produces the PDF bytes. It has no side effects; the caller decides
// where the document lives.
//
// Text is set in an embedded Unicode font. Indic scripts, which the PDF
// writer cannot shape, are printed romanized; the document title keeps the
// name as typed.
func Render(in Input) ([]byte, error) {
	return render(in, true)
}

func render(in Input, compress bool) ([]byte, error) {
	name := core.NormalizeDisplayName(in.CreatorName)
	handle := core.NormalizeDisplayName(in.Handle)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	if err := addFonts(pdf); err != nil {
		return nil, fmt.Errorf("load report fonts: %w", err)
	}
	pdf.SetTitle(name+" Earnings Report", true)
	pdf.SetAuthor("kamai", false)
	pdf.SetCreator("kamai", false)
	pdf.SetCatalogSort(true)
	if !in.GeneratedAt.IsZero() {
		pdf.SetCreationDate(in.GeneratedAt)
		pdf.SetModificationDate(in.GeneratedAt)
	}
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 20)
	pdf.SetTextColor(31, 119, 180)
	pdf.CellFormat(0, 12, "Creator Earnings Report", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(110, 110, 110)
	generated := "Estimate of take-home subscription income"
	if !in.GeneratedAt.IsZero() {
		generated += ", generated " + in.GeneratedAt.UTC().Format("02 Jan 2006")
	}
	pdf.CellFormat(0, 6, generated, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont(fontFamily, "B", 13)
		pdf.SetTextColor(40, 40, 40)
		pdf.SetFillColor(238, 243, 250)
		pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
		pdf.Ln(1)
	}
	row := func(label, value string) {
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(70, 70, 70)
		pdf.CellFormat(70, 8, label, "B", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "B", 11)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 8, romanize(value), "B", 1, "R", false, 0, "")
	}

	section("Creator")
	row("Name", name)
	row("Handle", handle)
	pdf.Ln(4)

	section("Inputs")
	row("Subscribers", core.GroupIndian(decimal.NewFromInt(in.Earnings.SubscriberCount)))
	row("Monthly charge", core.Rupees(in.Earnings.MonthlyCharge))
	if in.PlatformLabel != "" {
		row("Platform", in.PlatformLabel)
	}
	row("Commission", in.Earnings.CommissionPercent.String()+"%")
	pdf.Ln(4)

	section("Monthly summary")
	row("Gross revenue", core.Rupees(in.Result.GrossMonthly))
	row("Platform fees", "-"+core.Rupees(in.Result.CommissionAmount))
	row("Net take-home", core.Rupees(in.Result.NetMonthly))
	words(pdf, in.MonthlyNet.Words)
	pdf.Ln(4)

	section("Annual projection")
	row("Net annual income", core.Rupees(in.Result.NetAnnual))
	words(pdf, in.AnnualNet.Words)
	pdf.Ln(8)

	pdf.SetFont(fontFamily, "I", 9)
	pdf.SetTextColor(130, 130, 130)
	pdf.MultiCell(0, 5, "Amounts are truncated to whole rupees. Calculations are based on current platform policies and are not financial advice.", "", "C", false)
	if in.PaymentLink != "" {
		pdf.Ln(2)
		pdf.SetTextColor(31, 119, 180)
		pdf.CellFormat(0, 5, "Support this tool: "+in.PaymentLink, "", 1, "C", false, 0, in.PaymentLink)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout report: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}

func words(pdf *fpdf.Fpdf, w string) {
	if w == "" {
		return
	}
	pdf.SetFont(fontFamily, "I", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 6, "("+w+")", "", "R", false)
}

// Filename returns "<name>_Earnings_Report.pdf" with the name reduced to
// letters, digits, dashes and underscores.
func Filename(name string) string {
	name = core.NormalizeDisplayName(name)
	var b strings.Builder
	underscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	safe := strings.TrimRight(b.String(), "_")
	if safe == "" {
		safe = core.DisplayNamePlaceholder
	}
	return safe + "_Earnings_Report.pdf"
}
