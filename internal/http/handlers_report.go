package http

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	applog "kamai/internal/log"
	"kamai/internal/metrics"
	"kamai/internal/report"
)

// handleReport renders the PDF for the posted form and keeps it as the
// session's last report, replacing any earlier one.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := parseForm(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	form := calcFormFrom(r.PostForm)
	p, problems := form.Parse()
	if len(problems) > 0 {
		UnprocessableEntityError(strings.Join(problems, " ")).Write(w)
		return
	}

	in := report.NewInput(form.Name, form.Handle, p.Platform.Label, p.Input, s.now())
	in.PaymentLink = s.paymentLink
	pdf, err := report.Render(in)
	if s.metrics != nil {
		s.metrics.ReportsGenerated.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		applog.LogError(ctx, "Report rendering failed", err, applog.ComponentReport, applog.OpRender, nil)
		InternalServerError("The report could not be generated. Please try again.").Write(w)
		return
	}

	filename := report.Filename(form.Name)
	s.sessions.SetReport(ctx, filename, pdf)
	applog.FromContext(ctx).WithComponent(applog.ComponentReport).InfoContext(ctx, "Report generated",
		applog.FieldReportSize, len(pdf), "filename", filename)

	s.respond(w, r,
		NewHTMXResponse().TriggerReportReady(filename, len(pdf)),
		tmplReportReady,
		reportReadyView{Filename: filename, Size: humanSize(len(pdf))})
}

// handleReportDownload streams the session's last report.
func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Get(r.Context())
	if !st.HasReport() {
		NotFoundError("No report yet. Generate one first.").Write(w)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": st.ReportName})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(st.LastReport)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(st.LastReport)
}
