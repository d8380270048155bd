package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kamai/internal/directory"
	applog "kamai/internal/log"
)

// storeTimeout bounds a single directory store call made for a request.
const storeTimeout = 7 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the templates and pings the directory store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{"templates": "ok", "sessions": s.sessions.Count()}

	if p, ok := s.dir.(directory.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["directory"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["directory"] = "ok"
		}
	} else {
		checks["directory"] = "ok"
	}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := s.sessions.Get(ctx)

	page := pageView{
		Calc:        newCalcView(defaultCalcForm()),
		Directory:   s.loadDirectory(ctx, st.IsAdmin),
		Admin:       s.adminView(st.IsAdmin, ""),
		PaymentLink: s.paymentLink,
		Year:        s.now().Year(),
	}
	if st.HasReport() {
		page.Report = &reportReadyView{Filename: st.ReportName, Size: humanSize(len(st.LastReport))}
	}
	s.respond(w, r, NewHTMXResponse(), tmplIndex, page)
}

// handleCalculate renders the results partial for the posted form. Input
// problems come back as 422 with the same partial listing them.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if resp := parseForm(w, r); resp != nil {
		resp.Write(w)
		return
	}
	view := newCalcView(calcFormFrom(r.PostForm))

	resp := NewHTMXResponse()
	if len(view.Problems) > 0 {
		resp.Status(http.StatusUnprocessableEntity)
	} else if s.metrics != nil {
		s.metrics.Calculations.Inc()
	}
	s.respond(w, r, resp, tmplResults, view)
}

// handleCreators renders the directory partial. A store failure is shown
// inside the partial and answered with 503.
func (s *Server) handleCreators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := s.loadDirectory(ctx, s.sessions.Get(ctx).IsAdmin)
	resp := NewHTMXResponse()
	if view.Error != "" {
		resp.Status(http.StatusServiceUnavailable)
	}
	s.respond(w, r, resp, tmplCreators, view)
}

func (s *Server) loadDirectory(ctx context.Context, isAdmin bool) creatorsView {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	list, err := s.dir.ListActive(cctx)
	if err != nil {
		applog.LogError(ctx, "List featured creators failed", err, applog.ComponentDirectory, applog.OpList, nil)
		return creatorsView{IsAdmin: isAdmin, Error: storeErrorMessage("load the featured creators", err)}
	}
	return newCreatorsView(list, isAdmin)
}

func (s *Server) adminView(isAdmin bool, problem string) adminView {
	return adminView{Enabled: s.gate.Enabled(), IsAdmin: isAdmin, Error: problem}
}

// respond renders name into a buffer first so a template failure never
// leaves a half-written page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		InternalServerError("Something went wrong while rendering the page.").Write(w)
		return
	}
	resp.BodyHTML(buf.Bytes()).Write(w)
}

// storeErrorMessage surfaces the store error to the user as is.
func storeErrorMessage(action string, err error) string {
	return "Could not " + action + ": " + err.Error() + ". Please try again."
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
