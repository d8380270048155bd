package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML([]byte("<p>ok</p>")).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerDirectoryChanged().
		TriggerFormReset().
		TriggerReportReady("Asha_Earnings_Report.pdf", 2048).
		TriggerAdminChanged(true).
		TriggerSuccessNotification("Saved").
		Write(w)

	var got map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventDirectoryChanged, EventFormReset, EventReportReady, EventAdminChanged, EventNotification} {
		if _, ok := got[name]; !ok {
			t.Errorf("HX-Trigger missing %s", name)
		}
	}
	if !strings.Contains(string(got[EventReportReady]), `"bytes":2048`) {
		t.Errorf("report trigger = %s", got[EventReportReady])
	}
	if !strings.Contains(string(got[EventNotification]), `"type":"success"`) {
		t.Errorf("notification trigger = %s", got[EventNotification])
	}
}

func TestErrorResponses(t *testing.T) {
	cases := []struct {
		b    *HTMXResponseBuilder
		code int
	}{
		{BadRequestError("x"), http.StatusBadRequest},
		{UnprocessableEntityError("x"), http.StatusUnprocessableEntity},
		{ForbiddenError("x"), http.StatusForbidden},
		{NotFoundError("x"), http.StatusNotFound},
		{ServiceUnavailableError("x"), http.StatusServiceUnavailable},
		{InternalServerError("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		tc.b.Write(w)
		if w.Code != tc.code {
			t.Errorf("code = %d, want %d", w.Code, tc.code)
		}
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, `<script>alert("x")</script>`).Write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Fatalf("message not escaped: %s", w.Body.String())
	}
}
