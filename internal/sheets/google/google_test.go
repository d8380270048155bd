package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kamai/internal/core"
	applog "kamai/internal/log"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	_, err := NewFromEnv(context.Background(), " ", "Creators", applog.New(applog.Config{Output: io.Discard}))
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE", "GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(k, "")
	}
}

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := NewFromEnv(context.Background(), "sheet-id", "Creators", applog.New(applog.Config{Output: io.Discard}))
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_OAuthClientWithoutToken(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)

	_, err := NewFromEnv(context.Background(), "sheet-id", "Creators", applog.New(applog.Config{Output: io.Discard}))
	if !errors.Is(err, errNoOAuthToken) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_InvalidOAuthClient(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "invalid-json")
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"test"}`)

	_, err := NewFromEnv(context.Background(), "sheet-id", "Creators", applog.New(applog.Config{Output: io.Discard}))
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_OAuthToken(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"test","token_type":"Bearer"}`)

	c, err := NewFromEnv(context.Background(), "sheet-id", "Creators", applog.New(applog.Config{Output: io.Discard}))
	if err != nil || c == nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
}

func TestOAuthTokenRejectsEmptyToken(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"token_type":"Bearer"}`)
	if _, err := oauthTokenFromEnv(); err == nil {
		t.Fatal("expected an error for a token without credentials")
	}
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `not json`)
	if _, err := oauthTokenFromEnv(); err == nil || !strings.Contains(err.Error(), "decode oauth token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSaveTokenRoundTrip(t *testing.T) {
	clearCredentialEnv(t)
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode: %v %v", info, err)
	}
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", path)
	tok, err := oauthTokenFromEnv()
	if err != nil || tok.RefreshToken != "r" {
		t.Fatalf("reloaded token = %+v, %v", tok, err)
	}
}

func TestServiceAccountJSONPrefersInline(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/does/not/exist.json")
	b, err := serviceAccountJSON()
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("got %q, %v", b, err)
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	if _, err := serviceAccountJSON(); err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("missing file should fail, got %v", err)
	}
}

func TestRowsFor(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	rows := rowsFor([]core.FeaturedCreator{
		{ID: 12, Name: "Asha", FollowerLabel: "1.2M", ProfileLink: "https://instagram.com/asha", CreatedAt: created},
	})
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Name" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	want := []any{"12", "Asha", "1.2M", "https://instagram.com/asha", "2024-03-01 10:30:00"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("column %d = %v, want %v", i, rows[1][i], v)
		}
	}

	if got := rowsFor(nil); len(got) != 1 {
		t.Fatalf("empty directory should still write the header, got %d rows", len(got))
	}
}

func TestQuoteSheetName(t *testing.T) {
	cases := map[string]string{
		"Creators":        "'Creators'",
		"Featured 2024":   "'Featured 2024'",
		"Asha's creators": "'Asha''s creators'",
	}
	for in, want := range cases {
		if got := quoteSheetName(in); got != want {
			t.Fatalf("quoteSheetName(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeSheets records the calls the client makes against the Sheets REST API.
type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	written [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if r.Method == http.MethodPut {
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err == nil {
			f.written = vr.Values
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

func TestMirrorClearsThenWrites(t *testing.T) {
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c := New(svc, "sheet-id", "Creators", applog.New(applog.Config{Output: io.Discard}))

	rows := []core.FeaturedCreator{
		{ID: 2, Name: "Bilal", CreatedAt: time.Unix(0, 0)},
		{ID: 1, Name: "Asha", CreatedAt: time.Unix(0, 0)},
	}
	if err := c.Mirror(ctx, rows); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected clear and update, got %v", fake.calls)
	}
	if !strings.HasPrefix(fake.calls[0], "POST ") || !strings.HasSuffix(fake.calls[0], ":clear") {
		t.Fatalf("first call should clear, got %q", fake.calls[0])
	}
	if !strings.HasPrefix(fake.calls[1], "PUT ") || !strings.Contains(fake.calls[1], "sheet-id") {
		t.Fatalf("second call should update, got %q", fake.calls[1])
	}
	if len(fake.written) != 3 || fake.written[1][1] != "Bilal" {
		t.Fatalf("unexpected rows written: %v", fake.written)
	}
}

func TestMirrorWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "Creators"}
	if err := c.Mirror(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
}
