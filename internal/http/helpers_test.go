package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"hoteldesk/internal/config"
	"hoteldesk/internal/http/handlers"
	applog "hoteldesk/internal/log"
	"hoteldesk/internal/repos"
)

const cookieName = "hd_session"

type testApp struct {
	app *fiber.App
	db  *sqlx.DB
}

// newTestApp builds the full app on an in-memory database. CSRF and rate limits are off
// unless a test turns them back on.
func newTestApp(t *testing.T, tweak ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Config{
		DBDriver:      "sqlite",
		DBDSN:         ":memory:",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		SessionStore:  "sql",
		SessionCookie: cookieName,
		BcryptCost:    bcrypt.MinCost,
		BodyLimit:     1 << 20,
	}
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(context.Background(), repos.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	deps := handlers.NewDeps(db, cfg, repos.NewSessionRepo(db))
	app, err := handlers.NewApp(cfg, deps)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &testApp{app: app, db: db}
}

func (ta *testApp) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func (ta *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	return ta.do(t, httptest.NewRequest("GET", path, nil), cookies...)
}

func (ta *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ta.do(t, req, cookies...)
}

func (ta *testApp) sendJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return ta.do(t, req, cookies...)
}

func (ta *testApp) register(t *testing.T, username, password string) *http.Response {
	t.Helper()
	return ta.postForm(t, "/register", url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"phone":            {"555-0100"},
		"password":         {password},
		"confirm_password": {password},
	})
}

// login registers username (ignoring duplicates) and returns the session cookie.
func (ta *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	ta.register(t, username, password)
	resp := ta.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login %s: expected 302, got %d", username, resp.StatusCode)
	}
	c := findCookie(resp, cookieName)
	if c == nil || c.Value == "" {
		t.Fatal("session cookie missing after login")
	}
	return c
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 to %s, got %d", to, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != to {
		t.Fatalf("expected redirect to %s, got %q", to, loc)
	}
}

// captureLogs swaps the event sink for a buffer until the test ends.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	applog.Init(&buf, "info")
	t.Cleanup(func() { applog.Init(os.Stdout, "info") })
	return &buf
}

// events returns every JSON log line with the given action.
func events(buf *bytes.Buffer, action string) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(buf.String(), "\n") {
		var m map[string]any
		if json.Unmarshal([]byte(line), &m) != nil {
			continue
		}
		if m["action"] == action {
			out = append(out, m)
		}
	}
	return out
}
