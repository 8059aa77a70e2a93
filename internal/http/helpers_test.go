package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campusmart/internal/config"
	"campusmart/internal/http/handlers"
	"campusmart/internal/repos"
	"campusmart/internal/store"
)

const adminToken = "let-me-in"

// failingBackend refuses writes to one document once broken is set.
type failingBackend struct {
	store.Backend
	doc    string
	broken atomic.Bool
}

func (b *failingBackend) Write(name string, data []byte, expect int64) error {
	if name == b.doc && b.broken.Load() {
		return errors.New("write /var/lib/campusmart/carts.json: no space left on device")
	}
	return b.Backend.Write(name, data, expect)
}

type testApp struct {
	app     *fiber.App
	backend *failingBackend
	sid     string
}

func newTestApp(t *testing.T, opt handlers.AppOptions) *testApp {
	t.Helper()
	fb, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	b := &failingBackend{Backend: fb, doc: "carts"}
	st, err := repos.Open(b)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{AdminTokenHash: string(hash), MaxCartItems: 50, MaxQtyPerItem: 99, LowStockAt: 5}
	if opt.RequestsPerMinute == 0 {
		opt.RequestsPerMinute = 1000
	}
	if opt.AvailabilityPer30s == 0 {
		opt.AvailabilityPer30s = 1000
	}
	return &testApp{app: handlers.NewApp(handlers.NewDeps(st, cfg), opt), backend: b, sid: uuid.NewString()}
}

func postForm(path string, vals url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// as sends req within the app's cart session, as user when non-empty.
func (a *testApp) as(t *testing.T, user string, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: a.sid})
	if user != "" {
		req.Header.Set(handlers.HeaderUserID, user)
	}
	return send(t, a.app, req)
}

func (a *testApp) admin(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	req.Header.Set(handlers.HeaderAdminToken, adminToken)
	return send(t, a.app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	return resp, body
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	SID    string         `json:"sid"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(strings.TrimSpace(line)), &e) == nil && e.Action != "" {
			out = append(out, e)
		}
	}
	return out
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
