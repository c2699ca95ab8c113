package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-records/internal/config"
	"github.com/go-while/go-records/internal/records"
	"github.com/spf13/afero"
)

const (
	testServiceDir = "/srv/app/web"
	testPrimary    = "/srv/app/data/records.json"
	testFallback   = "/srv/app/web/data/records.json"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// copyTemplates loads the shipped templates from web/templates into memFs
func copyTemplates(t *testing.T, memFs afero.Fs, names ...string) {
	t.Helper()
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join("..", "..", "web", "templates", name))
		if err != nil {
			t.Fatalf("Failed to read template %s: %v", name, err)
		}
		dst := filepath.Join(testServiceDir, TemplatesDirName, name)
		if err := afero.WriteFile(memFs, dst, content, 0o644); err != nil {
			t.Fatalf("Failed to write template %s: %v", dst, err)
		}
	}
}

// setupTestServer builds a server over an in-memory filesystem with all templates and files
func setupTestServer(t *testing.T, files map[string]string) (*WebServer, afero.Fs) {
	t.Helper()
	memFs := afero.NewMemMapFs()
	copyTemplates(t, memFs, "base.html", "index.html", "error.html")
	for path, content := range files {
		if err := afero.WriteFile(memFs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	cfg := config.NewDefaultConfig()
	cfg.Web.ServiceDir = testServiceDir
	server := NewServer(&cfg.Web, records.NewService(testServiceDir, memFs))
	return server, memFs
}

func doRequest(s *WebServer, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestGetRecords(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{
			name:       "primary file",
			files:      map[string]string{testPrimary: `[{"id":1,"name":"A"}]`},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"name":"A"}]`,
		},
		{
			name:       "fallback file",
			files:      map[string]string{testFallback: `{"records":[]}`},
			wantStatus: http.StatusOK,
			wantBody:   `{"records":[]}`,
		},
		{
			name:       "primary preferred",
			files:      map[string]string{testPrimary: `[1]`, testFallback: `[2]`},
			wantStatus: http.StatusOK,
			wantBody:   `[1]`,
		},
		{
			name:       "both missing",
			files:      nil,
			wantStatus: http.StatusNotFound,
			wantError:  "dataset not found",
		},
		{
			name:       "malformed primary",
			files:      map[string]string{testPrimary: `{bad json`},
			wantStatus: http.StatusInternalServerError,
			wantError:  "dataset is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTestServer(t, tt.files)
			w := doRequest(s, http.MethodGet, "/api/records")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", w.Code, tt.wantStatus, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if tt.wantError == "" {
				if w.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
				}
				return
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v (%q)", err, w.Body.String())
			}
			if resp["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestGetRecords_IgnoresQuery(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{testPrimary: `[1,2]`})

	w := doRequest(s, http.MethodGet, "/api/records?page=2&limit=1")
	if w.Code != http.StatusOK || w.Body.String() != `[1,2]` {
		t.Errorf("got %d %q, want 200 %q", w.Code, w.Body.String(), `[1,2]`)
	}
}

func TestGetRecords_Repeatable(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{testPrimary: "{\"a\": [1, 2, 3]}\n"})

	first := doRequest(s, http.MethodGet, "/api/records").Body.String()
	for i := 0; i < 3; i++ {
		if got := doRequest(s, http.MethodGet, "/api/records").Body.String(); got != first {
			t.Fatalf("request %d body = %q, want %q", i, got, first)
		}
	}
}

func TestGetRecords_ReadsFreshEachRequest(t *testing.T) {
	s, memFs := setupTestServer(t, map[string]string{testPrimary: `[1]`})

	if w := doRequest(s, http.MethodGet, "/api/records"); w.Body.String() != `[1]` {
		t.Fatalf("body = %q, want %q", w.Body.String(), `[1]`)
	}

	// primary disappears, fallback takes over on the next request
	if err := memFs.Remove(testPrimary); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := afero.WriteFile(memFs, testFallback, []byte(`{"records":[]}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if w := doRequest(s, http.MethodGet, "/api/records"); w.Body.String() != `{"records":[]}` {
		t.Errorf("body = %q, want fallback content", w.Body.String())
	}
}

func TestRecordsErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&records.Error{Kind: records.KindNotFound, Err: os.ErrNotExist}, http.StatusNotFound},
		{&records.Error{Kind: records.KindMalformed, Err: errors.New("x")}, http.StatusInternalServerError},
		{&records.Error{Kind: records.KindIO, Err: os.ErrPermission}, http.StatusInternalServerError},
		{errors.New("foreign"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := recordsErrorStatus(tt.err); got != tt.want {
			t.Errorf("recordsErrorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHomePage(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := w.Body.String()
	if body == "" {
		t.Fatal("home page body is empty")
	}
	for _, want := range []string{"<!DOCTYPE html>", `id="reload"`, `id="output"`, "/static/script.js", `data-records-api="/api/records"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomePage_TemplateMissing(t *testing.T) {
	memFs := afero.NewMemMapFs()
	copyTemplates(t, memFs, "base.html", "error.html")
	cfg := config.NewDefaultConfig()
	cfg.Web.ServiceDir = testServiceDir
	s := NewServer(&cfg.Web, records.NewService(testServiceDir, memFs))

	w := doRequest(s, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Template not found") {
		t.Errorf("error page should name the failure, got %q", w.Body.String())
	}
}

func TestHomePage_NoTemplatesAtAll(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Web.ServiceDir = testServiceDir
	s := NewServer(&cfg.Web, records.NewService(testServiceDir, afero.NewMemMapFs()))

	w := doRequest(s, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := w.Body.String(); got != "Error: Template not found" {
		t.Errorf("body = %q", got)
	}
}

func TestStaticFiles(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	tests := []struct {
		path       string
		wantStatus int
		wantType   string
	}{
		{"/static/script.js", http.StatusOK, "javascript"},
		{"/static/style.css", http.StatusOK, "text/css"},
		{"/static/missing.js", http.StatusNotFound, ""},
		{"/static/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doRequest(s, http.MethodGet, tt.path)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantType != "" && !strings.Contains(w.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", w.Header().Get("Content-Type"), tt.wantType)
			}
		})
	}
}

func TestListEmbeddedFiles(t *testing.T) {
	files, err := ListEmbeddedFiles()
	if err != nil {
		t.Fatalf("ListEmbeddedFiles() error: %v", err)
	}
	want := map[string]bool{"static/script.js": false, "static/style.css": false}
	for _, f := range files {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("embedded file %s missing from %v", f, files)
		}
	}
}

func TestPing(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/ping")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Errorf("got %d %q, want 200 pong", w.Code, w.Body.String())
	}
}

func TestStats(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{testFallback: `[]`})

	w := doRequest(s, http.MethodGet, "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		AppVersion   string `json:"app_version"`
		DatasetPath  string `json:"dataset_path"`
		DatasetFound bool   `json:"dataset_found"`
		Uptime       string `json:"uptime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("stats body is not JSON: %v", err)
	}
	if resp.DatasetPath != filepath.FromSlash(testFallback) {
		t.Errorf("dataset_path = %q, want %q", resp.DatasetPath, testFallback)
	}
	if !resp.DatasetFound {
		t.Error("dataset_found = false, want true")
	}
	if resp.AppVersion != config.AppVersion {
		t.Errorf("app_version = %q, want %q", resp.AppVersion, config.AppVersion)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{testPrimary: `[]`})

	w := doRequest(s, http.MethodGet, "/api/records")
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want empty without SSL", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	if w := doRequest(s, http.MethodGet, "/api/records/1"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Start() after Shutdown = %v, want http.ErrServerClosed", err)
	}
}

func TestStart_SSLWithoutCert(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Web.SSL = true
	s := NewServer(&cfg.Web, records.NewService(testServiceDir, afero.NewMemMapFs()))

	err := s.Start()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Start() = %v, want configuration error", err)
	}
}
