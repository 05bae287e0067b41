package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".mjs", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".map", "application/json"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestETag(t *testing.T) {
	for _, name := range []string{"console.js", "console.css"} {
		tag := ETag(name)
		if !strings.HasPrefix(tag, `"`) || len(tag) != 18 {
			t.Errorf("ETag(%q) = %q, want a quoted 16-char hash", name, tag)
		}
		if ETag("/"+name) != tag {
			t.Errorf("ETag should ignore a leading slash for %q", name)
		}
	}
	if tag := ETag("missing.js"); tag != "" {
		t.Errorf("ETag(missing.js) = %q, want empty", tag)
	}
}

func TestFileServer(t *testing.T) {
	srv := FileServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	etag := rec.Header().Get("ETag")
	if etag != ETag("console.css") {
		t.Errorf("ETag = %q, want %q", etag, ETag("console.css"))
	}

	// Revalidation with a matching tag is answered without a body
	req := httptest.NewRequest(http.MethodGet, "/console.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("revalidation status = %d, want 304", rec.Code)
	}
}

func TestFileServerRejectsDirectories(t *testing.T) {
	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestFileServerMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConsoleScriptRefusesOlderGenerations(t *testing.T) {
	rec := httptest.NewRecorder()
	FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"htmx:beforeSwap", "X-View-Generation", "shouldSwap = false"} {
		if !strings.Contains(body, want) {
			t.Errorf("console.js missing %q", want)
		}
	}
}
