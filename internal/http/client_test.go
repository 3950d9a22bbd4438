package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Options{Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestGetStylesheet_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write([]byte("@font-face {}"))
	}))
	defer srv.Close()

	css, err := newTestClient(t).GetStylesheet(context.Background(), srv.URL, "Mozilla/5.0 Test")
	if err != nil {
		t.Fatalf("GetStylesheet() error = %v", err)
	}
	if css != "@font-face {}" {
		t.Errorf("GetStylesheet() = %q", css)
	}
	if gotUA != "Mozilla/5.0 Test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestGetStylesheet_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=iso-8859-1")
		// "Caf\xe9" is "Café" in latin-1.
		w.Write([]byte("/* Caf\xe9 */"))
	}))
	defer srv.Close()

	css, err := newTestClient(t).GetStylesheet(context.Background(), srv.URL, "ua")
	if err != nil {
		t.Fatalf("GetStylesheet() error = %v", err)
	}
	if css != "/* Café */" {
		t.Errorf("GetStylesheet() = %q, want %q", css, "/* Café */")
	}
}

func TestGetStylesheet_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad family", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t).GetStylesheet(context.Background(), srv.URL, "ua")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want %d", se.Code, http.StatusBadRequest)
	}
}

func TestDownloadFile(t *testing.T) {
	payload := []byte("wOF2\x00\x01\x00\x00 font data")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "Open-Sans.woff2")

	var last int64
	err := newTestClient(t).DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("file content = %q", got)
	}
	if last != int64(len(payload)) {
		t.Errorf("progress reported %d bytes, want %d", last, len(payload))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the font", len(entries))
	}
}

func TestDownloadFile_NonOKLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	err := newTestClient(t).DownloadFile(context.Background(), srv.URL, filepath.Join(dir, "a.ttf"), nil)
	if err == nil {
		t.Fatal("expected error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory has %d entries, want none", len(entries))
	}
}

func TestDownloadFile_MissingDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing", "a.ttf")
	if err := newTestClient(t).DownloadFile(context.Background(), srv.URL, dest, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestNewClient_Proxy(t *testing.T) {
	tests := []struct {
		proxy   string
		wantErr bool
	}{
		{"http://127.0.0.1:3128", false},
		{"https://proxy.example.com", false},
		{"socks5://127.0.0.1:1080", false},
		{"ftp://127.0.0.1", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.proxy, func(t *testing.T) {
			_, err := NewClient(Options{Proxy: tt.proxy}, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.proxy, err, tt.wantErr)
			}
		})
	}
}

func TestHeadRecorder(t *testing.T) {
	h := &headRecorder{limit: 4}
	h.Write([]byte("ab"))
	h.Write([]byte("cdef"))
	h.Write([]byte("gh"))
	if string(h.buf) != "abcd" {
		t.Errorf("buf = %q, want %q", h.buf, "abcd")
	}
}
