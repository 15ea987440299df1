package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/httpclient"
	"github.com/juditrz/host-checker/pkg/model"
)

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(&Config{
		Client: httpclient.NewClient(&httpclient.Config{Timeout: timeout}),
	})
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		w.Write([]byte("<html><head><title>Hi</title></head><body></body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(5 * time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", page.StatusCode)
	}
	if page.Title != "Hi" {
		t.Errorf("Title = %q, want Hi", page.Title)
	}
	if !strings.Contains(page.Body, "<title>Hi</title>") {
		t.Errorf("Body missing title: %q", page.Body)
	}
}

func TestFetchHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(5 * time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if code := failure.CodeOf(err); code != ErrHTTPStatus {
		t.Errorf("code = %v, want %v", code, ErrHTTPStatus)
	}
	if tag := Tag(err, page); tag != "[ERROR] HTTP Error 404" {
		t.Errorf("Tag = %q, want [ERROR] HTTP Error 404", tag)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := newTestFetcher(100 * time.Millisecond)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if tag := Tag(err, page); tag != model.TagTimeout {
		t.Errorf("Tag = %q, want %q", tag, model.TagTimeout)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := newTestFetcher(2 * time.Second)
	page, err := f.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if tag := Tag(err, page); tag != model.TagConnectionError {
		t.Errorf("Tag = %q, want %q", tag, model.TagConnectionError)
	}
}

func TestFetchRedirectIsFollowed(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Landed</title></head></html>"))
	}))
	defer target.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusMovedPermanently)
	}))
	defer srv.Close()

	f := newTestFetcher(5 * time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Title != "Landed" {
		t.Errorf("Title = %q, want Landed", page.Title)
	}
}

func TestTagMapping(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrTimeout, model.TagTimeout},
		{ErrCertificate, model.TagSSLError},
		{ErrConnection, model.TagConnectionError},
		{ErrRequest, model.TagRequestFailed},
	}
	for _, tt := range tests {
		err := failure.New(tt.code)
		if tag := Tag(err, nil); tag != tt.expected {
			t.Errorf("Tag(%v) = %q, want %q", tt.code, tag, tt.expected)
		}
	}
}
