package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/juditrz/host-checker/pkg/fetcher"
	"github.com/juditrz/host-checker/pkg/httpclient"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/nameserver"
	"github.com/juditrz/host-checker/pkg/progress"
	"github.com/juditrz/host-checker/pkg/signature"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/shopify", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script src="https://cdn.shopify.com/s/files/app.js"></script></head></html>`))
	})
	mux.HandleFunc("/wordpress", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><link href="/wp-content/themes/x/style.css"></head></html>`))
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>plain</title></head></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPipeline(workers int) *Pipeline {
	f := fetcher.NewFetcher(&fetcher.Config{
		Client: httpclient.NewClient(&httpclient.Config{Timeout: 5 * time.Second}),
	})
	r := nameserver.NewResolver(nameserver.Config{
		Table: signature.DefaultNameServer(),
		Lookup: func(_ context.Context, domain string) ([]string, error) {
			return []string{"ns1.domaincontrol.com"}, nil
		},
	})
	return New(Config{
		Workers:           workers,
		RequestsPerSecond: 1000, // do not slow the test down
		Fetcher:           f,
		Resolver:          r,
		Hosting:           signature.DefaultHosting(),
	})
}

func TestRunClassifies(t *testing.T) {
	srv := testServer(t)
	links := []model.InputLink{
		{SourceLabel: "Manual Entry", SourceRef: "N/A", URL: srv.URL + "/shopify"},
		{SourceLabel: "Manual Entry", SourceRef: "N/A", URL: srv.URL + "/wordpress"},
		{SourceLabel: "Manual Entry", SourceRef: "N/A", URL: srv.URL + "/plain"},
	}

	p := newTestPipeline(1)
	results, err := p.Run(context.Background(), links)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(links) {
		t.Fatalf("got %d results, want %d", len(results), len(links))
	}

	wantHosts := []string{"Shopify", "WordPress.org", "Other"}
	for i, want := range wantHosts {
		if results[i].HostProvider != want {
			t.Errorf("result[%d].HostProvider = %q, want %q", i, results[i].HostProvider, want)
		}
		if results[i].NSProvider != "GoDaddy" {
			t.Errorf("result[%d].NSProvider = %q, want GoDaddy", i, results[i].NSProvider)
		}
		if results[i].URL != links[i].URL {
			t.Errorf("result[%d] out of order: %q", i, results[i].URL)
		}
	}
}

func TestRunPreservesOrderWithWorkers(t *testing.T) {
	srv := testServer(t)
	var links []model.InputLink
	for i := 0; i < 20; i++ {
		links = append(links, model.InputLink{
			SourceLabel: "CSV Entry",
			SourceRef:   "N/A",
			URL:         fmt.Sprintf("%s/plain?n=%d", srv.URL, i),
		})
	}

	p := newTestPipeline(8)
	results, err := p.Run(context.Background(), links)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(links) {
		t.Fatalf("got %d results, want %d", len(results), len(links))
	}
	for i := range links {
		if results[i].URL != links[i].URL {
			t.Errorf("result[%d] = %q, want %q", i, results[i].URL, links[i].URL)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	srv := testServer(t)
	links := []model.InputLink{
		{URL: srv.URL + "/missing"},
		{URL: srv.URL + "/shopify"},
	}

	p := newTestPipeline(1)
	results, err := p.Run(context.Background(), links)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if results[0].HostProvider != "[ERROR] HTTP Error 404" {
		t.Errorf("failed record tag = %q, want [ERROR] HTTP Error 404", results[0].HostProvider)
	}
	if results[0].NSProvider != model.NSUnknown {
		t.Errorf("failed record NSProvider = %q, want %q (NS lookup skipped)", results[0].NSProvider, model.NSUnknown)
	}
	// the batch continued past the failure
	if results[1].HostProvider != "Shopify" {
		t.Errorf("second record = %q, want Shopify", results[1].HostProvider)
	}
}

// cancelAfterFirst cancels the run as soon as the first record lands.
type cancelAfterFirst struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelAfterFirst) OnMetricsUpdate(m *model.Metrics) {
	if m.Processed >= 1 {
		c.once.Do(c.cancel)
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	srv := testServer(t)
	links := []model.InputLink{
		{URL: srv.URL + "/plain"},
		{URL: srv.URL + "/plain"},
		{URL: srv.URL + "/plain"},
	}

	f := fetcher.NewFetcher(&fetcher.Config{
		Client: httpclient.NewClient(&httpclient.Config{Timeout: 5 * time.Second}),
	})
	r := nameserver.NewResolver(nameserver.Config{
		Table: signature.DefaultNameServer(),
		Lookup: func(_ context.Context, domain string) ([]string, error) {
			return []string{"ns1.domaincontrol.com"}, nil
		},
	})
	p := New(Config{
		Workers: 1,
		// slow enough that the second record never gets a token, so the
		// run is parked in the limiter when the cancel lands
		RequestsPerSecond: 0.001,
		Fetcher:           f,
		Resolver:          r,
		Hosting:           signature.DefaultHosting(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.RegisterMetricsObserver(&cancelAfterFirst{cancel: cancel})

	type outcome struct {
		results []model.ScanResult
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		results, err := p.Run(ctx, links)
		ch <- outcome{results, err}
	}()

	select {
	case out := <-ch:
		if out.err != context.Canceled {
			t.Errorf("Run error = %v, want context.Canceled", out.err)
		}
		if len(out.results) == 0 || len(out.results) >= len(links) {
			t.Fatalf("got %d results, want a partial batch", len(out.results))
		}
		for i, r := range out.results {
			if r.URL == "" {
				t.Errorf("result[%d] is an unprocessed placeholder: %+v", i, r)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// captureReporter records every event it sees.
type captureReporter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (c *captureReporter) Report(e progress.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *captureReporter) Done() {}

func TestRunReportsPageTitle(t *testing.T) {
	srv := testServer(t)
	links := []model.InputLink{{URL: srv.URL + "/plain"}}

	p := newTestPipeline(1)
	rep := &captureReporter{}
	p.cfg.Reporter = rep

	if _, err := p.Run(context.Background(), links); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rep.events))
	}
	if rep.events[0].Title != "plain" {
		t.Errorf("Event.Title = %q, want %q", rep.events[0].Title, "plain")
	}
}

func TestRunSnapshotMetrics(t *testing.T) {
	srv := testServer(t)
	links := []model.InputLink{
		{URL: srv.URL + "/missing"},
		{URL: srv.URL + "/plain"},
	}

	p := newTestPipeline(1)
	if _, err := p.Run(context.Background(), links); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	m := p.Metrics(len(links))
	if m.Processed != 2 || m.Succeeded != 1 || m.FetchFailures != 1 {
		t.Errorf("Metrics = %+v, want processed=2 succeeded=1 fetchFailures=1", m)
	}
	if len(m.Recent) != 2 {
		t.Errorf("Recent has %d entries, want 2", len(m.Recent))
	}
}
