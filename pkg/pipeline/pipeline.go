// Package pipeline drives the scan: fetch each input link, classify the page
// and the domain's name servers, and assemble one result per input in input
// order.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/juditrz/host-checker/pkg/classify"
	"github.com/juditrz/host-checker/pkg/extract"
	"github.com/juditrz/host-checker/pkg/fetcher"
	"github.com/juditrz/host-checker/pkg/metrics"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/nameserver"
	"github.com/juditrz/host-checker/pkg/progress"
	"github.com/juditrz/host-checker/pkg/signature"
	"github.com/juditrz/host-checker/pkg/util"
)

// MetricsObserver receives a fresh snapshot after every processed record.
type MetricsObserver interface {
	OnMetricsUpdate(*model.Metrics)
}

// Config holds pipeline config
type Config struct {
	// Workers bounds concurrency. 1 reproduces the strictly sequential
	// legacy pacing.
	Workers int
	// RequestsPerSecond caps the global fetch start rate, enforcing a
	// minimum spacing between requests to third-party sites.
	RequestsPerSecond float64
	Fetcher           *fetcher.Fetcher
	Resolver          *nameserver.Resolver
	Hosting           signature.Table
	Reporter          progress.Reporter
	RecentSize        int
}

// Pipeline orchestrates fetching and classification.
type Pipeline struct {
	cfg       Config
	observers []MetricsObserver

	processed     atomic.Int64
	succeeded     atomic.Int64
	fetchFailures atomic.Int64
	dnsFailures   atomic.Int64
	active        atomic.Int64

	mu     sync.Mutex
	recent []model.ScanResult
}

// New creates pipeline
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.RecentSize <= 0 {
		cfg.RecentSize = 10
	}
	return &Pipeline{cfg: cfg}
}

// RegisterMetricsObserver subscribes an observer to per-record snapshots.
func (p *Pipeline) RegisterMetricsObserver(o MetricsObserver) {
	p.observers = append(p.observers, o)
}

// Run processes every link and returns one result per link, in input order.
// Per-record failures never abort the batch; only context cancellation stops
// a run early, in which case the completed results (still in input order)
// and the context error are returned.
func (p *Pipeline) Run(ctx context.Context, links []model.InputLink) ([]model.ScanResult, error) {
	results := make([]model.ScanResult, len(links))
	done := make([]bool, len(links))
	limiter := rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), 1)

	jobs := make(chan int)
	var wg sync.WaitGroup
	var canceled atomic.Bool

	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					canceled.Store(true)
					return
				}
				p.active.Add(1)
				res, title := p.scan(ctx, links[idx])
				p.active.Add(-1)
				results[idx] = res
				done[idx] = true
				p.record(idx, len(links), res, title)
			}
		}()
	}

	// The send must stay cancellable: once workers bail out on a dead
	// context nothing receives on jobs anymore.
dispatch:
	for i := range links {
		select {
		case jobs <- i:
		case <-ctx.Done():
			canceled.Store(true)
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if p.cfg.Reporter != nil {
		p.cfg.Reporter.Done()
	}
	if canceled.Load() || ctx.Err() != nil {
		partial := make([]model.ScanResult, 0, len(results))
		for i, r := range results {
			if done[i] {
				partial = append(partial, r)
			}
		}
		return partial, ctx.Err()
	}
	return results, nil
}

// scan handles a single record: one fetch, then one NS classification. The
// NS lookup never starts before the fetch has concluded, and is skipped
// entirely when the fetch failed. The page title rides along for progress
// output only.
func (p *Pipeline) scan(ctx context.Context, link model.InputLink) (model.ScanResult, string) {
	result := model.ScanResult{
		SourceLabel: link.SourceLabel,
		SourceRef:   link.SourceRef,
		URL:         link.URL,
		NSProvider:  model.NSUnknown,
	}

	page, err := p.cfg.Fetcher.Fetch(ctx, link.URL)
	if err != nil {
		result.HostProvider = fetcher.Tag(err, page)
		return result, ""
	}

	result.HostProvider = classify.Host(extract.Corpus(page.Body), p.cfg.Hosting)
	result.NSProvider = p.cfg.Resolver.Provider(ctx, util.BareDomain(link.URL))
	return result, page.Title
}

// record updates counters, notifies observers and the reporter.
func (p *Pipeline) record(idx, total int, result model.ScanResult, title string) {
	p.processed.Add(1)
	metrics.SitesProcessed.Inc()

	if result.Ok() {
		p.succeeded.Add(1)
	} else {
		p.fetchFailures.Add(1)
		metrics.FetchFailures.WithLabelValues(failureKind(result.HostProvider)).Inc()
	}
	if result.NSProvider == model.NSLookupFailed {
		p.dnsFailures.Add(1)
		metrics.DNSFailures.Inc()
	}

	p.mu.Lock()
	p.recent = append(p.recent, result)
	if len(p.recent) > p.cfg.RecentSize {
		p.recent = p.recent[len(p.recent)-p.cfg.RecentSize:]
	}
	p.mu.Unlock()

	if p.cfg.Reporter != nil {
		p.cfg.Reporter.Report(progress.Event{
			Index:  idx,
			Total:  total,
			Result: result,
			Title:  title,
		})
	}
	if len(p.observers) > 0 {
		snapshot := p.Metrics(total)
		for _, o := range p.observers {
			o.OnMetricsUpdate(snapshot)
		}
	}
}

// Metrics returns a point-in-time snapshot for dashboards.
func (p *Pipeline) Metrics(total int) *model.Metrics {
	p.mu.Lock()
	recent := make([]model.ScanResult, len(p.recent))
	copy(recent, p.recent)
	p.mu.Unlock()

	return &model.Metrics{
		TotalLinks:    int64(total),
		Processed:     p.processed.Load(),
		Succeeded:     p.succeeded.Load(),
		FetchFailures: p.fetchFailures.Load(),
		DNSFailures:   p.dnsFailures.Load(),
		ActiveWorkers: int(p.active.Load()),
		TotalWorkers:  p.cfg.Workers,
		Recent:        recent,
	}
}

// failureKind buckets a failure tag for the metrics counter.
func failureKind(tag string) string {
	switch {
	case tag == model.TagTimeout:
		return "timeout"
	case tag == model.TagSSLError:
		return "certificate"
	case tag == model.TagConnectionError:
		return "connection"
	case strings.HasPrefix(tag, "[ERROR] HTTP Error"):
		return "http_status"
	default:
		return "request"
	}
}
