// Package progress carries per-record scan events from the pipeline to
// whatever is watching: a progress bar, the TUI dashboard, or the log.
package progress

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/ts"
	"github.com/schollz/progressbar/v3"

	"github.com/juditrz/host-checker/pkg/model"
)

// Event describes one finished record.
type Event struct {
	Index  int
	Total  int
	Result model.ScanResult
	Title  string
}

// Reporter consumes pipeline events.
type Reporter interface {
	Report(Event)
	Done()
}

// BarReporter renders a progress bar on stderr with a live description of
// the record just finished, and logs failures inline so no failure is
// silent.
type BarReporter struct {
	bar    *progressbar.ProgressBar
	width  int
	logger *slog.Logger
}

// NewBarReporter creates a reporter for total records.
func NewBarReporter(total int, logger *slog.Logger) *BarReporter {
	width := 120
	if size, err := ts.GetSize(); err == nil && size.Col() > 0 {
		width = size.Col()
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("checking sites"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowDescriptionAtLineEnd(),
	)
	return &BarReporter{bar: bar, width: width, logger: logger}
}

// Report implements Reporter.
func (r *BarReporter) Report(e Event) {
	res := e.Result
	if !res.Ok() {
		r.logger.Warn("fetch failed", "url", res.URL, "reason", res.HostProvider)
	} else if res.NSProvider == model.NSLookupFailed {
		r.logger.Warn("dns lookup failed", "url", res.URL)
	}

	desc := fmt.Sprintf("%s → %s / %s", res.URL, res.HostProvider, res.NSProvider)
	if e.Title != "" {
		desc = fmt.Sprintf("%s (%s) → %s / %s", res.URL, e.Title, res.HostProvider, res.NSProvider)
	}
	r.bar.Describe(truncate(desc, r.width/2))
	_ = r.bar.Add(1)
}

// Done implements Reporter.
func (r *BarReporter) Done() {
	_ = r.bar.Finish()
	fmt.Fprintln(os.Stderr)
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}
