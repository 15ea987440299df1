package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/juditrz/host-checker/pkg/dedup"
	"github.com/juditrz/host-checker/pkg/fetcher"
	"github.com/juditrz/host-checker/pkg/httpclient"
	"github.com/juditrz/host-checker/pkg/input"
	"github.com/juditrz/host-checker/pkg/logx"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/nameserver"
	"github.com/juditrz/host-checker/pkg/output"
	"github.com/juditrz/host-checker/pkg/pipeline"
	"github.com/juditrz/host-checker/pkg/progress"
	"github.com/juditrz/host-checker/pkg/report"
	"github.com/juditrz/host-checker/pkg/signature"
)

// Assembler wires components from configuration.
type Assembler struct {
	config  *Config
	scanLog *output.JsonlWriter
}

// NewAssembler creates a new assembler
func NewAssembler(config *Config) *Assembler {
	return &Assembler{config: config}
}

// LoadLinks reads the configured input source. The boolean reports whether
// the source carries meaningful provenance (markdown does, csv/lines do
// not), which decides the exported column shape.
func (a *Assembler) LoadLinks() ([]model.InputLink, bool, error) {
	var (
		links []model.InputLink
		err   error
	)
	switch a.config.InputFormat {
	case FormatMarkdown:
		links, err = input.LinksFromMarkdown(a.config.InputFile)
	case FormatCSV:
		if a.config.InputFile == "-" {
			links, err = input.LinksFromCSV(os.Stdin, a.config.CSVColumn)
		} else {
			links, err = input.LinksFromCSVFile(a.config.InputFile, a.config.CSVColumn)
		}
	default:
		if a.config.InputFile == "-" {
			links, err = input.LinksFromLines(os.Stdin)
		} else {
			var file *os.File
			file, err = os.Open(a.config.InputFile)
			if err == nil {
				links, err = input.LinksFromLines(file)
				file.Close()
			}
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("load input: %w", err)
	}

	if a.config.Dedupe {
		before := len(links)
		filter := dedup.NewFilter(uint(max(before, 1024)), 0.001)
		links = filter.Links(links)
		if dropped := before - len(links); dropped > 0 {
			logx.L().Info("dropped duplicate urls", "count", dropped)
		}
	}

	return links, a.config.InputFormat == FormatMarkdown, nil
}

// AssemblePipeline builds the scan pipeline with all dependencies. The
// returned cleanup closes the scan log.
func (a *Assembler) AssemblePipeline(reporter progress.Reporter) (*pipeline.Pipeline, func(), error) {
	hosting, err := loadTable(a.config.HostingTableFile, signature.DefaultHosting)
	if err != nil {
		return nil, nil, err
	}
	nsTable, err := loadTable(a.config.NSTableFile, signature.DefaultNameServer)
	if err != nil {
		return nil, nil, err
	}

	var scanLog *output.JsonlWriter
	if a.config.ScanLogFile != "" {
		scanLog, err = output.NewJsonlWriter(a.config.ScanLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open scan log: %w", err)
		}
		a.scanLog = scanLog
	}

	client := httpclient.NewClient(&httpclient.Config{
		Timeout:   a.config.HTTPTimeoutDuration,
		UserAgent: a.config.UserAgent,
	})

	f := fetcher.NewFetcher(&fetcher.Config{
		Client:          client,
		MaxResponseSize: a.config.MaxResponseSize,
		ScanLog:         scanLog,
	})

	resolver := nameserver.NewResolver(nameserver.Config{
		Servers: a.config.DNSServers,
		Timeout: a.config.DNSTimeoutDuration,
		Table:   nsTable,
	})

	p := pipeline.New(pipeline.Config{
		Workers:           a.config.Workers,
		RequestsPerSecond: a.config.RequestsPerSecond,
		Fetcher:           f,
		Resolver:          resolver,
		Hosting:           hosting,
		Reporter:          reporter,
	})

	cleanup := func() {
		if scanLog != nil {
			_ = scanLog.Close()
		}
	}
	return p, cleanup, nil
}

// Export writes the report in the format implied by the output path.
func (a *Assembler) Export(results []model.ScanResult, withProvenance bool) error {
	table := report.Project(results, withProvenance)

	path := a.config.OutputFile
	if path == "-" || strings.EqualFold(filepath.Ext(path), ".csv") {
		return output.WriteCSV(path, table.Header, table.Rows)
	}
	return output.WriteExcel(path, table.Header, table.Rows)
}

func loadTable(path string, fallback func() signature.Table) (signature.Table, error) {
	if path == "" {
		return fallback(), nil
	}
	table, err := signature.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load signature table %s: %w", path, err)
	}
	return table, nil
}
