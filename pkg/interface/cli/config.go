package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Input formats accepted by --format.
const (
	FormatAuto     = "auto"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatLines    = "lines"
)

// Config holds all application configuration
type Config struct {
	// Input/Output
	InputFile   string `short:"i" long:"input" description:"Input file (markdown, csv, or one URL per line; '-' for stdin)" default:"-"`
	InputFormat string `short:"f" long:"format" description:"Input format" choice:"auto" choice:"markdown" choice:"csv" choice:"lines" default:"auto"`
	CSVColumn   string `long:"csv-column" description:"CSV column holding the URLs" default:"URL"`
	OutputFile  string `short:"o" long:"output" description:"Report file (.xlsx or .csv; '-' for csv on stdout)" default:"host_checker_results.xlsx"`
	ScanLogFile string `long:"scan-log" description:"Optional JSONL scan log file"`

	// Signature tables
	HostingTableFile string `long:"hosting-table" description:"JSON file overriding the built-in hosting signature table"`
	NSTableFile      string `long:"ns-table" description:"JSON file overriding the built-in name-server signature table"`

	// Pacing
	Workers           int     `long:"workers" description:"Number of concurrent workers (1 = strictly sequential)" default:"1"`
	RequestsPerSecond float64 `long:"rps" description:"Maximum request starts per second across all workers" default:"1"`

	// HTTP
	HTTPTimeout     int    `short:"t" long:"http-timeout" description:"HTTP request timeout in seconds" default:"10"`
	UserAgent       string `long:"user-agent" description:"Override the browser User-Agent header"`
	MaxResponseSize int64  `long:"max-response-size" description:"Maximum HTTP response size in bytes" default:"10485760"`

	// DNS
	DNSTimeout int      `long:"dns-timeout" description:"DNS query timeout in seconds" default:"5"`
	DNSServers []string `long:"dns-server" description:"DNS server to query (host:port, repeatable; default: system + public)"`

	// Extras
	Dedupe      bool   `long:"dedupe" description:"Drop duplicate URLs across input records"`
	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address (e.g. :2112)"`

	// UI
	ShowDashboard bool `long:"dashboard" description:"Show interactive TUI dashboard"`

	// Derived values, not parsed from flags directly.
	HTTPTimeoutDuration time.Duration
	DNSTimeoutDuration  time.Duration
}

// ParseFlags parses command line flags
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	parser := flags.NewParser(cfg, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}

	cfg.HTTPTimeoutDuration = time.Duration(cfg.HTTPTimeout) * time.Second
	cfg.DNSTimeoutDuration = time.Duration(cfg.DNSTimeout) * time.Second

	if cfg.InputFormat == FormatAuto {
		cfg.InputFormat = detectFormat(cfg.InputFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat guesses the input format from the file extension; stdin and
// unknown extensions are treated as plain URL lines.
func detectFormat(inputFile string) string {
	switch strings.ToLower(filepath.Ext(inputFile)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".csv":
		return FormatCSV
	default:
		return FormatLines
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("number of workers must be > 0, got %d", c.Workers)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be > 0, got %f", c.RequestsPerSecond)
	}
	if c.HTTPTimeoutDuration <= 0 {
		return fmt.Errorf("HTTP timeout must be > 0, got %s", c.HTTPTimeoutDuration)
	}
	if c.DNSTimeoutDuration <= 0 {
		return fmt.Errorf("DNS timeout must be > 0, got %s", c.DNSTimeoutDuration)
	}
	if c.MaxResponseSize <= 0 {
		return fmt.Errorf("max response size must be > 0, got %d", c.MaxResponseSize)
	}
	if c.InputFormat == FormatMarkdown && c.InputFile == "-" {
		return fmt.Errorf("markdown input requires a file path, not stdin")
	}
	return nil
}
