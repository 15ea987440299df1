package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/juditrz/host-checker/pkg/interface/cli"
	"github.com/juditrz/host-checker/pkg/interface/presenter"
	"github.com/juditrz/host-checker/pkg/logx"
	"github.com/juditrz/host-checker/pkg/metrics"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/progress"
)

func main() {
	logx.Init()

	config, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	assembler := cli.NewAssembler(config)

	links, withProvenance, err := assembler.LoadLinks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(links) == 0 {
		fmt.Fprintln(os.Stderr, "No valid links to check.")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if config.MetricsAddr != "" {
		go func() {
			if err := metrics.Exporter(config.MetricsAddr); err != nil {
				logx.L().Error("metrics exporter stopped", "error", err)
			}
		}()
	}

	var (
		results []model.ScanResult
		runErr  error
	)

	if config.ShowDashboard {
		dashboard := presenter.NewDashboard()

		p, cleanup, err := assembler.AssemblePipeline(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		p.RegisterMetricsObserver(dashboard)

		prog := tea.NewProgram(dashboard, tea.WithAltScreen())
		go func() {
			results, runErr = p.Run(ctx, links)
			prog.Quit()
		}()
		if _, err := prog.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	} else {
		reporter := progress.NewBarReporter(len(links), logx.L())

		p, cleanup, err := assembler.AssemblePipeline(reporter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		results, runErr = p.Run(ctx, links)
	}

	if runErr != nil && runErr != context.Canceled {
		fmt.Fprintf(os.Stderr, "Scan error: %v\n", runErr)
		os.Exit(1)
	}
	if runErr == context.Canceled {
		logx.L().Warn("scan interrupted, exporting partial results")
	}

	if err := assembler.Export(results, withProvenance); err != nil {
		fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
		os.Exit(1)
	}
	logx.L().Info("results saved", "file", config.OutputFile, "sites", len(results))
}
