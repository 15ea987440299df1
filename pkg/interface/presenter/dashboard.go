// Package presenter renders an optional TUI dashboard for long scans.
package presenter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/juditrz/host-checker/pkg/model"
)

// Dashboard is a TUI view of scan progress. It implements tea.Model and
// pipeline.MetricsObserver.
type Dashboard struct {
	metrics   *model.Metrics
	width     int
	height    int
	startTime time.Time
	mu        sync.RWMutex
}

type tickMsg time.Time

// NewDashboard creates a new TUI dashboard
func NewDashboard() *Dashboard {
	return &Dashboard{
		metrics:   &model.Metrics{},
		startTime: time.Now(),
	}
}

// Init initializes the dashboard
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

// Update handles dashboard updates
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return d, tea.Quit
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil
	case tickMsg:
		return d, tickCmd()
	}
	return d, nil
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.width == 0 {
		return "Initializing..."
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	halfWidth := d.width / 2
	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		d.renderScanStats(halfWidth),
		d.renderRecentResults(d.width-halfWidth),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderHeader(),
		row,
		d.renderFooter(),
	)
}

// OnMetricsUpdate implements pipeline.MetricsObserver
func (d *Dashboard) OnMetricsUpdate(metrics *model.Metrics) {
	d.mu.Lock()
	d.metrics = metrics
	d.mu.Unlock()
}

func (d *Dashboard) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		Padding(0, 1)
	timeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#999999"))

	elapsed := time.Since(d.startTime).Round(time.Second)
	title := titleStyle.Render("Host Checker")
	timeInfo := timeStyle.Render(fmt.Sprintf(" Running: %s", elapsed))
	return title + timeInfo
}

func (d *Dashboard) renderScanStats(width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(1, 2).
		Width(width - 2)

	m := d.metrics
	lines := []string{
		"Scan Progress",
		"",
		fmt.Sprintf("Sites:          %d / %d", m.Processed, m.TotalLinks),
		fmt.Sprintf("Active Workers: %d / %d", m.ActiveWorkers, m.TotalWorkers),
		fmt.Sprintf("Classified:     %d", m.Succeeded),
		fmt.Sprintf("Fetch Failures: %d", m.FetchFailures),
		fmt.Sprintf("DNS Failures:   %d", m.DNSFailures),
	}

	elapsed := time.Since(d.startTime).Seconds()
	if elapsed > 0 && m.Processed > 0 {
		lines = append(lines, "",
			fmt.Sprintf("Rate:           %.2f sites/s", float64(m.Processed)/elapsed))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (d *Dashboard) renderRecentResults(width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Padding(1, 2).
		Width(width - 2)

	lines := []string{"Recent Results", ""}
	for _, r := range d.metrics.Recent {
		line := fmt.Sprintf("%s → %s / %s", r.URL, r.HostProvider, r.NSProvider)
		maxLen := width - 8
		if maxLen > 3 && len(line) > maxLen {
			line = line[:maxLen-3] + "..."
		}
		lines = append(lines, line)
	}
	if len(d.metrics.Recent) == 0 {
		lines = append(lines, "waiting for first result...")
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (d *Dashboard) renderFooter() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Padding(0, 1).
		Render("q: quit")
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
