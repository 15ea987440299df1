package model

// Metrics is a point-in-time snapshot of pipeline progress, consumed by the
// progress reporter and the TUI dashboard.
type Metrics struct {
	TotalLinks    int64
	Processed     int64
	Succeeded     int64
	FetchFailures int64
	DNSFailures   int64
	ActiveWorkers int
	TotalWorkers  int

	// Most recent results, newest last. Bounded by the producer.
	Recent []ScanResult
}
