package model

import (
	"fmt"
	"strings"
)

// InputLink is one URL to check, tagged with where it came from.
// SourceLabel/SourceRef are provenance only ("Manual Entry"/"N/A" for
// non-markdown sources); URL always carries a scheme.
type InputLink struct {
	SourceLabel string
	SourceRef   string
	URL         string
}

// Failure tags recorded in ScanResult.HostProvider when the fetch fails.
// These are part of the exported report vocabulary and must stay stable.
const (
	TagTimeout         = "Timeout (Increase timeout)"
	TagSSLError        = "SSL Error (Invalid Cert)"
	TagConnectionError = "[ERROR] Connection Error"
	TagRequestFailed   = "[ERROR] Request Failed"
)

// Non-failure sentinels.
const (
	HostOther      = "Other"
	NSUnknown      = "Unknown"
	NSLookupFailed = "DNS Lookup Failed"
)

// HTTPErrorTag builds the per-status failure tag for non-2xx/3xx responses.
func HTTPErrorTag(status int) string {
	return fmt.Sprintf("[ERROR] HTTP Error %d", status)
}

// ScanResult is the classification outcome for one InputLink.
// HostProvider is a provider name, "Other", or a fetch failure tag.
// NSProvider is a provider name, a comma-joined raw server list,
// "DNS Lookup Failed", or "Unknown" when the fetch failed.
type ScanResult struct {
	SourceLabel  string
	SourceRef    string
	URL          string
	HostProvider string
	NSProvider   string
}

// Ok reports whether the fetch itself succeeded (HostProvider holds a
// classification, not a failure tag).
func (r ScanResult) Ok() bool {
	switch r.HostProvider {
	case TagTimeout, TagSSLError, TagConnectionError, TagRequestFailed:
		return false
	}
	return !strings.HasPrefix(r.HostProvider, "[ERROR]")
}
