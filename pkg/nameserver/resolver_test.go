package nameserver

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/signature"
)

// fakeLookup returns canned results per domain; unknown domains get a
// no-record failure.
func fakeLookup(answers map[string][]string, errs map[string]ErrorCode) LookupFunc {
	return func(_ context.Context, domain string) ([]string, error) {
		if code, ok := errs[domain]; ok {
			return nil, failure.New(code)
		}
		if hosts, ok := answers[domain]; ok {
			return hosts, nil
		}
		return nil, failure.New(ErrNoRecords)
	}
}

func newTestResolver(lookup LookupFunc) *Resolver {
	return NewResolver(Config{
		Table:  signature.DefaultNameServer(),
		Lookup: lookup,
	})
}

func TestResolveExact(t *testing.T) {
	r := newTestResolver(fakeLookup(map[string][]string{
		"example.com": {"ns1.domaincontrol.com", "ns2.domaincontrol.com"},
	}, nil))

	hosts, err := r.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := []string{"ns1.domaincontrol.com", "ns2.domaincontrol.com"}
	if diff := cmp.Diff(want, hosts); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveBaseDomainFallback(t *testing.T) {
	// Exact lookup finds nothing, the two-label base resolves: its servers
	// are the result, not a failure.
	r := newTestResolver(fakeLookup(map[string][]string{
		"example.com": {"dell.ns.cloudflare.com"},
	}, nil))

	hosts, err := r.Resolve(context.Background(), "sub.example.com")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "dell.ns.cloudflare.com" {
		t.Errorf("Resolve = %v, want base domain servers", hosts)
	}
}

func TestResolveNoFallbackForTwoLabels(t *testing.T) {
	r := newTestResolver(fakeLookup(nil, nil))
	if _, err := r.Resolve(context.Background(), "example.com"); err == nil {
		t.Error("expected failure for unresolvable two-label domain")
	}
}

func TestResolveTransportFailureSkipsFallback(t *testing.T) {
	calls := 0
	r := newTestResolver(func(_ context.Context, domain string) ([]string, error) {
		calls++
		return nil, failure.New(ErrLookup)
	})
	if _, err := r.Resolve(context.Background(), "sub.example.com"); err == nil {
		t.Error("expected failure")
	}
	if calls != 1 {
		t.Errorf("lookup called %d times, want 1 (no fallback on transport failure)", calls)
	}
}

func TestProvider(t *testing.T) {
	tests := []struct {
		name     string
		answers  map[string][]string
		errs     map[string]ErrorCode
		domain   string
		expected string
	}{
		{
			name:     "godaddy",
			answers:  map[string][]string{"example.com": {"ns1.domaincontrol.com", "ns2.domaincontrol.com"}},
			domain:   "example.com",
			expected: "GoDaddy",
		},
		{
			name:     "raw list when nothing matches",
			answers:  map[string][]string{"example.com": {"ns1.custom.example", "ns2.custom.example"}},
			domain:   "example.com",
			expected: "ns1.custom.example, ns2.custom.example",
		},
		{
			name:     "lookup failed",
			errs:     map[string]ErrorCode{"example.com": ErrLookup},
			domain:   "example.com",
			expected: model.NSLookupFailed,
		},
		{
			name:     "fallback classification",
			answers:  map[string][]string{"example.com": {"ns-123.awsdns-45.org"}},
			domain:   "deep.sub.example.com",
			expected: "AWS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(fakeLookup(tt.answers, tt.errs))
			if got := r.Provider(context.Background(), tt.domain); got != tt.expected {
				t.Errorf("Provider = %q, want %q", got, tt.expected)
			}
		})
	}
}
