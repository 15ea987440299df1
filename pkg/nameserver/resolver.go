// Package nameserver resolves a domain's NS records and classifies the
// name-server provider behind them.
package nameserver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/classify"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/signature"
	"github.com/juditrz/host-checker/pkg/util"
)

// ErrorCode distinguishes NS lookup failure kinds.
type ErrorCode string

const (
	// ErrNoRecords covers NXDOMAIN and empty answer sections. Only this
	// kind triggers the base-domain fallback.
	ErrNoRecords ErrorCode = "NoRecords"
	// ErrLookup covers transport failures and server-side errors.
	ErrLookup ErrorCode = "Lookup"
)

// LookupFunc resolves a domain to its NS host names (trailing dots already
// stripped). Swappable for tests.
type LookupFunc func(ctx context.Context, domain string) ([]string, error)

// Config holds resolver config
type Config struct {
	Servers []string
	Timeout time.Duration
	Table   signature.Table
	Lookup  LookupFunc
}

// Resolver resolves NS records with base-domain fallback and classifies the
// resulting server names.
type Resolver struct {
	servers []string
	client  *dns.Client
	table   signature.Table
	lookup  LookupFunc
}

// NewResolver creates resolver
func NewResolver(config Config) *Resolver {
	servers := config.Servers
	if len(servers) == 0 {
		servers = defaultServers()
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	r := &Resolver{
		servers: servers,
		client:  &dns.Client{Timeout: timeout},
		table:   config.Table,
	}
	r.lookup = config.Lookup
	if r.lookup == nil {
		r.lookup = r.lookupNS
	}
	return r
}

// defaultServers prefers the system resolvers and falls back to well-known
// public ones.
func defaultServers() []string {
	servers := []string{
		"8.8.8.8:53", // Google
		"1.1.1.1:53", // Cloudflare
		"9.9.9.9:53", // Quad9
	}
	config, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err == nil && len(config.Servers) > 0 {
		var systemServers []string
		port := config.Port
		if port == "" {
			port = "53"
		}
		for _, s := range config.Servers {
			systemServers = append(systemServers, net.JoinHostPort(s, port))
		}
		servers = append(systemServers, servers...)
	}
	return servers
}

// lookupNS queries the configured servers in order until one responds.
func (r *Resolver) lookupNS(ctx context.Context, domain string) ([]string, error) {
	var lastErr error
	for _, server := range r.servers {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
		msg.RecursionDesired = true

		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			var hosts []string
			for _, ans := range resp.Answer {
				if ns, ok := ans.(*dns.NS); ok {
					hosts = append(hosts, strings.TrimSuffix(ns.Ns, "."))
				}
			}
			if len(hosts) == 0 {
				return nil, failure.New(ErrNoRecords,
					failure.Message("no NS records in answer"),
					failure.Context{"domain": domain},
				)
			}
			return hosts, nil
		case dns.RcodeNameError:
			return nil, failure.New(ErrNoRecords,
				failure.Message("domain does not exist"),
				failure.Context{"domain": domain},
			)
		default:
			lastErr = fmt.Errorf("dns server %s answered %s", server, dns.RcodeToString[resp.Rcode])
		}
	}

	if lastErr != nil {
		return nil, failure.Translate(lastErr, ErrLookup, failure.Context{"domain": domain})
	}
	return nil, failure.New(ErrLookup,
		failure.Message("no dns servers configured"),
		failure.Context{"domain": domain},
	)
}

// Resolve returns the NS host names for domain. A no-record result for a
// domain with more than two labels is retried once against the two-label
// base domain; transport failures and two-label domains get no fallback.
func (r *Resolver) Resolve(ctx context.Context, domain string) ([]string, error) {
	hosts, err := r.lookup(ctx, domain)
	if err == nil {
		return hosts, nil
	}

	if failure.CodeOf(err) == ErrNoRecords && strings.Count(domain, ".") >= 2 {
		base := util.BaseDomain(domain)
		if hosts, baseErr := r.lookup(ctx, base); baseErr == nil {
			return hosts, nil
		}
	}
	return nil, err
}

// Provider resolves and classifies domain's name servers. It returns a
// provider name, or the comma-joined raw server list when no provider
// matches (a legitimate result, distinct from a failure), or
// "DNS Lookup Failed".
func (r *Resolver) Provider(ctx context.Context, domain string) string {
	hosts, err := r.Resolve(ctx, domain)
	if err != nil {
		return model.NSLookupFailed
	}
	if name, ok := classify.NameServer(hosts, r.table); ok {
		return name
	}
	return strings.Join(hosts, ", ")
}
