// Package classify matches extracted signals against provider signature
// tables. Matching is plain substring containment, first provider in table
// order wins. False positives are a known limitation of the heuristic (a
// provider string inside an unrelated third-party asset URL still matches).
package classify

import (
	"strings"

	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/signature"
)

// Host classifies a lowercase page corpus against the hosting table. A
// provider matches when any of its signatures is a substring of the corpus.
// No match, including an empty corpus, yields "Other".
func Host(corpus string, table signature.Table) string {
	for _, p := range table {
		for _, sig := range p.Signatures {
			if strings.Contains(corpus, sig) {
				return p.Name
			}
		}
	}
	return model.HostOther
}

// NameServer classifies a set of NS host names against the name-server
// table. A provider matches when any of its signatures is a case-insensitive
// substring of any server name. The boolean reports whether a provider
// matched; callers fall back to the raw server list otherwise.
func NameServer(servers []string, table signature.Table) (string, bool) {
	lowered := make([]string, len(servers))
	for i, s := range servers {
		lowered[i] = strings.ToLower(s)
	}
	for _, p := range table {
		for _, sig := range p.Signatures {
			for _, server := range lowered {
				if strings.Contains(server, sig) {
					return p.Name, true
				}
			}
		}
	}
	return "", false
}
