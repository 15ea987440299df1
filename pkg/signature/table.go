package signature

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/morikuni/failure/v2"
)

// ErrorCode identifies signature table loading failures.
type ErrorCode string

const (
	// ErrTableUnreadable means the signature file could not be read or parsed.
	ErrTableUnreadable ErrorCode = "TableUnreadable"
	// ErrTableEmpty means the file parsed but declared no providers.
	ErrTableEmpty ErrorCode = "TableEmpty"
)

// Provider maps a provider name to the lowercase substrings that fingerprint
// it. A provider matches when any one of its signatures matches.
type Provider struct {
	Name       string   `json:"name"`
	Signatures []string `json:"signatures"`
}

// Table is an ordered provider signature list. Iteration order equals
// declaration order; the first matching provider wins, so reordering entries
// changes classification results.
type Table []Provider

// Load reads a table from a JSON file holding an ordered array of
// {"name": ..., "signatures": [...]} objects. Keeping fingerprints in a file
// lets them be updated without a rebuild. Signatures are folded to lowercase
// on load, since matching runs against lowered corpora and server names.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, failure.New(ErrTableUnreadable,
			failure.Message("signature file is not a valid provider array"),
			failure.Context{"path": path},
		)
	}
	if len(t) == 0 {
		return nil, failure.New(ErrTableEmpty,
			failure.Message("signature file declares no providers"),
			failure.Context{"path": path},
		)
	}
	for _, p := range t {
		for i, sig := range p.Signatures {
			p.Signatures[i] = strings.ToLower(sig)
		}
	}
	return t, nil
}

// DefaultHosting is the built-in hosting platform fingerprint table. Order
// matters: WordPress.org is declared before WordPress.com so that generic
// wp-* asset paths win over the bare "wp.com" substring.
func DefaultHosting() Table {
	return Table{
		{Name: "BigCommerce", Signatures: []string{"bigcommerce"}},
		{Name: "Elementor", Signatures: []string{"elementor"}},
		{Name: "GoDaddy", Signatures: []string{"godaddy"}},
		{Name: "Hostinger", Signatures: []string{"hostinger"}},
		{Name: "Jimdo", Signatures: []string{"jimdo"}},
		{Name: "Shopify", Signatures: []string{"shopify"}},
		{Name: "Squarespace", Signatures: []string{"squarespace"}},
		{Name: "Webflow", Signatures: []string{"webflow"}},
		{Name: "Weebly", Signatures: []string{"weebly"}},
		{Name: "Wix", Signatures: []string{"wixstatic"}},
		{Name: "WooCommerce", Signatures: []string{"woocommerce"}},
		{Name: "WordPress.org", Signatures: []string{
			"wp-content", "wp-", "wp-plugins", "wp-json",
			"wp-block", "wp--preset", "wp-includes",
		}},
		{Name: "WordPress.com", Signatures: []string{"wp.com"}},
	}
}

// DefaultNameServer is the built-in name-server provider fingerprint table.
func DefaultNameServer() Table {
	return Table{
		{Name: "A2 Hosting", Signatures: []string{"a2hosting.com"}},
		{Name: "AWS", Signatures: []string{"awsdns"}},
		{Name: "Bluehost", Signatures: []string{"bluehost.com"}},
		{Name: "Cloudflare", Signatures: []string{"cloudflare.com"}},
		{Name: "DigitalOcean", Signatures: []string{"digitalocean.com"}},
		{Name: "GoDaddy", Signatures: []string{"domaincontrol.com"}},
		{Name: "Google Domains", Signatures: []string{"google.com", "googledomains.com"}},
		{Name: "HostGator", Signatures: []string{"hostgator.com"}},
		{Name: "Hostinger", Signatures: []string{"hostinger"}},
		{Name: "Namecheap", Signatures: []string{"namecheapdns.com", "dns-parking.com", "registrar-servers.com"}},
		{Name: "SiteGround", Signatures: []string{"siteground"}},
		{Name: "WP Engine", Signatures: []string{"wpcdns.com"}},
		{Name: "WordPress.com", Signatures: []string{"wordpress.com"}},
		{Name: "Wix", Signatures: []string{"wixdns.net"}},
		{Name: "WPX Hosting", Signatures: []string{"wpx.net", "wpxhosting.com"}},
	}
}
