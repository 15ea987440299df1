package util

import "strings"

// NormalizeURL prefixes "https://" onto URLs that lack an http or https
// scheme. Already-schemed URLs are returned unchanged, so the function is
// idempotent.
func NormalizeURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}

// BareDomain reduces a URL to the host name used for NS lookups: scheme
// stripped, a single leading "www." stripped, anything after the first "/"
// dropped.
func BareDomain(url string) string {
	domain := strings.TrimPrefix(url, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.Index(domain, "/"); i >= 0 {
		domain = domain[:i]
	}
	return domain
}

// BaseDomain returns the last two labels of a domain ("sub.example.com" ->
// "example.com"). Domains with two or fewer labels are returned as-is.
func BaseDomain(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
