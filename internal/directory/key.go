package directory

import (
	"net/url"
	"strings"
	"unicode"
)

// DefaultContactDomain suffixes derived profile keys.
const DefaultContactDomain = "example.com"

// DeriveKey builds the synthetic contact address that identifies a profile's
// detail page: the name lower-cased with all whitespace removed, then
// "@" + domain.
func DeriveKey(name, domain string) string {
	if domain == "" {
		domain = DefaultContactDomain
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String() + "@" + domain
}

// DetailURL returns base + "?key=" + the escaped key for name.
func DetailURL(base, name, domain string) string {
	return base + "?key=" + url.QueryEscape(DeriveKey(name, domain))
}
