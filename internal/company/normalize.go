// Package company derives canonical identity keys for companies seen across sources.
package company

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key prefixes keep domain and name keys from colliding.
const (
	DomainKeyPrefix = "domain:"
	NameKeyPrefix   = "name:"
)

// DefaultDirectoryHosts are listing sites whose URLs identify the directory,
// not the company listed on it.
var DefaultDirectoryHosts = []string{
	"yelp.com",
	"facebook.com",
	"linkedin.com",
	"yellowpages.com",
	"bbb.org",
	"mapquest.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"google.com",
}

// legalSuffixes are trailing name tokens dropped before comparing names.
var legalSuffixes = map[string]struct{}{
	"inc":          {},
	"incorporated": {},
	"llc":          {},
	"ltd":          {},
	"limited":      {},
	"corp":         {},
	"corporation":  {},
	"co":           {},
	"company":      {},
	"plc":          {},
	"lp":           {},
	"llp":          {},
	"gmbh":         {},
}

// Normalizer builds identity keys. The zero value has no directory blocklist.
type Normalizer struct {
	directoryHosts []string
}

// NewNormalizer creates a Normalizer that ignores websites hosted on any of
// the given directory hosts (or their subdomains).
func NewNormalizer(directoryHosts []string) *Normalizer {
	hosts := make([]string, 0, len(directoryHosts))
	for _, h := range directoryHosts {
		h = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), "www.")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return &Normalizer{directoryHosts: hosts}
}

// IdentityKey returns the canonical key for a company: the normalized domain
// when a usable website is present, otherwise the normalized name. It returns
// "" when neither yields anything.
func (n *Normalizer) IdentityKey(name, website string) string {
	if d := n.Domain(website); d != "" {
		return DomainKeyPrefix + d
	}
	if nm := NormalizeName(name); nm != "" {
		return NameKeyPrefix + nm
	}
	return ""
}

// Domain normalizes website and returns "" when it is empty, unparseable or
// hosted on a directory site.
func (n *Normalizer) Domain(website string) string {
	d := NormalizeDomain(website)
	if d == "" || n.IsDirectory(d) {
		return ""
	}
	return d
}

// IsDirectory reports whether domain is, or is a subdomain of, a blocked directory host.
func (n *Normalizer) IsDirectory(domain string) bool {
	for _, blocked := range n.directoryHosts {
		if domain == blocked || strings.HasSuffix(domain, "."+blocked) {
			return true
		}
	}
	return false
}

// NormalizeDomain lower-cases a website and strips the scheme, "www." prefix,
// port, path, query and fragment.
func NormalizeDomain(website string) string {
	w := strings.TrimSpace(website)
	if w == "" {
		return ""
	}
	if !strings.Contains(w, "://") {
		w = "http://" + w
	}
	u, err := url.Parse(w)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return strings.TrimSuffix(host, ".")
}

// newAccentFolder returns a fresh transformer per call; a transform.Chain
// holds buffers and is not safe for concurrent use.
func newAccentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeName lower-cases a company name, folds accents, drops apostrophes
// and periods, turns other punctuation into word breaks and drops trailing
// legal suffixes such as "inc" or "llc".
func NormalizeName(name string) string {
	folded, _, err := transform.String(newAccentFolder(), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’' || r == '.':
			// "Joe's" and "L.L.C." stay one word.
		default:
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	end := len(tokens)
	for end > 1 {
		if _, ok := legalSuffixes[tokens[end-1]]; !ok {
			break
		}
		end--
	}
	return strings.Join(tokens[:end], " ")
}
