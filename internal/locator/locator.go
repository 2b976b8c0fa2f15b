// SPDX-License-Identifier: MPL-2.0

// Package locator classifies and canonicalizes repository locator strings.
//
// Three grammars are attempted in order: a local reference (a bare directory
// name with an optional revision), a generic remote reference (any URL whose
// last path segment names the repository), and the backend-specific URL
// shapes (git SSH/HTTPS forms, generic Mercurial URLs, and the Bitbucket web
// shape that is a strict subset of the Mercurial grammar).
package locator

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind distinguishes how a locator string was classified.
type Kind int

const (
	// KindLocal is a bare directory reference with no URL scheme.
	KindLocal Kind = iota
	// KindURL is a remote reference.
	KindURL
)

// Protocol names accepted by Canonical. The zero value defaults to HTTPS.
const (
	ProtocolSSH   = "ssh"
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

var (
	// reference to a local (unpublished) repo - dir#rev
	reLocalRef = regexp.MustCompile(`^([\w.+-][\w./+-]*?)/?(?:#(.*))?$`)

	// reference to a remote repo - url#rev
	reURLRef = regexp.MustCompile(`^(.*/([\w+-]+)(?:\.\w+)?)/?(?:#(.*))?$`)

	// git url (no #rev)
	reGitURL = regexp.MustCompile(`^(git@|git://|ssh://|https?://)([^/:]+)[:/](.+?)(\.git|/?)$`)

	// hg url (no #rev)
	reHgURL = regexp.MustCompile(`^(file|ssh|https?)://([^/:]+)/([^/]+)/?([^/]+?)?$`)

	// Bitbucket web url. A strict subset of the hg grammar; owned by the
	// Mercurial backend and excluded from the git backend's match.
	reHostedURL = regexp.MustCompile(`^(https?)://(bitbucket\.org)/([\w-]+)/([\w-]+)/?$`)
)

// Ref is the normalized form of a parsed locator.
type Ref struct {
	Kind Kind

	// Name is the repository basename derived from the locator.
	Name string

	// URL is the canonical remote URL for KindURL, or the bare path
	// reference for KindLocal.
	URL string

	// Rev is the pinned revision, empty when unpinned ("latest").
	Rev string
}

// InvalidLocatorError reports a locator string matching no known grammar.
type InvalidLocatorError struct {
	Locator string
}

func (e *InvalidLocatorError) Error() string {
	return fmt.Sprintf("invalid repository locator %q", e.Locator)
}

// Parse classifies a locator string. Local references win over URL
// references, mirroring the grammar order.
func Parse(s string) (Ref, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), `\`, "/")

	if m := reLocalRef.FindStringSubmatch(clean); m != nil {
		return Ref{
			Kind: KindLocal,
			Name: baseName(m[1]),
			URL:  m[1],
			Rev:  m[2],
		}, nil
	}

	if m := reURLRef.FindStringSubmatch(clean); m != nil {
		return Ref{
			Kind: KindURL,
			Name: m[2],
			URL:  Canonical(m[1], ""),
			Rev:  m[3],
		}, nil
	}

	return Ref{}, &InvalidLocatorError{Locator: strings.TrimSpace(s)}
}

// SplitURL strips an optional trailing #rev segment from a reference,
// returning the bare URL part. Used by backend URL-ownership tests, which
// operate on the URL alone.
func SplitURL(s string) (url, rev string, ok bool) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), `\`, "/")
	m := reURLRef.FindStringSubmatch(clean)
	if m == nil {
		return "", "", false
	}
	return m[1], m[3], true
}

// IsGitURL reports whether the backend-specific git grammar owns the URL.
// The hosted Bitbucket shape is excluded: backend URL ownership is mutually
// exclusive across backends.
func IsGitURL(url string) bool {
	return reGitURL.MatchString(url) && !reHostedURL.MatchString(url)
}

// IsHgURL reports whether the Mercurial grammar owns the URL, including the
// hosted Bitbucket shape.
func IsHgURL(url string) bool {
	return reHgURL.MatchString(url) || reHostedURL.MatchString(url)
}

// canonCache memoizes Canonical results. Canonicalization is a pure
// function re-run once per reference per traversal, so a small LRU keeps
// deep trees from re-matching the same URLs.
var canonCache *lru.Cache[string, string]

func init() {
	canonCache, _ = lru.New[string, string](256) //nolint:errcheck // only fails for size <= 0
}

// Canonical rewrites a matched URL to the requested output protocol
// ("ssh", "http" or "https"; empty defaults to https). Unmatched locators
// pass through unchanged. Canonical is idempotent per target protocol.
func Canonical(url, protocol string) string {
	key := url + "\x00" + protocol
	if v, ok := canonCache.Get(key); ok {
		return v
	}
	out := canonicalize(url, protocol)
	canonCache.Add(key, out)
	return out
}

func canonicalize(url, protocol string) string {
	if m := reHostedURL.FindStringSubmatch(url); m != nil {
		// The hosted service speaks http(s) only; ssh requests fall back
		// to https.
		scheme := "https"
		if protocol == ProtocolHTTP {
			scheme = "http"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, m[2], m[3], m[4])
	}

	if m := reGitURL.FindStringSubmatch(url); m != nil {
		host, path := m[2], m[3]
		switch protocol {
		case ProtocolSSH:
			return fmt.Sprintf("ssh://%s/%s.git", host, path)
		case ProtocolHTTP:
			return fmt.Sprintf("http://%s/%s", host, path)
		default:
			return fmt.Sprintf("https://%s/%s", host, path)
		}
	}

	if reHgURL.MatchString(url) {
		// Generic hg URLs keep their host and full path; only the scheme
		// is rewritten.
		rest := url[strings.Index(url, "://")+len("://"):]
		switch protocol {
		case ProtocolSSH:
			return "ssh://" + rest
		case ProtocolHTTP:
			return "http://" + rest
		default:
			return "https://" + rest
		}
	}

	return url
}

func baseName(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
