// Package normalize canonicalizes free text, URLs and organization names for comparison.
//
// Every function is total: malformed or empty input yields an empty or
// best-effort result and callers decide whether empty means "skip".
package normalize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Text NFC-normalizes s, drops unprintable and control characters, collapses
// runs of whitespace to one space and trims the ends. Line breaks survive
// only when keepLineBreaks is set.
func Text(s string, keepLineBreaks bool) string {
	s = norm.NFC.String(strings.ReplaceAll(s, "\r\n", "\n"))
	if !keepLineBreaks {
		return collapse(s)
	}

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = collapse(l)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func collapse(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsGraphic(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// URL reduces a URL to its bare lower-cased host: scheme, leading "www."
// labels, path, query and fragment are dropped.
func URL(u string) string {
	host, _ := splitURL(u)
	return settleHost(host)
}

// URLWithPath is URL but keeps the percent-decoded path, without a trailing
// slash, for comparisons where the page matters.
func URLWithPath(u string) string {
	host, path := splitURL(u)
	host = settleHost(host)
	if host == "" || path == "" {
		return host
	}
	return host + "/" + path
}

// settleHost reapplies host normalization until it is stable, so decoded
// escapes that expose a scheme, separator or "www." label are handled too.
func settleHost(host string) string {
	for range 4 {
		next, _ := splitURL(host)
		if next == host {
			break
		}
		host = next
	}
	return host
}

func splitURL(raw string) (host, path string) {
	s := strings.ToLower(Text(raw, false))
	if s == "" {
		return "", ""
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "//")
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}

	host, path, _ = strings.Cut(s, "/")
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}
	host = stripPort(host)
	host = strings.TrimSuffix(strings.ToLower(collapse(DecodePercent(host))), ".")
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	path = strings.Trim(DecodePercent(path), "/")
	return host, path
}

// stripPort removes a trailing ":<digits>" from host. A bracketed IPv6
// literal keeps its colons.
func stripPort(host string) string {
	i := strings.LastIndexByte(host, ':')
	if i < 0 || strings.HasSuffix(host, "]") {
		return host
	}
	if strings.Trim(host[i+1:], "0123456789") != "" {
		return host
	}
	return host[:i]
}

// DecodePercent percent-decodes s, returning it unchanged when it is not
// valid percent-encoding.
func DecodePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// CleanName removes an inline "*lang" suffix and trims the result.
func CleanName(n string) string {
	name, _ := SplitLang(n)
	return name
}

// SplitLang separates "name*lang" into its name and language parts. The
// language is whatever follows the last '*'.
func SplitLang(n string) (name, lang string) {
	if i := strings.LastIndexByte(n, '*'); i >= 0 {
		return strings.TrimSpace(n[:i]), strings.TrimSpace(n[i+1:])
	}
	return strings.TrimSpace(n), ""
}

// HasControlChars reports whether s holds control or format characters
// other than tab and line breaks.
func HasControlChars(s string) bool {
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return true
		}
	}
	return false
}

// HasReplacementChar reports whether s carries U+FFFD, the mark of a failed decode.
func HasReplacementChar(s string) bool {
	return strings.ContainsRune(s, unicode.ReplacementChar)
}

// LooksMisencoded reports whether s looks like UTF-8 that was decoded as
// Latin-1 or Windows-1252 somewhere upstream.
func LooksMisencoded(s string) bool {
	if strings.Contains(s, "â€") {
		return true
	}
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		if (runes[i] == 'Ã' || runes[i] == 'Â') && runes[i+1] >= 0x80 && runes[i+1] <= 0xBF {
			return true
		}
	}
	return false
}

// HasSurroundingSpace reports whether s starts or ends with whitespace.
func HasSurroundingSpace(s string) bool {
	return s != strings.TrimSpace(s)
}
