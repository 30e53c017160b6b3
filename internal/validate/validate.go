// Package validate contains the input shape checks of both services.
// Every function is pure and answers with a bool.
package validate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MinPassword    = 6
	ShortCodeLen   = 6
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	urlPattern = regexp.MustCompile(
		`(?i)^https?://` +
			`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
			`localhost|` +
			`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
			`(?::\d+)?` +
			`(?:/?|[/?]\S+)$`,
	)

	shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)
)

// Name reports whether s has between 1 and 100 characters once surrounding whitespace is trimmed.
func Name(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 1 && n <= MaxNameLength
}

func Email(s string) bool {
	if s == "" || len(s) > MaxEmailLength {
		return false
	}
	return emailPattern.MatchString(s)
}

func Password(s string) bool {
	return utf8.RuneCountInString(s) >= MinPassword
}

// UserID reports whether s is a positive integer.
func UserID(s string) bool {
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id > 0
}

// URL accepts absolute http/https URLs with a dotted domain, localhost or a
// dotted-quad host, an optional port and an optional path or query.
// Only the scheme and host are parsed, so malformed escapes in the path are accepted.
func URL(s string) bool {
	if s == "" || !urlPattern.MatchString(s) {
		return false
	}
	u, err := url.Parse(schemeAndHost(s))
	return err == nil && u.Scheme != "" && u.Host != ""
}

func schemeAndHost(s string) string {
	scheme, rest, found := strings.Cut(s, "://")
	if !found {
		return s
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + "://" + rest
}

// ShortCode reports whether s is exactly six ASCII letters or digits.
func ShortCode(s string) bool {
	return shortCodePattern.MatchString(s)
}
