package logger

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// SanitizedEmail masks an operator or user address before it reaches a log
// line: the first character of the local part and the top-level domain stay
// readable ("ada@example.com" becomes "a**@*******.com").
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if first, size := utf8.DecodeRuneInString(local); size > 0 {
		local = string(first) + mask(local[size:])
	}

	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		for i := range labels[:len(labels)-1] {
			labels[i] = mask(labels[i])
		}
		domain = strings.Join(labels, ".")
	}

	return local + "@" + domain
}

func mask(s string) string {
	return strings.Repeat("*", utf8.RuneCountInString(s))
}

// sensitiveKeys are matched as substrings of lowercased query parameter names.
var sensitiveKeys = []string{"password", "token", "secret", "email", "auth"}

// SanitizeQueryString reports whether a raw query should be dropped from
// request logs. A query that does not parse is dropped too.
func SanitizeQueryString(rawQuery string) bool {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}
	for key := range values {
		key = strings.ToLower(key)
		for _, s := range sensitiveKeys {
			if strings.Contains(key, s) {
				return true
			}
		}
	}
	return false
}
