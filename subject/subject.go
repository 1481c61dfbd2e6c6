// Package subject validates NATS-style dot-delimited subjects and matches
// them against filters carrying the `*` (single token) and `>` (multi-token
// tail) wildcards. A real broker does this matching server-side (spec.md
// §4.B tie-break 2); this package exists for the in-process mock broker
// test double and for local validation before a PUB is ever sent.
package subject

import (
	"strings"
	"unicode/utf8"
)

// ValidationError reports why a subject or filter failed validation.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string { return e.message }

const maxLength = 65535

// Validate checks a literal publish subject: non-empty, valid UTF-8, within
// length limits, free of wildcards and whitespace.
func Validate(subj string) error {
	if len(subj) == 0 {
		return &ValidationError{"subject cannot be empty"}
	}
	if len(subj) > maxLength {
		return &ValidationError{"subject exceeds maximum length"}
	}
	if !utf8.ValidString(subj) {
		return &ValidationError{"subject contains invalid UTF-8"}
	}
	for i := 0; i < len(subj); i++ {
		switch subj[i] {
		case '*', '>':
			return &ValidationError{"subject cannot contain wildcard characters"}
		case ' ', '\t', '\r', '\n', 0:
			return &ValidationError{"subject cannot contain whitespace or null characters"}
		}
	}
	return nil
}

// ValidateFilter checks a subscription filter, which may carry `*` (must
// occupy an entire token) and `>` (must occupy the entire last token).
func ValidateFilter(filter string) error {
	if len(filter) == 0 {
		return &ValidationError{"filter cannot be empty"}
	}
	if len(filter) > maxLength {
		return &ValidationError{"filter exceeds maximum length"}
	}
	if !utf8.ValidString(filter) {
		return &ValidationError{"filter contains invalid UTF-8"}
	}

	tokens := splitTokens(filter)
	for i, tok := range tokens {
		if tok == "" {
			return &ValidationError{"filter cannot contain an empty token"}
		}
		if strings.ContainsRune(tok, '>') && tok != ">" {
			return &ValidationError{"'>' must occupy its entire token"}
		}
		if tok == ">" && i != len(tokens)-1 {
			return &ValidationError{"'>' must be the last token in the filter"}
		}
		if strings.ContainsRune(tok, '*') && tok != "*" {
			return &ValidationError{"'*' must occupy its entire token"}
		}
	}
	return nil
}

func splitTokens(s string) []string { return strings.Split(s, ".") }

// Match reports whether subj satisfies filter, honoring `*` as a
// single-token wildcard and `>` as a multi-token tail wildcard.
func Match(filter, subj string) bool {
	if filter == subj {
		return true
	}
	return matchTokens(splitTokens(filter), splitTokens(subj))
}

func matchTokens(filterTokens, subjTokens []string) bool {
	fi, si := 0, 0
	for fi < len(filterTokens) && si < len(subjTokens) {
		ft := filterTokens[fi]
		if ft == ">" {
			return true
		}
		if ft == "*" {
			fi++
			si++
			continue
		}
		if ft != subjTokens[si] {
			return false
		}
		fi++
		si++
	}
	if fi < len(filterTokens) {
		return len(filterTokens)-fi == 1 && filterTokens[fi] == ">"
	}
	return si == len(subjTokens)
}
