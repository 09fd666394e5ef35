// Package slug derives URL-safe identifiers from free-text titles. The
// transform is pure and idempotent; uniqueness against a data store is a
// separate step so the transform stays testable on its own.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// Fallback is returned for empty or whitespace-only input.
const Fallback = "untitled"

// MaxLength caps the generated slug length.
const MaxLength = 200

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make derives a lowercase, URL-safe slug from a title. Output contains
// only [a-z0-9-], never starts or ends with a hyphen, and is at most
// MaxLength characters.
func Make(title string) string {
	if strings.TrimSpace(title) == "" {
		return Fallback
	}

	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}

	// Input made of stripped characters only collapses to nothing.
	if s == "" {
		return Fallback
	}

	return s
}

// EnsureUnique disambiguates a candidate slug against an existence check
// by appending -1, -2, ... until exists reports false. Callers performing
// an update must make exists exclude the entity's own id.
func EnsureUnique(candidate string, exists func(string) (bool, error)) (string, error) {
	taken, err := exists(candidate)
	if err != nil {
		return "", err
	}

	final := candidate
	for counter := 1; taken; counter++ {
		final = fmt.Sprintf("%s-%d", candidate, counter)
		taken, err = exists(final)
		if err != nil {
			return "", err
		}
	}

	return final, nil
}
