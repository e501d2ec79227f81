// Package version classifies and orders dotted-numeric image tags.
// It implements the restricted versioning dialect Deckhand uses to decide
// whether a published tag is newer than the one pinned in a manifest:
// tags matching `v?N(.N)*` are comparable, everything else (channel names,
// digests, pre-releases) is excluded from candidacy.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// semanticPattern matches the restricted dotted-numeric tag dialect,
// with an optional single leading "v".
var semanticPattern = regexp.MustCompile(`^v?[0-9]+(\.[0-9]+)*$`)

// leadingDigits extracts the numeric prefix of a version segment,
// truncating any non-numeric tail before comparison.
var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// blockedKeywords lists tag substrings that disqualify a tag from
// latest-version candidacy regardless of its shape. Matching is
// case-insensitive.
var blockedKeywords = []string{
	"latest", "main", "master", "dev", "develop",
	"nightly", "alpha", "beta", "sha256", "digest",
}

// IsSemantic reports whether tag matches the dotted-numeric pattern
// this system treats as version-comparable.
func IsSemantic(tag string) bool {
	return semanticPattern.MatchString(tag)
}

// IsBlocked reports whether tag contains a blocklisted keyword such as
// "latest" or "nightly", checked as a case-insensitive substring.
func IsBlocked(tag string) bool {
	lowered := strings.ToLower(tag)
	for _, keyword := range blockedKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}

	return false
}

// Normalize strips a single leading "v" from a tag, leaving the
// dotted-numeric portion for comparison.
func Normalize(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

// Compare orders two version strings, returning -1 if a < b, 0 if they
// are equal, and 1 if a > b.
//
// Both inputs are normalized, split on ".", and compared segment-by-segment
// as non-negative integers; the shorter sequence is padded with implicit
// zero segments, so "2.0" compares above "1.9.9" and equal to "2.0.0".
// Non-numeric trailing characters within a segment are truncated before
// comparison, defaulting to 0 when nothing numeric remains.
func Compare(a, b string) int {
	segmentsA := strings.Split(Normalize(a), ".")
	segmentsB := strings.Split(Normalize(b), ".")

	length := max(len(segmentsA), len(segmentsB))

	for i := range length {
		valueA := segmentValue(segmentsA, i)
		valueB := segmentValue(segmentsB, i)

		if valueA < valueB {
			return -1
		}

		if valueA > valueB {
			return 1
		}
	}

	return 0
}

// Latest returns the maximum comparable tag from the provided list, or
// an empty string when no candidate survives filtering. Non-semantic
// and blocklisted tags are never candidates.
func Latest(tags []string) string {
	var latest string

	for _, tag := range tags {
		if !IsSemantic(tag) || IsBlocked(tag) {
			continue
		}

		if latest == "" || Compare(tag, latest) > 0 {
			latest = tag
		}
	}

	return latest
}

// segmentValue parses the i-th segment as an integer, treating missing
// segments and fully non-numeric segments as 0.
func segmentValue(segments []string, i int) int {
	if i >= len(segments) {
		return 0
	}

	digits := leadingDigits.FindString(segments[i])
	if digits == "" {
		return 0
	}

	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}

	return value
}
