// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"strings"
	"time"
	"unicode"
)

const (
	titleKeyLength   = 100
	snippetKeyLength = 50

	// noDateToken stands in for dates that could not be parsed.
	noDateToken = "nodate"

	// keySeparator is not expected to appear in any normalized component.
	keySeparator = "|"
)

// dateLayouts are tried in order when normalizing loosely formatted dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
	"2006",
}

// DedupKey derives the composite key that identifies an entry for
// deduplication: normalized title, normalized date and a description
// snippet joined with "|". Two entries with equal keys are the same entry.
func DedupKey(title, date, description string) string {
	return NormalizeTitle(title) +
		keySeparator + NormalizeDate(date) +
		keySeparator + DescriptionSnippet(description)
}

// DedupKeyHash returns a stable 64-bit hash of the dedup key, used as an
// index key component in storage.
func DedupKeyHash(title, date, description string) ID {
	return IDFromContent(DedupKey(title, date, description))
}

// NormalizeTitle lowercases, collapses whitespace runs, trims and truncates
// the title to 100 characters.
func NormalizeTitle(title string) string {
	return truncate(collapseWhitespace(strings.ToLower(title)), titleKeyLength)
}

// NormalizeDate converts a loosely formatted date string to an ISO calendar
// date (YYYY-MM-DD). Unparseable or empty dates normalize to "nodate".
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return noDateToken
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return noDateToken
}

// DescriptionSnippet lowercases, collapses whitespace, trims and truncates
// the description to 50 characters. Empty descriptions yield the empty string.
func DescriptionSnippet(description string) string {
	return truncate(collapseWhitespace(strings.ToLower(description)), snippetKeyLength)
}

// LooseTitleKey normalizes a title for cross-source matching: lowercase,
// all non-word runes removed, whitespace collapsed. Deliberately looser
// than NormalizeTitle because titles from different systems rarely collide
// spuriously, while their punctuation rarely agrees.
func LooseTitleKey(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return collapseWhitespace(b.String())
}

// collapseWhitespace replaces runs of whitespace with single spaces and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate limits a string to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
