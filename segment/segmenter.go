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


package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunk is an ordered slice of a document. Chunks produced by Split are
// contiguous and concatenate back to the original text.
type Chunk struct {
	Text    string
	Index   int
	Total   int
	IsFirst bool
	IsLast  bool
}

// sectionHeaders is the fixed vocabulary of CV section headings recognized
// as preferred split boundaries. A heading counts when it sits alone on a
// line, optionally followed by a colon.
var sectionHeaders = regexp.MustCompile(`(?mi)^[ \t]*(` +
	`publications|peer-reviewed publications|selected publications|` +
	`education|experience|work experience|professional experience|employment|` +
	`academic appointments|appointments|` +
	`awards|honors|honours|grants|funding|fellowships|` +
	`teaching|teaching experience|presentations|invited talks|talks|posters|` +
	`research|research interests|research experience|` +
	`skills|technical skills|certifications|licenses|` +
	`service|professional service|memberships|professional memberships|` +
	`projects|volunteer experience|languages|references` +
	`)[ \t]*:?[ \t]*\r?$`)

// paragraphBreaks matches blank-line separators used for the fallback split.
var paragraphBreaks = regexp.MustCompile(`\n[ \t]*\n+`)

// Split partitions text into ordered chunks of at most maxSize characters,
// preferring section-header boundaries, then paragraph breaks, and finally
// hard cuts for paragraphs that alone exceed the limit. The output is never
// empty for non-empty input, and concatenating the chunk texts in order
// reproduces the input exactly.
func Split(text string, maxSize int) []Chunk {
	if text == "" {
		return nil
	}
	if maxSize <= 0 || utf8.RuneCountInString(text) <= maxSize {
		return finalize([]string{text})
	}

	units := make([]string, 0, 16)
	for _, section := range splitAtHeaders(text) {
		units = append(units, splitOversized(section, maxSize)...)
	}

	chunks := accumulate(units, maxSize)
	if len(chunks) == 0 {
		// All splitting produced nothing usable; emit the whole text.
		return finalize([]string{text})
	}
	return finalize(chunks)
}

// SplitWithOverlap behaves like Split but carries a trailing portion of each
// chunk into the start of the next one. The carryover trades a bounded amount
// of duplicate extraction work for fewer entries lost at cut points; the
// dedup key gate absorbs the duplicates at persistence time. Reassembly is
// not exact in this mode.
func SplitWithOverlap(text string, maxSize, overlap int) []Chunk {
	if overlap <= 0 || overlap >= maxSize {
		return Split(text, maxSize)
	}

	base := Split(text, maxSize-overlap)
	if len(base) <= 1 {
		return base
	}

	texts := make([]string, len(base))
	texts[0] = base[0].Text
	for i := 1; i < len(base); i++ {
		texts[i] = tail(base[i-1].Text, overlap) + base[i].Text
	}
	return finalize(texts)
}

// splitAtHeaders cuts text at each recognized section heading. Each section
// starts with its heading; text before the first heading forms its own
// section. With no headings at all, the whole text is one section.
func splitAtHeaders(text string) []string {
	matches := sectionHeaders.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var sections []string
	prev := 0
	for _, m := range matches {
		if m[0] > prev {
			sections = append(sections, text[prev:m[0]])
		}
		prev = m[0]
	}
	sections = append(sections, text[prev:])
	return sections
}

// splitOversized breaks a single semantic unit that exceeds maxSize into
// paragraph-bounded pieces, hard-cutting any paragraph that alone exceeds
// the limit. Units within the limit pass through unchanged.
func splitOversized(section string, maxSize int) []string {
	if utf8.RuneCountInString(section) <= maxSize {
		return []string{section}
	}

	var units []string
	for _, para := range splitAtParagraphs(section) {
		if utf8.RuneCountInString(para) <= maxSize {
			units = append(units, para)
			continue
		}
		units = append(units, hardSplit(para, maxSize)...)
	}
	return units
}

// splitAtParagraphs cuts text after each blank-line run, so separators stay
// attached to the paragraph they follow and the pieces cover the input.
func splitAtParagraphs(text string) []string {
	breaks := paragraphBreaks.FindAllStringIndex(text, -1)
	if len(breaks) == 0 {
		return []string{text}
	}

	var paras []string
	prev := 0
	for _, m := range breaks {
		paras = append(paras, text[prev:m[1]])
		prev = m[1]
	}
	if prev < len(text) {
		paras = append(paras, text[prev:])
	}
	return paras
}

// hardSplit cuts text into pieces of at most maxSize characters with no
// regard for boundaries. Last resort for a single oversized paragraph.
func hardSplit(text string, maxSize int) []string {
	var pieces []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// accumulate greedily packs consecutive units into chunks of at most maxSize
// characters, flushing the running buffer whenever the next unit would
// overflow it.
func accumulate(units []string, maxSize int) []string {
	var chunks []string
	var buf strings.Builder
	bufLen := 0

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		if bufLen > 0 && bufLen+unitLen > maxSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(unit)
		bufLen += unitLen
	}
	if bufLen > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// finalize wraps chunk texts with ordering metadata.
func finalize(texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			Text:    text,
			Index:   i,
			Total:   len(texts),
			IsFirst: i == 0,
			IsLast:  i == len(texts)-1,
		}
	}
	return chunks
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
