package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/vitaeworks/vitae/ai"
)

// MockExtractor is a test double for ai.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, uses a simple default line-based extraction.
	ExtractFunc func(ctx context.Context, text string) (*ai.Extraction, error)

	// The pipeline extracts batched chunks from concurrent goroutines.
	callCount atomic.Int64
}

// NewMockExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract produces a deterministic extraction from text.
// Default behavior: lines of the form "SECTION: title" become entries under
// category SECTION; other non-empty lines become entries in a "General"
// category; a line starting with "Name:" sets the profile name.
func (m *MockExtractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, text)
	}

	result := &ai.Extraction{}
	categories := map[string]int{} // name -> index in result.Categories

	appendEntry := func(category, title string) {
		idx, ok := categories[category]
		if !ok {
			idx = len(result.Categories)
			categories[category] = idx
			result.Categories = append(result.Categories, ai.ExtractedCategory{Name: category})
		}
		result.Categories[idx].Entries = append(result.Categories[idx].Entries,
			ai.ExtractedEntry{Title: title})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			if result.Profile.Name == "" {
				result.Profile.Name = strings.TrimSpace(name)
			}
			continue
		}

		if category, title, found := strings.Cut(line, ":"); found {
			category = strings.TrimSpace(category)
			title = strings.TrimSpace(title)
			if category != "" && title != "" {
				appendEntry(category, title)
				continue
			}
		}

		appendEntry("General", line)
	}

	return result, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFunc = nil
}
