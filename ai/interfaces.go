package ai

import "context"

// Extractor turns a chunk of unstructured document text into structured
// profile fields and categorized entries.
// Implementations must be thread-safe for concurrent use on independent
// chunks, keep each call bounded by a timeout, and perform at most one
// internal retry for transient failures. A failure surviving the retry is
// returned as an error; callers decide how to degrade.
type Extractor interface {
	// Extract analyzes one chunk of text and returns the structured result.
	// The returned extraction may be empty when the chunk holds nothing of
	// interest; that is not an error.
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Provider aggregates extraction services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Extractor returns the structured extraction service.
	// The returned Extractor is safe for concurrent use.
	Extractor() Extractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
