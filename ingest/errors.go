package ingest

import "errors"

var (
	// ErrCategoryRepositoryRequired is returned when a category repository is not provided.
	ErrCategoryRepositoryRequired = errors.New("category repository required")

	// ErrEntryRepositoryRequired is returned when an entry repository is not provided.
	ErrEntryRepositoryRequired = errors.New("entry repository required")

	// ErrJobRepositoryRequired is returned when a job repository is not provided.
	ErrJobRepositoryRequired = errors.New("job repository required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrEmptyDocument is returned when a job is submitted with no text.
	ErrEmptyDocument = errors.New("empty document")

	// ErrOwnerRequired is returned when a job is submitted without an owner.
	ErrOwnerRequired = errors.New("owner required")
)
