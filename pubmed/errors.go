package pubmed

import "errors"

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrEntryRepositoryRequired is returned when an entry repository is not provided.
	ErrEntryRepositoryRequired = errors.New("entry repository required")

	// ErrCandidateRepositoryRequired is returned when a candidate repository is not provided.
	ErrCandidateRepositoryRequired = errors.New("candidate repository required")

	// ErrSubscriptionRepositoryRequired is returned when a subscription repository is not provided.
	ErrSubscriptionRepositoryRequired = errors.New("subscription repository required")

	// ErrRequestFailed is returned when an E-utilities call fails after retries.
	ErrRequestFailed = errors.New("pubmed request failed")

	// ErrBadResponse is returned when an E-utilities response can't be decoded.
	ErrBadResponse = errors.New("malformed pubmed response")
)
