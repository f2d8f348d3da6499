package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// JobStatus describes where an ingestion job is in its lifecycle.
type JobStatus int

const (
	// JobQueued means the job was accepted but processing has not started.
	JobQueued JobStatus = iota + 1
	// JobActive means the job is currently being processed.
	JobActive
	// JobCompleted means the job finished successfully.
	JobCompleted
	// JobFailed means the job hit a fatal error and will not be retried.
	JobFailed
)

// String returns the lowercase name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobActive:
		return "active"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Source types recorded on entries for provenance.
const (
	SourceCVImport = "cv-import"
	SourcePubMed   = "pubmed"
)

// Candidate statuses.
const (
	CandidatePending   = "pending"
	CandidateApproved  = "approved"
	CandidateDiscarded = "discarded"
)

// Frequency is how often a subscription is reconciled against PubMed.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Window returns the minimum elapsed time before the subscription is due again.
// Unknown frequencies fall back to weekly.
func (f Frequency) Window() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 168 * time.Hour
	case FrequencyMonthly:
		return 720 * time.Hour
	default:
		return 168 * time.Hour
	}
}

// Category groups entries within one owner's record.
// DisplayOrder is dense and append-only; values are never reused after deletion.
type Category struct {
	Id           ID
	OwnerId      ID
	Name         string // casing of first insertion is preserved
	DisplayOrder int
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Entry is a dated item inside a category. Optional fields use the empty
// string as null. SourceId carries external provenance such as a PubMed PMID.
type Entry struct {
	Id           ID
	OwnerId      ID
	CategoryId   ID
	Title        string
	Description  string
	Date         string // loosely formatted, as extracted
	Location     string
	URL          string
	SourceType   string
	SourceId     string
	DisplayOrder int
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Job tracks one document ingestion run.
type Job struct {
	Id           ID
	OwnerId      ID
	Status       JobStatus
	Progress     int // 0-100, monotonically non-decreasing
	CreatedCount int
	SkippedCount int
	Error        string
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// PendingCandidate is an externally sourced record awaiting owner approval.
type PendingCandidate struct {
	Id          ID
	OwnerId     ID
	Title       string
	Description string
	Date        string
	URL         string
	SourceType  string
	ExternalId  string // empty when the source provided no identifier
	Confidence  string
	Status      string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Subscription is an owner's standing request for PubMed reconciliation.
type Subscription struct {
	OwnerId       ID
	AuthorQuery   string
	Frequency     Frequency
	Notify        bool
	Contact       string
	LastCheckedAt time.Time
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// Due reports whether enough time has elapsed since the last check.
func (s *Subscription) Due(now time.Time) bool {
	if s.LastCheckedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastCheckedAt) >= s.Frequency.Window()
}

// ActivityRecord is an append-only observability record. It is written by
// the reconciliation loop and never read back by this module.
type ActivityRecord struct {
	Id          ID
	OwnerId     ID
	Type        string
	Title       string
	Description string
	Metadata    map[string]string
	InsertedAt  time.Time
}
