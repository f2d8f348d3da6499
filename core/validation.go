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

import "fmt"

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//
// NOT validated (populated by the persistence step):
//   - ID (0 is valid from database sequences)
//   - DisplayOrder (assigned at insertion)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyTitle)
	}

	return nil
}

// ValidateCategory validates a Category according to domain rules.
func ValidateCategory(category *Category) error {
	if category == nil {
		return fmt.Errorf("%w: category is nil", ErrInvalidCategory)
	}

	if category.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCategory, ErrEmptyCategoryName)
	}

	return nil
}

// ValidateCandidate validates a PendingCandidate according to domain rules.
func ValidateCandidate(candidate *PendingCandidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyTitle)
	}

	return nil
}

// ValidateJobStatus validates that a JobStatus has a valid value.
func ValidateJobStatus(status JobStatus) error {
	switch status {
	case JobQueued, JobActive, JobCompleted, JobFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidJobStatus, status)
	}
}

// ValidateJobTransition checks that moving a job from one status to another
// is legal. Terminal states admit no transitions.
func ValidateJobTransition(from, to JobStatus) error {
	if err := ValidateJobStatus(from); err != nil {
		return err
	}
	if err := ValidateJobStatus(to); err != nil {
		return err
	}

	if from.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	switch {
	case from == JobQueued && (to == JobActive || to == JobFailed):
		return nil
	case from == JobActive && (to == JobCompleted || to == JobFailed):
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
}
