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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidCategory indicates a Category failed validation.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidCandidate indicates a PendingCandidate failed validation.
	ErrInvalidCandidate = errors.New("invalid pending candidate")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyCategoryName indicates the category Name field is empty.
	ErrEmptyCategoryName = errors.New("category name cannot be empty")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidTransition indicates an illegal job status transition.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrProgressRegression indicates job progress would decrease.
	ErrProgressRegression = errors.New("job progress cannot decrease")
)
