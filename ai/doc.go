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

// Package ai provides the abstraction over the structured extraction
// service used to turn document chunks into profile fields and categorized
// entries.
//
// The core pipeline depends only on the Extractor and Provider interfaces
// defined here, never on a concrete backend. Two implementation
// sub-packages exist:
//
//   - ai/openai: production implementation against OpenAI-compatible chat
//     APIs via langchaingo
//   - ai/mock: test doubles for unit testing without a live service
//
// Public constructors in implementation packages return the interface
// types from this package to prevent coupling to backend specifics; mock
// constructors return concrete types so tests can inject behavior and make
// assertions.
//
// An Extractor treats the underlying service as slow and unreliable: each
// call is bounded by a timeout and retried once after a fixed delay. What
// happens when the retry also fails is the caller's decision: the
// ingestion pipeline degrades the failed chunk to an empty extraction so a
// single bad chunk never fails a whole import.
package ai
