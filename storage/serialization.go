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


package storage

import (
	"github.com/vitaeworks/vitae/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalCategory serializes a Category to bytes.
func MarshalCategory(category *core.Category) []byte {
	buf := make([]byte, core.CategoryMUS.Size(*category))
	core.CategoryMUS.Marshal(*category, buf)
	return buf
}

// UnmarshalCategory deserializes a Category from bytes.
func UnmarshalCategory(data []byte) (*core.Category, error) {
	category, _, err := core.CategoryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// MarshalEntry serializes an Entry to bytes.
func MarshalEntry(entry *core.Entry) []byte {
	buf := make([]byte, core.EntryMUS.Size(*entry))
	core.EntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (*core.Entry, error) {
	entry, _, err := core.EntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalJob serializes a Job to bytes.
func MarshalJob(job *core.Job) []byte {
	buf := make([]byte, core.JobMUS.Size(*job))
	core.JobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJob deserializes a Job from bytes.
func UnmarshalJob(data []byte) (*core.Job, error) {
	job, _, err := core.JobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalCandidate serializes a PendingCandidate to bytes.
func MarshalCandidate(candidate *core.PendingCandidate) []byte {
	buf := make([]byte, core.PendingCandidateMUS.Size(*candidate))
	core.PendingCandidateMUS.Marshal(*candidate, buf)
	return buf
}

// UnmarshalCandidate deserializes a PendingCandidate from bytes.
func UnmarshalCandidate(data []byte) (*core.PendingCandidate, error) {
	candidate, _, err := core.PendingCandidateMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// MarshalSubscription serializes a Subscription to bytes.
func MarshalSubscription(sub *core.Subscription) []byte {
	buf := make([]byte, core.SubscriptionMUS.Size(*sub))
	core.SubscriptionMUS.Marshal(*sub, buf)
	return buf
}

// UnmarshalSubscription deserializes a Subscription from bytes.
func UnmarshalSubscription(data []byte) (*core.Subscription, error) {
	sub, _, err := core.SubscriptionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// MarshalActivityRecord serializes an ActivityRecord to bytes.
func MarshalActivityRecord(record *core.ActivityRecord) []byte {
	buf := make([]byte, core.ActivityRecordMUS.Size(*record))
	core.ActivityRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalActivityRecord deserializes an ActivityRecord from bytes.
func UnmarshalActivityRecord(data []byte) (*core.ActivityRecord, error) {
	record, _, err := core.ActivityRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
