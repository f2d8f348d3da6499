// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	map5xvgohWFC2jQTykic6010gΞΞ = ord.NewMapSer[string, string](ord.String, ord.String)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var JobStatusMUS = jobStatusMUS{}

type jobStatusMUS struct{}

func (s jobStatusMUS) Marshal(v JobStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s jobStatusMUS) Unmarshal(bs []byte) (v JobStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = JobStatus(tmp)
	return
}

func (s jobStatusMUS) Size(v JobStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s jobStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var FrequencyMUS = frequencyMUS{}

type frequencyMUS struct{}

func (s frequencyMUS) Marshal(v Frequency, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s frequencyMUS) Unmarshal(bs []byte) (v Frequency, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Frequency(tmp)
	return
}

func (s frequencyMUS) Size(v Frequency) (size int) {
	return ord.String.Size(string(v))
}

func (s frequencyMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var CategoryMUS = categoryMUS{}

type categoryMUS struct{}

func (s categoryMUS) Marshal(v Category, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += varint.Int.Marshal(v.DisplayOrder, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s categoryMUS) Unmarshal(bs []byte) (v Category, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DisplayOrder, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s categoryMUS) Size(v Category) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.OwnerId)
	size += ord.String.Size(v.Name)
	size += varint.Int.Size(v.DisplayOrder)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s categoryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var EntryMUS = entryMUS{}

type entryMUS struct{}

func (s entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += IDMUS.Marshal(v.CategoryId, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.Date, bs[n:])
	n += ord.String.Marshal(v.Location, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.SourceType, bs[n:])
	n += ord.String.Marshal(v.SourceId, bs[n:])
	n += varint.Int.Marshal(v.DisplayOrder, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CategoryId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Date, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Location, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DisplayOrder, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entryMUS) Size(v Entry) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.OwnerId)
	size += IDMUS.Size(v.CategoryId)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.Date)
	size += ord.String.Size(v.Location)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.SourceType)
	size += ord.String.Size(v.SourceId)
	size += varint.Int.Size(v.DisplayOrder)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s entryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var JobMUS = jobMUS{}

type jobMUS struct{}

func (s jobMUS) Marshal(v Job, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += JobStatusMUS.Marshal(v.Status, bs[n:])
	n += varint.Int.Marshal(v.Progress, bs[n:])
	n += varint.Int.Marshal(v.CreatedCount, bs[n:])
	n += varint.Int.Marshal(v.SkippedCount, bs[n:])
	n += ord.String.Marshal(v.Error, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s jobMUS) Unmarshal(bs []byte) (v Job, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = JobStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Progress, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SkippedCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s jobMUS) Size(v Job) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.OwnerId)
	size += JobStatusMUS.Size(v.Status)
	size += varint.Int.Size(v.Progress)
	size += varint.Int.Size(v.CreatedCount)
	size += varint.Int.Size(v.SkippedCount)
	size += ord.String.Size(v.Error)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s jobMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = JobStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var PendingCandidateMUS = pendingCandidateMUS{}

type pendingCandidateMUS struct{}

func (s pendingCandidateMUS) Marshal(v PendingCandidate, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.Date, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.SourceType, bs[n:])
	n += ord.String.Marshal(v.ExternalId, bs[n:])
	n += ord.String.Marshal(v.Confidence, bs[n:])
	n += ord.String.Marshal(v.Status, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s pendingCandidateMUS) Unmarshal(bs []byte) (v PendingCandidate, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Date, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExternalId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s pendingCandidateMUS) Size(v PendingCandidate) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.OwnerId)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.Date)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.SourceType)
	size += ord.String.Size(v.ExternalId)
	size += ord.String.Size(v.Confidence)
	size += ord.String.Size(v.Status)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s pendingCandidateMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var SubscriptionMUS = subscriptionMUS{}

type subscriptionMUS struct{}

func (s subscriptionMUS) Marshal(v Subscription, bs []byte) (n int) {
	n = IDMUS.Marshal(v.OwnerId, bs)
	n += ord.String.Marshal(v.AuthorQuery, bs[n:])
	n += FrequencyMUS.Marshal(v.Frequency, bs[n:])
	n += ord.Bool.Marshal(v.Notify, bs[n:])
	n += ord.String.Marshal(v.Contact, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.LastCheckedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s subscriptionMUS) Unmarshal(bs []byte) (v Subscription, n int, err error) {
	v.OwnerId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.AuthorQuery, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Frequency, n1, err = FrequencyMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Notify, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Contact, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LastCheckedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s subscriptionMUS) Size(v Subscription) (size int) {
	size = IDMUS.Size(v.OwnerId)
	size += ord.String.Size(v.AuthorQuery)
	size += FrequencyMUS.Size(v.Frequency)
	size += ord.Bool.Size(v.Notify)
	size += ord.String.Size(v.Contact)
	size += raw.TimeUnixMicro.Size(v.LastCheckedAt)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s subscriptionMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = FrequencyMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ActivityRecordMUS = activityRecordMUS{}

type activityRecordMUS struct{}

func (s activityRecordMUS) Marshal(v ActivityRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.OwnerId, bs[n:])
	n += ord.String.Marshal(v.Type, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += map5xvgohWFC2jQTykic6010gΞΞ.Marshal(v.Metadata, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s activityRecordMUS) Unmarshal(bs []byte) (v ActivityRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.OwnerId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = map5xvgohWFC2jQTykic6010gΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s activityRecordMUS) Size(v ActivityRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.OwnerId)
	size += ord.String.Size(v.Type)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Description)
	size += map5xvgohWFC2jQTykic6010gΞΞ.Size(v.Metadata)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s activityRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = map5xvgohWFC2jQTykic6010gΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
