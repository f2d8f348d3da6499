package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *Entry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &Entry{
				Title:      "Conference talk",
				SourceType: SourceCVImport,
			},
			wantErr: nil,
		},
		{
			name: "valid entry with ID 0",
			entry: &Entry{
				Id:    0,
				Title: "Paper",
			},
			wantErr: nil,
		},
		{
			name: "valid entry with empty optional fields",
			entry: &Entry{
				Title:       "Paper",
				Description: "",
				Date:        "",
				Location:    "",
				URL:         "",
			},
			wantErr: nil,
		},
		{
			name:    "empty title",
			entry:   &Entry{Title: ""},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJobTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    JobStatus
		to      JobStatus
		wantErr error
	}{
		{"queued to active", JobQueued, JobActive, nil},
		{"queued to failed", JobQueued, JobFailed, nil},
		{"active to completed", JobActive, JobCompleted, nil},
		{"active to failed", JobActive, JobFailed, nil},
		{"queued to completed skips active", JobQueued, JobCompleted, ErrInvalidTransition},
		{"completed is terminal", JobCompleted, JobActive, ErrInvalidTransition},
		{"failed is terminal", JobFailed, JobQueued, ErrInvalidTransition},
		{"unknown status", JobStatus(42), JobActive, ErrInvalidJobStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateJobTransition() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateJobTransition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionDue(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{
			name: "never checked is due",
			sub:  Subscription{Frequency: FrequencyDaily},
			want: true,
		},
		{
			name: "daily checked an hour ago",
			sub:  Subscription{Frequency: FrequencyDaily, LastCheckedAt: now.Add(-time.Hour)},
			want: false,
		},
		{
			name: "daily checked 25h ago",
			sub:  Subscription{Frequency: FrequencyDaily, LastCheckedAt: now.Add(-25 * time.Hour)},
			want: true,
		},
		{
			name: "weekly checked 6 days ago",
			sub:  Subscription{Frequency: FrequencyWeekly, LastCheckedAt: now.Add(-6 * 24 * time.Hour)},
			want: false,
		},
		{
			name: "monthly checked 31 days ago",
			sub:  Subscription{Frequency: FrequencyMonthly, LastCheckedAt: now.Add(-31 * 24 * time.Hour)},
			want: true,
		},
		{
			name: "unknown frequency defaults to weekly",
			sub:  Subscription{Frequency: "fortnightly", LastCheckedAt: now.Add(-8 * 24 * time.Hour)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.Due(now); got != tt.want {
				t.Errorf("Due() = %v, want %v", got, tt.want)
			}
		})
	}
}
