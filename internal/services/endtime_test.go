package services

import (
	"errors"
	"testing"
	"time"
)

func TestCombineEndTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		lotDate string
		lotTime string
		want    time.Time
		wantErr bool
	}{
		{
			name:    "valid components",
			lotDate: "15.07.2025",
			lotTime: "18:30",
			want:    time.Date(2025, 7, 15, 18, 30, 0, 0, time.Local),
		},
		{
			name:    "single digit day and month",
			lotDate: "5.7.2025",
			lotTime: "08:05",
			want:    time.Date(2025, 7, 5, 8, 5, 0, 0, time.Local),
		},
		{
			name:    "day and month out of range",
			lotDate: "32.13.2024",
			lotTime: "10:00",
			wantErr: true,
		},
		{
			name:    "non-numeric component",
			lotDate: "aa.07.2025",
			lotTime: "18:30",
			wantErr: true,
		},
		{
			name:    "hour out of range",
			lotDate: "15.07.2025",
			lotTime: "25:00",
			wantErr: true,
		},
		{
			name:    "missing time separator",
			lotDate: "15.07.2025",
			lotTime: "1830",
			wantErr: true,
		},
		{
			name:    "wrong date shape",
			lotDate: "2025-07-15",
			lotTime: "18:30",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineEndTime(tt.lotDate, tt.lotTime, now)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
				}
				if !got.Equal(now) {
					t.Fatalf("malformed input must fall back to now, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}
