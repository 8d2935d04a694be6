package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	var tests = []struct {
		name     string
		now      time.Time
		interval time.Duration
		want     time.Duration
	}{
		{
			name:     "mid quarter",
			now:      time.Date(2024, 1, 1, 10, 7, 30, 0, time.UTC),
			interval: 15 * time.Minute,
			want:     7*time.Minute + 30*time.Second,
		},
		{
			name:     "exactly on mark",
			now:      time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC),
			interval: 15 * time.Minute,
			want:     15 * time.Minute,
		},
		{
			name:     "hourly",
			now:      time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			interval: time.Hour,
			want:     time.Minute,
		},
		{
			name:     "just before mark",
			now:      time.Date(2024, 1, 1, 10, 4, 59, 0, time.UTC),
			interval: 5 * time.Minute,
			want:     time.Second,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextDelay(tt.now, tt.interval))
		})
	}
}
