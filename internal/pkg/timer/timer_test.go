package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const sessionDuration = time.Hour

func TestRemaining(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "just started",
			now:  start,
			want: time.Hour,
		},
		{
			name: "half way",
			now:  start.Add(30 * time.Minute),
			want: 30 * time.Minute,
		},
		{
			name: "exactly expired",
			now:  start.Add(time.Hour),
			want: 0,
		},
		{
			name: "past expiry clamps to zero",
			now:  start.Add(61 * time.Minute),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remaining(start, tt.now, sessionDuration)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// pause after 20 minutes
	pausedAt := start.Add(20 * time.Minute)
	snapshot := Remaining(start, pausedAt, sessionDuration)
	snapshotMs := snapshot.Milliseconds()
	assert.Equal(t, 40*time.Minute, snapshot)

	// resume 15 minutes later; countdown must continue from the snapshot
	resumedAt := pausedAt.Add(15 * time.Minute)
	newAnchor := ResumeAnchor(resumedAt, sessionDuration, snapshotMs)

	got := Remaining(newAnchor, resumedAt, sessionDuration)
	assert.InDelta(t, snapshot.Seconds(), got.Seconds(), 1.0)
}

func TestPauseResumeZeroDurationIsIdempotent(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Minute)

	before := Remaining(start, now, sessionDuration)

	// pause and resume at the same instant
	snapshotMs := before.Milliseconds()
	newAnchor := ResumeAnchor(now, sessionDuration, snapshotMs)
	after := Remaining(newAnchor, now, sessionDuration)

	assert.Equal(t, before, after)
}

func TestRemainingForSnapshot(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(50 * time.Minute)

	// paused sessions hold at their snapshot regardless of elapsed time
	got := RemainingForSnapshot(start, now, sessionDuration, true, (25 * time.Minute).Milliseconds())
	assert.Equal(t, 25*time.Minute, got)

	// negative snapshot clamps
	got = RemainingForSnapshot(start, now, sessionDuration, true, -500)
	assert.Equal(t, time.Duration(0), got)

	// running sessions count down from the anchor
	got = RemainingForSnapshot(start, now, sessionDuration, false, 0)
	assert.Equal(t, 10*time.Minute, got)
}

func TestIsExpired(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(start, start.Add(59*time.Minute), sessionDuration, false))
	assert.True(t, IsExpired(start, start.Add(61*time.Minute), sessionDuration, false))

	// paused sessions never expire
	assert.False(t, IsExpired(start, start.Add(2*time.Hour), sessionDuration, true))
}

func TestFormatMMSS(t *testing.T) {
	assert.Equal(t, "60:00", FormatMMSS(time.Hour))
	assert.Equal(t, "05:07", FormatMMSS(5*time.Minute+7*time.Second))
	assert.Equal(t, "00:59", FormatMMSS(59*time.Second+900*time.Millisecond))
	assert.Equal(t, "00:00", FormatMMSS(0))
	assert.Equal(t, "00:00", FormatMMSS(-3*time.Second))
}
