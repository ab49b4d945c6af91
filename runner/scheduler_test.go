package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, Schedule{URL: "https://example.com", Every: "24h"}.Validate())
	assert.NoError(t, Schedule{URL: "https://example.com", At: "07:30"}.Validate())

	assert.Error(t, Schedule{URL: "not-a-url", Every: "1h"}.Validate())
	assert.Error(t, Schedule{URL: "https://example.com"}.Validate())
	assert.Error(t, Schedule{URL: "https://example.com", Every: "1h", At: "07:30"}.Validate())
	assert.Error(t, Schedule{URL: "https://example.com", At: "25:00"}.Validate())
	assert.Error(t, Schedule{URL: "https://example.com", Every: "30s"}.Validate())
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1h", want: time.Hour},
		{in: "30m", want: 30 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "24h", want: 24 * time.Hour},
		{in: "0h0m", wantErr: true},
		{in: "10s", wantErr: true},
		{in: "daily", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInterval(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldRun(t *testing.T) {
	now := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)

	at := Schedule{URL: "https://example.com", At: "07:30"}
	assert.True(t, shouldRun(at, time.Time{}, now))
	assert.False(t, shouldRun(at, now.Add(-time.Minute), now))
	assert.False(t, shouldRun(at, time.Time{}, now.Add(time.Minute)))

	every := Schedule{URL: "https://example.com", Every: "1h"}
	assert.True(t, shouldRun(every, time.Time{}, now))
	assert.False(t, shouldRun(every, now.Add(-30*time.Minute), now))
	assert.True(t, shouldRun(every, now.Add(-time.Hour), now))

	assert.False(t, shouldRun(Schedule{URL: "https://example.com"}, time.Time{}, now))
}

func TestSchedulerTickTriggersDueSchedules(t *testing.T) {
	var mu sync.Mutex
	var triggered []string

	s := NewScheduler([]Schedule{
		{URL: "https://example.com/a", Every: "1h"},
		{URL: "https://example.com/b", At: "03:00"},
	}, func(_ context.Context, url string) error {
		mu.Lock()
		defer mu.Unlock()
		triggered = append(triggered, url)
		return nil
	})
	s.now = func() time.Time { return time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC) }

	s.tick(context.Background())
	s.wg.Wait()
	assert.Equal(t, []string{"https://example.com/a"}, triggered)

	// Same minute again: the interval has not elapsed
	s.tick(context.Background())
	s.wg.Wait()
	assert.Len(t, triggered, 1)
}

func TestSchedulerStartWithoutSchedules(t *testing.T) {
	s := NewScheduler(nil, func(context.Context, string) error { return nil })
	assert.NoError(t, s.Start(context.Background()))
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	s := NewScheduler([]Schedule{{URL: "https://example.com", Every: "1h"}}, func(context.Context, string) error {
		started <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("schedule was not triggered on start")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
