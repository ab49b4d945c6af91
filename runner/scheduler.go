package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Schedule regenerates the episode for a URL daily at a time or at an interval
type Schedule struct {
	URL   string `yaml:"url" json:"url"`
	At    string `yaml:"at,omitempty" json:"at,omitempty"`       // "HH:MM"
	Every string `yaml:"every,omitempty" json:"every,omitempty"` // "1h", "30m", "1h30m"
}

// Validate checks the URL and that exactly one of At / Every is usable
func (s Schedule) Validate() error {
	if _, err := ValidateURL(s.URL); err != nil {
		return err
	}
	switch {
	case s.At != "" && s.Every != "":
		return errors.New("set either 'at' or 'every', not both")
	case s.At != "":
		_, _, err := parseAtTime(s.At)
		return err
	case s.Every != "":
		_, err := parseInterval(s.Every)
		return err
	default:
		return errors.New("one of 'at' or 'every' is required")
	}
}

// Trigger starts one generation for a URL
type Trigger func(ctx context.Context, url string) error

// Scheduler manages automatic runs based on schedules
type Scheduler struct {
	schedules   []Schedule
	trigger     Trigger
	now         func() time.Time
	lastRuns    map[int]time.Time // track last execution per schedule
	runningJobs map[int]bool      // track currently running schedules
	mu          sync.Mutex
	wg          sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(schedules []Schedule, trigger Trigger) *Scheduler {
	return &Scheduler{
		schedules:   schedules,
		trigger:     trigger,
		now:         time.Now,
		lastRuns:    make(map[int]time.Time),
		runningJobs: make(map[int]bool),
	}
}

// Start runs the scheduler loop until ctx is done, then waits for in-flight runs
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.schedules) == 0 {
		return nil
	}

	log.Printf("📅 Scheduler started (%d schedule(s))", len(s.schedules))
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run tick immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.wg.Wait()
			log.Println("📅 Scheduler stopped")
			return nil
		}
	}
}

// tick checks all schedules and triggers runs if needed
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	for i, schedule := range s.schedules {
		s.mu.Lock()
		lastRun := s.lastRuns[i]
		isRunning := s.runningJobs[i]
		due := !isRunning && shouldRun(schedule, lastRun, now)
		if due {
			s.runningJobs[i] = true
			s.lastRuns[i] = now
		}
		s.mu.Unlock()

		if !due {
			continue
		}

		s.wg.Add(1)
		go func(key int, sched Schedule) {
			defer s.wg.Done()
			s.execute(ctx, sched)

			s.mu.Lock()
			delete(s.runningJobs, key)
			s.mu.Unlock()
		}(i, schedule)
	}
}

// execute triggers a run for the given schedule
func (s *Scheduler) execute(ctx context.Context, schedule Schedule) {
	scheduleType := schedule.At
	if scheduleType == "" {
		scheduleType = "every " + schedule.Every
	}
	log.Printf("⏰ Schedule triggered: %s (%s)", schedule.URL, scheduleType)

	if err := s.trigger(ctx, schedule.URL); err != nil {
		log.Printf("❌ Scheduled run failed for %s: %v", schedule.URL, err)
		return
	}
	log.Printf("✅ Scheduled run completed: %s", schedule.URL)
}

// shouldRun determines if a schedule should be triggered now
func shouldRun(schedule Schedule, lastRun, now time.Time) bool {
	// Time-based schedule (at: "HH:MM")
	if schedule.At != "" {
		hour, minute, err := parseAtTime(schedule.At)
		if err != nil {
			return false
		}
		// Ensure we only run once per day at this time
		return now.Hour() == hour && now.Minute() == minute &&
			(lastRun.IsZero() || now.Sub(lastRun) >= 23*time.Hour)
	}

	// Interval-based schedule (every: "1h", "30m", etc.)
	if schedule.Every != "" {
		interval, err := parseInterval(schedule.Every)
		if err != nil {
			return false
		}
		return lastRun.IsZero() || now.Sub(lastRun) >= interval
	}

	return false
}

// parseAtTime parses "HH:MM" format
func parseAtTime(at string) (hour, minute int, err error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format %q, expected HH:MM", at)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", at)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", at)
	}

	return hour, minute, nil
}

var combinedIntervalRe = regexp.MustCompile(`^(\d+)h(\d+)m$`)

// parseInterval parses duration strings like "1h", "30m", "1h30m"
func parseInterval(every string) (time.Duration, error) {
	var duration time.Duration
	if matches := combinedIntervalRe.FindStringSubmatch(every); len(matches) == 3 {
		hours, _ := strconv.Atoi(matches[1])
		minutes, _ := strconv.Atoi(matches[2])
		duration = time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	} else {
		parsed, err := time.ParseDuration(every)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q", every)
		}
		duration = parsed
	}

	if duration < time.Minute {
		return 0, fmt.Errorf("interval %q is shorter than one minute", every)
	}
	return duration, nil
}
