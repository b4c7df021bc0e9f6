package tutorial

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/repositories"
)

// Tracker decides when the first-use tutorial should be shown,
// based on when it was last dismissed.
type Tracker struct {
	store    repositories.Store
	interval time.Duration
}

type NewTrackerOptions struct {
	Store repositories.Store
	// Interval defaults to constants.TutorialInterval
	Interval time.Duration
}

func NewTracker(opts NewTrackerOptions) *Tracker {
	interval := opts.Interval
	if interval <= 0 {
		interval = constants.TutorialInterval
	}
	return &Tracker{
		store:    opts.Store,
		interval: interval,
	}
}

// ShouldShow reports whether the tutorial is due: on the first visit,
// or when the last dismissal is at least the interval ago.
func (t *Tracker) ShouldShow(ctx context.Context, now time.Time) bool {
	if t.store == nil {
		return false
	}
	raw, err := t.store.Get(ctx, constants.LastVisitKey)
	if err != nil {
		if repositories.IsNotFound(err) {
			return true
		}
		log.Warn("Failed to check last visit: %v", err)
		return false
	}
	if raw == "" {
		return true
	}
	lastVisit, ok := parseLeadingInt(raw)
	if !ok {
		log.Debug("Unreadable last visit value %q", raw)
		return false
	}
	elapsed := now.UnixMilli() - lastVisit
	return elapsed >= t.interval.Milliseconds()
}

// Dismiss records now as the last visit.
func (t *Tracker) Dismiss(ctx context.Context, now time.Time) {
	if t.store == nil {
		return
	}
	if err := t.store.Set(ctx, constants.LastVisitKey, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		log.Warn("Failed to save last visit time: %v", err)
	}
}

// Delay is how long a UI should wait before showing a due tutorial.
func (t *Tracker) Delay() time.Duration {
	return constants.TutorialDelay
}

// parseLeadingInt reads an optionally signed run of leading decimal digits,
// ignoring surrounding whitespace and anything after the digits.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
