// README: Operating calendar: weekday service, holidays, exam sessions, nightly blackout.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// The nightly settlement job owns this window; bookings are refused while it
// may be running.
var (
	blackoutStart = 2 * time.Hour
	blackoutEnd   = 2*time.Hour + 15*time.Minute
)

type Range struct {
	From time.Time
	To   time.Time
}

type Calendar struct {
	holidays map[string]struct{}
	sessions []Range
}

// New parses holiday dates ("2006-01-02") and exam session ranges
// ("2006-01-02:2006-01-02", inclusive).
func New(holidays []string, sessions []string) (*Calendar, error) {
	c := &Calendar{holidays: make(map[string]struct{})}
	for _, h := range holidays {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, h); err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h, err)
		}
		c.holidays[h] = struct{}{}
	}
	for _, s := range sessions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("session %q: want from:to", s)
		}
		from, err := time.Parse(dateLayout, parts[0])
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", s, err)
		}
		to, err := time.Parse(dateLayout, parts[1])
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", s, err)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("session %q: inverted range", s)
		}
		c.sessions = append(c.sessions, Range{From: from, To: to})
	}
	return c, nil
}

// IsOperatingDate reports whether trips run on the given date
// (Monday through Friday, excluding holidays).
func (c *Calendar) IsOperatingDate(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[t.Format(dateLayout)]
	return !holiday
}

// InSession reports whether the date falls inside an exam session range.
func (c *Calendar) InSession(t time.Time) bool {
	day, _ := time.Parse(dateLayout, t.Format(dateLayout))
	for _, r := range c.sessions {
		if !day.Before(r.From) && !day.After(r.To) {
			return true
		}
	}
	return false
}

// BookingOpen reports whether reservations are accepted at the given time.
// The nightly settlement window is closed to bookings.
func (c *Calendar) BookingOpen(t time.Time) bool {
	sinceMidnight := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute
	return sinceMidnight < blackoutStart || sinceMidnight >= blackoutEnd
}

// ShouldSettle reports whether the nightly job run at `now` should process
// a day, and which date it settles (yesterday relative to the run). The job
// runs after midnight, so valid run days are Tuesday through Saturday, and
// holiday run dates are skipped entirely.
func (c *Calendar) ShouldSettle(now time.Time) (time.Time, bool) {
	wd := now.Weekday()
	if wd == time.Sunday || wd == time.Monday {
		return time.Time{}, false
	}
	if _, holiday := c.holidays[now.Format(dateLayout)]; holiday {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -1), true
}

// NextOperatingDate walks forward from tomorrow to the first operating date.
func (c *Calendar) NextOperatingDate(now time.Time) time.Time {
	d := now.AddDate(0, 0, 1)
	for !c.IsOperatingDate(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
