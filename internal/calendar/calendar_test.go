// README: Calendar rule tests.
package calendar

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsOperatingDate(t *testing.T) {
	c, err := New([]string{"2026-09-02"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		when string
		want bool
	}{
		{"2026-08-31 09:00", true},  // Monday
		{"2026-09-04 09:00", true},  // Friday
		{"2026-09-05 09:00", false}, // Saturday
		{"2026-09-06 09:00", false}, // Sunday
		{"2026-09-02 09:00", false}, // Wednesday, holiday
	}
	for _, tc := range cases {
		if got := c.IsOperatingDate(date(tc.when)); got != tc.want {
			t.Errorf("IsOperatingDate(%s) = %v, want %v", tc.when, got, tc.want)
		}
	}
}

func TestShouldSettle(t *testing.T) {
	c, err := New([]string{"2026-09-02"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Tuesday run settles Monday.
	target, ok := c.ShouldSettle(date("2026-09-01 02:00"))
	if !ok {
		t.Fatal("expected Tuesday run to settle")
	}
	if target.Weekday() != time.Monday {
		t.Fatalf("expected Monday target, got %s", target.Weekday())
	}

	// Saturday run settles Friday; Sunday and Monday runs do nothing.
	if _, ok := c.ShouldSettle(date("2026-09-05 02:00")); !ok {
		t.Error("expected Saturday run to settle Friday")
	}
	if _, ok := c.ShouldSettle(date("2026-09-06 02:00")); ok {
		t.Error("Sunday run must not settle")
	}
	if _, ok := c.ShouldSettle(date("2026-08-31 02:00")); ok {
		t.Error("Monday run must not settle")
	}

	// Holiday run date is skipped entirely.
	if _, ok := c.ShouldSettle(date("2026-09-02 02:00")); ok {
		t.Error("holiday run must not settle")
	}
}

func TestBookingOpen(t *testing.T) {
	c, _ := New(nil, nil)
	cases := []struct {
		when string
		want bool
	}{
		{"2026-08-31 01:59", true},
		{"2026-08-31 02:00", false},
		{"2026-08-31 02:14", false},
		{"2026-08-31 02:15", true},
		{"2026-08-31 12:00", true},
	}
	for _, tc := range cases {
		if got := c.BookingOpen(date(tc.when)); got != tc.want {
			t.Errorf("BookingOpen(%s) = %v, want %v", tc.when, got, tc.want)
		}
	}
}

func TestInSession(t *testing.T) {
	c, err := New(nil, []string{"2026-06-01:2026-07-15"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.InSession(date("2026-06-15 10:00")) {
		t.Error("expected mid-session date to be in session")
	}
	if !c.InSession(date("2026-07-15 23:00")) {
		t.Error("session ranges are inclusive of the last day")
	}
	if c.InSession(date("2026-07-16 00:30")) {
		t.Error("day after session end must not be in session")
	}
}

func TestNextOperatingDate(t *testing.T) {
	c, err := New([]string{"2026-08-31"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Friday → next Tuesday (Monday is a holiday).
	got := c.NextOperatingDate(date("2026-08-28 18:00"))
	if got.Format("2006-01-02") != "2026-09-01" {
		t.Fatalf("NextOperatingDate = %s, want 2026-09-01", got.Format("2006-01-02"))
	}
}
