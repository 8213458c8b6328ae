// README: Trip aggregate, user and driver records, and the shared state shape.
package trip

import (
	"time"

	"carpool/internal/types"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionReturn   Direction = "return"
)

var Directions = []Direction{DirectionOutbound, DirectionReturn}

func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionOutbound, DirectionReturn:
		return Direction(s), true
	}
	return "", false
}

type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// WorkDays is the fixed operating week, in booking-menu order.
var WorkDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

func ParseDay(s string) (Day, bool) {
	for _, d := range WorkDays {
		if Day(s) == d {
			return d, true
		}
	}
	return "", false
}

// DayOf maps a date to its operating day; ok is false on weekends.
func DayOf(t time.Time) (Day, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	}
	return "", false
}

// Mode is the set a passenger occupies on a trip.
type Mode string

const (
	ModePermanent Mode = "permanent"
	ModeTemporary Mode = "temporary"
	ModeSuspended Mode = "suspended"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePermanent, ModeTemporary, ModeSuspended:
		return Mode(s), true
	}
	return "", false
}

type User struct {
	ID   types.ID
	Name string
	// Debit maps creditor (driver) id to cents owed. Entries are created
	// lazily and never go negative.
	Debit map[types.ID]int64
}

type Driver struct {
	ID types.ID
	// Slots is the seat capacity excluding the driver.
	Slots int
}

// Location is a transient meeting point, cleared by the nightly settlement.
type Location struct {
	Text string
	Lat  float64
	Lng  float64
}

type Trip struct {
	Time           string    // "HH:MM" departure
	Location       *Location `json:",omitempty"`
	Suspended      bool
	Permanent      []types.ID
	Temporary      []types.ID
	SuspendedUsers []types.ID
}

// Occupancy counts the seats taken by committed reservations. Suspended
// users hold no seat.
func (t *Trip) Occupancy() int {
	return len(t.Permanent) + len(t.Temporary)
}

func (t *Trip) modeOf(passenger types.ID) (Mode, bool) {
	switch {
	case contains(t.Permanent, passenger):
		return ModePermanent, true
	case contains(t.Temporary, passenger):
		return ModeTemporary, true
	case contains(t.SuspendedUsers, passenger):
		return ModeSuspended, true
	}
	return "", false
}

// Key identifies a trip: one per driver per day per direction.
type Key struct {
	Direction Direction
	Day       Day
	Driver    types.ID
}

// Info is a copied-out view of a trip, safe to use outside the store lock.
type Info struct {
	Key        Key
	Time       string
	DriverName string
	Location   *Location
	Suspended  bool
	SeatsLeft  int
	Permanent  []types.ID
	Temporary  []types.ID
	Suspendees []types.ID
}

// Booking is one entry of a passenger's reservation list.
type Booking struct {
	Key  Key
	Mode Mode
	Time string
}

func contains(ids []types.ID, id types.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []types.ID, id types.ID) []types.ID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
