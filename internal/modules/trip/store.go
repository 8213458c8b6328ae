// README: In-memory trip store: the shared mutable state and its mutation primitives.
package trip

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"carpool/internal/types"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrTripNotFound     = errors.New("trip not found")
	ErrCarFull          = errors.New("car is full")
	ErrDuplicateBooking = errors.New("passenger already booked on this trip")
	ErrNotBooked        = errors.New("passenger not booked on this trip")
	ErrBadRequest       = errors.New("bad request")
)

// State is the whole engine state. Persistence collaborators move it around
// as one opaque blob via Snapshot/Restore.
type State struct {
	Users   map[types.ID]*User
	Drivers map[types.ID]*Driver
	Trips   map[Direction]map[Day]map[types.ID]*Trip
}

// Store wraps State behind a single mutex. Every capacity check and the
// mutation it guards run inside one Update call, which is what keeps the
// occupancy invariant true under concurrent handlers.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	s := &Store{}
	s.state.init()
	return s
}

func (st *State) init() {
	if st.Users == nil {
		st.Users = make(map[types.ID]*User)
	}
	if st.Drivers == nil {
		st.Drivers = make(map[types.ID]*Driver)
	}
	if st.Trips == nil {
		st.Trips = make(map[Direction]map[Day]map[types.ID]*Trip)
	}
	for _, dir := range Directions {
		if st.Trips[dir] == nil {
			st.Trips[dir] = make(map[Day]map[types.ID]*Trip)
		}
		for _, day := range WorkDays {
			if st.Trips[dir][day] == nil {
				st.Trips[dir][day] = make(map[types.ID]*Trip)
			}
		}
	}
	for _, u := range st.Users {
		if u.Debit == nil {
			u.Debit = make(map[types.ID]int64)
		}
	}
}

// Update runs fn exclusively over the state. A returned error aborts nothing
// by itself: fn must not leave partial mutations behind on failure paths.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// View runs fn under a shared lock; fn must not mutate and must not retain
// references past its return.
func (s *Store) View(fn func(*State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// Snapshot serializes the whole state.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(&s.state)
}

// Restore replaces the whole state with a previously snapshotted blob.
func (s *Store) Restore(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	st.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return nil
}

// --- state accessors (callers hold the store lock via Update/View) ---

func (st *State) User(id types.ID) (*User, error) {
	u, ok := st.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (st *State) Driver(id types.ID) (*Driver, error) {
	d, ok := st.Drivers[id]
	if !ok {
		return nil, ErrDriverNotFound
	}
	return d, nil
}

func (st *State) Trip(key Key) (*Trip, error) {
	t, ok := st.Trips[key.Direction][key.Day][key.Driver]
	if !ok {
		return nil, ErrTripNotFound
	}
	return t, nil
}

// PutTrip creates the trip, or destructively replaces an existing one
// (dropping its passengers — the caller confirms with the driver first).
// It reports whether a previous trip was overwritten.
func (st *State) PutTrip(key Key, departure string) (bool, error) {
	if _, ok := st.Drivers[key.Driver]; !ok {
		return false, ErrDriverNotFound
	}
	_, replaced := st.Trips[key.Direction][key.Day][key.Driver]
	st.Trips[key.Direction][key.Day][key.Driver] = &Trip{
		Time:           departure,
		Permanent:      []types.ID{},
		Temporary:      []types.ID{},
		SuspendedUsers: []types.ID{},
	}
	return replaced, nil
}

func (st *State) DeleteTrip(key Key) error {
	if _, ok := st.Trips[key.Direction][key.Day][key.Driver]; !ok {
		return ErrTripNotFound
	}
	delete(st.Trips[key.Direction][key.Day], key.Driver)
	return nil
}

// AddPassenger commits a reservation. It re-validates capacity and
// duplication at the moment of the commit; the earlier pre-check may be
// arbitrarily stale by the time the driver confirms.
func (st *State) AddPassenger(key Key, mode Mode, passenger types.ID) error {
	if mode != ModePermanent && mode != ModeTemporary {
		return ErrBadRequest
	}
	t, err := st.Trip(key)
	if err != nil {
		return err
	}
	d, err := st.Driver(key.Driver)
	if err != nil {
		return err
	}
	// The passenger may have deleted their account while the request sat
	// unanswered in the driver's keyboard.
	if _, err := st.User(passenger); err != nil {
		return err
	}
	if _, booked := t.modeOf(passenger); booked {
		return ErrDuplicateBooking
	}
	if t.Occupancy() >= d.Slots {
		return ErrCarFull
	}
	if mode == ModePermanent {
		t.Permanent = append(t.Permanent, passenger)
	} else {
		t.Temporary = append(t.Temporary, passenger)
	}
	return nil
}

// RemovePassenger drops the passenger from whichever set holds them and
// reports which one that was.
func (st *State) RemovePassenger(key Key, passenger types.ID) (Mode, error) {
	t, err := st.Trip(key)
	if err != nil {
		return "", err
	}
	mode, ok := t.modeOf(passenger)
	if !ok {
		return "", ErrNotBooked
	}
	switch mode {
	case ModePermanent:
		t.Permanent = remove(t.Permanent, passenger)
	case ModeTemporary:
		t.Temporary = remove(t.Temporary, passenger)
	case ModeSuspended:
		t.SuspendedUsers = remove(t.SuspendedUsers, passenger)
	}
	return mode, nil
}

// SuspendPassenger pauses a permanent reservation for one cycle.
func (st *State) SuspendPassenger(key Key, passenger types.ID) error {
	t, err := st.Trip(key)
	if err != nil {
		return err
	}
	if !contains(t.Permanent, passenger) {
		return ErrNotBooked
	}
	t.Permanent = remove(t.Permanent, passenger)
	t.SuspendedUsers = append(t.SuspendedUsers, passenger)
	return nil
}

// ResumePassenger moves a suspended reservation back to permanent. The seat
// may have been taken in the meantime, in which case the passenger stays
// suspended and the caller reports ErrCarFull.
func (st *State) ResumePassenger(key Key, passenger types.ID) error {
	t, err := st.Trip(key)
	if err != nil {
		return err
	}
	d, err := st.Driver(key.Driver)
	if err != nil {
		return err
	}
	if !contains(t.SuspendedUsers, passenger) {
		return ErrNotBooked
	}
	if t.Occupancy() >= d.Slots {
		return ErrCarFull
	}
	t.SuspendedUsers = remove(t.SuspendedUsers, passenger)
	t.Permanent = append(t.Permanent, passenger)
	return nil
}

// Charge adds cents to the passenger's debit toward the driver, creating
// the entry lazily.
func (st *State) Charge(passenger, creditor types.ID, cents int64) error {
	u, err := st.User(passenger)
	if err != nil {
		return err
	}
	if u.Debit == nil {
		u.Debit = make(map[types.ID]int64)
	}
	u.Debit[creditor] += cents
	return nil
}

// DeleteDriver removes the driver record and cascades over every trip it
// owns. Ledger entries naming the driver as creditor survive.
func (st *State) DeleteDriver(id types.ID) error {
	if _, ok := st.Drivers[id]; !ok {
		return ErrDriverNotFound
	}
	delete(st.Drivers, id)
	for _, dir := range Directions {
		for _, day := range WorkDays {
			delete(st.Trips[dir][day], id)
		}
	}
	return nil
}

// DeleteUser removes the user (cascading driver removal when applicable)
// and returns the creditors still owed money, for best-effort notices.
func (st *State) DeleteUser(id types.ID) (map[types.ID]int64, error) {
	u, ok := st.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	owed := make(map[types.ID]int64)
	for creditor, cents := range u.Debit {
		if cents > 0 {
			owed[creditor] = cents
		}
	}
	if _, isDriver := st.Drivers[id]; isDriver {
		_ = st.DeleteDriver(id)
	}
	// Drop the user's reservations everywhere.
	for _, dir := range Directions {
		for _, day := range WorkDays {
			for _, t := range st.Trips[dir][day] {
				t.Permanent = remove(t.Permanent, id)
				t.Temporary = remove(t.Temporary, id)
				t.SuspendedUsers = remove(t.SuspendedUsers, id)
			}
		}
	}
	delete(st.Users, id)
	return owed, nil
}

// Bookings lists every reservation of a passenger across all trips,
// deterministically ordered.
func (st *State) Bookings(passenger types.ID) []Booking {
	var out []Booking
	for _, dir := range Directions {
		for _, day := range WorkDays {
			for driver, t := range st.Trips[dir][day] {
				if mode, ok := t.modeOf(passenger); ok {
					out = append(out, Booking{
						Key:  Key{Direction: dir, Day: day, Driver: driver},
						Mode: mode,
						Time: t.Time,
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Key.Day != b.Key.Day {
			return dayIndex(a.Key.Day) < dayIndex(b.Key.Day)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Key.Driver < b.Key.Driver
	})
	return out
}

// TripInfo builds a copied-out view while already inside an Update or View
// closure.
func (st *State) TripInfo(key Key) (Info, error) {
	t, err := st.Trip(key)
	if err != nil {
		return Info{}, err
	}
	return st.info(key, t), nil
}

func (st *State) info(key Key, t *Trip) Info {
	seats := 0
	if d, ok := st.Drivers[key.Driver]; ok {
		seats = d.Slots - t.Occupancy()
	}
	name := ""
	if u, ok := st.Users[key.Driver]; ok {
		name = u.Name
	}
	var loc *Location
	if t.Location != nil {
		l := *t.Location
		loc = &l
	}
	return Info{
		Key:        key,
		Time:       t.Time,
		DriverName: name,
		Location:   loc,
		Suspended:  t.Suspended,
		SeatsLeft:  seats,
		Permanent:  append([]types.ID{}, t.Permanent...),
		Temporary:  append([]types.ID{}, t.Temporary...),
		Suspendees: append([]types.ID{}, t.SuspendedUsers...),
	}
}

func dayIndex(d Day) int {
	for i, w := range WorkDays {
		if w == d {
			return i
		}
	}
	return len(WorkDays)
}

// --- copied-out reads ---

// Info returns a copy of one trip, safe to use outside the lock.
func (s *Store) Info(key Key) (Info, error) {
	var out Info
	err := s.View(func(st *State) error {
		t, err := st.Trip(key)
		if err != nil {
			return err
		}
		out = st.info(key, t)
		return nil
	})
	return out, err
}

// DayListing returns the bookable trips of a day (suspended trips hidden),
// sorted by departure time, driver name, then driver id.
func (s *Store) DayListing(day Day) []Info {
	var out []Info
	_ = s.View(func(st *State) error {
		for _, dir := range Directions {
			for driver, t := range st.Trips[dir][day] {
				if t.Suspended {
					continue
				}
				out = append(out, st.info(Key{Direction: dir, Day: day, Driver: driver}, t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.DriverName != b.DriverName {
			return a.DriverName < b.DriverName
		}
		return a.Key.Driver < b.Key.Driver
	})
	return out
}

// DriverTrips returns every trip a driver owns, in week order.
func (s *Store) DriverTrips(driver types.ID) []Info {
	var out []Info
	_ = s.View(func(st *State) error {
		for _, day := range WorkDays {
			for _, dir := range Directions {
				if t, ok := st.Trips[dir][day][driver]; ok {
					out = append(out, st.info(Key{Direction: dir, Day: day, Driver: driver}, t))
				}
			}
		}
		return nil
	})
	return out
}

// UserName resolves a display name; empty for unknown ids.
func (s *Store) UserName(id types.ID) string {
	name := ""
	_ = s.View(func(st *State) error {
		if u, ok := st.Users[id]; ok {
			name = u.Name
		}
		return nil
	})
	return name
}

func (s *Store) IsRegistered(id types.ID) bool {
	ok := false
	_ = s.View(func(st *State) error {
		_, ok = st.Users[id]
		return nil
	})
	return ok
}

func (s *Store) IsDriver(id types.ID) bool {
	ok := false
	_ = s.View(func(st *State) error {
		_, ok = st.Drivers[id]
		return nil
	})
	return ok
}
