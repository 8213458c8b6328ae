// README: Reservation state machine: pre-check, pending driver confirmation, commit with re-validation.
package booking

import (
	"errors"
	"time"

	"carpool/internal/calendar"
	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

var (
	ErrSelfBooking   = errors.New("driver cannot book their own trip")
	ErrBookingClosed = errors.New("bookings are closed during the settlement window")
)

type Service struct {
	store *trip.Store
	cal   *calendar.Calendar

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewService(store *trip.Store, cal *calendar.Calendar) *Service {
	return &Service{store: store, cal: cal, Now: time.Now}
}

type ReserveCommand struct {
	Passenger types.ID
	Key       trip.Key
	Mode      trip.Mode
}

type ConfirmCommand struct {
	Driver    types.ID
	Direction trip.Direction
	Day       trip.Day
	Passenger types.ID
	Mode      trip.Mode
}

type EditCommand struct {
	Passenger types.ID
	Key       trip.Key
}

// ReserveResult is the pending reservation handed to the driver for
// confirmation. Nothing has been committed yet.
type ReserveResult struct {
	Trip trip.Info
	// Mode is the effective mode: exam sessions coerce every reservation
	// to one-shot.
	Mode trip.Mode
}

type ConfirmResult struct {
	Trip trip.Info
	Mode trip.Mode
}

// BookingView decorates a passenger's reservation with display data.
type BookingView struct {
	trip.Booking
	DriverName    string
	TripSuspended bool
}

// Open reports whether reservations are currently accepted.
func (s *Service) Open() bool {
	return s.cal.BookingOpen(s.Now())
}

// Days lists the selectable booking days. During an exam session the menu
// collapses to the single next operating day.
func (s *Service) Days() ([]trip.Day, bool) {
	now := s.Now()
	if s.cal.InSession(now) {
		if d, ok := trip.DayOf(s.cal.NextOperatingDate(now)); ok {
			return []trip.Day{d}, true
		}
	}
	return trip.WorkDays, false
}

// ListDay returns the bookable trips of a day, suspended trips hidden,
// sorted by departure time then driver name.
func (s *Service) ListDay(day trip.Day) []trip.Info {
	return s.store.DayListing(day)
}

// Reserve runs the pre-check for a seat WITHOUT mutating state. On success
// the caller sends the driver a confirmation request; the commit happens in
// Confirm, which re-validates, because any amount of time may pass before
// the driver acts and other passengers may take the seat meanwhile.
func (s *Service) Reserve(cmd ReserveCommand) (ReserveResult, error) {
	now := s.Now()
	if !s.cal.BookingOpen(now) {
		return ReserveResult{}, ErrBookingClosed
	}
	mode := cmd.Mode
	if s.cal.InSession(now) {
		mode = trip.ModeTemporary
	}
	if mode != trip.ModePermanent && mode != trip.ModeTemporary {
		return ReserveResult{}, trip.ErrBadRequest
	}
	if cmd.Passenger == cmd.Key.Driver {
		return ReserveResult{}, ErrSelfBooking
	}

	err := s.store.View(func(st *trip.State) error {
		t, err := st.Trip(cmd.Key)
		if err != nil {
			return err
		}
		d, err := st.Driver(cmd.Key.Driver)
		if err != nil {
			return err
		}
		if hasPassenger(t, cmd.Passenger) {
			return trip.ErrDuplicateBooking
		}
		if t.Occupancy() >= d.Slots {
			return trip.ErrCarFull
		}
		return nil
	})
	if err != nil {
		return ReserveResult{}, err
	}
	info, err := s.store.Info(cmd.Key)
	if err != nil {
		return ReserveResult{}, err
	}
	return ReserveResult{Trip: info, Mode: mode}, nil
}

// Confirm commits a pending reservation on behalf of the driver. Capacity
// and duplication are re-validated against current state: two passengers
// can both pass the pre-check, but only confirmations that still fit land.
// Confirming the same request twice fails with ErrDuplicateBooking.
func (s *Service) Confirm(cmd ConfirmCommand) (ConfirmResult, error) {
	key := trip.Key{Direction: cmd.Direction, Day: cmd.Day, Driver: cmd.Driver}
	err := s.store.Update(func(st *trip.State) error {
		return st.AddPassenger(key, cmd.Mode, cmd.Passenger)
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	info, err := s.store.Info(key)
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Trip: info, Mode: cmd.Mode}, nil
}

// Bookings lists every reservation of a passenger, decorated for display.
func (s *Service) Bookings(passenger types.ID) []BookingView {
	var out []BookingView
	_ = s.store.View(func(st *trip.State) error {
		for _, b := range st.Bookings(passenger) {
			v := BookingView{Booking: b}
			if u, err := st.User(b.Key.Driver); err == nil {
				v.DriverName = u.Name
			}
			if t, err := st.Trip(b.Key); err == nil {
				v.TripSuspended = t.Suspended
			}
			out = append(out, v)
		}
		return nil
	})
	return out
}

// Delete cancels a reservation, whichever set holds it. Cancelling an
// absent reservation is a programming error surfaced as ErrNotBooked.
func (s *Service) Delete(cmd EditCommand) (trip.Mode, error) {
	var mode trip.Mode
	err := s.store.Update(func(st *trip.State) error {
		m, err := st.RemovePassenger(cmd.Key, cmd.Passenger)
		if err != nil {
			return err
		}
		mode = m
		return nil
	})
	return mode, err
}

// Suspend pauses a permanent reservation for one cycle.
func (s *Service) Suspend(cmd EditCommand) error {
	return s.store.Update(func(st *trip.State) error {
		return st.SuspendPassenger(cmd.Key, cmd.Passenger)
	})
}

// Resume re-activates a suspended reservation, re-validating capacity. On
// ErrCarFull the passenger stays suspended; there is no partial commit.
func (s *Service) Resume(cmd EditCommand) error {
	return s.store.Update(func(st *trip.State) error {
		return st.ResumePassenger(cmd.Key, cmd.Passenger)
	})
}

func hasPassenger(t *trip.Trip, id types.ID) bool {
	for _, set := range [][]types.ID{t.Permanent, t.Temporary, t.SuspendedUsers} {
		for _, v := range set {
			if v == id {
				return true
			}
		}
	}
	return false
}
