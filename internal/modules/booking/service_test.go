// README: Reservation flow tests (pre-check, commit re-validation, edit flows).
package booking

import (
	"errors"
	"testing"
	"time"

	"carpool/internal/calendar"
	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

func noon() time.Time {
	// Tuesday, regular teaching period, well outside the blackout.
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func setupService(t *testing.T, slots int) (*trip.Store, *Service) {
	t.Helper()
	store := trip.NewStore()
	err := store.Update(func(st *trip.State) error {
		for id, name := range map[types.ID]string{
			"d1": "Dana", "p1": "Paola", "p2": "Piero", "p3": "Pina",
		} {
			st.Users[id] = &trip.User{ID: id, Name: name, Debit: map[types.ID]int64{}}
		}
		st.Drivers["d1"] = &trip.Driver{ID: "d1", Slots: slots}
		_, err := st.PutTrip(trip.Key{Direction: trip.DirectionOutbound, Day: trip.Monday, Driver: "d1"}, "08:30")
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	cal, err := calendar.New(nil, nil)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	svc := NewService(store, cal)
	svc.Now = noon
	return store, svc
}

func outboundMonday() trip.Key {
	return trip.Key{Direction: trip.DirectionOutbound, Day: trip.Monday, Driver: "d1"}
}

func TestReservePreChecks(t *testing.T) {
	_, svc := setupService(t, 1)
	key := outboundMonday()

	if _, err := svc.Reserve(ReserveCommand{Passenger: "d1", Key: key, Mode: trip.ModeTemporary}); !errors.Is(err, ErrSelfBooking) {
		t.Fatalf("self booking: got %v, want ErrSelfBooking", err)
	}

	res, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: key, Mode: trip.ModePermanent})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Mode != trip.ModePermanent {
		t.Fatalf("mode = %s, want permanent", res.Mode)
	}
	// The pre-check must not commit anything.
	info, err := svc.store.Info(key)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(info.Permanent)+len(info.Temporary) != 0 {
		t.Fatal("reserve mutated the trip before driver confirmation")
	}
}

func TestReserveDuplicate(t *testing.T) {
	store, svc := setupService(t, 2)
	key := outboundMonday()
	if err := store.Update(func(st *trip.State) error {
		return st.AddPassenger(key, trip.ModePermanent, "p1")
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if _, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: key, Mode: trip.ModeTemporary}); !errors.Is(err, trip.ErrDuplicateBooking) {
		t.Fatalf("duplicate reserve: got %v, want ErrDuplicateBooking", err)
	}

	// Suspended passengers are equally duplicates.
	if err := store.Update(func(st *trip.State) error {
		return st.SuspendPassenger(key, "p1")
	}); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: key, Mode: trip.ModeTemporary}); !errors.Is(err, trip.ErrDuplicateBooking) {
		t.Fatalf("suspended duplicate reserve: got %v, want ErrDuplicateBooking", err)
	}
}

// TestTwoPendingOneSeat is the commit race: both passengers pass the
// pre-check, the first confirmation lands, the second hits CarFull.
func TestTwoPendingOneSeat(t *testing.T) {
	_, svc := setupService(t, 1)
	key := outboundMonday()

	if _, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: key, Mode: trip.ModeTemporary}); err != nil {
		t.Fatalf("reserve p1: %v", err)
	}
	if _, err := svc.Reserve(ReserveCommand{Passenger: "p2", Key: key, Mode: trip.ModeTemporary}); err != nil {
		t.Fatalf("reserve p2 (seat still free at pre-check): %v", err)
	}

	res, err := svc.Confirm(ConfirmCommand{
		Driver: "d1", Direction: key.Direction, Day: key.Day, Passenger: "p1", Mode: trip.ModeTemporary,
	})
	if err != nil {
		t.Fatalf("confirm p1: %v", err)
	}
	if res.Trip.SeatsLeft != 0 {
		t.Fatalf("seats left = %d, want 0", res.Trip.SeatsLeft)
	}

	_, err = svc.Confirm(ConfirmCommand{
		Driver: "d1", Direction: key.Direction, Day: key.Day, Passenger: "p2", Mode: trip.ModeTemporary,
	})
	if !errors.Is(err, trip.ErrCarFull) {
		t.Fatalf("confirm p2: got %v, want ErrCarFull", err)
	}

	info, _ := svc.store.Info(key)
	if got := len(info.Permanent) + len(info.Temporary); got != 1 {
		t.Fatalf("occupancy = %d, want 1", got)
	}
}

// TestConfirmTwice: retrying the same confirmation must not double-add.
func TestConfirmTwice(t *testing.T) {
	_, svc := setupService(t, 3)
	key := outboundMonday()

	cmd := ConfirmCommand{
		Driver: "d1", Direction: key.Direction, Day: key.Day, Passenger: "p1", Mode: trip.ModePermanent,
	}
	if _, err := svc.Confirm(cmd); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Confirm(cmd); !errors.Is(err, trip.ErrDuplicateBooking) {
		t.Fatalf("second confirm: got %v, want ErrDuplicateBooking", err)
	}
	info, _ := svc.store.Info(key)
	if len(info.Permanent) != 1 {
		t.Fatalf("permanent = %v, want single entry", info.Permanent)
	}
}

func TestReserveClosedDuringBlackout(t *testing.T) {
	_, svc := setupService(t, 2)
	svc.Now = func() time.Time {
		return time.Date(2026, 9, 1, 2, 5, 0, 0, time.UTC)
	}
	_, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: outboundMonday(), Mode: trip.ModeTemporary})
	if !errors.Is(err, ErrBookingClosed) {
		t.Fatalf("blackout reserve: got %v, want ErrBookingClosed", err)
	}
}

func TestSessionCoercesToOneShot(t *testing.T) {
	store, _ := setupService(t, 2)
	cal, err := calendar.New(nil, []string{"2026-08-31:2026-09-30"})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	svc := NewService(store, cal)
	svc.Now = noon

	days, session := svc.Days()
	if !session {
		t.Fatal("expected session mode")
	}
	if len(days) != 1 {
		t.Fatalf("session day menu = %v, want one day", days)
	}

	res, err := svc.Reserve(ReserveCommand{Passenger: "p1", Key: outboundMonday(), Mode: trip.ModePermanent})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Mode != trip.ModeTemporary {
		t.Fatalf("session mode = %s, want temporary", res.Mode)
	}
}

func TestSuspendResumeToggle(t *testing.T) {
	store, svc := setupService(t, 2)
	key := outboundMonday()
	if err := store.Update(func(st *trip.State) error {
		return st.AddPassenger(key, trip.ModePermanent, "p1")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Suspend(EditCommand{Passenger: "p1", Key: key}); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	// Fill the car while p1 is suspended.
	for _, p := range []types.ID{"p2", "p3"} {
		if err := store.Update(func(st *trip.State) error {
			return st.AddPassenger(key, trip.ModeTemporary, p)
		}); err != nil {
			t.Fatalf("fill car: %v", err)
		}
	}

	if err := svc.Resume(EditCommand{Passenger: "p1", Key: key}); !errors.Is(err, trip.ErrCarFull) {
		t.Fatalf("resume into full car: got %v, want ErrCarFull", err)
	}
	views := svc.Bookings("p1")
	if len(views) != 1 || views[0].Mode != trip.ModeSuspended {
		t.Fatalf("bookings = %+v, want one suspended entry", views)
	}
}

func TestDeleteBooking(t *testing.T) {
	store, svc := setupService(t, 2)
	key := outboundMonday()
	if err := store.Update(func(st *trip.State) error {
		return st.AddPassenger(key, trip.ModeTemporary, "p1")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mode, err := svc.Delete(EditCommand{Passenger: "p1", Key: key})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mode != trip.ModeTemporary {
		t.Fatalf("deleted mode = %s, want temporary", mode)
	}
	if _, err := svc.Delete(EditCommand{Passenger: "p1", Key: key}); !errors.Is(err, trip.ErrNotBooked) {
		t.Fatalf("delete absent: got %v, want ErrNotBooked", err)
	}
}

func TestBookingsAcrossTrips(t *testing.T) {
	store, svc := setupService(t, 3)
	if err := store.Update(func(st *trip.State) error {
		if _, err := st.PutTrip(trip.Key{Direction: trip.DirectionReturn, Day: trip.Wednesday, Driver: "d1"}, "17:30"); err != nil {
			return err
		}
		if err := st.AddPassenger(outboundMonday(), trip.ModePermanent, "p1"); err != nil {
			return err
		}
		return st.AddPassenger(trip.Key{Direction: trip.DirectionReturn, Day: trip.Wednesday, Driver: "d1"}, trip.ModeTemporary, "p1")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	views := svc.Bookings("p1")
	if len(views) != 2 {
		t.Fatalf("bookings = %d entries, want 2", len(views))
	}
	if views[0].Key.Day != trip.Monday || views[1].Key.Day != trip.Wednesday {
		t.Fatalf("order = %v", views)
	}
	if views[0].DriverName != "Dana" {
		t.Fatalf("driver name = %q", views[0].DriverName)
	}
}
