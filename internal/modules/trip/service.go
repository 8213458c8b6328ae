// README: Driver-side trip management: create/replace, reschedule, passenger removal, suspension, meeting point.
package trip

import (
	"context"
	"fmt"

	"carpool/internal/types"
)

// Geocoder resolves a meeting-point description to coordinates. A nil
// geocoder leaves the location text-only.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Point, error)
}

type Service struct {
	store *Store
	geo   Geocoder
}

func NewService(store *Store, geo Geocoder) *Service {
	return &Service{store: store, geo: geo}
}

type CreateCommand struct {
	Driver    types.ID
	Direction Direction
	Day       Day
	Hour      int
	Minute    int
}

type SetTimeCommand struct {
	Key    Key
	Hour   int
	Minute int
}

type RemovePassengerCommand struct {
	Key       Key
	Passenger types.ID
}

// CreateResult reports whether an existing trip (and its passengers) was
// overwritten; the caller confirms that with the driver beforehand.
type CreateResult struct {
	Replaced bool
	Info     Info
}

// Create registers a trip for one day and direction. Re-creating replaces
// the previous trip wholesale.
func (s *Service) Create(cmd CreateCommand) (CreateResult, error) {
	departure, err := clockTime(cmd.Hour, cmd.Minute)
	if err != nil {
		return CreateResult{}, err
	}
	key := Key{Direction: cmd.Direction, Day: cmd.Day, Driver: cmd.Driver}
	var res CreateResult
	err = s.store.Update(func(st *State) error {
		replaced, err := st.PutTrip(key, departure)
		if err != nil {
			return err
		}
		t, _ := st.Trip(key)
		res = CreateResult{Replaced: replaced, Info: st.info(key, t)}
		return nil
	})
	return res, err
}

// SetTime reschedules the departure. The returned Info carries the current
// passenger sets so the caller can notify them.
func (s *Service) SetTime(cmd SetTimeCommand) (Info, error) {
	departure, err := clockTime(cmd.Hour, cmd.Minute)
	if err != nil {
		return Info{}, err
	}
	var info Info
	err = s.store.Update(func(st *State) error {
		t, err := st.Trip(cmd.Key)
		if err != nil {
			return err
		}
		t.Time = departure
		info = st.info(cmd.Key, t)
		return nil
	})
	return info, err
}

// RemovePassenger evicts a passenger from the driver's trip and reports
// which set held them.
func (s *Service) RemovePassenger(cmd RemovePassengerCommand) (Mode, error) {
	var mode Mode
	err := s.store.Update(func(st *State) error {
		m, err := st.RemovePassenger(cmd.Key, cmd.Passenger)
		if err != nil {
			return err
		}
		mode = m
		return nil
	})
	return mode, err
}

// Delete removes the trip outright, passengers included.
func (s *Service) Delete(key Key) (Info, error) {
	var info Info
	err := s.store.Update(func(st *State) error {
		t, err := st.Trip(key)
		if err != nil {
			return err
		}
		info = st.info(key, t)
		return st.DeleteTrip(key)
	})
	return info, err
}

// Suspend pauses the trip: it disappears from booking listings and the next
// settlement run clears the flag (and skips charging) instead of billing.
func (s *Service) Suspend(key Key) (Info, error) {
	var info Info
	err := s.store.Update(func(st *State) error {
		t, err := st.Trip(key)
		if err != nil {
			return err
		}
		t.Suspended = true
		info = st.info(key, t)
		return nil
	})
	return info, err
}

// SetMeetingPoint attaches a transient meeting point to the trip, resolving
// coordinates when a geocoder is configured. Settlement clears it nightly.
func (s *Service) SetMeetingPoint(ctx context.Context, key Key, text string) (Info, error) {
	if text == "" {
		return Info{}, ErrBadRequest
	}
	loc := &Location{Text: text}
	if s.geo != nil {
		if p, err := s.geo.Geocode(ctx, text); err == nil {
			loc.Lat, loc.Lng = p.Lat, p.Lng
		}
	}
	var info Info
	err := s.store.Update(func(st *State) error {
		t, err := st.Trip(key)
		if err != nil {
			return err
		}
		t.Location = loc
		info = st.info(key, t)
		return nil
	})
	return info, err
}

// Trips lists every trip the driver owns.
func (s *Service) Trips(driver types.ID) []Info {
	return s.store.DriverTrips(driver)
}

func clockTime(hour, minute int) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", ErrBadRequest
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
