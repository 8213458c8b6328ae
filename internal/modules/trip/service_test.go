// README: Trip service tests.
package trip

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/types"
)

type fakeGeo struct {
	point types.Point
	err   error
}

func (f fakeGeo) Geocode(_ context.Context, _ string) (types.Point, error) {
	return f.point, f.err
}

func TestCreateAndReplace(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)

	res, err := svc.Create(CreateCommand{Driver: "d1", Direction: DirectionReturn, Day: Tuesday, Hour: 18, Minute: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Replaced {
		t.Fatal("first create must not report a replacement")
	}
	if res.Info.Time != "18:05" {
		t.Fatalf("time = %q, want 18:05", res.Info.Time)
	}

	res, err = svc.Create(CreateCommand{Driver: "d1", Direction: DirectionReturn, Day: Tuesday, Hour: 19, Minute: 0})
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if !res.Replaced {
		t.Fatal("second create must report a replacement")
	}
}

func TestCreateRequiresDriver(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)
	_, err := svc.Create(CreateCommand{Driver: "p1", Direction: DirectionOutbound, Day: Monday, Hour: 8, Minute: 0})
	if !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("create by non-driver: got %v, want ErrDriverNotFound", err)
	}
}

func TestCreateRejectsBadClock(t *testing.T) {
	svc := NewService(seedStore(t), nil)
	for _, cmd := range []CreateCommand{
		{Driver: "d1", Direction: DirectionOutbound, Day: Monday, Hour: 24, Minute: 0},
		{Driver: "d1", Direction: DirectionOutbound, Day: Monday, Hour: 8, Minute: 60},
		{Driver: "d1", Direction: DirectionOutbound, Day: Monday, Hour: -1, Minute: 0},
	} {
		if _, err := svc.Create(cmd); !errors.Is(err, ErrBadRequest) {
			t.Errorf("create %02d:%02d: got %v, want ErrBadRequest", cmd.Hour, cmd.Minute, err)
		}
	}
}

func TestSetTimeCarriesPassengers(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)
	key := mondayKey()

	if err := s.Update(func(st *State) error {
		return st.AddPassenger(key, ModePermanent, "p1")
	}); err != nil {
		t.Fatalf("seed passenger: %v", err)
	}

	info, err := svc.SetTime(SetTimeCommand{Key: key, Hour: 9, Minute: 15})
	if err != nil {
		t.Fatalf("set time: %v", err)
	}
	if info.Time != "09:15" {
		t.Fatalf("time = %q, want 09:15", info.Time)
	}
	if len(info.Permanent) != 1 || info.Permanent[0] != "p1" {
		t.Fatalf("permanent = %v, want [p1]", info.Permanent)
	}
}

func TestSuspendHidesFromListing(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)
	key := mondayKey()

	if _, err := svc.Suspend(key); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if got := s.DayListing(Monday); len(got) != 0 {
		t.Fatalf("suspended trip still listed: %v", got)
	}
}

func TestSetMeetingPoint(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, fakeGeo{point: types.Point{Lat: 46.06, Lng: 11.15}})
	key := mondayKey()

	info, err := svc.SetMeetingPoint(context.Background(), key, "north parking lot")
	if err != nil {
		t.Fatalf("set meeting point: %v", err)
	}
	if info.Location == nil || info.Location.Text != "north parking lot" {
		t.Fatalf("location = %+v", info.Location)
	}
	if info.Location.Lat != 46.06 {
		t.Fatalf("lat = %v, want geocoded value", info.Location.Lat)
	}

	// A failing geocoder still records the text.
	svc = NewService(s, fakeGeo{err: errors.New("quota")})
	info, err = svc.SetMeetingPoint(context.Background(), key, "station")
	if err != nil {
		t.Fatalf("set meeting point without coords: %v", err)
	}
	if info.Location.Text != "station" || info.Location.Lat != 0 {
		t.Fatalf("location = %+v, want text-only", info.Location)
	}
}

func TestDeleteTrip(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)
	key := mondayKey()

	if _, err := svc.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Delete(key); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("double delete: got %v, want ErrTripNotFound", err)
	}
}
