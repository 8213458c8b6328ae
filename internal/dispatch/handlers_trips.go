// README: Driver-side flows: trip list, scheduling, passenger removal, suspension.
package dispatch

import (
	"strconv"

	"carpool/internal/effect"
	"carpool/internal/modules/trip"
	"carpool/internal/token"
	"carpool/internal/types"
)

func (d *Dispatcher) meTrips(actor types.ID) ([]effect.Effect, error) {
	if !d.store.IsDriver(actor) {
		return nil, trip.ErrDriverNotFound
	}
	trips := d.trips.Trips(actor)
	text := "Your trips. Pick one to edit it."
	if len(trips) == 0 {
		text = "You offer no trips yet."
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: text},
		Keyboard:  driverTripsKeyboard(trips),
	}}, nil
}

func (d *Dispatcher) tripEdit(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	info, err := d.store.Info(d.ownKey(actor, ref))
	if err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripInfoNotice{Trip: info},
		Keyboard:  tripEditKeyboard(ref, info.Suspended),
	}}, nil
}

func (d *Dispatcher) tripHourMenu(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	dir, day := string(ref.Direction), string(ref.Day)
	next := func(hour int) string {
		return token.MustEncode(cmdTrips, subEditMinutes, dir, day, strconv.Itoa(hour))
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the departure hour."},
		Keyboard:  hourKeyboard(next, token.MustEncode(cmdTrips, subEditTrip, dir, day)),
	}}, nil
}

func (d *Dispatcher) tripMinuteMenu(actor types.ID, ref TripRef, hour int) ([]effect.Effect, error) {
	dir, day := string(ref.Direction), string(ref.Day)
	next := func(minute int) string {
		return token.MustEncode(cmdTrips, subConfirmTime, dir, day,
			strconv.Itoa(hour), strconv.Itoa(minute))
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the departure minutes."},
		Keyboard:  minuteKeyboard(next, token.MustEncode(cmdTrips, subEditTrip, dir, day)),
	}}, nil
}

// tripSetTime reschedules and tells every committed passenger.
func (d *Dispatcher) tripSetTime(actor types.ID, a TripSetTime) ([]effect.Effect, error) {
	info, err := d.trips.SetTime(trip.SetTimeCommand{
		Key:    d.ownKey(actor, a.Ref),
		Hour:   a.Hour,
		Minute: a.Minute,
	})
	if err != nil {
		return nil, err
	}
	out := []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripNotice{Event: effect.TripTimeChanged, Trip: info},
		Keyboard:  backExit(token.MustEncode(cmdMe, subMeTrips)),
	}}
	for _, p := range passengers(info) {
		out = append(out, effect.Effect{
			Recipient: p,
			Payload:   effect.TripNotice{Event: effect.TripTimeChanged, Trip: info},
		})
	}
	return out, nil
}

// tripSuspend pauses the next run of the trip. Nobody on board is charged
// for it; the nightly job lifts the suspension afterwards.
func (d *Dispatcher) tripSuspend(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	info, err := d.trips.Suspend(d.ownKey(actor, ref))
	if err != nil {
		return nil, err
	}
	out := []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripNotice{Event: effect.TripSuspended, Trip: info},
		Keyboard:  backExit(token.MustEncode(cmdMe, subMeTrips)),
	}}
	for _, p := range passengers(info) {
		out = append(out, effect.Effect{
			Recipient: p,
			Payload:   effect.TripNotice{Event: effect.TripSuspended, Trip: info},
		})
	}
	return out, nil
}

func (d *Dispatcher) tripPassengers(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	info, err := d.store.Info(d.ownKey(actor, ref))
	if err != nil {
		return nil, err
	}
	if len(passengers(info)) == 0 {
		return []effect.Effect{{
			Recipient: actor,
			Payload:   effect.Prompt{Text: "Nobody is booked on this trip."},
			Keyboard:  backExit(token.MustEncode(cmdTrips, subEditTrip, string(ref.Direction), string(ref.Day))),
		}}, nil
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick a passenger to remove from your trip."},
		Keyboard:  passengerKeyboard(ref, info, d.store.UserName),
	}}, nil
}

func (d *Dispatcher) tripDropSeatPrompt(actor types.ID, a TripDropSeatPrompt) ([]effect.Effect, error) {
	dir, day := string(a.Ref.Direction), string(a.Ref.Day)
	yes, err := token.Encode(cmdTrips, subConfirmRemUser, dir, day,
		string(a.Passenger), string(a.Mode))
	if err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Remove this passenger?"},
		Keyboard:  yesNo(yes, token.MustEncode(cmdTrips, subEditTrip, dir, day)),
	}}, nil
}

func (d *Dispatcher) tripDropSeat(actor types.ID, a TripDropSeat) ([]effect.Effect, error) {
	key := d.ownKey(actor, a.Ref)
	mode, err := d.trips.RemovePassenger(trip.RemovePassengerCommand{
		Key:       key,
		Passenger: a.Passenger,
	})
	if err != nil {
		return nil, err
	}
	info, err := d.store.Info(key)
	if err != nil {
		return nil, err
	}
	notice := effect.BookingNotice{
		Event:         effect.BookingDropped,
		Trip:          info,
		Passenger:     a.Passenger,
		PassengerName: d.store.UserName(a.Passenger),
		Mode:          mode,
	}
	return []effect.Effect{
		{
			Recipient: actor,
			Payload:   notice,
			Keyboard:  backExit(token.MustEncode(cmdMe, subMeTrips)),
		},
		{Recipient: a.Passenger, Payload: notice},
	}, nil
}

func (d *Dispatcher) tripRemovePrompt(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	dir, day := string(ref.Direction), string(ref.Day)
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Delete this trip? All its reservations are dropped with it."},
		Keyboard: yesNo(
			token.MustEncode(cmdTrips, subConfirmRemTrip, dir, day),
			token.MustEncode(cmdTrips, subEditTrip, dir, day)),
	}}, nil
}

func (d *Dispatcher) tripRemove(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	info, err := d.trips.Delete(d.ownKey(actor, ref))
	if err != nil {
		return nil, err
	}
	out := []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripNotice{Event: effect.TripDeleted, Trip: info},
		Keyboard:  backExit(token.MustEncode(cmdMe, subMeTrips)),
	}}
	for _, p := range passengers(info) {
		out = append(out, effect.Effect{
			Recipient: p,
			Payload: effect.BookingNotice{
				Event:         effect.BookingDropped,
				Trip:          info,
				Passenger:     p,
				PassengerName: d.store.UserName(p),
			},
		})
	}
	return out, nil
}

func (d *Dispatcher) tripNew(actor types.ID) ([]effect.Effect, error) {
	if !d.store.IsDriver(actor) {
		return nil, trip.ErrDriverNotFound
	}
	keyboard := [][]effect.Button{row(
		btn("To campus", token.MustEncode(cmdNewTrip, string(trip.DirectionOutbound))),
		btn("From campus", token.MustEncode(cmdNewTrip, string(trip.DirectionReturn))),
	)}
	keyboard = append(keyboard, backExit(token.MustEncode(cmdMe, subMeTrips))...)
	return []effect.Effect{{
		Recipient: actor,
		Payload: effect.Prompt{
			Text: "One trip per day and direction; re-adding a day replaces the " +
				"existing trip, passengers included. Pick the direction."},
		Keyboard: keyboard,
	}}, nil
}

func (d *Dispatcher) newTripDays(actor types.ID, dir trip.Direction) ([]effect.Effect, error) {
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the weekday of the trip."},
		Keyboard:  newTripDayKeyboard(dir),
	}}, nil
}

func (d *Dispatcher) newTripHours(actor types.ID, ref TripRef) ([]effect.Effect, error) {
	dir, day := string(ref.Direction), string(ref.Day)
	next := func(hour int) string {
		return token.MustEncode(cmdNewTrip, dir, day, strconv.Itoa(hour))
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the departure hour."},
		Keyboard:  hourKeyboard(next, token.MustEncode(cmdNewTrip, dir)),
	}}, nil
}

func (d *Dispatcher) newTripMinutes(actor types.ID, ref TripRef, hour int) ([]effect.Effect, error) {
	dir, day := string(ref.Direction), string(ref.Day)
	next := func(minute int) string {
		return token.MustEncode(cmdNewTrip, dir, day, strconv.Itoa(hour), strconv.Itoa(minute))
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the departure minutes."},
		Keyboard:  minuteKeyboard(next, token.MustEncode(cmdNewTrip, dir, day)),
	}}, nil
}

func (d *Dispatcher) newTripCreate(actor types.ID, a NewTripCreate) ([]effect.Effect, error) {
	res, err := d.trips.Create(trip.CreateCommand{
		Driver:    actor,
		Direction: a.Ref.Direction,
		Day:       a.Ref.Day,
		Hour:      a.Hour,
		Minute:    a.Minute,
	})
	if err != nil {
		return nil, err
	}
	event := effect.TripCreated
	if res.Replaced {
		event = effect.TripReplaced
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripNotice{Event: event, Trip: res.Info},
		Keyboard:  backExit(token.MustEncode(cmdMe, subMeTrips)),
	}}, nil
}

func (d *Dispatcher) ownKey(actor types.ID, ref TripRef) trip.Key {
	return trip.Key{Direction: ref.Direction, Day: ref.Day, Driver: actor}
}

func passengers(info trip.Info) []types.ID {
	out := make([]types.ID, 0, len(info.Permanent)+len(info.Temporary))
	out = append(out, info.Permanent...)
	return append(out, info.Temporary...)
}
