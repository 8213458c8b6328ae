// README: Passenger-side flows: booking menu, reservations, edit/suspend/delete.
package dispatch

import (
	"errors"

	"carpool/internal/effect"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/trip"
	"carpool/internal/token"
	"carpool/internal/types"
)

func (d *Dispatcher) bookingMenu(actor types.ID) ([]effect.Effect, error) {
	_, session := d.bookings.Days()
	text := "What do you want to do?"
	if session {
		text = "Exam session: every reservation is one-shot. What do you want to do?"
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: text},
		Keyboard:  bookingMenuKeyboard(session),
	}}, nil
}

func (d *Dispatcher) bookingStart(actor types.ID, mode trip.Mode) ([]effect.Effect, error) {
	if !d.bookings.Open() {
		return nil, booking.ErrBookingClosed
	}
	days, session := d.bookings.Days()
	if session {
		// Single bookable day; skip straight to the trip list.
		return d.bookingDay(actor, mode, days[0])
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick the day of the reservation."},
		Keyboard:  dayKeyboard(mode, days),
	}}, nil
}

func (d *Dispatcher) bookingDay(actor types.ID, mode trip.Mode, day trip.Day) ([]effect.Effect, error) {
	if !d.bookings.Open() {
		return nil, booking.ErrBookingClosed
	}
	trips := d.bookings.ListDay(day)
	if len(trips) == 0 {
		return []effect.Effect{{
			Recipient: actor,
			Payload:   effect.Prompt{Text: "No trips are offered on " + string(day) + "."},
			Keyboard:  backExit(token.MustEncode(cmdBooking, subStart, string(mode))),
		}}, nil
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.DayRoster{Day: day, Trips: trips},
		Keyboard:  tripListKeyboard(mode, trips),
	}}, nil
}

// bookingConfirm runs the passenger-side pre-check and, when it passes,
// asks the driver to confirm. Nothing is committed here.
func (d *Dispatcher) bookingConfirm(actor types.ID, key trip.Key, mode trip.Mode) ([]effect.Effect, error) {
	res, err := d.bookings.Reserve(booking.ReserveCommand{Passenger: actor, Key: key, Mode: mode})
	if err != nil {
		return nil, err
	}
	userKeyboard := backExit(token.MustEncode(cmdBooking, subStart, string(res.Mode)))
	if res.Trip.Location != nil {
		if tok, encErr := token.Encode(cmdLocation,
			string(key.Direction), string(key.Day), string(key.Driver)); encErr == nil {
			userKeyboard = append([][]effect.Button{row(btn("Show meeting point", tok))}, userKeyboard...)
		}
	}
	name := d.store.UserName(actor)
	return []effect.Effect{
		{
			Recipient: actor,
			Payload: effect.BookingNotice{
				Event:         effect.BookingRequested,
				Trip:          res.Trip,
				Passenger:     actor,
				PassengerName: name,
				Mode:          res.Mode,
			},
			Keyboard: userKeyboard,
		},
		{
			Recipient: key.Driver,
			Payload: effect.BookingNotice{
				Event:         effect.BookingRequested,
				Trip:          res.Trip,
				Passenger:     actor,
				PassengerName: name,
				Mode:          res.Mode,
			},
			Keyboard: driverConfirmKeyboard(BookingConfirm{Key: key, Mode: res.Mode}, string(actor)),
		},
	}, nil
}

// driverConfirm commits a pending reservation. The commit re-validates, so
// the passenger is told when someone else took the seat first.
func (d *Dispatcher) driverConfirm(actor types.ID, a DriverConfirm) ([]effect.Effect, error) {
	res, err := d.bookings.Confirm(booking.ConfirmCommand{
		Driver:    actor,
		Direction: a.Direction,
		Day:       a.Day,
		Passenger: a.Passenger,
		Mode:      a.Mode,
	})
	switch {
	case errors.Is(err, trip.ErrCarFull):
		return []effect.Effect{
			{Recipient: actor, Payload: effect.ErrorNotice{
				Reason: "No seats left; the reservation could not be confirmed."}},
			{Recipient: a.Passenger, Payload: effect.ErrorNotice{
				Reason: "Someone booked before you. Contact the driver about seat availability."}},
		}, nil
	case errors.Is(err, trip.ErrDuplicateBooking):
		return []effect.Effect{
			{Recipient: actor, Payload: effect.ErrorNotice{
				Reason: "This passenger already holds a seat on this trip."}},
			{Recipient: a.Passenger, Payload: effect.ErrorNotice{
				Reason: "Your reservation with this driver was already confirmed."}},
		}, nil
	case err != nil:
		return nil, err
	}
	notice := effect.BookingNotice{
		Event:         effect.BookingConfirmed,
		Trip:          res.Trip,
		Passenger:     a.Passenger,
		PassengerName: d.store.UserName(a.Passenger),
		Mode:          res.Mode,
	}
	return []effect.Effect{
		{Recipient: actor, Payload: notice},
		{Recipient: a.Passenger, Payload: notice},
	}, nil
}

func (d *Dispatcher) editList(actor types.ID) ([]effect.Effect, error) {
	views := d.bookings.Bookings(actor)
	if len(views) == 0 {
		return []effect.Effect{{
			Recipient: actor,
			Payload:   effect.Prompt{Text: "You have no active reservations."},
			Keyboard:  backExit(token.MustEncode(cmdBookingMenu)),
		}}, nil
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Pick a reservation to cancel or suspend it."},
		Keyboard:  bookingListKeyboard(views),
	}}, nil
}

func (d *Dispatcher) editShow(actor types.ID, ref BookingRef) ([]effect.Effect, error) {
	info, err := d.store.Info(ref.Key)
	if err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripInfoNotice{Trip: info},
		Keyboard:  bookingActionKeyboard(ref),
	}}, nil
}

func (d *Dispatcher) editSuspendPrompt(actor types.ID, ref BookingRef) ([]effect.Effect, error) {
	fields := []string{
		string(ref.Key.Direction), string(ref.Key.Day),
		string(ref.Key.Driver), string(ref.Mode),
	}
	yes, err := token.Encode(cmdEditBook, append([]string{subConfirmSuspend}, fields...)...)
	if err != nil {
		return nil, err
	}
	text := "A suspension lasts until the next run of the trip. Suspend this reservation?"
	if ref.Mode == trip.ModeSuspended {
		text = "Reactivate this reservation?"
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: text},
		Keyboard:  yesNo(yes, token.MustEncode(cmdEditBook, subList)),
	}}, nil
}

func (d *Dispatcher) editSuspend(actor types.ID, ref BookingRef) ([]effect.Effect, error) {
	cmd := booking.EditCommand{Passenger: actor, Key: ref.Key}
	event := effect.BookingSuspended
	if ref.Mode == trip.ModeSuspended {
		if err := d.bookings.Resume(cmd); err != nil {
			if errors.Is(err, trip.ErrCarFull) {
				return []effect.Effect{{
					Recipient: actor,
					Payload: effect.ErrorNotice{
						Reason: "The car has filled up in the meantime. Contact the driver to sort it out."},
					Keyboard: backExit(token.MustEncode(cmdEditBook, subList)),
				}}, nil
			}
			return nil, err
		}
		event = effect.BookingResumed
	} else {
		if err := d.bookings.Suspend(cmd); err != nil {
			return nil, err
		}
	}
	info, err := d.store.Info(ref.Key)
	if err != nil {
		return nil, err
	}
	notice := effect.BookingNotice{
		Event:         event,
		Trip:          info,
		Passenger:     actor,
		PassengerName: d.store.UserName(actor),
		Mode:          trip.ModePermanent,
	}
	return []effect.Effect{
		{
			Recipient: actor,
			Payload:   notice,
			Keyboard:  backExit(token.MustEncode(cmdEditBook, subList)),
		},
		{Recipient: ref.Key.Driver, Payload: notice},
	}, nil
}

func (d *Dispatcher) editDeletePrompt(actor types.ID, ref BookingRef) ([]effect.Effect, error) {
	fields := []string{
		string(ref.Key.Direction), string(ref.Key.Day),
		string(ref.Key.Driver), string(ref.Mode),
	}
	yes, err := token.Encode(cmdEditBook, append([]string{subConfirmDelete}, fields...)...)
	if err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "Cancel this reservation for good?"},
		Keyboard:  yesNo(yes, token.MustEncode(cmdEditBook, subList)),
	}}, nil
}

func (d *Dispatcher) editDelete(actor types.ID, ref BookingRef) ([]effect.Effect, error) {
	mode, err := d.bookings.Delete(booking.EditCommand{Passenger: actor, Key: ref.Key})
	if err != nil {
		return nil, err
	}
	info, err := d.store.Info(ref.Key)
	if err != nil {
		return nil, err
	}
	notice := effect.BookingNotice{
		Event:         effect.BookingDeleted,
		Trip:          info,
		Passenger:     actor,
		PassengerName: d.store.UserName(actor),
		Mode:          mode,
	}
	return []effect.Effect{
		{
			Recipient: actor,
			Payload:   notice,
			Keyboard:  backExit(token.MustEncode(cmdEditBook, subList)),
		},
		{Recipient: ref.Key.Driver, Payload: notice},
	}, nil
}

func (d *Dispatcher) showDay(actor types.ID, day trip.Day) ([]effect.Effect, error) {
	trips := d.bookings.ListDay(day)
	keyboard := [][]effect.Button{
		row(btn("Book one-shot",
			token.MustEncode(cmdBooking, subDay, string(trip.ModeTemporary), string(day)))),
		row(btn("Book recurring",
			token.MustEncode(cmdBooking, subDay, string(trip.ModePermanent), string(day)))),
		exitRow(),
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.DayRoster{Day: day, Trips: trips},
		Keyboard:  keyboard,
	}}, nil
}

func (d *Dispatcher) showLocation(actor types.ID, key trip.Key) ([]effect.Effect, error) {
	info, err := d.store.Info(key)
	if err != nil {
		return nil, err
	}
	if info.Location == nil {
		return d.oops(actor, "No meeting point is set for this trip."), nil
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.TripNotice{Event: effect.TripMeetingPoint, Trip: info},
	}}, nil
}
