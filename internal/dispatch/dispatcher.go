// README: Token dispatcher: decode, parse, route to a handler, degrade failures to notices.
package dispatch

import (
	"errors"
	"log/slog"

	"carpool/internal/effect"
	"carpool/internal/modules/account"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/ledger"
	"carpool/internal/modules/trip"
	"carpool/internal/token"
	"carpool/internal/types"
)

type Dispatcher struct {
	store    *trip.Store
	bookings *booking.Service
	trips    *trip.Service
	accounts *account.Service
	ledger   *ledger.Service
	log      *slog.Logger
}

func New(store *trip.Store, bookings *booking.Service, trips *trip.Service,
	accounts *account.Service, led *ledger.Service, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		bookings: bookings,
		trips:    trips,
		accounts: accounts,
		ledger:   led,
		log:      log,
	}
}

// Handle runs one callback token for one actor. It never fails: broken or
// stale tokens come back as an ErrorNotice to the actor, since keyboards
// outlive the state they were rendered from.
func (d *Dispatcher) Handle(raw string, actor types.ID) []effect.Effect {
	cmd, fields, err := token.Decode(raw)
	if err != nil {
		return d.oops(actor, "This action is no longer valid.")
	}
	act, err := ParseAction(cmd, fields)
	if err != nil {
		d.log.Warn("undispatchable token", "command", cmd, "error", err)
		return d.oops(actor, "This action is no longer valid.")
	}
	if !d.store.IsRegistered(actor) {
		return d.oops(actor, "You need to register before using the service.")
	}
	effects, err := d.dispatch(act, actor)
	if err != nil {
		return d.fail(actor, err)
	}
	return effects
}

func (d *Dispatcher) dispatch(act Action, actor types.ID) ([]effect.Effect, error) {
	switch a := act.(type) {
	case Exit:
		return []effect.Effect{{Recipient: actor, Payload: effect.Prompt{Text: "Menu closed."}}}, nil
	case BookingMenu:
		return d.bookingMenu(actor)
	case MeMenu:
		return d.meMenu(actor)
	case Money:
		return d.money(actor)
	case ShowDay:
		return d.showDay(actor, a.Day)
	case ShowLocation:
		return d.showLocation(actor, a.Key)
	case BookingStart:
		return d.bookingStart(actor, a.Mode)
	case BookingDay:
		return d.bookingDay(actor, a.Mode, a.Day)
	case BookingConfirm:
		return d.bookingConfirm(actor, a.Key, a.Mode)
	case DriverConfirm:
		return d.driverConfirm(actor, a)
	case EditList:
		return d.editList(actor)
	case EditShow:
		return d.editShow(actor, a.Booking)
	case EditSuspendPrompt:
		return d.editSuspendPrompt(actor, a.Booking)
	case EditSuspend:
		return d.editSuspend(actor, a.Booking)
	case EditDeletePrompt:
		return d.editDeletePrompt(actor, a.Booking)
	case EditDelete:
		return d.editDelete(actor, a.Booking)
	case MeTrips:
		return d.meTrips(actor)
	case MeDriver:
		return d.meDriver(actor)
	case MeSlotsMenu:
		return d.meSlotsMenu(actor)
	case MeConfirmDriver:
		return d.meConfirmDriver(actor, a.Slots)
	case MeDropDriver:
		return d.meDropDriver(actor)
	case MeRemovalPrompt:
		return d.meRemovalPrompt(actor)
	case MeConfirmRemove:
		return d.meConfirmRemove(actor)
	case TripNew:
		return d.tripNew(actor)
	case TripEdit:
		return d.tripEdit(actor, a.Ref)
	case TripHourMenu:
		return d.tripHourMenu(actor, a.Ref)
	case TripMinuteMenu:
		return d.tripMinuteMenu(actor, a.Ref, a.Hour)
	case TripSetTime:
		return d.tripSetTime(actor, a)
	case TripSuspend:
		return d.tripSuspend(actor, a.Ref)
	case TripPassengers:
		return d.tripPassengers(actor, a.Ref)
	case TripDropSeatPrompt:
		return d.tripDropSeatPrompt(actor, a)
	case TripDropSeat:
		return d.tripDropSeat(actor, a)
	case TripRemovePrompt:
		return d.tripRemovePrompt(actor, a.Ref)
	case TripRemove:
		return d.tripRemove(actor, a.Ref)
	case NewTripDays:
		return d.newTripDays(actor, a.Direction)
	case NewTripHours:
		return d.newTripHours(actor, a.Ref)
	case NewTripMinutes:
		return d.newTripMinutes(actor, a.Ref, a.Hour)
	case NewTripCreate:
		return d.newTripCreate(actor, a)
	}
	return nil, ErrUnknownAction
}

func (d *Dispatcher) oops(actor types.ID, reason string) []effect.Effect {
	return []effect.Effect{{Recipient: actor, Payload: effect.ErrorNotice{Reason: reason}}}
}

// fail translates domain errors into user-facing notices. Anything not in
// the known set is an internal fault and gets logged.
func (d *Dispatcher) fail(actor types.ID, err error) []effect.Effect {
	switch {
	case errors.Is(err, trip.ErrCarFull):
		return d.oops(actor, "No seats left on this trip.")
	case errors.Is(err, trip.ErrDuplicateBooking):
		return d.oops(actor, "You already have a reservation on this trip.")
	case errors.Is(err, booking.ErrSelfBooking):
		return d.oops(actor, "You are the driver of this trip.")
	case errors.Is(err, booking.ErrBookingClosed):
		return d.oops(actor, "Reservations are closed between 02:00 and 02:15.")
	case errors.Is(err, trip.ErrTripNotFound),
		errors.Is(err, trip.ErrDriverNotFound),
		errors.Is(err, trip.ErrUserNotFound),
		errors.Is(err, trip.ErrNotBooked),
		errors.Is(err, trip.ErrBadRequest):
		return d.oops(actor, "This action is no longer valid.")
	}
	d.log.Error("dispatch failed", "actor", actor, "error", err)
	return d.oops(actor, "Something went wrong. Please try again later.")
}
