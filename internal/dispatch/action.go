// README: Callback token grammar: wire commands and the parsed action variants.
package dispatch

import (
	"errors"
	"fmt"
	"strconv"

	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

// Wire commands. These travel inside callback tokens, so they are part of
// the persisted keyboard surface and must stay stable across releases.
const (
	cmdExit        = "EXIT"
	cmdBookingMenu = "BOOKING_MENU"
	cmdMeMenu      = "ME_MENU"
	cmdBooking     = "BOOKING"
	cmdAlertUser   = "ALERT_USER"
	cmdEditBook    = "EDIT_BOOK"
	cmdMe          = "ME"
	cmdTrips       = "TRIPS"
	cmdNewTrip     = "NEWTRIP"
	cmdMoney       = "MONEY"
	cmdShowDay     = "SHOW_BOOKINGS"
	cmdLocation    = "SEND_LOCATION"
)

// Sub-commands, scoped to their parent command.
const (
	subStart   = "START"
	subDay     = "DAY"
	subConfirm = "CONFIRM"

	subConfirmBooking = "CO_BO"

	subList           = "LIST"
	subAction         = "ACTION"
	subSuspend        = "SUS_BOOK"
	subConfirmSuspend = "CO_SUS_BOOK"
	subDeletion       = "DELETION"
	subConfirmDelete  = "CO_DEL"

	subMeTrips         = "TRIPS"
	subMeDriver        = "DRIVER"
	subMeSlots         = "EDIT_DRIVER_SLOTS"
	subMeConfirmDriver = "CONFIRM_DRIVER"
	subMeDropDriver    = "CONFIRM_DRIVER_REMOVAL"
	subMeRemoval       = "USER_REMOVAL"
	subMeConfirmRemove = "CONFIRM_USER_REMOVAL"

	subNewTrip        = "NEW_TRIP"
	subEditTrip       = "EDIT_TRIP"
	subEditHour       = "EDIT_TRIP_HOUR"
	subEditMinutes    = "EDIT_TRIP_MINUTES"
	subConfirmTime    = "CONFIRM_EDIT_TRIP"
	subSuspendTrip    = "SUS_TRIP"
	subEditUser       = "EDIT_USER"
	subRemoveUser     = "REMOVE_USER"
	// Abbreviated: the long form overflows the token budget with a
	// ten-digit passenger id on the longest day name.
	subConfirmRemUser = "CO_REM_USER"
	subRemoveTrip     = "REMOVE_TRIP"
	subConfirmRemTrip = "CONFIRM_REMOVE_TRIP"
)

var ErrUnknownAction = errors.New("unknown action")

// Action is the closed set of operations a decoded token can request.
type Action interface {
	act()
}

// BookingRef pins a passenger-side reservation: one trip plus the set the
// passenger sits in.
type BookingRef struct {
	Key  trip.Key
	Mode trip.Mode
}

// TripRef pins one of the acting driver's own trips.
type TripRef struct {
	Direction trip.Direction
	Day       trip.Day
}

type (
	Exit        struct{}
	BookingMenu struct{}
	MeMenu      struct{}
	Money       struct{}

	ShowDay struct{ Day trip.Day }

	ShowLocation struct{ Key trip.Key }

	BookingStart struct{ Mode trip.Mode }

	BookingDay struct {
		Mode trip.Mode
		Day  trip.Day
	}

	// BookingConfirm is the passenger-side request; it only pre-checks.
	BookingConfirm struct {
		Key  trip.Key
		Mode trip.Mode
	}

	// DriverConfirm is the driver's commit of a pending reservation. The
	// driver is the actor, so the token carries the passenger instead.
	DriverConfirm struct {
		Direction trip.Direction
		Day       trip.Day
		Passenger types.ID
		Mode      trip.Mode
	}

	EditList          struct{}
	EditShow          struct{ Booking BookingRef }
	EditSuspendPrompt struct{ Booking BookingRef }
	EditSuspend       struct{ Booking BookingRef }
	EditDeletePrompt  struct{ Booking BookingRef }
	EditDelete        struct{ Booking BookingRef }

	MeTrips         struct{}
	MeDriver        struct{}
	MeSlotsMenu     struct{}
	MeConfirmDriver struct{ Slots int }
	MeDropDriver    struct{}
	MeRemovalPrompt struct{}
	MeConfirmRemove struct{}

	TripNew        struct{}
	TripEdit       struct{ Ref TripRef }
	TripHourMenu   struct{ Ref TripRef }
	TripMinuteMenu struct {
		Ref  TripRef
		Hour int
	}
	TripSetTime struct {
		Ref    TripRef
		Hour   int
		Minute int
	}
	TripSuspend          struct{ Ref TripRef }
	TripPassengers       struct{ Ref TripRef }
	TripDropSeatPrompt   struct {
		Ref       TripRef
		Passenger types.ID
		Mode      trip.Mode
	}
	TripDropSeat struct {
		Ref       TripRef
		Passenger types.ID
		Mode      trip.Mode
	}
	TripRemovePrompt struct{ Ref TripRef }
	TripRemove       struct{ Ref TripRef }

	NewTripDays    struct{ Direction trip.Direction }
	NewTripHours   struct{ Ref TripRef }
	NewTripMinutes struct {
		Ref  TripRef
		Hour int
	}
	NewTripCreate struct {
		Ref    TripRef
		Hour   int
		Minute int
	}
)

func (Exit) act()               {}
func (BookingMenu) act()        {}
func (MeMenu) act()             {}
func (Money) act()              {}
func (ShowDay) act()            {}
func (ShowLocation) act()       {}
func (BookingStart) act()       {}
func (BookingDay) act()         {}
func (BookingConfirm) act()     {}
func (DriverConfirm) act()      {}
func (EditList) act()           {}
func (EditShow) act()           {}
func (EditSuspendPrompt) act()  {}
func (EditSuspend) act()        {}
func (EditDeletePrompt) act()   {}
func (EditDelete) act()         {}
func (MeTrips) act()            {}
func (MeDriver) act()           {}
func (MeSlotsMenu) act()        {}
func (MeConfirmDriver) act()    {}
func (MeDropDriver) act()       {}
func (MeRemovalPrompt) act()    {}
func (MeConfirmRemove) act()    {}
func (TripNew) act()            {}
func (TripEdit) act()           {}
func (TripHourMenu) act()       {}
func (TripMinuteMenu) act()     {}
func (TripSetTime) act()        {}
func (TripSuspend) act()        {}
func (TripPassengers) act()     {}
func (TripDropSeatPrompt) act() {}
func (TripDropSeat) act()       {}
func (TripRemovePrompt) act()   {}
func (TripRemove) act()         {}
func (NewTripDays) act()        {}
func (NewTripHours) act()       {}
func (NewTripMinutes) act()     {}
func (NewTripCreate) act()      {}

// ParseAction maps a decoded token to its action. Unknown commands, wrong
// arity and malformed fields all fail; callers degrade the failure to a
// generic notice rather than propagating it.
func ParseAction(command string, fields []string) (Action, error) {
	switch command {
	case cmdExit:
		return parseNiladic(Exit{}, fields)
	case cmdBookingMenu:
		return parseNiladic(BookingMenu{}, fields)
	case cmdMeMenu:
		return parseNiladic(MeMenu{}, fields)
	case cmdMoney:
		return parseNiladic(Money{}, fields)
	case cmdShowDay:
		if len(fields) != 1 {
			return nil, arity(command, fields)
		}
		day, ok := trip.ParseDay(fields[0])
		if !ok {
			return nil, badField(command, "day", fields[0])
		}
		return ShowDay{Day: day}, nil
	case cmdLocation:
		if len(fields) != 3 {
			return nil, arity(command, fields)
		}
		key, err := parseKey(command, fields[0], fields[1], fields[2])
		if err != nil {
			return nil, err
		}
		return ShowLocation{Key: key}, nil
	case cmdBooking:
		return parseBooking(fields)
	case cmdAlertUser:
		return parseAlertUser(fields)
	case cmdEditBook:
		return parseEditBook(fields)
	case cmdMe:
		return parseMe(fields)
	case cmdTrips:
		return parseTrips(fields)
	case cmdNewTrip:
		return parseNewTrip(fields)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, command)
}

func parseNiladic(a Action, fields []string) (Action, error) {
	if len(fields) != 0 {
		return nil, fmt.Errorf("%w: unexpected fields %v", ErrUnknownAction, fields)
	}
	return a, nil
}

func parseBooking(fields []string) (Action, error) {
	if len(fields) == 0 {
		return nil, arity(cmdBooking, fields)
	}
	switch fields[0] {
	case subStart:
		if len(fields) != 2 {
			return nil, arity(cmdBooking, fields)
		}
		mode, err := parseSeatMode(cmdBooking, fields[1])
		if err != nil {
			return nil, err
		}
		return BookingStart{Mode: mode}, nil
	case subDay:
		if len(fields) != 3 {
			return nil, arity(cmdBooking, fields)
		}
		mode, err := parseSeatMode(cmdBooking, fields[1])
		if err != nil {
			return nil, err
		}
		day, ok := trip.ParseDay(fields[2])
		if !ok {
			return nil, badField(cmdBooking, "day", fields[2])
		}
		return BookingDay{Mode: mode, Day: day}, nil
	case subConfirm:
		if len(fields) != 5 {
			return nil, arity(cmdBooking, fields)
		}
		key, err := parseKey(cmdBooking, fields[1], fields[2], fields[3])
		if err != nil {
			return nil, err
		}
		mode, err := parseSeatMode(cmdBooking, fields[4])
		if err != nil {
			return nil, err
		}
		return BookingConfirm{Key: key, Mode: mode}, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrUnknownAction, cmdBooking, fields[0])
}

func parseAlertUser(fields []string) (Action, error) {
	if len(fields) != 5 || fields[0] != subConfirmBooking {
		return nil, arity(cmdAlertUser, fields)
	}
	dir, ok := trip.ParseDirection(fields[1])
	if !ok {
		return nil, badField(cmdAlertUser, "direction", fields[1])
	}
	day, ok := trip.ParseDay(fields[2])
	if !ok {
		return nil, badField(cmdAlertUser, "day", fields[2])
	}
	if fields[3] == "" {
		return nil, badField(cmdAlertUser, "passenger", fields[3])
	}
	mode, err := parseSeatMode(cmdAlertUser, fields[4])
	if err != nil {
		return nil, err
	}
	return DriverConfirm{
		Direction: dir,
		Day:       day,
		Passenger: types.ID(fields[3]),
		Mode:      mode,
	}, nil
}

func parseEditBook(fields []string) (Action, error) {
	if len(fields) == 0 {
		return nil, arity(cmdEditBook, fields)
	}
	if fields[0] == subList {
		return parseNiladic(EditList{}, fields[1:])
	}
	if len(fields) != 5 {
		return nil, arity(cmdEditBook, fields)
	}
	key, err := parseKey(cmdEditBook, fields[1], fields[2], fields[3])
	if err != nil {
		return nil, err
	}
	mode, ok := trip.ParseMode(fields[4])
	if !ok {
		return nil, badField(cmdEditBook, "mode", fields[4])
	}
	ref := BookingRef{Key: key, Mode: mode}
	switch fields[0] {
	case subAction:
		return EditShow{Booking: ref}, nil
	case subSuspend:
		return EditSuspendPrompt{Booking: ref}, nil
	case subConfirmSuspend:
		return EditSuspend{Booking: ref}, nil
	case subDeletion:
		return EditDeletePrompt{Booking: ref}, nil
	case subConfirmDelete:
		return EditDelete{Booking: ref}, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrUnknownAction, cmdEditBook, fields[0])
}

func parseMe(fields []string) (Action, error) {
	if len(fields) == 0 {
		return nil, arity(cmdMe, fields)
	}
	switch fields[0] {
	case subMeTrips:
		return parseNiladic(MeTrips{}, fields[1:])
	case subMeDriver:
		return parseNiladic(MeDriver{}, fields[1:])
	case subMeSlots:
		return parseNiladic(MeSlotsMenu{}, fields[1:])
	case subMeDropDriver:
		return parseNiladic(MeDropDriver{}, fields[1:])
	case subMeRemoval:
		return parseNiladic(MeRemovalPrompt{}, fields[1:])
	case subMeConfirmRemove:
		return parseNiladic(MeConfirmRemove{}, fields[1:])
	case subMeConfirmDriver:
		if len(fields) != 2 {
			return nil, arity(cmdMe, fields)
		}
		slots, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, badField(cmdMe, "slots", fields[1])
		}
		return MeConfirmDriver{Slots: slots}, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrUnknownAction, cmdMe, fields[0])
}

func parseTrips(fields []string) (Action, error) {
	if len(fields) == 0 {
		return nil, arity(cmdTrips, fields)
	}
	if fields[0] == subNewTrip {
		return parseNiladic(TripNew{}, fields[1:])
	}
	if len(fields) < 3 {
		return nil, arity(cmdTrips, fields)
	}
	ref, err := parseTripRef(cmdTrips, fields[1], fields[2])
	if err != nil {
		return nil, err
	}
	rest := fields[3:]
	switch fields[0] {
	case subEditTrip:
		return parseNiladic(TripEdit{Ref: ref}, rest)
	case subEditHour:
		return parseNiladic(TripHourMenu{Ref: ref}, rest)
	case subSuspendTrip:
		return parseNiladic(TripSuspend{Ref: ref}, rest)
	case subEditUser:
		return parseNiladic(TripPassengers{Ref: ref}, rest)
	case subRemoveTrip:
		return parseNiladic(TripRemovePrompt{Ref: ref}, rest)
	case subConfirmRemTrip:
		return parseNiladic(TripRemove{Ref: ref}, rest)
	case subEditMinutes:
		if len(rest) != 1 {
			return nil, arity(cmdTrips, fields)
		}
		hour, err := parseClock(cmdTrips, "hour", rest[0], 23)
		if err != nil {
			return nil, err
		}
		return TripMinuteMenu{Ref: ref, Hour: hour}, nil
	case subConfirmTime:
		if len(rest) != 2 {
			return nil, arity(cmdTrips, fields)
		}
		hour, err := parseClock(cmdTrips, "hour", rest[0], 23)
		if err != nil {
			return nil, err
		}
		minute, err := parseClock(cmdTrips, "minute", rest[1], 59)
		if err != nil {
			return nil, err
		}
		return TripSetTime{Ref: ref, Hour: hour, Minute: minute}, nil
	case subRemoveUser, subConfirmRemUser:
		if len(rest) != 2 {
			return nil, arity(cmdTrips, fields)
		}
		mode, err := parseSeatMode(cmdTrips, rest[1])
		if err != nil {
			return nil, err
		}
		if fields[0] == subRemoveUser {
			return TripDropSeatPrompt{Ref: ref, Passenger: types.ID(rest[0]), Mode: mode}, nil
		}
		return TripDropSeat{Ref: ref, Passenger: types.ID(rest[0]), Mode: mode}, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrUnknownAction, cmdTrips, fields[0])
}

// NEWTRIP accumulates its fields across screens: direction, then day, then
// hour, then minute. Arity alone selects the screen.
func parseNewTrip(fields []string) (Action, error) {
	if len(fields) == 0 || len(fields) > 4 {
		return nil, arity(cmdNewTrip, fields)
	}
	dir, ok := trip.ParseDirection(fields[0])
	if !ok {
		return nil, badField(cmdNewTrip, "direction", fields[0])
	}
	if len(fields) == 1 {
		return NewTripDays{Direction: dir}, nil
	}
	day, ok := trip.ParseDay(fields[1])
	if !ok {
		return nil, badField(cmdNewTrip, "day", fields[1])
	}
	ref := TripRef{Direction: dir, Day: day}
	if len(fields) == 2 {
		return NewTripHours{Ref: ref}, nil
	}
	hour, err := parseClock(cmdNewTrip, "hour", fields[2], 23)
	if err != nil {
		return nil, err
	}
	if len(fields) == 3 {
		return NewTripMinutes{Ref: ref, Hour: hour}, nil
	}
	minute, err := parseClock(cmdNewTrip, "minute", fields[3], 59)
	if err != nil {
		return nil, err
	}
	return NewTripCreate{Ref: ref, Hour: hour, Minute: minute}, nil
}

func parseKey(command, dir, day, driver string) (trip.Key, error) {
	d, ok := trip.ParseDirection(dir)
	if !ok {
		return trip.Key{}, badField(command, "direction", dir)
	}
	w, ok := trip.ParseDay(day)
	if !ok {
		return trip.Key{}, badField(command, "day", day)
	}
	if driver == "" {
		return trip.Key{}, badField(command, "driver", driver)
	}
	return trip.Key{Direction: d, Day: w, Driver: types.ID(driver)}, nil
}

func parseTripRef(command, dir, day string) (TripRef, error) {
	d, ok := trip.ParseDirection(dir)
	if !ok {
		return TripRef{}, badField(command, "direction", dir)
	}
	w, ok := trip.ParseDay(day)
	if !ok {
		return TripRef{}, badField(command, "day", day)
	}
	return TripRef{Direction: d, Day: w}, nil
}

// parseSeatMode accepts the two bookable sets; suspended is not a choice a
// keyboard ever offers for new seats.
func parseSeatMode(command, s string) (trip.Mode, error) {
	mode, ok := trip.ParseMode(s)
	if !ok || mode == trip.ModeSuspended {
		return "", badField(command, "mode", s)
	}
	return mode, nil
}

func parseClock(command, field, s string, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return 0, badField(command, field, s)
	}
	return n, nil
}

func arity(command string, fields []string) error {
	return fmt.Errorf("%w: %s arity %d", ErrUnknownAction, command, len(fields))
}

func badField(command, field, value string) error {
	return fmt.Errorf("%w: %s bad %s %q", ErrUnknownAction, command, field, value)
}
