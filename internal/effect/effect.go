// README: Outbound messages produced by command handling and scheduled jobs.
package effect

import (
	"carpool/internal/modules/ledger"
	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

// Effect is one message to deliver: a payload addressed to a recipient,
// optionally with an inline keyboard of callback tokens.
type Effect struct {
	Recipient types.ID
	Payload   Payload
	Keyboard  [][]Button
}

// Button pairs a display label with the encoded token fired when pressed.
type Button struct {
	Label string
	Token string
}

// Payload is the closed set of message variants. The transport renders each
// variant; handlers never format user-facing text themselves.
type Payload interface {
	payload()
}

// Prompt asks the recipient to pick from the attached keyboard.
type Prompt struct {
	Text string
}

// TripInfoNotice shows a trip's details, typically above a keyboard of
// actions on that trip.
type TripInfoNotice struct {
	Trip trip.Info
}

type BookingEvent string

const (
	// BookingRequested is sent to the driver when a passenger asks for a
	// seat; confirmation commits the reservation.
	BookingRequested BookingEvent = "requested"
	BookingConfirmed BookingEvent = "confirmed"
	BookingDeleted   BookingEvent = "deleted"
	BookingSuspended BookingEvent = "suspended"
	BookingResumed   BookingEvent = "resumed"
	// BookingRestoreFailed means the nightly job could not give a suspended
	// passenger their seat back because the car filled up in the meantime.
	BookingRestoreFailed BookingEvent = "restore_failed"
	// BookingDropped means the trip was deleted or replaced underneath a
	// committed reservation.
	BookingDropped BookingEvent = "dropped"
)

// BookingNotice reports a change to one passenger's reservation on a trip.
type BookingNotice struct {
	Event         BookingEvent
	Trip          trip.Info
	Passenger     types.ID
	PassengerName string
	Mode          trip.Mode
}

type TripEvent string

const (
	TripCreated      TripEvent = "created"
	TripReplaced     TripEvent = "replaced"
	TripTimeChanged  TripEvent = "time_changed"
	TripSuspended    TripEvent = "suspended"
	TripRestored     TripEvent = "restored"
	TripDeleted      TripEvent = "deleted"
	TripMeetingPoint TripEvent = "meeting_point"
)

// TripNotice reports a change to a trip as a whole.
type TripNotice struct {
	Event TripEvent
	Trip  trip.Info
}

type LedgerEvent string

const (
	LedgerCharged  LedgerEvent = "charged"
	LedgerCredited LedgerEvent = "credited"
	// LedgerUnsettled tells a creditor that the counterparty left the
	// system with this amount still owed.
	LedgerUnsettled LedgerEvent = "unsettled"
)

// LedgerNotice reports a single balance movement against a counterparty.
type LedgerNotice struct {
	Event        LedgerEvent
	Counterparty types.ID
	Name         string
	Amount       types.Money
}

type SummaryKind string

const (
	SummaryDebts   SummaryKind = "debts"
	SummaryCredits SummaryKind = "credits"
)

// SummaryNotice carries a balance report; empty reports are never emitted.
type SummaryNotice struct {
	Kind    SummaryKind
	Entries []ledger.Entry
}

type AccountEvent string

const (
	AccountRegistered    AccountEvent = "registered"
	AccountDriverEnabled AccountEvent = "driver_enabled"
	AccountDriverRemoved AccountEvent = "driver_removed"
	AccountRemoved       AccountEvent = "removed"
)

// AccountNotice reports a change to the recipient's own account.
type AccountNotice struct {
	Event AccountEvent
	Name  string
}

// DayRoster lists the bookable trips of one day.
type DayRoster struct {
	Day   trip.Day
	Trips []trip.Info
}

// ErrorNotice tells the recipient their action could not be performed.
// Malformed or stale tokens degrade to this; they never fail the dispatch.
type ErrorNotice struct {
	Reason string
}

func (Prompt) payload()         {}
func (TripInfoNotice) payload() {}
func (BookingNotice) payload()  {}
func (TripNotice) payload()     {}
func (LedgerNotice) payload()   {}
func (SummaryNotice) payload()  {}
func (AccountNotice) payload()  {}
func (DayRoster) payload()      {}
func (ErrorNotice) payload()    {}

// Sink receives effects for delivery. Scheduled jobs write to a sink since
// no request is waiting on their output.
type Sink interface {
	Deliver(effects ...Effect)
}
