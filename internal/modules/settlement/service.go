// README: Nightly day-close processing and the Saturday balance report.
package settlement

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"carpool/internal/calendar"
	"carpool/internal/effect"
	"carpool/internal/modules/ledger"
	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

type Service struct {
	store  *trip.Store
	ledger *ledger.Service
	cal    *calendar.Calendar
	price  int64 // cents charged per completed seat
	log    *slog.Logger
}

func NewService(store *trip.Store, led *ledger.Service, cal *calendar.Calendar, priceCents int64, log *slog.Logger) *Service {
	return &Service{store: store, ledger: led, cal: cal, price: priceCents, log: log}
}

// Run executes the nightly job for a run instant. The calendar decides
// whether this run settles anything; Saturday runs settle Friday, Sunday and
// Monday runs are no-ops, holiday runs are skipped.
func (s *Service) Run(now time.Time) ([]effect.Effect, error) {
	date, ok := s.cal.ShouldSettle(now)
	if !ok {
		return nil, nil
	}
	day, ok := trip.DayOf(date)
	if !ok {
		return nil, nil
	}
	return s.ProcessDay(day)
}

// ProcessDay closes out every trip of one operating day: charges committed
// seats, lifts day suspensions, restores suspended passengers where a seat
// is still free, then clears one-shot reservations and meeting points.
// A trip that fails to settle is logged and skipped; the rest of the day
// still settles.
func (s *Service) ProcessDay(day trip.Day) ([]effect.Effect, error) {
	var effects []effect.Effect
	err := s.store.Update(func(st *trip.State) error {
		for _, dir := range trip.Directions {
			for _, driver := range sortedDrivers(st.Trips[dir][day]) {
				key := trip.Key{Direction: dir, Day: day, Driver: driver}
				effs, err := s.settleTrip(st, key)
				if err != nil {
					s.log.Error("trip settlement failed",
						"direction", dir, "day", day, "driver", driver, "error", err)
					continue
				}
				effects = append(effects, effs...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return effects, nil
}

func (s *Service) settleTrip(st *trip.State, key trip.Key) ([]effect.Effect, error) {
	t, err := st.Trip(key)
	if err != nil {
		return nil, err
	}
	var out []effect.Effect

	if t.Suspended {
		// A suspended day costs nobody anything; the trip comes back for
		// next week and every booking on it is valid again.
		t.Suspended = false
		info, err := st.TripInfo(key)
		if err != nil {
			return nil, err
		}
		out = append(out, effect.Effect{
			Recipient: key.Driver,
			Payload:   effect.TripNotice{Event: effect.TripRestored, Trip: info},
		})
		for _, p := range info.Permanent {
			out = append(out, bookingNotice(st, effect.BookingResumed, info, p, trip.ModePermanent))
		}
		for _, p := range info.Temporary {
			out = append(out, bookingNotice(st, effect.BookingResumed, info, p, trip.ModeTemporary))
		}
	} else {
		charged, err := s.chargeSeats(st, key, t)
		if err != nil {
			return nil, err
		}
		out = append(out, charged...)
		out = append(out, s.restoreSuspended(st, key, t)...)
	}

	// One-shot reservations are consumed; the meeting point only ever
	// applied to the day just closed.
	t.Temporary = nil
	t.Location = nil
	return out, nil
}

func (s *Service) chargeSeats(st *trip.State, key trip.Key, t *trip.Trip) ([]effect.Effect, error) {
	driverName := userName(st, key.Driver)
	amount := types.Money{Amount: s.price, Currency: ledger.Currency}
	var out []effect.Effect
	for _, group := range [][]types.ID{t.Permanent, t.Temporary} {
		for _, p := range group {
			if err := st.Charge(p, key.Driver, s.price); err != nil {
				// A seat holding an id with no user record (pre-validation
				// data, manual edits) must not poison the rest of the trip.
				if errors.Is(err, trip.ErrUserNotFound) {
					s.log.Warn("skipping seat with no user record",
						"passenger", p, "direction", key.Direction,
						"day", key.Day, "driver", key.Driver)
					continue
				}
				return nil, err
			}
			out = append(out,
				effect.Effect{
					Recipient: p,
					Payload: effect.LedgerNotice{
						Event:        effect.LedgerCharged,
						Counterparty: key.Driver,
						Name:         driverName,
						Amount:       amount,
					},
				},
				effect.Effect{
					Recipient: key.Driver,
					Payload: effect.LedgerNotice{
						Event:        effect.LedgerCredited,
						Counterparty: p,
						Name:         userName(st, p),
						Amount:       amount,
					},
				})
		}
	}
	return out, nil
}

// restoreSuspended hands seats back to passengers who sat out the day just
// settled. The capacity check runs before one-shot reservations are cleared,
// so a seat taken during the suspension stays taken.
func (s *Service) restoreSuspended(st *trip.State, key trip.Key, t *trip.Trip) []effect.Effect {
	var out []effect.Effect
	for _, p := range append([]types.ID{}, t.SuspendedUsers...) {
		err := st.ResumePassenger(key, p)
		info, infoErr := st.TripInfo(key)
		if infoErr != nil {
			continue
		}
		switch {
		case err == nil:
			out = append(out,
				bookingNotice(st, effect.BookingResumed, info, p, trip.ModePermanent),
				effect.Effect{
					Recipient: key.Driver,
					Payload: effect.BookingNotice{
						Event:         effect.BookingResumed,
						Trip:          info,
						Passenger:     p,
						PassengerName: userName(st, p),
						Mode:          trip.ModePermanent,
					},
				})
		case errors.Is(err, trip.ErrCarFull):
			out = append(out, bookingNotice(st, effect.BookingRestoreFailed, info, p, trip.ModeSuspended))
		default:
			s.log.Error("restore failed", "driver", key.Driver, "passenger", p, "error", err)
		}
	}
	return out
}

// WeeklyReport builds the Saturday balance summaries: a debt report for
// every user who owes anything, plus a credit report for every driver owed
// anything. Users with nothing to report get nothing.
func (s *Service) WeeklyReport() ([]effect.Effect, error) {
	var users []types.ID
	var drivers map[types.ID]bool
	err := s.store.View(func(st *trip.State) error {
		drivers = make(map[types.ID]bool, len(st.Drivers))
		for id := range st.Users {
			users = append(users, id)
		}
		for id := range st.Drivers {
			drivers[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	var out []effect.Effect
	for _, id := range users {
		debits, err := s.ledger.Debits(id)
		if err != nil {
			return nil, err
		}
		if len(debits) > 0 {
			out = append(out, effect.Effect{
				Recipient: id,
				Payload:   effect.SummaryNotice{Kind: effect.SummaryDebts, Entries: debits},
			})
		}
		if !drivers[id] {
			continue
		}
		credits, err := s.ledger.Credits(id)
		if err != nil {
			return nil, err
		}
		if len(credits) > 0 {
			out = append(out, effect.Effect{
				Recipient: id,
				Payload:   effect.SummaryNotice{Kind: effect.SummaryCredits, Entries: credits},
			})
		}
	}
	return out, nil
}

func bookingNotice(st *trip.State, ev effect.BookingEvent, info trip.Info, p types.ID, mode trip.Mode) effect.Effect {
	return effect.Effect{
		Recipient: p,
		Payload: effect.BookingNotice{
			Event:         ev,
			Trip:          info,
			Passenger:     p,
			PassengerName: userName(st, p),
			Mode:          mode,
		},
	}
}

func userName(st *trip.State, id types.ID) string {
	if u, err := st.User(id); err == nil {
		return u.Name
	}
	return ""
}

func sortedDrivers(trips map[types.ID]*trip.Trip) []types.ID {
	out := make([]types.ID, 0, len(trips))
	for id := range trips {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
