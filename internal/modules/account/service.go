// README: Registration and driver lifecycle: users join, become drivers, and leave.
package account

import (
	"errors"

	"carpool/internal/modules/ledger"
	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

var ErrAlreadyRegistered = errors.New("user already registered")

// MaxSlots caps the seat count offered in the slot-selection menu.
const MaxSlots = 5

type Service struct {
	store *trip.Store
}

func NewService(store *trip.Store) *Service {
	return &Service{store: store}
}

// Register adds a user record. The display name comes from the transport's
// registration flow and is the one the renderer shows to both sides.
func (s *Service) Register(id types.ID, name string) error {
	if id == "" || name == "" {
		return trip.ErrBadRequest
	}
	return s.store.Update(func(st *trip.State) error {
		if _, ok := st.Users[id]; ok {
			return ErrAlreadyRegistered
		}
		st.Users[id] = &trip.User{ID: id, Name: name, Debit: make(map[types.ID]int64)}
		return nil
	})
}

// BecomeDriver promotes a registered user, or updates the slot count of an
// existing driver. It reports whether the driver already existed.
func (s *Service) BecomeDriver(id types.ID, slots int) (bool, error) {
	if slots < 1 || slots > MaxSlots {
		return false, trip.ErrBadRequest
	}
	existed := false
	err := s.store.Update(func(st *trip.State) error {
		if _, err := st.User(id); err != nil {
			return err
		}
		_, existed = st.Drivers[id]
		// Shrinking below the fullest owned trip would break the occupancy
		// invariant for seats already committed.
		for _, days := range st.Trips {
			for _, drivers := range days {
				if t, ok := drivers[id]; ok && t.Occupancy() > slots {
					return trip.ErrCarFull
				}
			}
		}
		st.Drivers[id] = &trip.Driver{ID: id, Slots: slots}
		return nil
	})
	return existed, err
}

// RemoveDriver drops the driver record and cascades over every owned trip.
func (s *Service) RemoveDriver(id types.ID) error {
	return s.store.Update(func(st *trip.State) error {
		return st.DeleteDriver(id)
	})
}

// RemoveUser erases the user from the system and returns the creditors
// still owed money, so the caller can send them a best-effort notice.
// Ledger entries held BY other users naming this user survive nowhere:
// only debts this user owed are reported; debts owed TO them (as driver)
// remain in the other users' debit maps.
func (s *Service) RemoveUser(id types.ID) ([]ledger.Entry, error) {
	var owed map[types.ID]int64
	names := make(map[types.ID]string)
	err := s.store.Update(func(st *trip.State) error {
		var err error
		owed, err = st.DeleteUser(id)
		if err != nil {
			return err
		}
		for creditor := range owed {
			if u, uerr := st.User(creditor); uerr == nil {
				names[creditor] = u.Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, 0, len(owed))
	for creditor, cents := range owed {
		entries = append(entries, ledger.Entry{
			Counterparty: creditor,
			Name:         names[creditor],
			Amount:       types.Money{Amount: cents, Currency: ledger.Currency},
		})
	}
	return entries, nil
}
