// README: Debt/credit ledger queries over the shared store.
package ledger

import (
	"sort"

	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

// Currency of all ledger amounts. The ledger is informational; nothing here
// moves money.
const Currency = "EUR"

type Entry struct {
	Counterparty types.ID
	Name         string
	Amount       types.Money
}

type Service struct {
	store *trip.Store
}

func NewService(store *trip.Store) *Service {
	return &Service{store: store}
}

// Charge accumulates a trip price into the passenger's debit toward the
// driver.
func (s *Service) Charge(passenger, driver types.ID, cents int64) error {
	return s.store.Update(func(st *trip.State) error {
		return st.Charge(passenger, driver, cents)
	})
}

// Debits lists who the user owes money to; zero entries are omitted.
func (s *Service) Debits(user types.ID) ([]Entry, error) {
	var out []Entry
	err := s.store.View(func(st *trip.State) error {
		u, err := st.User(user)
		if err != nil {
			return err
		}
		for creditor, cents := range u.Debit {
			if cents <= 0 {
				continue
			}
			out = append(out, entry(st, creditor, cents))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// Credits computes, for a driver, who owes them money. Derived on demand by
// scanning every user's debit map.
func (s *Service) Credits(driver types.ID) ([]Entry, error) {
	var out []Entry
	err := s.store.View(func(st *trip.State) error {
		if _, err := st.Driver(driver); err != nil {
			return err
		}
		for id, u := range st.Users {
			if cents := u.Debit[driver]; cents > 0 {
				out = append(out, entry(st, id, cents))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

func entry(st *trip.State, id types.ID, cents int64) Entry {
	name := ""
	if u, err := st.User(id); err == nil {
		name = u.Name
	}
	return Entry{
		Counterparty: id,
		Name:         name,
		Amount:       types.Money{Amount: cents, Currency: Currency},
	}
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Counterparty < entries[j].Counterparty
	})
}
