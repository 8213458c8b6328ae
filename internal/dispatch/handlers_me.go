// README: Account flows: personal menu, driver enrolment, balances, removal.
package dispatch

import (
	"carpool/internal/effect"
	"carpool/internal/modules/account"
	"carpool/internal/token"
	"carpool/internal/types"
)

func (d *Dispatcher) meMenu(actor types.ID) ([]effect.Effect, error) {
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "What do you want to do?"},
		Keyboard:  meKeyboard(d.store.IsDriver(actor)),
	}}, nil
}

func (d *Dispatcher) money(actor types.ID) ([]effect.Effect, error) {
	debits, err := d.ledger.Debits(actor)
	if err != nil {
		return nil, err
	}
	var out []effect.Effect
	if len(debits) > 0 {
		out = append(out, effect.Effect{
			Recipient: actor,
			Payload:   effect.SummaryNotice{Kind: effect.SummaryDebts, Entries: debits},
		})
	}
	if d.store.IsDriver(actor) {
		credits, err := d.ledger.Credits(actor)
		if err != nil {
			return nil, err
		}
		if len(credits) > 0 {
			out = append(out, effect.Effect{
				Recipient: actor,
				Payload:   effect.SummaryNotice{Kind: effect.SummaryCredits, Entries: credits},
			})
		}
	}
	if len(out) == 0 {
		out = append(out, effect.Effect{
			Recipient: actor,
			Payload:   effect.Prompt{Text: "No outstanding balances."},
		})
	}
	out[len(out)-1].Keyboard = backExit(token.MustEncode(cmdMeMenu))
	return out, nil
}

func (d *Dispatcher) meDriver(actor types.ID) ([]effect.Effect, error) {
	if d.store.IsDriver(actor) {
		return []effect.Effect{{
			Recipient: actor,
			Payload: effect.Prompt{
				Text: "Leaving the driver list deletes all your trips, passengers included. Proceed?"},
			Keyboard: yesNo(
				token.MustEncode(cmdMe, subMeDropDriver),
				token.MustEncode(cmdMeMenu)),
		}}, nil
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload: effect.Prompt{
			Text: "As a driver you manage your own trips from this menu. Sign up as a driver?"},
		Keyboard: yesNo(
			token.MustEncode(cmdMe, subMeSlots),
			token.MustEncode(cmdMeMenu)),
	}}, nil
}

func (d *Dispatcher) meSlotsMenu(actor types.ID) ([]effect.Effect, error) {
	return []effect.Effect{{
		Recipient: actor,
		Payload:   effect.Prompt{Text: "How many seats does your car have, driver excluded?"},
		Keyboard:  slotsKeyboard(account.MaxSlots),
	}}, nil
}

func (d *Dispatcher) meConfirmDriver(actor types.ID, slots int) ([]effect.Effect, error) {
	if _, err := d.accounts.BecomeDriver(actor, slots); err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload: effect.AccountNotice{
			Event: effect.AccountDriverEnabled,
			Name:  d.store.UserName(actor),
		},
		Keyboard: backExit(token.MustEncode(cmdMeMenu)),
	}}, nil
}

func (d *Dispatcher) meDropDriver(actor types.ID) ([]effect.Effect, error) {
	if err := d.accounts.RemoveDriver(actor); err != nil {
		return nil, err
	}
	return []effect.Effect{{
		Recipient: actor,
		Payload: effect.AccountNotice{
			Event: effect.AccountDriverRemoved,
			Name:  d.store.UserName(actor),
		},
		Keyboard: backExit(token.MustEncode(cmdMeMenu)),
	}}, nil
}

// meRemovalPrompt warns about unsettled debts before the actor confirms
// leaving: creditors get told, the debts themselves are not preserved.
func (d *Dispatcher) meRemovalPrompt(actor types.ID) ([]effect.Effect, error) {
	debits, err := d.ledger.Debits(actor)
	if err != nil {
		return nil, err
	}
	var out []effect.Effect
	if len(debits) > 0 {
		out = append(out, effect.Effect{
			Recipient: actor,
			Payload:   effect.SummaryNotice{Kind: effect.SummaryDebts, Entries: debits},
		})
	}
	out = append(out, effect.Effect{
		Recipient: actor,
		Payload: effect.Prompt{
			Text: "Leaving deletes all your reservations and trips. Your creditors will be " +
				"notified of any unsettled debt. Proceed?"},
		Keyboard: yesNo(
			token.MustEncode(cmdMe, subMeConfirmRemove),
			token.MustEncode(cmdMeMenu)),
	})
	return out, nil
}

func (d *Dispatcher) meConfirmRemove(actor types.ID) ([]effect.Effect, error) {
	name := d.store.UserName(actor)
	owed, err := d.accounts.RemoveUser(actor)
	if err != nil {
		return nil, err
	}
	out := []effect.Effect{{
		Recipient: actor,
		Payload:   effect.AccountNotice{Event: effect.AccountRemoved, Name: name},
	}}
	for _, entry := range owed {
		out = append(out, effect.Effect{
			Recipient: entry.Counterparty,
			Payload: effect.LedgerNotice{
				Event:        effect.LedgerUnsettled,
				Counterparty: actor,
				Name:         name,
				Amount:       entry.Amount,
			},
		})
	}
	return out, nil
}
