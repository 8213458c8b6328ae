// README: JSON views for outbound effects.
package http

import (
	"carpool/internal/effect"
	"carpool/internal/types"
)

type buttonView struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type effectView struct {
	Recipient types.ID       `json:"recipient"`
	Kind      string         `json:"kind"`
	Body      any            `json:"body"`
	Keyboard  [][]buttonView `json:"keyboard,omitempty"`
}

func renderEffects(effects []effect.Effect) []effectView {
	views := make([]effectView, 0, len(effects))
	for _, e := range effects {
		views = append(views, effectView{
			Recipient: e.Recipient,
			Kind:      kindOf(e.Payload),
			Body:      e.Payload,
			Keyboard:  renderKeyboard(e.Keyboard),
		})
	}
	return views
}

func renderKeyboard(rows [][]effect.Button) [][]buttonView {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]buttonView, 0, len(rows))
	for _, row := range rows {
		r := make([]buttonView, 0, len(row))
		for _, b := range row {
			r = append(r, buttonView{Label: b.Label, Token: b.Token})
		}
		out = append(out, r)
	}
	return out
}

func kindOf(p effect.Payload) string {
	switch p.(type) {
	case effect.Prompt:
		return "prompt"
	case effect.TripInfoNotice:
		return "trip_info"
	case effect.BookingNotice:
		return "booking"
	case effect.TripNotice:
		return "trip"
	case effect.LedgerNotice:
		return "ledger"
	case effect.SummaryNotice:
		return "summary"
	case effect.AccountNotice:
		return "account"
	case effect.DayRoster:
		return "day_roster"
	case effect.ErrorNotice:
		return "error"
	default:
		return "unknown"
	}
}
