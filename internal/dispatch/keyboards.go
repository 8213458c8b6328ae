// README: Inline keyboard builders. Dynamic rows go through Encode and drop
// entries that blow the token budget; fixed menus use MustEncode.
package dispatch

import (
	"fmt"
	"strconv"

	"carpool/internal/effect"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/trip"
	"carpool/internal/token"
	"carpool/internal/types"
)

func btn(label, tok string) effect.Button {
	return effect.Button{Label: label, Token: tok}
}

func row(buttons ...effect.Button) []effect.Button {
	return buttons
}

func exitRow() []effect.Button {
	return row(btn("Exit", token.MustEncode(cmdExit)))
}

func backExit(backToken string) [][]effect.Button {
	return [][]effect.Button{
		row(btn("Back", backToken)),
		exitRow(),
	}
}

func yesNo(yesToken, noToken string) [][]effect.Button {
	return [][]effect.Button{
		row(btn("Yes", yesToken), btn("No", noToken)),
	}
}

func bookingMenuKeyboard(session bool) [][]effect.Button {
	var rows [][]effect.Button
	rows = append(rows, row(btn("Book a one-shot seat",
		token.MustEncode(cmdBooking, subStart, string(trip.ModeTemporary)))))
	if !session {
		rows = append(rows, row(btn("Book a recurring seat",
			token.MustEncode(cmdBooking, subStart, string(trip.ModePermanent)))))
	}
	rows = append(rows,
		row(btn("My reservations", token.MustEncode(cmdEditBook, subList))),
		row(btn("My balance", token.MustEncode(cmdMoney))),
		exitRow(),
	)
	return rows
}

func dayKeyboard(mode trip.Mode, days []trip.Day) [][]effect.Button {
	var rows [][]effect.Button
	for _, day := range days {
		rows = append(rows, row(btn(string(day),
			token.MustEncode(cmdBooking, subDay, string(mode), string(day)))))
	}
	return append(rows, backExit(token.MustEncode(cmdBookingMenu))...)
}

// tripListKeyboard offers one button per bookable trip of a day.
func tripListKeyboard(mode trip.Mode, trips []trip.Info) [][]effect.Button {
	var rows [][]effect.Button
	for _, info := range trips {
		tok, err := token.Encode(cmdBooking, subConfirm,
			string(info.Key.Direction), string(info.Key.Day),
			string(info.Key.Driver), string(mode))
		if err != nil {
			continue
		}
		rows = append(rows, row(btn(tripLabel(info), tok)))
	}
	return append(rows, backExit(token.MustEncode(cmdBooking, subStart, string(mode)))...)
}

func driverConfirmKeyboard(a BookingConfirm, passenger string) [][]effect.Button {
	tok, err := token.Encode(cmdAlertUser, subConfirmBooking,
		string(a.Key.Direction), string(a.Key.Day), passenger, string(a.Mode))
	if err != nil {
		return nil
	}
	return [][]effect.Button{row(btn("Confirm", tok))}
}

func bookingListKeyboard(views []booking.BookingView) [][]effect.Button {
	var rows [][]effect.Button
	for _, v := range views {
		tok, err := token.Encode(cmdEditBook, subAction,
			string(v.Key.Direction), string(v.Key.Day),
			string(v.Key.Driver), string(v.Mode))
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%s %s %s", v.DriverName, v.Key.Day, v.Time)
		if v.TripSuspended {
			label = v.DriverName + " (trip suspended)"
		}
		rows = append(rows, row(btn(label, tok)))
	}
	return append(rows, backExit(token.MustEncode(cmdBookingMenu))...)
}

func bookingActionKeyboard(ref BookingRef) [][]effect.Button {
	fields := []string{
		string(ref.Key.Direction), string(ref.Key.Day),
		string(ref.Key.Driver), string(ref.Mode),
	}
	var rows [][]effect.Button
	switch ref.Mode {
	case trip.ModePermanent:
		if tok, err := token.Encode(cmdEditBook, append([]string{subSuspend}, fields...)...); err == nil {
			rows = append(rows, row(btn("Suspend reservation", tok)))
		}
	case trip.ModeSuspended:
		if tok, err := token.Encode(cmdEditBook, append([]string{subSuspend}, fields...)...); err == nil {
			rows = append(rows, row(btn("Reactivate reservation", tok)))
		}
	}
	if tok, err := token.Encode(cmdEditBook, append([]string{subDeletion}, fields...)...); err == nil {
		rows = append(rows, row(btn("Cancel reservation", tok)))
	}
	return append(rows, backExit(token.MustEncode(cmdEditBook, subList))...)
}

func meKeyboard(driver bool) [][]effect.Button {
	var rows [][]effect.Button
	if driver {
		rows = append(rows,
			row(btn("My trips", token.MustEncode(cmdMe, subMeTrips))),
			row(btn("Change seat count", token.MustEncode(cmdMe, subMeSlots))),
			row(btn("Stop driving", token.MustEncode(cmdMe, subMeDriver))),
		)
	} else {
		rows = append(rows, row(btn("Become a driver", token.MustEncode(cmdMe, subMeDriver))))
	}
	rows = append(rows,
		row(btn("My balance", token.MustEncode(cmdMoney))),
		row(btn("Leave the service", token.MustEncode(cmdMe, subMeRemoval))),
		exitRow(),
	)
	return rows
}

func slotsKeyboard(max int) [][]effect.Button {
	var counts []effect.Button
	for i := 1; i <= max; i++ {
		counts = append(counts, btn(strconv.Itoa(i),
			token.MustEncode(cmdMe, subMeConfirmDriver, strconv.Itoa(i))))
	}
	return append([][]effect.Button{counts}, backExit(token.MustEncode(cmdMeMenu))...)
}

func driverTripsKeyboard(trips []trip.Info) [][]effect.Button {
	var rows [][]effect.Button
	for _, info := range trips {
		tok := token.MustEncode(cmdTrips, subEditTrip,
			string(info.Key.Direction), string(info.Key.Day))
		rows = append(rows, row(btn(fmt.Sprintf("%s %s %s", info.Key.Day, info.Time, info.Key.Direction), tok)))
	}
	rows = append(rows, row(btn("Add a trip", token.MustEncode(cmdTrips, subNewTrip))))
	return append(rows, backExit(token.MustEncode(cmdMeMenu))...)
}

func tripEditKeyboard(ref TripRef, suspended bool) [][]effect.Button {
	dir, day := string(ref.Direction), string(ref.Day)
	rows := [][]effect.Button{
		row(btn("Change departure time", token.MustEncode(cmdTrips, subEditHour, dir, day))),
		row(btn("Remove a passenger", token.MustEncode(cmdTrips, subEditUser, dir, day))),
	}
	if !suspended {
		rows = append(rows, row(btn("Suspend next run",
			token.MustEncode(cmdTrips, subSuspendTrip, dir, day))))
	}
	rows = append(rows, row(btn("Delete trip", token.MustEncode(cmdTrips, subRemoveTrip, dir, day))))
	return append(rows, backExit(token.MustEncode(cmdMe, subMeTrips))...)
}

// hourKeyboard builds two rows of hours; next points at the minute screen.
func hourKeyboard(next func(hour int) string, backToken string) [][]effect.Button {
	var first, second []effect.Button
	for h := 7; h <= 13; h++ {
		first = append(first, btn(fmt.Sprintf("%02d", h), next(h)))
	}
	for h := 14; h <= 20; h++ {
		second = append(second, btn(strconv.Itoa(h), next(h)))
	}
	return append([][]effect.Button{first, second}, backExit(backToken)...)
}

func minuteKeyboard(next func(minute int) string, backToken string) [][]effect.Button {
	var first, second []effect.Button
	for m := 0; m < 30; m += 5 {
		first = append(first, btn(fmt.Sprintf("%02d", m), next(m)))
	}
	for m := 30; m < 60; m += 5 {
		second = append(second, btn(strconv.Itoa(m), next(m)))
	}
	return append([][]effect.Button{first, second}, backExit(backToken)...)
}

func passengerKeyboard(ref TripRef, info trip.Info, nameOf func(types.ID) string) [][]effect.Button {
	dir, day := string(ref.Direction), string(ref.Day)
	var rows [][]effect.Button
	add := func(ids []types.ID, mode trip.Mode) {
		for _, id := range ids {
			tok, err := token.Encode(cmdTrips, subRemoveUser, dir, day, string(id), string(mode))
			if err != nil {
				continue
			}
			rows = append(rows, row(btn(nameOf(id)+" ("+string(mode)+")", tok)))
		}
	}
	add(info.Permanent, trip.ModePermanent)
	add(info.Temporary, trip.ModeTemporary)
	return append(rows, backExit(token.MustEncode(cmdTrips, subEditTrip, dir, day))...)
}

func newTripDayKeyboard(dir trip.Direction) [][]effect.Button {
	var days []effect.Button
	for _, day := range trip.WorkDays {
		days = append(days, btn(string(day)[:2],
			token.MustEncode(cmdNewTrip, string(dir), string(day))))
	}
	return append([][]effect.Button{days}, backExit(token.MustEncode(cmdMe, subMeTrips))...)
}

func tripLabel(info trip.Info) string {
	return fmt.Sprintf("%s %s (%d seats left)", info.DriverName, info.Time, info.SeatsLeft)
}
