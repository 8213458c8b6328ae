// README: HTTP endpoint tests against a fully wired in-memory server.
package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carpool/internal/calendar"
	"carpool/internal/dispatch"
	httptransport "carpool/internal/http"
	"carpool/internal/modules/account"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/ledger"
	"carpool/internal/modules/settlement"
	"carpool/internal/modules/trip"
	"carpool/internal/token"
	"carpool/internal/types"
)

func buildTestServer(t *testing.T) (*trip.Store, http.Handler) {
	t.Helper()
	store := trip.NewStore()
	err := store.Update(func(st *trip.State) error {
		for id, name := range map[types.ID]string{
			"d1": "Dana", "p1": "Paola",
		} {
			st.Users[id] = &trip.User{ID: id, Name: name, Debit: map[types.ID]int64{}}
		}
		st.Drivers["d1"] = &trip.Driver{ID: "d1", Slots: 4}
		_, err := st.PutTrip(trip.Key{
			Direction: trip.DirectionOutbound, Day: trip.Monday, Driver: "d1",
		}, "08:30")
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	cal, err := calendar.New(nil, nil)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bookings := booking.NewService(store, cal)
	bookings.Now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	trips := trip.NewService(store, nil)
	accounts := account.NewService(store)
	led := ledger.NewService(store)
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Store:      store,
		Dispatcher: dispatch.New(store, bookings, trips, accounts, led, log),
		Accounts:   accounts,
		Trips:      trips,
		Bookings:   bookings,
		Settlement: settlement.NewService(store, led, cal, 50, log),
		Log:        log,
	})
	return store, srv.Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type effectsResp struct {
	Effects []struct {
		Recipient string `json:"recipient"`
		Kind      string `json:"kind"`
	} `json:"effects"`
}

func decodeEffects(t *testing.T, w *httptest.ResponseRecorder) effectsResp {
	t.Helper()
	var resp effectsResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	_, h := buildTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/users", map[string]any{
		"user_id": "p9", "name": "Nina",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, h, http.MethodPost, "/api/users", map[string]any{
		"user_id": "p9", "name": "Nina",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", w.Code)
	}

	w = doRequest(t, h, http.MethodPost, "/api/users", map[string]any{"user_id": "p8"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d", w.Code)
	}
}

func TestActionEndpoint(t *testing.T) {
	_, h := buildTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/actions", map[string]any{
		"user_id": "p1", "token": token.MustEncode("BOOKING_MENU"),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeEffects(t, w)
	if len(resp.Effects) != 1 || resp.Effects[0].Recipient != "p1" {
		t.Fatalf("effects = %+v", resp.Effects)
	}

	// A garbage token still answers 200 with an error notice for the sender.
	w = doRequest(t, h, http.MethodPost, "/api/actions", map[string]any{
		"user_id": "p1", "token": "TELEPORT;now",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("garbage token status = %d", w.Code)
	}
	if resp := decodeEffects(t, w); len(resp.Effects) != 1 || resp.Effects[0].Kind != "error" {
		t.Fatalf("garbage token effects = %+v", resp.Effects)
	}

	w = doRequest(t, h, http.MethodPost, "/api/actions", map[string]any{"token": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing user status = %d", w.Code)
	}
}

func TestDayTripsEndpoint(t *testing.T) {
	_, h := buildTestServer(t)

	w := doRequest(t, h, http.MethodGet, "/api/trips?day=Monday", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Trips []trip.Info `json:"trips"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Trips) != 1 || resp.Trips[0].Key.Driver != "d1" {
		t.Fatalf("trips = %+v", resp.Trips)
	}

	w = doRequest(t, h, http.MethodGet, "/api/trips?day=Smonday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid day status = %d", w.Code)
	}
}

func TestMeetingPointEndpoint(t *testing.T) {
	store, h := buildTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/trips/location", map[string]any{
		"driver_id": "d1", "direction": "outbound", "day": "Monday",
		"address": "Piazzale Cadorna",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	info, err := store.Info(trip.Key{
		Direction: trip.DirectionOutbound, Day: trip.Monday, Driver: "d1",
	})
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Location == nil || info.Location.Text != "Piazzale Cadorna" {
		t.Fatalf("location = %+v", info.Location)
	}

	w = doRequest(t, h, http.MethodPost, "/api/trips/location", map[string]any{
		"driver_id": "ghost", "direction": "outbound", "day": "Monday",
		"address": "Piazzale Cadorna",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown driver status = %d", w.Code)
	}
}

func TestNightlyJobEndpoint(t *testing.T) {
	store, h := buildTestServer(t)
	err := store.Update(func(st *trip.State) error {
		return st.AddPassenger(trip.Key{
			Direction: trip.DirectionOutbound, Day: trip.Monday, Driver: "d1",
		}, trip.ModePermanent, "p1")
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	// Tuesday morning settles Monday's trips.
	w := doRequest(t, h, http.MethodPost, "/api/jobs/nightly?now=2026-09-01T02:00:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeEffects(t, w)
	charged := false
	for _, e := range resp.Effects {
		if e.Kind == "ledger" {
			charged = true
		}
	}
	if !charged {
		t.Fatalf("no ledger effects in %+v", resp.Effects)
	}

	w = doRequest(t, h, http.MethodPost, "/api/jobs/nightly?now=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad now status = %d", w.Code)
	}
}
