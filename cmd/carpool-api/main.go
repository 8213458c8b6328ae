// README: Entry point; loads config, wires services, starts HTTP server and nightly scheduler.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carpool/internal/calendar"
	"carpool/internal/config"
	"carpool/internal/dispatch"
	"carpool/internal/effect"
	httptransport "carpool/internal/http"
	"carpool/internal/logging"
	"carpool/internal/maps"
	"carpool/internal/modules/account"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/ledger"
	"carpool/internal/modules/settlement"
	"carpool/internal/modules/trip"
	"carpool/internal/snapshot"
)

func main() {
	log := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cal, err := calendar.New(cfg.Calendar.Holidays, cfg.Calendar.Sessions)
	if err != nil {
		log.Error("calendar", "err", err)
		os.Exit(1)
	}

	snapshots, err := newSnapshotStore(ctx, cfg.Snapshot)
	if err != nil {
		log.Error("snapshot store", "err", err)
		os.Exit(1)
	}

	store := trip.NewStore()
	if snapshots != nil {
		data, err := snapshots.Load(ctx)
		switch {
		case errors.Is(err, snapshot.ErrNoSnapshot):
			log.Info("no snapshot found, starting empty")
		case err != nil:
			log.Error("snapshot load", "err", err)
			os.Exit(1)
		default:
			if err := store.Restore(data); err != nil {
				log.Error("snapshot restore", "err", err)
				os.Exit(1)
			}
			log.Info("state restored from snapshot")
		}
	}

	var geo trip.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			log.Error("maps client", "err", err)
			os.Exit(1)
		}
		geo = g
	}

	bookings := booking.NewService(store, cal)
	trips := trip.NewService(store, geo)
	accounts := account.NewService(store)
	led := ledger.NewService(store)
	settle := settlement.NewService(store, led, cal, int64(cfg.Settlement.PriceCents), log)
	dispatcher := dispatch.New(store, bookings, trips, accounts, led, log)

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Store:      store,
		Dispatcher: dispatcher,
		Accounts:   accounts,
		Trips:      trips,
		Bookings:   bookings,
		Settlement: settle,
		Snapshots:  snapshots,
		Log:        log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: srv.Routes()}

	go runScheduler(ctx, settle, store, snapshots, log)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}

func newSnapshotStore(ctx context.Context, cfg config.SnapshotConfig) (snapshot.Store, error) {
	switch cfg.Backend {
	case "postgres":
		st, err := snapshot.NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Init(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "redis":
		return snapshot.NewRedisStore(cfg.RedisAddr), nil
	case "none":
		return nil, nil
	}
	return nil, errors.New("unknown snapshot backend " + cfg.Backend)
}

// logSink records job effects; a chat front end polling the API is expected
// to pick the messages up from the job endpoints instead.
type logSink struct {
	log *slog.Logger
}

func (s logSink) Deliver(effects ...effect.Effect) {
	for _, e := range effects {
		s.log.Info("effect", "recipient", e.Recipient, "payload", e.Payload)
	}
}

// runScheduler fires the nightly settlement at 02:05 and, on Saturdays, the
// weekly balance report right after it.
func runScheduler(ctx context.Context, settle *settlement.Service,
	store *trip.Store, snapshots snapshot.Store, log *slog.Logger) {
	var sink effect.Sink = logSink{log: log}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(untilNextRun(time.Now())):
		}

		now := time.Now()
		effects, err := settle.Run(now)
		if err != nil {
			log.Error("nightly settlement", "err", err)
		} else {
			sink.Deliver(effects...)
		}
		if now.Weekday() == time.Saturday {
			effects, err := settle.WeeklyReport()
			if err != nil {
				log.Error("weekly report", "err", err)
			} else {
				sink.Deliver(effects...)
			}
		}
		if snapshots != nil {
			if data, err := store.Snapshot(); err == nil {
				if err := snapshots.Save(ctx, data); err != nil {
					log.Error("snapshot save", "err", err)
				}
			}
		}
	}
}

func untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 5, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
