package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	// Service region timezone without relying on the host's zoneinfo.
	_ "time/tzdata"

	"github.com/samandr77/microservices/claims/internal/api"
	"github.com/samandr77/microservices/claims/internal/clients/sheets"
	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/repository"
	"github.com/samandr77/microservices/claims/internal/service"
	"github.com/samandr77/microservices/claims/internal/store"
	"github.com/samandr77/microservices/claims/pkg/broker"
	"github.com/samandr77/microservices/claims/pkg/config"
	"github.com/samandr77/microservices/claims/pkg/job"
	"github.com/samandr77/microservices/claims/pkg/logger"
	"github.com/samandr77/microservices/claims/pkg/metrics"
	"github.com/samandr77/microservices/claims/pkg/postgres"
	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

const (
	ReadTimeout = 3 * time.Second
	// A claim intake makes several spaced store calls.
	WriteTimeout = 30 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l, err := logger.New(cfg.Logger.Level)
	panicOnErr("create logger", err)

	loc, err := time.LoadLocation(cfg.Ledger.Timezone)
	panicOnErr("load timezone", err)

	m := metrics.NewManager()
	gate := ratelimit.New(cfg.Store.SingleDelay, cfg.Store.BatchDelay, ratelimit.WithRecorder(m))

	backend, closeBackend, err := newBackend(ctx, cfg)
	panicOnErr("create store backend", err)
	defer closeBackend()

	adapter := store.New(backend, gate, cfg.Store.Timeout)

	var producer service.Producer

	if len(cfg.Kafka.Brokers) > 0 {
		p := broker.NewProducer(l, cfg.Kafka.Brokers, cfg.Kafka.ClaimEventsTopic)
		defer p.Close()

		producer = p
	}

	s := service.New(adapter, producer, service.Options{
		ClaimsTable:                  cfg.Store.ClaimsTable,
		ClientsTable:                 cfg.Store.ClientsTable,
		Catalog:                      entity.NewCatalog(cfg.Ledger.Technicians, cfg.Ledger.ClaimTypes),
		Location:                     loc,
		RequireTechnicianForProgress: cfg.Ledger.RequireTechnicianForProgress,
	})

	jobs := job.NewService().
		RegisterJob("log store stats", cfg.Jobs.StatsInterval, func(ctx context.Context) error {
			st := s.StoreStats()
			slog.InfoContext(ctx, "store api stats",
				"calls", st.Calls, "errors", st.Errors, "last_call", st.LastCall, "last_error", st.LastError)

			return nil
		}).
		TryRegisterJob(cfg.Jobs.SummaryEnabled, "refresh claim gauges", cfg.Jobs.SummaryInterval, func(ctx context.Context) error {
			sum, err := s.Summary(ctx)
			if err != nil {
				return err
			}

			m.SetClaimCounts(map[string]int{
				string(entity.StatusPending):    sum.Pending,
				string(entity.StatusInProgress): sum.InProgress,
				string(entity.StatusResolved):   sum.Resolved,
			}, sum.ActiveByType)

			return nil
		})
	jobs.Start(ctx)
	defer jobs.Stop()

	handler := api.NewHandler(s, cfg.Cache.TTL)
	mw := api.NewMiddleware(cfg.HTTP.APIKeyEnabled, cfg.HTTP.APIKey)

	router := api.NewRouter(handler, mw, m.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}
	}()

	slog.InfoContext(ctx, "service started", "port", cfg.HTTP.Port, "backend", cfg.Store.Backend)

	wg.Add(1)

	go func() {
		defer wg.Done()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		sig := <-ch

		slog.InfoContext(ctx, "got OS signal", "signal", sig.String())

		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, WriteTimeout)
		defer cancelShutdown()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "server shutdown", "error", err)
		}

		cancel()
	}()

	wg.Wait()
}

func newBackend(ctx context.Context, cfg config.Config) (store.Backend, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}

		err = postgres.UpMigrations(cfg.Postgres.DSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("up migrations: %w", err)
		}

		return repository.New(pool, repository.Schemas(cfg.Store.ClaimsTable, cfg.Store.ClientsTable)), pool.Close, nil
	case "sheets":
		if cfg.Sheets.SpreadsheetID == "" {
			return nil, nil, errors.New("SHEETS_SPREADSHEET_ID is required for the sheets backend")
		}

		return sheets.NewClient(cfg.Sheets, cfg.Store.Timeout), func() {}, nil
	case "memory":
		slog.WarnContext(ctx, "using in-memory store, data is lost on restart")
		return store.NewMemoryBackend(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
