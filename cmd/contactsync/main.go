package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	contracts "github.com/murkotick/contact-sync-service/internal/app/contact/contracts"
	"github.com/murkotick/contact-sync-service/internal/app/contact/queries"
	"github.com/murkotick/contact-sync-service/internal/app/contact/repo"
	"github.com/murkotick/contact-sync-service/internal/app/contact/usecases/load_contacts"
	"github.com/murkotick/contact-sync-service/internal/app/contact/usecases/save_contacts"
	"github.com/murkotick/contact-sync-service/internal/config"
	"github.com/murkotick/contact-sync-service/internal/infra/persistence/excel"
	"github.com/murkotick/contact-sync-service/internal/infra/persistence/memory"
	"github.com/murkotick/contact-sync-service/internal/infra/persistence/sqlstore"
	"github.com/murkotick/contact-sync-service/internal/models/m_contact"
	"github.com/murkotick/contact-sync-service/internal/models/m_journal"
	"github.com/murkotick/contact-sync-service/internal/pkg/clock"
	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
	"github.com/murkotick/contact-sync-service/internal/pkg/logging"
	"github.com/murkotick/contact-sync-service/internal/pkg/metrics"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// Usage:
//
//	SYNC_STORE=sqlite SYNC_DSN=contacts.db go run ./cmd/contactsync \
//	    -add '4=Dee,dee@example.com' -rename '2=Bobby' -delete 3
func main() {
	var ed edits
	flag.Var(&ed.add, "add", "add a contact: id=name[,email] (repeatable)")
	flag.Var(&ed.rename, "rename", "rename a contact: id=name (repeatable)")
	flag.Var(&ed.remove, "delete", "delete a contact by id (repeatable)")
	flag.Var(&ed.selects, "select", "toggle the selection of a contact by id (repeatable)")
	flag.Parse()

	if err := run(ed); err != nil {
		fmt.Fprintln(os.Stderr, "contactsync:", err)
		os.Exit(1)
	}
}

func run(ed edits) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store, readModel, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	clk := clock.RealClock{}
	cm := committer.New(store,
		committer.WithMetrics(m),
		committer.WithLogger(logger),
		committer.WithClock(clk),
		committer.WithRequireRowsAffected(cfg.RequireRows),
	)

	coll, err := load_contacts.NewInteractor(readModel,
		tracking.WithRetainRemoved(cfg.RetainRemoved),
		tracking.WithLogger(logger),
	).Execute(ctx)
	if err != nil {
		return err
	}
	logger.Info("contacts loaded", zap.String("store", cfg.Store), zap.Int("count", coll.Len()))

	if err := ed.apply(coll); err != nil {
		return err
	}
	counts := coll.Counts()
	fmt.Printf("pending: unchanged=%d added=%d modified=%d deleted=%d\n",
		counts.Unchanged, counts.Added, counts.Modified, counts.Deleted)

	save := save_contacts.NewInteractor(cm, repo.NewJournalRepo(), clk, logger, cfg.ChangedColumnsOnly)
	res, err := save.Execute(ctx, save_contacts.Request{Contacts: coll})
	if err != nil {
		return err
	}
	fmt.Printf("flush %s: inserts=%d updates=%d deletes=%d\n", res.FlushID, res.Inserts, res.Updates, res.Deletes)

	if cfg.MetricsAddr != "" {
		return serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}
	return nil
}

// openStore builds the committer store and the matching read model.
func openStore(ctx context.Context, cfg config.Config) (committer.Store, contracts.ReadModel, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		s := memory.NewStore()
		s.DefineTable(m_contact.TableName, m_contact.KeyColumns...)
		s.DefineTable(m_journal.TableName, m_journal.ColFlushID)
		s.Seed(m_contact.TableName,
			memory.Row{m_contact.ColContactID: int64(1), m_contact.ColName: "Ann", m_contact.ColEmail: "ann@example.com"},
			memory.Row{m_contact.ColContactID: int64(2), m_contact.ColName: "Bob", m_contact.ColEmail: "bob@example.com"},
			memory.Row{m_contact.ColContactID: int64(3), m_contact.ColName: "Cid", m_contact.ColEmail: ""},
		)
		return s, queries.NewRowReadModel(s), noop, nil

	case config.StoreSQLite, config.StorePostgres, config.StorePQ:
		s, err := sqlstore.Open(ctx, cfg.Driver(), cfg.DSN)
		if err != nil {
			return nil, nil, noop, err
		}
		return s, queries.NewRowReadModel(s), func() { _ = s.Close() }, nil

	case config.StoreExcel:
		s, err := excel.New(cfg.ExcelPath)
		if err != nil {
			return nil, nil, noop, err
		}
		s.DefineTable(m_contact.TableName, m_contact.AllColumns...)
		s.DefineTable(m_journal.TableName, m_journal.Columns...)
		return s, queries.NewRowReadModel(s), noop, nil

	case config.StoreSpanner:
		client, err := spanner.NewClient(ctx, cfg.SpannerDatabase)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("spanner.NewClient: %w", err)
		}
		return committer.NewSpannerStore(client), queries.NewSpannerReadModel(client), client.Close, nil
	}
	return nil, nil, noop, fmt.Errorf("%w %q", config.ErrUnknownStore, cfg.Store)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
