package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/application/handlers"
	"github.com/ersonp/catalog-review/internal/domain/ports"
	"github.com/ersonp/catalog-review/internal/domain/services"
	"github.com/ersonp/catalog-review/internal/infrastructure/config"
	rediscounters "github.com/ersonp/catalog-review/internal/infrastructure/counters/redis"
	"github.com/ersonp/catalog-review/internal/infrastructure/logging"
	"github.com/ersonp/catalog-review/internal/infrastructure/metrics"
	"github.com/ersonp/catalog-review/internal/infrastructure/notify"
	"github.com/ersonp/catalog-review/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
	Proposals *handlers.ProposalHandler
	Reviews   *handlers.ReviewHandler
	Records   *handlers.CatalogHandler
	Audit     *handlers.AuditHandler
	Users     *handlers.UserHandler
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically, including draining queued notifications.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	return withDepsAt(cwd, fn)
}

func withDepsAt(basePath string, fn func(*Deps) error) error {
	cfg, err := config.Load(basePath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(logging.Config{
		Environment: cfg.Log.Environment,
		LogLevel:    cfg.Log.Level,
		ServiceName: "catalog",
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DatabasePath(basePath)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	// Ensure schema exists
	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	counters, closeCounters, err := newCounters(cfg, repo, log)
	if err != nil {
		return err
	}
	defer closeCounters()

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	dispatcher := services.NewDispatcher(log, cfg.Notifier.QueueSize, cfg.Notifier.Timeout)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := dispatcher.Close(drainCtx); err != nil {
			log.Warn("pending notifications not delivered", zap.Error(err))
		}
	}()

	recorder := metrics.NewRecorder()
	guard := services.NewEligibilityGuard(cfg.Review.ExemptIDs)
	reconciler := services.NewNotificationReconciler(notifier, repo, dispatcher, recorder, log)
	ledger := services.NewAuditLedger(repo)
	userService := services.NewUserService(repo, counters)
	proposalService := services.NewProposalService(repo, repo, guard, reconciler, log)
	reviewService := services.NewReviewService(services.ReviewDeps{
		Proposals:  repo,
		Guard:      guard,
		Merge:      services.NewMergeEngine(repo),
		Ledger:     ledger,
		Resolver:   services.NewSupersessionResolver(repo, log),
		Counters:   counters,
		Reconciler: reconciler,
		Metrics:    recorder,
		Logger:     log,
	})
	batchService := services.NewBatchReviewService(reviewService, repo, guard, reconciler, recorder, log)

	deps := &Deps{
		Config:    cfg,
		Logger:    log,
		Metrics:   recorder,
		Proposals: handlers.NewProposalHandler(userService, proposalService),
		Reviews:   handlers.NewReviewHandler(userService, reviewService, batchService),
		Records:   handlers.NewCatalogHandler(proposalService),
		Audit:     handlers.NewAuditHandler(ledger),
		Users:     handlers.NewUserHandler(userService),
	}

	return fn(deps)
}

// newCounters returns the configured contribution counter backend.
func newCounters(cfg *config.Config, repo *sqlite.Repository, log *zap.Logger) (ports.Counters, func(), error) {
	switch cfg.Counters.Backend {
	case config.CountersRedis:
		c, err := rediscounters.NewCounters(rediscounters.Config{
			Addr:     cfg.Counters.Redis.Addr(),
			Password: cfg.Counters.Redis.Password,
			DB:       cfg.Counters.Redis.DB,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("creating redis counters: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return repo, func() {}, nil
	}
}

// newNotifier returns the configured notification transport, or nil when disabled.
func newNotifier(cfg *config.Config, log *zap.Logger) (ports.Notifier, error) {
	switch cfg.Notifier.Type {
	case config.NotifierNone:
		return nil, nil
	case config.NotifierWebhook:
		n, err := notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:        cfg.Notifier.URL,
			Timeout:    cfg.Notifier.Timeout,
			MaxRetries: cfg.Notifier.MaxRetries,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("creating webhook notifier: %w", err)
		}
		return n, nil
	default:
		return notify.NewLogNotifier(log), nil
	}
}
