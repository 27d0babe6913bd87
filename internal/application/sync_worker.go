package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CatalogSyncer is the part of CatalogService the worker drives
type CatalogSyncer interface {
	SyncByID(ctx context.Context, merchantID string) ([]domain.Product, error)
}

// SyncWorkerConfig tunes the background sync pool
type SyncWorkerConfig struct {
	Workers       int
	QueueSize     int
	RatePerSecond float64
	JobTimeout    time.Duration
	LockTTL       time.Duration
}

// DefaultSyncWorkerConfig returns sane pool settings
func DefaultSyncWorkerConfig() SyncWorkerConfig {
	return SyncWorkerConfig{
		Workers:       4,
		QueueSize:     100,
		RatePerSecond: 2,
		JobTimeout:    60 * time.Second,
		LockTTL:       2 * time.Minute,
	}
}

var errSyncWorkerClosed = errors.New("sync worker is shut down")

type syncJob struct {
	merchantID string
	done       chan struct{}
	products   []domain.Product
	err        error
}

// SyncWorker runs catalog syncs off the request path.
// Jobs for a merchant already queued or running are coalesced.
type SyncWorker struct {
	syncer  CatalogSyncer
	lock    ports.SyncLock
	limiter *rate.Limiter
	cfg     SyncWorkerConfig
	logger  zerolog.Logger

	queue   chan *syncJob
	mu      sync.Mutex
	pending map[string]*syncJob
	closed  bool
	wg      sync.WaitGroup

	// ctx outlives the caller's context so Shutdown can drain in-flight jobs
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSyncWorker creates a new sync worker pool. lock may be nil for single-instance deployments.
func NewSyncWorker(syncer CatalogSyncer, lock ports.SyncLock, cfg SyncWorkerConfig, logger zerolog.Logger) *SyncWorker {
	def := DefaultSyncWorkerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = def.LockTTL
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SyncWorker{
		ctx:     ctx,
		cancel:  cancel,
		syncer:  syncer,
		lock:    lock,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger,
		queue:   make(chan *syncJob, cfg.QueueSize),
		pending: make(map[string]*syncJob),
	}
}

// Start launches the workers. They run until Shutdown.
func (w *SyncWorker) Start() {
	w.logger.Info().Int("workers", w.cfg.Workers).Msg("Starting catalog sync workers")
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.worker()
	}
}

// Enqueue schedules a sync without waiting for it
func (w *SyncWorker) Enqueue(merchantID string) error {
	_, err := w.submit(merchantID)
	return err
}

// SyncNow schedules a sync and waits for its result
func (w *SyncWorker) SyncNow(ctx context.Context, merchantID string) ([]domain.Product, error) {
	job, err := w.submit(merchantID)
	if err != nil {
		return nil, err
	}
	select {
	case <-job.done:
		return job.products, job.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *SyncWorker) submit(merchantID string) (*syncJob, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errSyncWorkerClosed
	}
	if job, ok := w.pending[merchantID]; ok {
		return job, nil
	}

	job := &syncJob{merchantID: merchantID, done: make(chan struct{})}
	select {
	case w.queue <- job:
		w.pending[merchantID] = job
		return job, nil
	default:
		w.logger.Warn().
			Str("merchantId", merchantID).
			Int("queued", len(w.queue)).
			Msg("Sync queue is full, rejecting job")
		return nil, domain.ErrSyncQueueFull
	}
}

// worker runs jobs until the queue is closed. Once the worker context is
// cancelled the remaining jobs fail fast in the limiter.
func (w *SyncWorker) worker() {
	defer w.wg.Done()

	for job := range w.queue {
		w.process(w.ctx, job)
	}
}

func (w *SyncWorker) process(ctx context.Context, job *syncJob) {
	var (
		products []domain.Product
		err      error
	)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Str("merchantId", job.merchantID).Msg("Panic in catalog sync")
			err = fmt.Errorf("catalog sync panicked: %v", r)
		}
		w.finish(job, products, err)
	}()

	if err = w.limiter.Wait(ctx); err != nil {
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	if w.lock != nil {
		release, ok, lockErr := w.lock.TryLock(jobCtx, job.merchantID, w.cfg.LockTTL)
		if lockErr != nil {
			err = fmt.Errorf("failed to acquire sync lock: %w", lockErr)
			return
		}
		if !ok {
			w.logger.Info().Str("merchantId", job.merchantID).Msg("Sync already running elsewhere, skipping")
			err = domain.ErrSyncInProgress
			return
		}
		defer release()
	}

	products, err = w.syncer.SyncByID(jobCtx, job.merchantID)
}

func (w *SyncWorker) finish(job *syncJob, products []domain.Product, err error) {
	w.mu.Lock()
	if w.pending[job.merchantID] == job {
		delete(w.pending, job.merchantID)
	}
	w.mu.Unlock()

	job.products = products
	job.err = err
	close(job.done)
}

// Shutdown stops accepting jobs and waits for queued and in-flight syncs.
// When ctx expires the remaining syncs are cancelled.
func (w *SyncWorker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.failQueued()
		w.logger.Info().Msg("Catalog sync workers stopped")
		return nil
	case <-ctx.Done():
		w.cancel()
		<-done
		w.failQueued()
		return fmt.Errorf("sync worker shutdown: %w", ctx.Err())
	}
}

// failQueued releases SyncNow callers of jobs no worker picked up
func (w *SyncWorker) failQueued() {
	for job := range w.queue {
		w.finish(job, nil, errSyncWorkerClosed)
	}
}

// SyncScheduler periodically enqueues every merchant with a store integration
type SyncScheduler struct {
	merchants ports.MerchantRepository
	worker    *SyncWorker
	interval  time.Duration
	logger    zerolog.Logger
}

// NewSyncScheduler creates a new periodic sync scheduler
func NewSyncScheduler(merchants ports.MerchantRepository, worker *SyncWorker, interval time.Duration, logger zerolog.Logger) *SyncScheduler {
	return &SyncScheduler{
		merchants: merchants,
		worker:    worker,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. A non-positive interval disables scheduling.
func (s *SyncScheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("Periodic catalog sync disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick enqueues one sync per syncable merchant
func (s *SyncScheduler) Tick(ctx context.Context) int {
	merchants, err := s.merchants.ListSyncable(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list merchants for periodic sync")
		return 0
	}

	queued := 0
	for _, m := range merchants {
		if !m.HasStoreIntegration() {
			continue
		}
		if err := s.worker.Enqueue(m.ID); err != nil {
			s.logger.Warn().Err(err).Str("merchantId", m.ID).Msg("Failed to enqueue periodic sync")
			continue
		}
		queued++
	}
	s.logger.Info().Int("count", queued).Msg("Periodic catalog sync scheduled")
	return queued
}
