// Package dashboard owns the table behind the dashboard: it fetches through a
// domain.Fetcher, caches the last good result, and hands fresh tables to an
// optional snapshot publisher.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

// publishTimeout bounds one background snapshot publish.
const publishTimeout = 30 * time.Second

// Publisher receives every freshly fetched, non-empty table.
type Publisher interface {
	Publish(ctx context.Context, table domain.Table) error
}

// Options selects what the service loads and how long it is kept.
type Options struct {
	Indicator string
	Years     domain.YearRange
	TTL       time.Duration
}

// Service serves the current indicator table.
type Service struct {
	fetcher   domain.Fetcher
	publisher Publisher
	indicator string
	years     domain.YearRange
	ttl       time.Duration
	cache     *gocache.Cache
	logger    *slog.Logger
	metrics   *observability.Metrics

	fetchMu    sync.Mutex
	publishing sync.WaitGroup
	ready      atomic.Bool
}

// New creates a Service. publisher may be nil to disable snapshot publishing.
func New(f domain.Fetcher, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:   f,
		publisher: publisher,
		indicator: opts.Indicator,
		years:     opts.Years,
		ttl:       opts.TTL,
		cache:     gocache.New(opts.TTL, 2*opts.TTL),
		logger:    logger,
		metrics:   metrics,
	}
}

// Indicator returns the series code the service loads.
func (s *Service) Indicator() string { return s.indicator }

// Table returns the cached table, fetching a new one on a miss or when
// refresh is set. Failed and empty fetches are not cached.
func (s *Service) Table(ctx context.Context, refresh bool) (domain.Table, error) {
	key := s.cacheKey()
	if !refresh {
		if t, ok := s.cached(key); ok {
			s.metrics.TableCache.WithLabelValues("hit").Inc()
			return t, nil
		}
	}

	// One upstream fetch at a time; concurrent misses wait and reuse it.
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if !refresh {
		if t, ok := s.cached(key); ok {
			s.metrics.TableCache.WithLabelValues("hit").Inc()
			return t, nil
		}
	}
	s.metrics.TableCache.WithLabelValues("miss").Inc()

	table, err := s.fetcher.Fetch(ctx, s.indicator, s.years)
	if err != nil {
		s.logger.Error("table fetch failed", "indicator", s.indicator, "error", err)
		return domain.Table{}, err
	}

	s.metrics.TableRows.Set(float64(table.Len()))
	if table.Empty() {
		s.logger.Warn("fetched table is empty", "indicator", s.indicator, "years", s.years.String())
		return table, nil
	}

	s.cache.Set(key, table, s.ttl)
	s.ready.Store(true)
	s.metrics.TableReady.Set(1)
	s.publish(table)
	return table, nil
}

// Warm loads the first table, retrying with exponential backoff until a
// non-empty table is loaded or ctx is cancelled.
func (s *Service) Warm(ctx context.Context) {
	// Start at 200ms, double each retry, cap at 30s.
	backoff := 200 * time.Millisecond
	maxBackoff := 30 * time.Second

	for {
		table, err := s.Table(ctx, false)
		if err == nil && !table.Empty() {
			s.logger.Info("table warmed", "indicator", s.indicator, "rows", table.Len())
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("table warm-up failed, retrying", "error", err, "backoff", backoff)
		if !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// CheckReadiness returns nil once a non-empty table has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no table has been loaded yet")
	}
	return nil
}

// Wait blocks until in-flight snapshot publishes finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.publishing.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) cacheKey() string {
	return s.indicator + "|" + s.years.String()
}

func (s *Service) cached(key string) (domain.Table, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return domain.Table{}, false
	}
	t, ok := v.(domain.Table)
	return t, ok
}

// publish hands the table to the publisher in the background so a slow or
// unreachable broker never delays a page load.
func (s *Service) publish(table domain.Table) {
	if s.publisher == nil {
		return
	}
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, table); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Error("snapshot publish failed", "indicator", table.Indicator.ID, "error", err)
			return
		}
		s.metrics.SnapshotsPublished.Inc()
	}()
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
