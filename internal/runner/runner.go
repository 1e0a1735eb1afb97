// Package runner orchestrates single- and all-source scrape runs with
// per-adapter failure isolation.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/adapter"
	"github.com/bkassahun/course-harvester/internal/course"
	"github.com/bkassahun/course-harvester/internal/metrics"
)

// Outcome classifies how one source ended.
type Outcome string

// Source outcomes reported per adapter.
const (
	OutcomeOK        Outcome = "ok"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned"
)

// SourceResult is the per-adapter outcome of a run.
type SourceResult struct {
	Key         string
	DisplayName string
	Outcome     Outcome
	Records     []course.Record
	Err         error
}

// Result aggregates a whole run. Records preserves per-adapter internal
// ordering and registration order across sources; no deduplication.
type Result struct {
	RunID   string
	Sources []SourceResult
	Records []course.Record
}

// Failed counts sources that ended in failure.
func (r Result) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Options tunes controller behavior.
type Options struct {
	// Concurrency bounds how many adapters run at once. Zero or one keeps
	// the sequential baseline.
	Concurrency int
	// GracePeriod bounds how long in-flight adapters may keep running
	// after cancellation before they are abandoned.
	GracePeriod time.Duration
}

// Controller executes adapters out of a read-only registry.
type Controller struct {
	registry    *adapter.Registry
	logger      *zap.Logger
	concurrency int
	grace       time.Duration
}

// New builds a Controller.
func New(registry *adapter.Registry, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = 10 * time.Second
	}
	return &Controller{
		registry:    registry,
		logger:      logger,
		concurrency: concurrency,
		grace:       grace,
	}
}

// RunOne executes a single adapter by key. An unknown key yields an
// *UnknownSourceError; an adapter failure is returned to the caller.
func (c *Controller) RunOne(ctx context.Context, key string) (Result, error) {
	a, ok := c.registry.Get(key)
	if !ok {
		return Result{}, &UnknownSourceError{Key: key}
	}

	result := Result{RunID: uuid.NewString()}
	log := c.logger.With(zap.String("run_id", result.RunID))
	log.Info("starting single-source run", zap.String("site", key))

	src := c.execute(ctx, a, log)
	result.Sources = []SourceResult{src}
	result.Records = append(result.Records, src.Records...)
	if src.Outcome == OutcomeFailed {
		return result, src.Err
	}

	log.Info("run finished",
		zap.String("site", key),
		zap.String("outcome", string(src.Outcome)),
		zap.Int("records", len(result.Records)),
	)
	return result, nil
}

// RunAll executes every registered adapter in registration order, each
// inside its own isolation boundary. One slow or failing source never
// aborts the batch. Once ctx is done no further adapters launch, and
// in-flight ones get the configured grace period before abandonment.
func (c *Controller) RunAll(ctx context.Context) (Result, error) {
	entries := c.registry.List()
	result := Result{RunID: uuid.NewString()}
	log := c.logger.With(zap.String("run_id", result.RunID))
	log.Info("starting all-sources run",
		zap.Int("sources", len(entries)),
		zap.Int("concurrency", c.concurrency),
	)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		slots     = make([]SourceResult, len(entries))
		completed = make([]bool, len(entries))
	)
	sem := make(chan struct{}, c.concurrency)

launch:
	for i, entry := range entries {
		if ctx.Err() != nil {
			break launch
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}

		a, _ := c.registry.Get(entry.Key)
		wg.Add(1)
		go func(i int, a adapter.Adapter) {
			defer wg.Done()
			defer func() { <-sem }()
			src := c.execute(ctx, a, log)
			mu.Lock()
			slots[i] = src
			completed[i] = true
			mu.Unlock()
		}(i, a)
	}

	c.waitWithGrace(ctx, &wg)

	mu.Lock()
	defer mu.Unlock()
	for i, entry := range entries {
		src := slots[i]
		if !completed[i] {
			src = SourceResult{
				Key:         entry.Key,
				DisplayName: entry.DisplayName,
				Outcome:     OutcomeAbandoned,
			}
			log.Warn("source abandoned", zap.String("site", entry.Key))
		}
		result.Sources = append(result.Sources, src)
		result.Records = append(result.Records, src.Records...)
	}

	log.Info("run finished",
		zap.Int("sources", len(result.Sources)),
		zap.Int("failed", result.Failed()),
		zap.Int("records", len(result.Records)),
	)
	return result, nil
}

// waitWithGrace blocks until all launched adapters finish, or until the
// grace period after cancellation expires.
func (c *Controller) waitWithGrace(ctx context.Context, wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		timer := time.NewTimer(c.grace)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
		}
	}
}

// execute runs one adapter inside the isolation boundary: the policy gate
// is honored, panics are contained, and a wholesale failure becomes an
// *AdapterError carrying the display name.
func (c *Controller) execute(ctx context.Context, a adapter.Adapter, log *zap.Logger) SourceResult {
	src := SourceResult{Key: a.Key(), DisplayName: a.DisplayName()}

	if !a.IsAllowed() {
		src.Outcome = OutcomeSkipped
		metrics.AdapterSkips.WithLabelValues(a.Key()).Inc()
		log.Info("source skipped by policy", zap.String("site", a.Key()))
		return src
	}

	records, err := c.invoke(ctx, a)
	if err != nil {
		src.Outcome = OutcomeFailed
		src.Err = &AdapterError{Key: a.Key(), DisplayName: a.DisplayName(), Err: err}
		metrics.AdapterFailures.WithLabelValues(a.Key()).Inc()
		log.Warn("source failed",
			zap.String("site", a.Key()),
			zap.String("source", a.DisplayName()),
			zap.Error(err),
		)
		return src
	}

	src.Outcome = OutcomeOK
	src.Records = records
	metrics.RecordsExtracted.WithLabelValues(a.Key()).Add(float64(len(records)))
	log.Info("source scraped",
		zap.String("site", a.Key()),
		zap.Int("records", len(records)),
	)
	return src
}

// invoke calls the adapter with panic containment.
func (c *Controller) invoke(ctx context.Context, a adapter.Adapter) (records []course.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("panic in adapter: %v", r)
		}
	}()
	return a.Courses(ctx)
}
