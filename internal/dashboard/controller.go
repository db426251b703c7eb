package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/preston-bernstein/city-dashboard/internal/board"
	"github.com/preston-bernstein/city-dashboard/internal/config"
	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
	"github.com/preston-bernstein/city-dashboard/internal/timeutil"
	"github.com/preston-bernstein/city-dashboard/internal/upstream"
)

const defaultInterval = 4 * time.Second

// Sampler returns one sample event per call and never fails.
type Sampler interface {
	FetchSample(ctx context.Context) domain.SampleEvent
}

// Notifier receives a transient message for every failed fetch.
type Notifier interface {
	Post(title, detail string) board.Message
}

// Config wires the controller to its backends.
type Config struct {
	Processing domain.ServiceEndpoint
	Analyzer   domain.ServiceEndpoint
	Interval   time.Duration
	// Overlap is config.OverlapAllow or config.OverlapSkip.
	Overlap string
	Sample  upstream.SampleConfig
}

// CycleReport is the outcome of one poll cycle.
type CycleReport struct {
	StartedAt  time.Time
	Duration   time.Duration
	Processing error
	Analyzer   error
	Sample     domain.SampleEvent
	Panic      error
}

// Err joins every failure that counts against the cycle. An unavailable
// sample is rendered and counted separately and does not fail the cycle.
func (r CycleReport) Err() error {
	return errors.Join(r.Processing, r.Analyzer, r.Panic)
}

// Controller polls the processing and analyzer services and renders their
// results into a Sink on a fixed interval.
type Controller struct {
	stats      upstream.StatsClient
	sampler    Sampler
	sink       Sink
	notifier   Notifier
	logger     *slog.Logger
	metrics    *metrics.Recorder
	processing domain.ServiceEndpoint
	analyzer   domain.ServiceEndpoint
	interval   time.Duration
	skip       bool
	now        func() time.Time

	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
	cancel   context.CancelFunc

	cycles   sync.WaitGroup
	inflight atomic.Int32

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the polling loop.
type Status struct {
	CyclesStarted       int       `json:"cyclesStarted"`
	CyclesCompleted     int       `json:"cyclesCompleted"`
	CyclesSkipped       int       `json:"cyclesSkipped"`
	InFlight            int       `json:"inFlight"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether a cycle has succeeded recently and the loop is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Controller. notifier, logger and recorder may be nil.
func New(client upstream.Client, sink Sink, notifier Notifier, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Controller {
	sampler := upstream.NewSampleFetcher(client, cfg.Analyzer, cfg.Sample, logger, recorder)
	return newController(client, sampler, sink, notifier, logger, recorder, cfg)
}

func newController(stats upstream.StatsClient, sampler Sampler, sink Sink, notifier Notifier, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Controller{
		stats:      stats,
		sampler:    sampler,
		sink:       sink,
		notifier:   notifier,
		logger:     logger,
		metrics:    recorder,
		processing: cfg.Processing,
		analyzer:   cfg.Analyzer,
		interval:   cfg.Interval,
		skip:       cfg.Overlap == config.OverlapSkip,
		now:        time.Now,
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
}

// Start runs one cycle immediately and then one per interval until ctx is
// cancelled or Stop is called. Repeated calls are no-ops.
func (c *Controller) Start(ctx context.Context) {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.loop(runCtx)
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.loopDone)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	logging.Info(c.logger, "dashboard polling started",
		slog.Int64(logging.FieldDurationMS, c.interval.Milliseconds()),
		slog.Bool("skip_overlap", c.skip),
	)
	c.launch(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info(c.logger, "dashboard polling stopped")
			return
		case <-c.done:
			logging.Info(c.logger, "dashboard polling stopped")
			return
		case <-ticker.C:
			c.launch(ctx)
		}
	}
}

// launch starts a cycle in the background. Only the loop goroutine calls it.
func (c *Controller) launch(ctx context.Context) {
	if c.skip && c.inflight.Load() > 0 {
		c.recordSkip()
		c.metrics.RecordCycleSkipped()
		logging.Debug(c.logger, "dashboard cycle skipped", slog.Int(logging.FieldCount, int(c.inflight.Load())))
		return
	}
	c.inflight.Add(1)
	c.cycles.Add(1)
	go func() {
		defer c.cycles.Done()
		defer c.inflight.Add(-1)
		c.RunCycle(ctx)
	}()
}

// Stop halts the ticker and waits, bounded by ctx, for in-flight cycles.
// Cycles still running when ctx expires are cancelled.
func (c *Controller) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.done) })

	c.startMu.Lock()
	started, cancel := c.started, c.cancel
	c.startMu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-c.loopDone:
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	drained := make(chan struct{})
	go func() {
		c.cycles.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// RunCycle fetches both stats documents and a sample event concurrently and
// renders each outcome as soon as it settles.
func (c *Controller) RunCycle(ctx context.Context) CycleReport {
	start := c.now()
	c.recordAttempt(start)
	RenderLastUpdated(c.sink, start)

	report := CycleReport{StartedAt: start}
	var wg conc.WaitGroup
	wg.Go(func() {
		stats, err := c.stats.FetchStats(ctx, c.processing)
		report.Processing = err
		if err != nil {
			c.alert(err)
		}
		RenderProcessing(c.sink, stats, err)
	})
	wg.Go(func() {
		stats, err := c.stats.FetchStats(ctx, c.analyzer)
		report.Analyzer = err
		if err != nil {
			c.alert(err)
		}
		RenderAnalyzer(c.sink, stats, err)
	})
	wg.Go(func() {
		ev := c.sampler.FetchSample(ctx)
		report.Sample = ev
		if !ev.Available() {
			c.alert(fmt.Errorf("sample event index %d: %s", ev.Index, ev.Reason))
		}
		RenderSample(c.sink, ev)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		report.Panic = recovered.AsError()
		logging.Error(c.logger, "dashboard cycle branch panicked", report.Panic)
	}

	report.Duration = c.now().Sub(start)
	err := report.Err()
	c.metrics.RecordCycle(report.Duration, err)
	if err != nil {
		c.recordFailure(err)
		logging.Warn(c.logger, "dashboard cycle degraded",
			slog.Int64(logging.FieldDurationMS, report.Duration.Milliseconds()),
			"error", err,
		)
		return report
	}
	c.recordSuccess(start)
	logging.Debug(c.logger, "dashboard cycle complete",
		slog.Int64(logging.FieldDurationMS, report.Duration.Milliseconds()),
		slog.String(logging.FieldKind, string(report.Sample.Kind)),
	)
	return report
}

func (c *Controller) alert(err error) {
	if c.notifier == nil {
		return
	}
	c.notifier.Post("Something happened at "+timeutil.FormatDisplay(c.now())+"!", err.Error())
}

func (c *Controller) recordAttempt(at time.Time) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.CyclesStarted++
	c.status.LastAttempt = at
}

func (c *Controller) recordSuccess(at time.Time) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.CyclesCompleted++
	c.status.ConsecutiveFailures = 0
	c.status.LastError = ""
	c.status.LastSuccess = at
}

func (c *Controller) recordFailure(err error) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.CyclesCompleted++
	c.status.ConsecutiveFailures++
	c.status.LastError = err.Error()
}

func (c *Controller) recordSkip() {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.CyclesSkipped++
}

// Status returns a snapshot of the loop's recent health.
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	s := c.status
	c.statusMu.RUnlock()
	s.InFlight = int(c.inflight.Load())
	return s
}
