package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/board"
	"github.com/preston-bernstein/city-dashboard/internal/config"
	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
	"github.com/preston-bernstein/city-dashboard/internal/teststubs"
	"github.com/preston-bernstein/city-dashboard/internal/testutil"
	"github.com/preston-bernstein/city-dashboard/internal/upstream/httpclient"
)

func endpoints(t testing.TB, processingURL, analyzerURL string) Config {
	t.Helper()
	processing, err := domain.NewServiceEndpoint("processing", processingURL)
	if err != nil {
		t.Fatalf("processing endpoint: %v", err)
	}
	analyzer, err := domain.NewServiceEndpoint("analyzer", analyzerURL)
	if err != nil {
		t.Fatalf("analyzer endpoint: %v", err)
	}
	return Config{Processing: processing, Analyzer: analyzer}
}

func fixedPicker(kind, index int) func(int) int {
	calls := 0
	return func(int) int {
		calls++
		if calls%2 == 1 {
			return kind
		}
		return index
	}
}

func healthyStub() *teststubs.StubClient {
	return &teststubs.StubClient{
		Stats: map[string]domain.StatsResult{
			"processing": {"num_temperature_readings": 3.0, "num_traffic_readings": 5.0},
			"analyzer":   {"num_temperature": 2.0, "num_traffic": 7.0},
		},
		Events: map[domain.EventKind]json.RawMessage{
			domain.KindTemperature: json.RawMessage(`{"temperature":21}`),
			domain.KindTraffic:     json.RawMessage(`{"density":12}`),
		},
	}
}

func TestRunCycleRendersEverySlotGroup(t *testing.T) {
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	cfg.Sample.Picker = fixedPicker(0, 1)
	sink := board.New(Slots())
	rec := metrics.NewRecorder()
	c := New(healthyStub(), sink, nil, nil, rec, cfg)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = testutil.NowAt(at)

	report := c.RunCycle(context.Background())
	if err := report.Err(); err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}

	want := map[string]string{
		SlotTotalEvents:     "8",
		SlotSuccessEvents:   "8",
		SlotFailedEvents:    "0",
		SlotTotalAnalyzed:   "9",
		SlotTempEvents:      "2",
		SlotTrafficEvents:   "7",
		SlotRandomEventKind: "temperature",
		SlotLastUpdated:     "2024-01-02 03:04:05",
	}
	for slot, v := range want {
		got, ok := sink.Get(slot)
		if !ok || got.Value != v {
			t.Fatalf("%s: expected %q, got %q", slot, v, got.Value)
		}
	}

	status := c.Status()
	if !status.IsReady() || status.CyclesStarted != 1 || status.CyclesCompleted != 1 || !status.LastSuccess.Equal(at) {
		t.Fatalf("unexpected status %+v", status)
	}
	if cycles := rec.Cycles(); cycles.Cycles != 1 || cycles.FailedCycles != 0 {
		t.Fatalf("unexpected cycle metrics %+v", cycles)
	}
}

func TestRunCycleFailureIsLocalToItsSlotGroup(t *testing.T) {
	stub := healthyStub()
	stub.StatsErr = map[string]error{"analyzer": errors.New("analyzer returned 500")}
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	cfg.Sample.Picker = fixedPicker(1, 4)
	sink := board.New(Slots())
	banner := board.NewBanner(time.Minute)
	c := New(stub, sink, banner, nil, nil, cfg)

	report := c.RunCycle(context.Background())
	if report.Analyzer == nil || report.Processing != nil {
		t.Fatalf("unexpected report %+v", report)
	}

	for slot, v := range map[string]string{
		SlotTotalEvents:     "8",
		SlotTotalAnalyzed:   ErrorPlaceholder,
		SlotTempEvents:      ErrorPlaceholder,
		SlotTrafficEvents:   ErrorPlaceholder,
		SlotRandomEventKind: "traffic",
	} {
		if got, _ := sink.Get(slot); got.Value != v {
			t.Fatalf("%s: expected %q, got %q", slot, v, got.Value)
		}
	}

	msgs := banner.Active()
	if len(msgs) != 1 || !strings.HasPrefix(msgs[0].Title, "Something happened at ") || msgs[0].Detail != "analyzer returned 500" {
		t.Fatalf("unexpected banner messages %+v", msgs)
	}
	status := c.Status()
	if status.ConsecutiveFailures != 1 || status.IsReady() || !strings.Contains(status.LastError, "analyzer returned 500") {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestRunCycleUnavailableSampleDoesNotFailCycle(t *testing.T) {
	stub := healthyStub()
	stub.Events = nil
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	sink := board.New(Slots())
	banner := board.NewBanner(time.Minute)
	c := New(stub, sink, banner, nil, nil, cfg)

	report := c.RunCycle(context.Background())
	if report.Sample.Available() || report.Err() != nil {
		t.Fatalf("unexpected report %+v", report)
	}
	got, _ := sink.Get(SlotRandomEvent)
	if !strings.Contains(got.Value, `"error": "Failed to fetch event data"`) {
		t.Fatalf("expected unavailable document, got %q", got.Value)
	}
	if len(banner.Active()) != 1 {
		t.Fatalf("expected banner message for unavailable sample")
	}
}

type panicSampler struct{}

func (panicSampler) FetchSample(context.Context) domain.SampleEvent { panic("sampler exploded") }

func TestRunCycleRecoversBranchPanic(t *testing.T) {
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	sink := board.New(Slots())
	logger, buf := testutil.NewBufferLogger()
	c := newController(healthyStub(), panicSampler{}, sink, nil, logger, nil, cfg)

	report := c.RunCycle(context.Background())
	if report.Panic == nil || !strings.Contains(report.Panic.Error(), "sampler exploded") {
		t.Fatalf("expected recovered panic, got %+v", report)
	}
	if got, _ := sink.Get(SlotTotalAnalyzed); got.Value != "9" {
		t.Fatalf("expected analyzer branch to complete, got %q", got.Value)
	}
	if !strings.Contains(buf.String(), "dashboard cycle branch panicked") {
		t.Fatalf("expected panic log, got %s", buf.String())
	}
}

func TestRunCycleOverHTTPFetchesConcurrently(t *testing.T) {
	backend := teststubs.NewBackend()
	defer backend.Close()
	backend.SetProcessingStats(`{"num_temperature_readings":3,"num_traffic_readings":5}`)
	backend.SetAnalyzerStats(`{"num_temperature":2,"num_traffic":7}`)
	backend.FailPath("/analyzer/TemperatureEvent", http.StatusInternalServerError)
	backend.SetEvent("TrafficEvent", 4, `{"density":12}`)
	backend.SetDelay(50 * time.Millisecond)

	cfg := endpoints(t, backend.ProcessingURL(), backend.AnalyzerURL())
	cfg.Sample.Picker = fixedPicker(0, 4)
	sink := board.New(Slots())
	c := New(httpclient.NewClient(httpclient.Config{}), sink, nil, nil, nil, cfg)

	report := c.RunCycle(context.Background())
	if err := report.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Sample.Kind != domain.KindTraffic || report.Sample.Index != 4 {
		t.Fatalf("expected traffic fallback, got %+v", report.Sample)
	}
	if got, _ := sink.Get(SlotRandomEvent); got.Value != "{\n  \"density\": 12\n}" {
		t.Fatalf("unexpected random event %q", got.Value)
	}
	if got, _ := sink.Get(SlotRandomEventKind); got.Value != "traffic" {
		t.Fatalf("unexpected kind %q", got.Value)
	}
	if got, _ := sink.Get(SlotTotalEvents); got.Value != "8" {
		t.Fatalf("unexpected total %q", got.Value)
	}
	if backend.MaxInflight() < 3 {
		t.Fatalf("expected the three fetches to overlap, max inflight %d", backend.MaxInflight())
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestStartRunsImmediatelyAndStopIsIdempotent(t *testing.T) {
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	cfg.Interval = time.Hour
	stub := healthyStub()
	c := New(stub, board.New(Slots()), nil, nil, nil, cfg)

	c.Start(context.Background())
	c.Start(context.Background())
	waitFor(t, time.Second, func() bool { return c.Status().CyclesCompleted == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("unexpected second stop error: %v", err)
	}
	if got := stub.StatsCalls.Load(); got != 2 {
		t.Fatalf("expected a single cycle, got %d stats calls", got)
	}
}

func TestStopBeforeStartPreventsStart(t *testing.T) {
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	stub := healthyStub()
	c := New(stub, board.New(Slots()), nil, nil, nil, cfg)

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	if stub.StatsCalls.Load() != 0 {
		t.Fatalf("expected no cycles after stop")
	}
}

func TestStopIsBoundedAndCancelsInflightCycles(t *testing.T) {
	cfg := endpoints(t, "http://processing.test", "http://analyzer.test")
	cfg.Interval = time.Hour
	stub := healthyStub()
	stub.Delay = time.Hour
	stub.Notify = make(chan struct{})
	c := New(stub, board.New(Slots()), nil, nil, nil, cfg)

	c.Start(context.Background())
	<-stub.Notify

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := c.Stop(ctx2); err != nil {
		t.Fatalf("expected cancelled cycles to drain, got %v", err)
	}
	if c.Status().InFlight != 0 {
		t.Fatalf("expected no in-flight cycles")
	}
}

func runOverlap(t *testing.T, policy string) (Status, *teststubs.Backend) {
	t.Helper()
	backend := teststubs.NewBackend()
	t.Cleanup(backend.Close)
	backend.SetEvent("TemperatureEvent", 0, `{"temperature":21}`)
	backend.SetDelay(120 * time.Millisecond)

	cfg := endpoints(t, backend.ProcessingURL(), backend.AnalyzerURL())
	cfg.Interval = 20 * time.Millisecond
	cfg.Overlap = policy
	cfg.Sample.Picker = func(int) int { return 0 }
	rec := metrics.NewRecorder()
	c := New(httpclient.NewClient(httpclient.Config{}), board.New(Slots()), nil, nil, rec, cfg)

	c.Start(context.Background())
	time.Sleep(200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if policy == config.OverlapSkip && rec.Cycles().SkippedCycles == 0 {
		t.Fatalf("expected skipped cycles to be counted")
	}
	return c.Status(), backend
}

func TestOverlapAllowStartsCyclesEveryTick(t *testing.T) {
	status, backend := runOverlap(t, config.OverlapAllow)
	if status.CyclesStarted < 3 || status.CyclesSkipped != 0 {
		t.Fatalf("expected overlapping cycles, got %+v", status)
	}
	if backend.MaxInflight() <= 3 {
		t.Fatalf("expected requests from several cycles in flight, got %d", backend.MaxInflight())
	}
}

func TestOverlapSkipKeepsOneCycleInFlight(t *testing.T) {
	status, backend := runOverlap(t, config.OverlapSkip)
	if status.CyclesSkipped == 0 {
		t.Fatalf("expected skipped ticks, got %+v", status)
	}
	if backend.MaxInflight() > 3 {
		t.Fatalf("expected at most one cycle's requests in flight, got %d", backend.MaxInflight())
	}
	if status.CyclesStarted != status.CyclesCompleted {
		t.Fatalf("expected every started cycle to complete, got %+v", status)
	}
}

func TestStatusIsReady(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		status Status
		want   bool
	}{
		{"never succeeded", Status{}, false},
		{"healthy", Status{LastSuccess: now}, true},
		{"two failures", Status{LastSuccess: now, ConsecutiveFailures: 2}, true},
		{"three failures", Status{LastSuccess: now, ConsecutiveFailures: 3}, false},
	}
	for _, tc := range cases {
		if got := tc.status.IsReady(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
