package teststubs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
)

func endpoint(t *testing.T, name string) domain.ServiceEndpoint {
	t.Helper()
	ep, err := domain.NewServiceEndpoint(name, "http://stub/"+name)
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	return ep
}

func TestStubClientReturnsFixturesAndErrors(t *testing.T) {
	boom := errors.New("boom")
	stub := &StubClient{
		Stats:    map[string]domain.StatsResult{"processing": {"num_traffic_readings": 5.0}},
		StatsErr: map[string]error{"analyzer": boom},
		Events:   map[domain.EventKind]json.RawMessage{domain.KindTraffic: json.RawMessage(`{"density":12}`)},
		Notify:   make(chan struct{}),
	}

	stats, err := stub.FetchStats(context.Background(), endpoint(t, "processing"))
	if err != nil || stats.Number("num_traffic_readings") != 5 {
		t.Fatalf("unexpected stats %v (%v)", stats, err)
	}
	if _, err := stub.FetchStats(context.Background(), endpoint(t, "analyzer")); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
	if _, err := stub.FetchEvent(context.Background(), endpoint(t, "analyzer"), domain.KindTemperature, 1); !errors.Is(err, ErrNoFixture) {
		t.Fatalf("expected missing fixture error, got %v", err)
	}
	if _, err := stub.FetchEvent(context.Background(), endpoint(t, "analyzer"), domain.KindTraffic, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-stub.Notify:
	default:
		t.Fatalf("expected notify channel to be closed")
	}
	if got := stub.StatsCalls.Load(); got != 2 {
		t.Fatalf("expected 2 stats calls, got %d", got)
	}
	calls := stub.EventCalls()
	if len(calls) != 2 || calls[0].Kind != domain.KindTemperature || calls[1].Kind != domain.KindTraffic {
		t.Fatalf("unexpected event calls %+v", calls)
	}
}

func TestStubClientDelayHonorsContext(t *testing.T) {
	stub := &StubClient{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := stub.FetchStats(ctx, endpoint(t, "processing")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestStubSinkKeepsLatestValue(t *testing.T) {
	var sink StubSink
	sink.SetText("totalEvents", "1")
	sink.SetText("totalEvents", "8")

	if got, ok := sink.Text("totalEvents"); !ok || got != "8" {
		t.Fatalf("expected latest value 8, got %q", got)
	}
	if _, ok := sink.Text("missing"); ok {
		t.Fatalf("expected missing slot")
	}
	if sink.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", sink.Writes())
	}
}
