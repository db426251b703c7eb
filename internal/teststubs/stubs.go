package teststubs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
)

// ErrNoFixture is returned by StubClient for requests it has no data for.
var ErrNoFixture = errors.New("stub: no fixture")

// EventCall records one FetchEvent invocation.
type EventCall struct {
	Kind  domain.EventKind
	Index int
}

// StubClient is a test double for upstream.Client keyed by endpoint name and event kind.
type StubClient struct {
	Stats    map[string]domain.StatsResult
	StatsErr map[string]error
	Events   map[domain.EventKind]json.RawMessage
	EventErr map[domain.EventKind]error
	// Delay holds every call for the given duration (or until ctx is done).
	Delay time.Duration
	// Notify is closed on the first call of any kind.
	Notify chan struct{}

	StatsCalls atomic.Int32
	mu         sync.Mutex
	eventCalls []EventCall
	notifyOnce sync.Once
}

// FetchStats returns the configured result or error for the endpoint's name.
func (s *StubClient) FetchStats(ctx context.Context, endpoint domain.ServiceEndpoint) (domain.StatsResult, error) {
	s.StatsCalls.Add(1)
	s.notify()
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if err := s.StatsErr[endpoint.Name()]; err != nil {
		return nil, err
	}
	stats, ok := s.Stats[endpoint.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: stats for %s", ErrNoFixture, endpoint.Name())
	}
	return stats, nil
}

// FetchEvent returns the configured payload or error for kind, recording the call.
func (s *StubClient) FetchEvent(ctx context.Context, endpoint domain.ServiceEndpoint, kind domain.EventKind, index int) (json.RawMessage, error) {
	_ = endpoint
	s.mu.Lock()
	s.eventCalls = append(s.eventCalls, EventCall{Kind: kind, Index: index})
	s.mu.Unlock()
	s.notify()
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if err := s.EventErr[kind]; err != nil {
		return nil, err
	}
	payload, ok := s.Events[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s index %d", ErrNoFixture, kind, index)
	}
	return payload, nil
}

// EventCalls returns a copy of the recorded FetchEvent calls in order.
func (s *StubClient) EventCalls() []EventCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EventCall(nil), s.eventCalls...)
}

func (s *StubClient) notify() {
	if s.Notify == nil {
		return
	}
	s.notifyOnce.Do(func() { close(s.Notify) })
}

func (s *StubClient) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.Delay):
		return nil
	}
}

// StubSink is a test double for dashboard.Sink that keeps every write.
type StubSink struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// SetText records the latest value for slot.
func (s *StubSink) SetText(slot, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[slot] = value
	s.writes++
}

// Text returns the latest value for slot.
func (s *StubSink) Text(slot string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[slot]
	return v, ok
}

// Writes returns the number of SetText calls seen.
func (s *StubSink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
