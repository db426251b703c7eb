package teststubs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Backend fakes the processing and analyzer services behind one httptest server.
// Processing is mounted at /processing and the analyzer at /analyzer.
type Backend struct {
	Server *httptest.Server

	mu              sync.Mutex
	processingStats string
	analyzerStats   string
	events          map[string]map[int]string
	status          map[string]int
	delay           time.Duration
	hits            map[string]int

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

// NewBackend starts a backend with empty stats and no events. Call Close when done.
func NewBackend() *Backend {
	b := &Backend{
		processingStats: `{}`,
		analyzerStats:   `{}`,
		events:          make(map[string]map[int]string),
		status:          make(map[string]int),
		hits:            make(map[string]int),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// Close shuts the server down.
func (b *Backend) Close() { b.Server.Close() }

// ProcessingURL is the base URL of the fake processing service.
func (b *Backend) ProcessingURL() string { return b.Server.URL + "/processing" }

// AnalyzerURL is the base URL of the fake analyzer service.
func (b *Backend) AnalyzerURL() string { return b.Server.URL + "/analyzer" }

// SetProcessingStats sets the raw JSON body of /processing/stats.
func (b *Backend) SetProcessingStats(body string) {
	b.mu.Lock()
	b.processingStats = body
	b.mu.Unlock()
}

// SetAnalyzerStats sets the raw JSON body of /analyzer/stats.
func (b *Backend) SetAnalyzerStats(body string) {
	b.mu.Lock()
	b.analyzerStats = body
	b.mu.Unlock()
}

// SetEvent serves body for /analyzer/{kind}?index={index}.
func (b *Backend) SetEvent(kind string, index int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events[kind] == nil {
		b.events[kind] = make(map[int]string)
	}
	b.events[kind][index] = body
}

// FailPath forces path (e.g. "/analyzer/stats") to answer with code.
func (b *Backend) FailPath(path string, code int) {
	b.mu.Lock()
	b.status[path] = code
	b.mu.Unlock()
}

// SetDelay holds every response for d.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	b.delay = d
	b.mu.Unlock()
}

// Hits returns how many requests reached path.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// MaxInflight reports the highest number of concurrently served requests.
func (b *Backend) MaxInflight() int { return int(b.maxInflight.Load()) }

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	n := b.inflight.Add(1)
	defer b.inflight.Add(-1)
	for {
		cur := b.maxInflight.Load()
		if n <= cur || b.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}

	b.mu.Lock()
	b.hits[r.URL.Path]++
	delay := b.delay
	code, forced := b.status[r.URL.Path]
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}
	if forced {
		writeBody(w, code, `{"message":"forced failure"}`)
		return
	}

	switch {
	case r.URL.Path == "/processing/stats":
		b.mu.Lock()
		body := b.processingStats
		b.mu.Unlock()
		writeBody(w, http.StatusOK, body)
	case r.URL.Path == "/analyzer/stats":
		b.mu.Lock()
		body := b.analyzerStats
		b.mu.Unlock()
		writeBody(w, http.StatusOK, body)
	case strings.HasPrefix(r.URL.Path, "/analyzer/"):
		b.serveEvent(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (b *Backend) serveEvent(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimPrefix(r.URL.Path, "/analyzer/")
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeBody(w, http.StatusBadRequest, `{"message":"bad index"}`)
		return
	}
	b.mu.Lock()
	body, ok := b.events[kind][index]
	b.mu.Unlock()
	if !ok {
		msg, _ := json.Marshal(map[string]string{"message": "No message at index " + strconv.Itoa(index) + "!"})
		writeBody(w, http.StatusNotFound, string(msg))
		return
	}
	writeBody(w, http.StatusOK, body)
}

func writeBody(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
