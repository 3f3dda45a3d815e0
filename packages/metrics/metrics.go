package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

const (
	// latencies are stored in microseconds, 1us to 60s with 3 significant digits
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
	sigFigs      = 3
)

// Recorder collects latencies for every observed request
type Recorder struct {
	mu        sync.Mutex
	overall   *series
	endpoints map[string]*series
}

type series struct {
	requests  int64
	errors    int64
	histogram *hdrhistogram.Histogram
}

func newSeries() *series {
	return &series{histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs)}
}

func (s *series) record(latencyUs int64, failed bool, hasLatency bool) {
	s.requests++
	if failed {
		s.errors++
	}
	if hasLatency {
		_ = s.histogram.RecordValue(latencyUs)
	}
}

func NewRecorder() *Recorder {
	return &Recorder{
		overall:   newSeries(),
		endpoints: make(map[string]*series),
	}
}

// Record adds one request. A request that failed in transport has no latency
// and only counts towards requests and errors.
func (r *Recorder) Record(name string, d time.Duration, err error) {
	r.record(name, d, err != nil, err == nil)
}

func (r *Recorder) record(name string, d time.Duration, failed, hasLatency bool) {
	latencyUs := clamp(d.Microseconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.overall.record(latencyUs, failed, hasLatency)
	if name == "" {
		return
	}
	s, ok := r.endpoints[name]
	if !ok {
		s = newSeries()
		r.endpoints[name] = s
	}
	s.record(latencyUs, failed, hasLatency)
}

// Observer returns an http.Observer that feeds this recorder. Server errors
// (5xx) are counted as errors alongside transport failures.
func (r *Recorder) Observer() http.Observer {
	return func(req *http.Request, resp *http.Response, err error) {
		if resp == nil {
			r.record(req.DisplayName(), 0, true, false)
			return
		}
		r.record(req.DisplayName(), resp.Duration, err != nil || resp.IsServerError(), true)
	}
}

// Reset discards everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overall = newSeries()
	r.endpoints = make(map[string]*series)
}

// Latency is the aggregate for one series
type Latency struct {
	Requests int64         `json:"requests"`
	Errors   int64         `json:"errors"`
	Min      time.Duration `json:"min"`
	Max      time.Duration `json:"max"`
	Mean     time.Duration `json:"mean"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	P99      time.Duration `json:"p99"`
}

type EndpointLatency struct {
	Name string `json:"name"`
	Latency
}

type Summary struct {
	Latency
	// Endpoints is sorted by name
	Endpoints []EndpointLatency `json:"endpoints"`
}

// Endpoint returns the latency for a named endpoint
func (s *Summary) Endpoint(name string) (Latency, bool) {
	for _, e := range s.Endpoints {
		if e.Name == name {
			return e.Latency, true
		}
	}
	return Latency{}, false
}

func (r *Recorder) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &Summary{Latency: r.overall.latency()}
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.Endpoints = append(summary.Endpoints, EndpointLatency{
			Name:    name,
			Latency: r.endpoints[name].latency(),
		})
	}
	return summary
}

func (s *series) latency() Latency {
	l := Latency{Requests: s.requests, Errors: s.errors}
	h := s.histogram
	if h.TotalCount() == 0 {
		return l
	}
	l.Min = us(h.Min())
	l.Max = us(h.Max())
	l.Mean = time.Duration(h.Mean() * float64(time.Microsecond))
	l.P50 = us(h.ValueAtQuantile(50))
	l.P95 = us(h.ValueAtQuantile(95))
	l.P99 = us(h.ValueAtQuantile(99))
	return l
}

func us(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

func clamp(latencyUs int64) int64 {
	if latencyUs < minLatencyUs {
		return minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		return maxLatencyUs
	}
	return latencyUs
}
