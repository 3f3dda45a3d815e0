package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/metrics"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary  `json:"summary"`
	Suites   []JSONSuite  `json:"suites"`
	Latency  *JSONLatency `json:"latency,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type JSONSuite struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Summary     JSONSummary `json:"summary"`
	Duration    float64     `json:"duration"`
	Warnings    []string    `json:"warnings,omitempty"`
	Tests       []JSONTest  `json:"tests"`
}

// JSONTest represents a single case result
type JSONTest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	SkipReason  string          `json:"skipReason,omitempty"`
	Duration    float64         `json:"duration"`
	Error       string          `json:"error,omitempty"`
	Exchanges   []JSONExchange  `json:"exchanges,omitempty"`
	Assertions  []JSONAssertion `json:"assertions,omitempty"`
}

// JSONExchange represents one request and its outcome
type JSONExchange struct {
	Method     string  `json:"method"`
	URL        string  `json:"url"`
	StatusCode int     `json:"statusCode,omitempty"`
	ErrorKey   string  `json:"errorKey,omitempty"`
	Error      string  `json:"error,omitempty"`
	Duration   float64 `json:"duration"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONLatency is the latency summary in milliseconds
type JSONLatency struct {
	JSONLatencyStats
	Endpoints []JSONEndpointLatency `json:"endpoints,omitempty"`
}

type JSONLatencyStats struct {
	Requests int64   `json:"requests"`
	Errors   int64   `json:"errors"`
	Min      float64 `json:"minMs"`
	Max      float64 `json:"maxMs"`
	Mean     float64 `json:"meanMs"`
	P50      float64 `json:"p50Ms"`
	P95      float64 `json:"p95Ms"`
	P99      float64 `json:"p99Ms"`
}

type JSONEndpointLatency struct {
	Name string `json:"name"`
	JSONLatencyStats
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer  io.Writer
	suites  []JSONSuite
	errors  []string
	latency *metrics.Summary
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		suites: make([]JSONSuite, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) SetLatency(summary *metrics.Summary) {
	f.latency = summary
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	suite := JSONSuite{
		Name:        result.Suite,
		Description: result.Description,
		Summary: JSONSummary{
			Total:   result.Total(),
			Passed:  result.Passed,
			Failed:  result.Failed,
			Skipped: result.Skipped,
		},
		Duration: millis(result.Duration),
		Warnings: result.Warnings,
		Tests:    make([]JSONTest, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		test := JSONTest{
			Name:        r.Name,
			Description: r.Description,
			Status:      string(r.Status),
			SkipReason:  skipReason(r),
			Duration:    millis(r.Duration),
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		for _, ex := range r.Exchanges {
			test.Exchanges = append(test.Exchanges, jsonExchange(ex))
		}

		for _, a := range r.Assertions {
			test.Assertions = append(test.Assertions, JSONAssertion{
				Subject:  a.Subject,
				Operator: a.Operator,
				Expected: a.Expected,
				Actual:   a.Actual,
				Passed:   a.Passed,
				Message:  a.Message,
			})
		}

		suite.Tests = append(suite.Tests, test)
	}

	f.suites = append(f.suites, suite)
}

func jsonExchange(ex *runner.Exchange) JSONExchange {
	out := JSONExchange{Duration: millis(ex.Duration)}
	if ex.Request != nil {
		out.Method = ex.Request.Method
		out.URL = ex.Request.URL
	}
	if ex.Response != nil {
		out.StatusCode = ex.Response.StatusCode
	}
	if ex.Envelope != nil {
		out.ErrorKey = ex.Envelope.ErrorKey
	}
	if ex.Error != nil {
		out.Error = ex.Error.Error()
	}
	return out
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var summary JSONSummary
	for _, s := range f.suites {
		summary.Total += s.Summary.Total
		summary.Passed += s.Summary.Passed
		summary.Failed += s.Summary.Failed
		summary.Skipped += s.Summary.Skipped
	}

	output := JSONOutput{
		Summary:  summary,
		Suites:   f.suites,
		Errors:   f.errors,
		Duration: millis(totalDuration),
		Time:     time.Now().Format(time.RFC3339),
	}
	if f.latency != nil {
		output.Latency = jsonLatency(f.latency)
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func jsonLatency(s *metrics.Summary) *JSONLatency {
	out := &JSONLatency{JSONLatencyStats: latencyStats(s.Latency)}
	for _, e := range s.Endpoints {
		out.Endpoints = append(out.Endpoints, JSONEndpointLatency{
			Name:             e.Name,
			JSONLatencyStats: latencyStats(e.Latency),
		})
	}
	return out
}

func latencyStats(l metrics.Latency) JSONLatencyStats {
	return JSONLatencyStats{
		Requests: l.Requests,
		Errors:   l.Errors,
		Min:      millis(l.Min),
		Max:      millis(l.Max),
		Mean:     millis(l.Mean),
		P50:      millis(l.P50),
		P95:      millis(l.P95),
		P99:      millis(l.P99),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
