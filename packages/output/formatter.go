package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/metrics"
)

// Formatter renders suite results as they complete
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write their report at the end of a run
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// LatencyReporter is implemented by formatters that can include a latency summary
type LatencyReporter interface {
	SetLatency(summary *metrics.Summary)
}

// Formats lists the names accepted by New
var Formats = []string{"console", "json", "junit", "tap"}

type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// New builds the formatter for a format name. An empty name selects console.
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		consoleOpts := []ConsoleOption{WithVerbose(opts.Verbose), WithNoColor(opts.NoColor)}
		if opts.Writer != nil {
			consoleOpts = append(consoleOpts, WithWriter(opts.Writer))
		}
		return NewConsoleFormatter(consoleOpts...), nil
	case "json":
		var jsonOpts []JSONOption
		if opts.Writer != nil {
			jsonOpts = append(jsonOpts, JSONWithWriter(opts.Writer))
		}
		return NewJSONFormatter(jsonOpts...), nil
	case "junit":
		var junitOpts []JUnitOption
		if opts.Writer != nil {
			junitOpts = append(junitOpts, JUnitWithWriter(opts.Writer))
		}
		return NewJUnitFormatter(junitOpts...), nil
	case "tap":
		var tapOpts []TAPOption
		if opts.Writer != nil {
			tapOpts = append(tapOpts, TAPWithWriter(opts.Writer))
		}
		return NewTAPFormatter(tapOpts...), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (available: %s)", format, strings.Join(Formats, ", "))
	}
}

// failureLines describes why a case failed, one line per failed assertion
func failureLines(cr *runner.CaseResult) []string {
	var lines []string
	for _, a := range cr.FailedAssertions() {
		lines = append(lines, fmt.Sprintf("%s %s: expected %s, got %s",
			a.Subject, a.Operator, formatValue(a.Expected, 100), formatValue(a.Actual, 100)))
	}
	return lines
}

// skipReason hides the reason for cases that were filtered out
func skipReason(cr *runner.CaseResult) string {
	if cr.SkipReason == runner.SkipFiltered {
		return ""
	}
	return cr.SkipReason
}
