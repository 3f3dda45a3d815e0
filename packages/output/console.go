package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/metrics"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case string:
		if len(val) > maxLen {
			return fmt.Sprintf("%q...", val[:maxLen])
		}
		return fmt.Sprintf("%q", val)
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	latency *metrics.Summary
	totals  runner.Summary
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) SetLatency(summary *metrics.Summary) {
	f.latency = summary
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	title := "Running: " + result.Suite
	if result.Description != "" {
		title += " - " + result.Description
	}
	fmt.Fprintf(f.writer, "\n%s\n\n", bold(title))

	for _, r := range result.Results {
		switch {
		case r.Skipped():
			if r.SkipReason == runner.SkipFiltered && !f.verbose {
				continue
			}
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name)
			if r.SkipReason != "" {
				fmt.Fprintf(f.writer, " %s", yellow("("+r.SkipReason+")"))
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		case r.Passed():
			fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		default:
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		}

		if f.verbose {
			for _, ex := range r.Exchanges {
				f.formatExchange(ex)
			}
		}

		if r.Error != nil {
			fmt.Fprintf(f.writer, "    %s %v\n", red("→"), r.Error)
		}

		for _, a := range r.FailedAssertions() {
			fmt.Fprintf(f.writer, "    %s %s %s\n", red("→"), a.Subject, a.Operator)
			fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
			fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
			if a.Message != "" {
				fmt.Fprintf(f.writer, "      %s\n", a.Message)
			}
		}

		if f.verbose {
			for _, line := range r.Logs {
				fmt.Fprintf(f.writer, "    %s\n", line)
			}
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(f.writer, "  %s %s\n", yellow("!"), w)
	}

	fmt.Fprintf(f.writer, "\n")
	f.formatCounts(result.Passed, result.Failed, result.Skipped, result.Total())
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())

	f.totals.Suites++
	f.totals.Total += result.Total()
	f.totals.Passed += result.Passed
	f.totals.Failed += result.Failed
	f.totals.Skipped += result.Skipped
}

func (f *ConsoleFormatter) formatExchange(ex *runner.Exchange) {
	if ex.Request == nil {
		return
	}
	if ex.Response == nil {
		fmt.Fprintf(f.writer, "    %s %s -> error (%dms)\n", ex.Request.Method, ex.Request.URL, ex.Duration.Milliseconds())
		return
	}
	fmt.Fprintf(f.writer, "    %s %s -> %d (%dms)\n", ex.Request.Method, ex.Request.URL, ex.Response.StatusCode, ex.Duration.Milliseconds())
}

func (f *ConsoleFormatter) formatCounts(passed, failed, skipped, total int) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "Tests: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", total)
}

// Flush prints the overall totals and, when set, the latency summary
func (f *ConsoleFormatter) Flush(totalDuration time.Duration) error {
	bold := color.New(color.Bold).SprintFunc()

	if f.totals.Suites > 1 {
		fmt.Fprintf(f.writer, "\n%s\n", bold(fmt.Sprintf("All suites (%d)", f.totals.Suites)))
		f.formatCounts(f.totals.Passed, f.totals.Failed, f.totals.Skipped, f.totals.Total)
		fmt.Fprintf(f.writer, "Time:  %dms\n", totalDuration.Milliseconds())
	}

	if f.latency != nil && f.latency.Requests > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", bold("Latency"))
		fmt.Fprintf(f.writer, "  %-40s %s\n", "all requests", formatLatency(f.latency.Latency))
		for _, e := range f.latency.Endpoints {
			fmt.Fprintf(f.writer, "  %-40s %s\n", e.Name, formatLatency(e.Latency))
		}
	}
	fmt.Fprintf(f.writer, "\n")
	return nil
}

func formatLatency(l metrics.Latency) string {
	return fmt.Sprintf("n=%d errors=%d min=%s mean=%s p50=%s p95=%s p99=%s max=%s",
		l.Requests, l.Errors, ms(l.Min), ms(l.Mean), ms(l.P50), ms(l.P95), ms(l.P99), ms(l.Max))
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("giraftest"), version)
}
