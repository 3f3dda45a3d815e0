// Package metrics records request latencies per endpoint using HDR histograms.
//
// A Recorder is fed through the HTTP client's observer hook and produces a
// Summary with count, min, max, mean and p50/p95/p99 overall and per endpoint.
package metrics
