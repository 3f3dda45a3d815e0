package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

const (
	// DefaultWaitInterval is the delay between readiness probes
	DefaultWaitInterval = 500 * time.Millisecond
	waitProbeTimeout    = 5 * time.Second
)

// WaitForService polls url until it answers with a non-5xx status or timeout
// elapses. Any HTTP answer below 500 counts as ready, so an API that rejects
// anonymous requests is still considered up.
func WaitForService(ctx context.Context, url string, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	if err := http.ValidateURL(url); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := http.NewClient(http.WithTimeout(waitProbeTimeout))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	var lastStatus int

	for {
		resp, err := client.Get(ctx, url, nil)
		if err != nil {
			lastErr = err
		} else {
			lastStatus = resp.StatusCode
			if !resp.IsServerError() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastStatus != 0 {
				return fmt.Errorf("service %s not ready after %v: got status %d", url, timeout, lastStatus)
			}
			return fmt.Errorf("service %s not ready after %v: %v", url, timeout, lastErr)
		case <-ticker.C:
		}
	}
}
