package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"
)

// WaitForHealthy polls baseURL's /health until it answers 200 OK or ctx is
// done. baseURL is the server root, e.g. "http://localhost:8080".
func WaitForHealthy(ctx context.Context, clock quartz.Clock, baseURL string) error {
	client := &http.Client{Timeout: time.Second}
	healthy := func() bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}
	if healthy() {
		return nil
	}

	ticker := clock.NewTicker(100*time.Millisecond, "health")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", baseURL, ctx.Err())
		case <-ticker.C:
			if healthy() {
				return nil
			}
		}
	}
}
