package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// KeepAlive periodically requests a URL so that free hosting does not put the service to sleep
type KeepAlive struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewKeepAlive creates a pinger for url
func NewKeepAlive(url string, interval time.Duration, logger *zap.Logger) *KeepAlive {
	return &KeepAlive{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Run pings every interval until ctx is done
func (k *KeepAlive) Run(ctx context.Context) {
	k.logger.Info("Keep-alive started",
		zap.String("url", k.url),
		zap.Duration("interval", k.interval),
	)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			k.logger.Info("Keep-alive stopped")
			return
		case <-ticker.C:
			if err := k.ping(ctx); err != nil {
				k.logger.Warn("Keep-alive ping failed", zap.Error(err), zap.String("url", k.url))
			}
		}
	}
}

func (k *KeepAlive) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		k.logger.Debug("Failed to drain keep-alive response", zap.Error(err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
