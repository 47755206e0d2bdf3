package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kstaniek/mavgcs/internal/metrics"
)

func startMetricsLogger(ctx context.Context, interval time.Duration, l *slog.Logger, wg *sync.WaitGroup) {
	if interval <= 0 {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				snap := metrics.Snap()
				l.Info("metrics_snapshot",
					"frames_decoded", snap.FramesDecoded,
					"frames_rejected", snap.FramesRejected,
					"frames_sent", snap.FramesSent,
					"watchers_fired", snap.WatchersFired,
					"outbound_drops", snap.OutboundDrops,
					"errors", snap.Errors,
				)
			case <-ctx.Done():
				return
			}
		}
	}()
}
