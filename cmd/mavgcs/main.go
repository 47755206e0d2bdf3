package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/mavlink/wire"
	"github.com/kstaniek/mavgcs/internal/metrics"
	"github.com/kstaniek/mavgcs/internal/reactor"
	"github.com/kstaniek/mavgcs/internal/session"
	"github.com/kstaniek/mavgcs/internal/transport"
)

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("mavgcs %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(1)
	}

	l := setupLogger(cfg.logFormat, cfg.logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	addr := cfg.addr
	if cfg.transport == transport.KindTCP && cfg.discoverEnable {
		found, err := discoverVehicle(ctx, cfg.discoverTimeout)
		if err != nil {
			l.Error("mdns_discover_error", "error", err)
			return
		}
		l.Info("mdns_discovered", "addr", found)
		addr = found
	}

	conn, err := transport.Dial(transport.Config{
		Kind:        cfg.transport,
		Addr:        addr,
		Timeout:     cfg.dialTO,
		Device:      cfg.serialDevice,
		Baud:        cfg.serialBaud,
		ReadTimeout: cfg.serialReadTO,
	})
	if err != nil {
		metrics.IncError(metrics.ErrDial)
		l.Error("transport_dial_error", "error", err)
		return
	}

	codec := wire.NewCodec(dialect.ExtraCRC)
	r := reactor.New(conn, codec,
		reactor.WithLogger(l),
		reactor.WithIdentity(uint8(cfg.systemID), uint8(cfg.componentID)),
		reactor.WithOutboundDepth(cfg.outboundDepth),
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run(ctx)
	}()

	sess := session.New(r)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.Run(ctx)
	}()

	var metricsSrv interface{ Shutdown(context.Context) error }
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		metricsSrv = metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = metricsSrv.Shutdown(context.Background()) }()
	}

	initCtx, initCancel := context.WithTimeout(ctx, cfg.commandTimeout)
	if err := sess.Init(initCtx); err != nil {
		initCancel()
		l.Error("session_init_error", "error", err)
		cancel()
		r.Close()
		wg.Wait()
		return
	}
	initCancel()
	l.Info("session_ready")
	metrics.SetReadinessFunc(func() bool { return true })

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigCh:
		l.Info("shutdown_signal", "signal", s.String())
	case err := <-r.Errors():
		l.Error("reactor_fatal_error", "error", err)
	}
	cancel()
	r.Close()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		l.Warn("shutdown_timeout")
	}
}
