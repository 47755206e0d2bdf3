package main

import (
	"os"
	"testing"
	"time"
)

func TestApplyEnvOverridesBasic(t *testing.T) {
	base := validBaseConfig()

	os.Setenv("MAVGCS_SERIAL_BAUD", "230400")
	os.Setenv("MAVGCS_DISCOVER", "true")
	os.Setenv("MAVGCS_SERIAL_READ_TIMEOUT", "100ms")
	os.Setenv("MAVGCS_LOG_METRICS_INTERVAL", "5s")
	t.Cleanup(func() {
		os.Unsetenv("MAVGCS_SERIAL_BAUD")
		os.Unsetenv("MAVGCS_DISCOVER")
		os.Unsetenv("MAVGCS_SERIAL_READ_TIMEOUT")
		os.Unsetenv("MAVGCS_LOG_METRICS_INTERVAL")
	})

	if err := applyEnvOverrides(base, map[string]struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.serialBaud != 230400 {
		t.Fatalf("expected serialBaud override, got %d", base.serialBaud)
	}
	if !base.discoverEnable {
		t.Fatalf("expected discoverEnable true")
	}
	if base.serialReadTO != 100*time.Millisecond {
		t.Fatalf("expected serialReadTO 100ms, got %v", base.serialReadTO)
	}
	if base.logMetricsEvery != 5*time.Second {
		t.Fatalf("expected logMetricsEvery 5s, got %v", base.logMetricsEvery)
	}
}

func TestApplyEnvOverridesFlagPrecedence(t *testing.T) {
	base := validBaseConfig()
	base.serialBaud = 115200
	os.Setenv("MAVGCS_SERIAL_BAUD", "230400")
	t.Cleanup(func() { os.Unsetenv("MAVGCS_SERIAL_BAUD") })

	if err := applyEnvOverrides(base, map[string]struct{}{"serial-baud": {}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.serialBaud != 115200 {
		t.Fatalf("expected flag to win over env, got %d", base.serialBaud)
	}
}

func TestApplyEnvOverridesBadInt(t *testing.T) {
	base := validBaseConfig()
	os.Setenv("MAVGCS_OUTBOUND_DEPTH", "notanumber")
	t.Cleanup(func() { os.Unsetenv("MAVGCS_OUTBOUND_DEPTH") })

	if err := applyEnvOverrides(base, map[string]struct{}{}); err == nil {
		t.Fatalf("expected error for bad integer")
	}
}
