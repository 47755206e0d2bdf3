package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	transport string

	addr    string
	dialTO  time.Duration

	serialDevice string
	serialBaud   int
	serialReadTO time.Duration

	logFormat       string
	logLevel        string
	metricsAddr     string
	logMetricsEvery time.Duration

	outboundDepth  int
	commandTimeout time.Duration
	systemID       int
	componentID    int

	discoverEnable  bool
	discoverTimeout time.Duration
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	transport := flag.String("transport", "tcp", "Vehicle transport: tcp|serial")
	addr := flag.String("addr", "127.0.0.1:5760", "Vehicle TCP address (host:port)")
	dialTO := flag.Duration("dial-timeout", 10*time.Second, "TCP dial timeout")
	serialDevice := flag.String("serial-device", "/dev/ttyUSB0", "Serial device path")
	serialBaud := flag.Int("serial-baud", 57600, "Serial baud rate")
	serialReadTO := flag.Duration("serial-read-timeout", 500*time.Millisecond, "Serial read timeout")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters")
	outboundDepth := flag.Int("outbound-depth", 64, "Reactor outbound queue depth")
	commandTimeout := flag.Duration("command-timeout", 10*time.Second, "Default timeout for blocking commands")
	systemID := flag.Int("system-id", 255, "System id this client sends outbound frames as")
	componentID := flag.Int("component-id", 0, "Component id this client sends outbound frames as")
	discoverEnable := flag.Bool("discover", false, "Browse mDNS for a vehicle instead of using --addr")
	discoverTimeout := flag.Duration("discover-timeout", 5*time.Second, "mDNS browse timeout")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.transport = *transport
	cfg.addr = *addr
	cfg.dialTO = *dialTO
	cfg.serialDevice = *serialDevice
	cfg.serialBaud = *serialBaud
	cfg.serialReadTO = *serialReadTO
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.outboundDepth = *outboundDepth
	cfg.commandTimeout = *commandTimeout
	cfg.systemID = *systemID
	cfg.componentID = *componentID
	cfg.discoverEnable = *discoverEnable
	cfg.discoverTimeout = *discoverTimeout

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to dial transports, only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.transport {
	case "tcp", "serial":
	default:
		return fmt.Errorf("invalid transport: %s", c.transport)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if c.outboundDepth <= 0 {
		return fmt.Errorf("outbound-depth must be > 0 (got %d)", c.outboundDepth)
	}
	if c.serialBaud <= 0 {
		return fmt.Errorf("serial-baud must be > 0 (got %d)", c.serialBaud)
	}
	if c.serialReadTO <= 0 {
		return fmt.Errorf("serial-read-timeout must be > 0")
	}
	if c.commandTimeout <= 0 {
		return fmt.Errorf("command-timeout must be > 0")
	}
	if c.systemID < 0 || c.systemID > 255 {
		return fmt.Errorf("system-id must be in [0,255] (got %d)", c.systemID)
	}
	if c.componentID < 0 || c.componentID > 255 {
		return fmt.Errorf("component-id must be in [0,255] (got %d)", c.componentID)
	}
	return nil
}

// applyEnvOverrides maps MAVGCS_* environment variables to config fields
// unless a corresponding flag was explicitly set. Flag wins over env.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }

	if _, ok := set["transport"]; !ok {
		if v, ok := get("MAVGCS_TRANSPORT"); ok && v != "" {
			c.transport = v
		}
	}
	if _, ok := set["addr"]; !ok {
		if v, ok := get("MAVGCS_ADDR"); ok && v != "" {
			c.addr = v
		}
	}
	if _, ok := set["serial-device"]; !ok {
		if v, ok := get("MAVGCS_SERIAL_DEVICE"); ok && v != "" {
			c.serialDevice = v
		}
	}
	if _, ok := set["serial-baud"]; !ok {
		if v, ok := get("MAVGCS_SERIAL_BAUD"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.serialBaud = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_SERIAL_BAUD: %w", err)
			}
		}
	}
	if _, ok := set["serial-read-timeout"]; !ok {
		if v, ok := get("MAVGCS_SERIAL_READ_TIMEOUT"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.serialReadTO = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_SERIAL_READ_TIMEOUT: %w", err)
			}
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("MAVGCS_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("MAVGCS_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("MAVGCS_METRICS_ADDR"); ok {
			c.metricsAddr = v
		}
	}
	if _, ok := set["log-metrics-interval"]; !ok {
		if v, ok := get("MAVGCS_LOG_METRICS_INTERVAL"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d >= 0 {
				c.logMetricsEvery = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_LOG_METRICS_INTERVAL: %w", err)
			}
		}
	}
	if _, ok := set["outbound-depth"]; !ok {
		if v, ok := get("MAVGCS_OUTBOUND_DEPTH"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.outboundDepth = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_OUTBOUND_DEPTH: %w", err)
			}
		}
	}
	if _, ok := set["command-timeout"]; !ok {
		if v, ok := get("MAVGCS_COMMAND_TIMEOUT"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.commandTimeout = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_COMMAND_TIMEOUT: %w", err)
			}
		}
	}
	if _, ok := set["system-id"]; !ok {
		if v, ok := get("MAVGCS_SYSTEM_ID"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.systemID = n
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_SYSTEM_ID: %w", err)
			}
		}
	}
	if _, ok := set["component-id"]; !ok {
		if v, ok := get("MAVGCS_COMPONENT_ID"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.componentID = n
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_COMPONENT_ID: %w", err)
			}
		}
	}
	if _, ok := set["discover"]; !ok {
		if v, ok := get("MAVGCS_DISCOVER"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.discoverEnable = true
			case "0", "false", "no", "off":
				c.discoverEnable = false
			}
		}
	}
	if _, ok := set["discover-timeout"]; !ok {
		if v, ok := get("MAVGCS_DISCOVER_TIMEOUT"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.discoverTimeout = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVGCS_DISCOVER_TIMEOUT: %w", err)
			}
		}
	}
	return firstErr
}
