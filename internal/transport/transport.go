// Package transport opens the byte stream to a vehicle, independent of
// whether it arrives over TCP or a serial link: one Dial function, keyed
// off a "kind" string set from configuration.
package transport

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tarm/serial"
)

// Kind identifies which concrete transport to dial.
const (
	KindTCP    = "tcp"
	KindSerial = "serial"
)

// Config carries every field either transport might need; only the fields
// relevant to the selected Kind are read.
type Config struct {
	Kind string

	// TCP
	Addr    string
	Timeout time.Duration

	// Serial
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// openSerialPort is a seam for tests to intercept serial.OpenPort.
var openSerialPort = serial.OpenPort

// Dial opens the configured transport and returns it as a plain
// io.ReadWriteCloser; the reactor does not need to know which one it got.
func Dial(cfg Config) (io.ReadWriteCloser, error) {
	switch cfg.Kind {
	case KindTCP:
		return dialTCP(cfg)
	case KindSerial:
		return dialSerial(cfg)
	default:
		return nil, fmt.Errorf("transport: unknown kind %q (use tcp|serial)", cfg.Kind)
	}
}

func dialTCP(cfg Config) (io.ReadWriteCloser, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	conn, err := net.DialTimeout("tcp", cfg.Addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial tcp %s: %w", cfg.Addr, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
		_ = tcp.SetKeepAlive(true)
		_ = tcp.SetKeepAlivePeriod(30 * time.Second)
	}
	return conn, nil
}

func dialSerial(cfg Config) (io.ReadWriteCloser, error) {
	readTO := cfg.ReadTimeout
	if readTO <= 0 {
		readTO = 500 * time.Millisecond
	}
	baud := cfg.Baud
	if baud <= 0 {
		baud = 57600
	}
	port, err := openSerialPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: readTO,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open serial %s: %w", cfg.Device, err)
	}
	return port, nil
}
