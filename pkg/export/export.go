// Package export writes an optimized path to a byte-oriented sink: a
// serial port, a TCP peer, a file or stdout. The wire form is one symbol
// per maneuver with no separators, e.g. "SRLS".
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
)

// DefaultBaud matches the firmware's serial monitor speed.
const DefaultBaud = 9600

// ErrUnsupportedTarget is returned by Open for an unknown target scheme.
var ErrUnsupportedTarget = errors.New("export: unsupported target")

// WritePath writes p as a flat symbol stream.
func WritePath(w io.Writer, p pathmem.Path) error {
	buf := make([]byte, len(p))
	for i, m := range p {
		buf[i] = m.Byte()
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("export: write path: %w", err)
	}
	return nil
}

// serialSink drains pending output before closing so the last symbols are
// not dropped.
type serialSink struct {
	serial.Port
}

func (s serialSink) Close() error {
	drainErr := s.Port.Drain()
	return errors.Join(drainErr, s.Port.Close())
}

// OpenSerial opens a serial port for writing at baud (8N1).
func OpenSerial(port string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("export: open serial %s: %w", port, err)
	}
	return serialSink{p}, nil
}

// Ports lists the serial ports present on the host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("export: list serial ports: %w", err)
	}
	return ports, nil
}

// DialTCP connects to a TCP listener.
func DialTCP(ctx context.Context, addr string) (io.WriteCloser, error) {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("export: dial %s: %w", addr, err)
	}
	return conn, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Open resolves a target string:
//
//	-, stdout                        standard output
//	serial:///dev/ttyACM0?baud=9600  serial port (serial://COM3 on Windows)
//	tcp://host:port                  TCP peer
//	file:///path, /path, path        file, truncated
func Open(ctx context.Context, target string) (io.WriteCloser, error) {
	switch target {
	case "":
		return nil, fmt.Errorf("%w: empty", ErrUnsupportedTarget)
	case "-", "stdout":
		return nopCloser{os.Stdout}, nil
	}
	if !strings.Contains(target, "://") {
		return createFile(target)
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("export: parse target: %w", err)
	}
	switch u.Scheme {
	case "serial":
		port := u.Path
		if port == "" {
			port = u.Host
		}
		baud := DefaultBaud
		if b := u.Query().Get("baud"); b != "" {
			if baud, err = strconv.Atoi(b); err != nil {
				return nil, fmt.Errorf("export: bad baud %q: %w", b, err)
			}
		}
		return OpenSerial(port, baud)
	case "tcp":
		return DialTCP(ctx, u.Host)
	case "file":
		return createFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, u.Scheme)
	}
}

func createFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	return f, nil
}
