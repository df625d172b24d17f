package report

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/itohio/tivatemp/pkg/report/line"
	"github.com/itohio/tivatemp/pkg/temperature"
)

const (
	// DefaultBaudRate is the UART rate the reports are sent at.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// OpenSerial opens port as the report output. The port is 8N1 at baudRate.
func OpenSerial(port string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	conn, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}

	return conn, nil
}

// Monitor reads report lines from a serial port and parses them into readings.
//
// Each connection gets its own readings channel. The channel is closed when
// the connection ends, either by Close or by the port returning EOF or an
// error, so consumers ranging over Readings always terminate.
type Monitor struct {
	port     string
	baudRate int
	bufSize  int

	mu        sync.RWMutex
	conn      io.ReadCloser
	readings  chan temperature.Reading
	closeOnce *sync.Once
	cancel    context.CancelFunc
	connected bool
	attached  bool
	done      chan struct{}
}

// NewMonitor creates a monitor for the specified port, baud rate, and buffer size.
func NewMonitor(port string, baudRate int, bufSize int) *Monitor {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Monitor{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		readings:  make(chan temperature.Reading, bufSize),
		closeOnce: &sync.Once{},
	}
}

// Connect opens the serial port and starts reading lines.
func (m *Monitor) Connect() error {
	conn, err := OpenSerial(m.port, m.baudRate)
	if err != nil {
		return err
	}
	if err := m.attach(conn); err != nil {
		conn.Close()
		return err
	}
	return nil
}

// attach starts reading from an already open connection. A reconnect after
// the previous connection ended gets a fresh readings channel.
func (m *Monitor) attach(conn io.ReadCloser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	if m.attached {
		m.readings = make(chan temperature.Reading, m.bufSize)
		m.closeOnce = &sync.Once{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	m.conn = conn
	m.cancel = cancel
	m.connected = true
	m.attached = true
	m.done = make(chan struct{})

	go m.readLines(ctx, conn, m.readings, m.closeOnce, m.done)

	return nil
}

// Close closes the connection and stops reading. The readings channel is
// closed once the reader goroutine has exited.
func (m *Monitor) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}

	m.cancel()

	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		m.conn = nil
	}

	m.connected = false
	done, out, once := m.done, m.readings, m.closeOnce
	m.mu.Unlock()

	<-done
	once.Do(func() { close(out) })

	return nil
}

// Readings returns the channel of parsed readings for the current connection.
func (m *Monitor) Readings() <-chan temperature.Reading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readings
}

// IsConnected returns whether the monitor is currently connected.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// disconnected runs when the reader exits. If the connection ended on its own
// the port is released and the monitor marked disconnected.
func (m *Monitor) disconnected(done chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != done || !m.connected {
		return
	}

	m.cancel()
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		m.conn = nil
	}
	m.connected = false
	log.Printf("Serial port %s disconnected", m.port)
}

// readLines reads lines from r and parses them into readings sent to out.
func (m *Monitor) readLines(ctx context.Context, r io.Reader, out chan temperature.Reading, once *sync.Once, done chan struct{}) {
	defer close(done)
	defer once.Do(func() { close(out) })
	defer m.disconnected(done)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic in readLines: %v", rec)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Split(scanReportLines)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && ctx.Err() == nil {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			reading, err := line.Parse(text)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", text, err)
				continue
			}

			select {
			case out <- reading:
			case <-ctx.Done():
				return
			default:
				log.Printf("Readings channel full, dropping reading")
			}
		}
	}
}

// scanReportLines splits on carriage return or newline.
func scanReportLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
