package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud matches the Arduino sketch
const DefaultBaud = 9600

// ackMessage is the line the Arduino prints after executing a command
const ackMessage = "received"

// Serial sends commands to an Arduino acting as a USB keyboard and mouse.
// Every command is one line and is acknowledged with "received".
type Serial struct {
	mu     sync.Mutex
	port   io.ReadWriter
	reader *bufio.Reader
	closer io.Closer
	sleep  func(time.Duration)
}

// OpenSerial opens the named port
func OpenSerial(name string, baud int) (*Serial, error) {
	if name == "" {
		return nil, fmt.Errorf("serial input needs a port name")
	}
	if baud == 0 {
		baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:     name,
		Baud:     baud,
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	s := NewSerial(port)
	s.closer = port
	return s, nil
}

// NewSerial wraps an already open connection
func NewSerial(port io.ReadWriter) *Serial {
	return &Serial{
		port:   port,
		reader: bufio.NewReader(port),
		sleep:  time.Sleep,
	}
}

// Press taps key on the device keyboard
func (s *Serial) Press(key string) error {
	return s.send(fmt.Sprintf("key_tap:%s\n", key))
}

// Click clicks at (x, y). The device moves and clicks in one command, so
// settle is waited after it acknowledges.
func (s *Serial) Click(x, y int, settle time.Duration) error {
	if err := s.send(fmt.Sprintf("click:%d,%d\n", x, y)); err != nil {
		return err
	}
	s.sleep(settle)
	return nil
}

// Close releases the port when Serial owns it
func (s *Serial) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Serial) send(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.port.Write([]byte(command)); err != nil {
		return fmt.Errorf("error writing to Arduino: %w", err)
	}
	return s.waitForAck(strings.TrimSpace(command))
}

func (s *Serial) waitForAck(command string) error {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("error reading from Arduino after %q: %w", command, err)
	}
	if response := strings.TrimSpace(line); response != ackMessage {
		return fmt.Errorf("unexpected response to %q: %q", command, response)
	}
	return nil
}
