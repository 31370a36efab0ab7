package input

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// fakePort answers from a scripted response stream and records writes
type fakePort struct {
	written  bytes.Buffer
	response *strings.Reader
}

func newFakePort(responses string) *fakePort {
	return &fakePort{response: strings.NewReader(responses)}
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.response.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func TestSerialPressAndClick(t *testing.T) {
	port := newFakePort("received\r\nreceived\n")
	s := NewSerial(port)

	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := s.Press("up"); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if err := s.Click(940, 770, 150*time.Millisecond); err != nil {
		t.Fatalf("Click: %v", err)
	}

	want := "key_tap:up\nclick:940,770\n"
	if got := port.written.String(); got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
	if len(slept) != 1 || slept[0] != 150*time.Millisecond {
		t.Errorf("settle sleeps %v", slept)
	}
}

func TestSerialUnexpectedResponse(t *testing.T) {
	s := NewSerial(newFakePort("error: unknown key\n"))

	err := s.Press("banana")
	if err == nil || !strings.Contains(err.Error(), "unexpected response") {
		t.Fatalf("expected unexpected response error, got %v", err)
	}
}

func TestSerialNoResponse(t *testing.T) {
	s := NewSerial(newFakePort(""))

	if err := s.Press("x"); err == nil {
		t.Fatal("expected error when the device never answers")
	}
}

func TestOpenSerialNeedsPort(t *testing.T) {
	if _, err := OpenSerial("", 0); err == nil {
		t.Error("expected error for empty port name")
	}
}
