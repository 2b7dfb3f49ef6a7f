package gosynthnv

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockPort is a scripted in-memory Port standing in for the serial link.
// Bytes written by the host go to tx; rx holds bytes "sent" by the
// instrument. Each queued reply is released into rx by the next Write,
// mimicking a device that only talks when spoken to.
type mockPort struct {
	mu      sync.Mutex
	rx      bytes.Buffer
	tx      bytes.Buffer
	replies []string

	resetErr error
	writeErr error
	readErr  error

	resets int
	closed bool
}

func (p *mockPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	if p.rx.Len() == 0 {
		// Behaves like the port timeout expiring with no data.
		return 0, nil
	}
	return p.rx.Read(b)
}

func (p *mockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	n, _ := p.tx.Write(b)
	if len(p.replies) > 0 {
		p.rx.WriteString(p.replies[0])
		p.replies = p.replies[1:]
	}
	return n, nil
}

func (p *mockPort) SetReadTimeout(t time.Duration) error { return nil }

func (p *mockPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resetErr != nil {
		return p.resetErr
	}
	p.resets++
	p.rx.Reset()
	return nil
}

func (p *mockPort) ResetOutputBuffer() error {
	// Nothing is ever left unflushed in the mock.
	return nil
}

func (p *mockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// feed appends instrument bytes directly, bypassing the reply queue.
func (p *mockPort) feed(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx.WriteString(s)
}

func (p *mockPort) written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tx.String()
}

func TestConn_ReadLine(t *testing.T) {
	tests := []struct {
		name string
		rx   string
		want string
	}{
		{"plain", "2450.0000000\n", "2450.0000000"},
		{"crlf", "-10.176\r\n", "-10.176"},
		{"token", "WFT SynthNVP 55\n", "WFT SynthNVP 55"},
		{"empty line", "\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &mockPort{}
			port.feed(tt.rx)
			conn := NewConn(port, time.Second)

			line, err := conn.ReadLine(0)
			if err != nil {
				t.Fatalf("ReadLine failed: %v", err)
			}
			if line != tt.want {
				t.Errorf("ReadLine = %q, want %q", line, tt.want)
			}
		})
	}
}

func TestConn_ReadLine_Timeout(t *testing.T) {
	conn := NewConn(&mockPort{}, time.Second)

	start := time.Now()
	line, err := conn.ReadLine(0)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "" {
		t.Errorf("ReadLine = %q, want empty", line)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-timeout read took %v", elapsed)
	}
}

func TestConn_ReadLine_PartialLine(t *testing.T) {
	port := &mockPort{}
	port.feed("2450.00")
	conn := NewConn(port, time.Second)

	// No terminator yet: the read comes back empty but the partial
	// bytes must survive in the internal buffer.
	line, err := conn.ReadLine(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "" {
		t.Errorf("partial ReadLine = %q, want empty", line)
	}

	port.feed("00000\n")
	line, err = conn.ReadLine(0)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "2450.0000000" {
		t.Errorf("ReadLine = %q, want %q", line, "2450.0000000")
	}
}

func TestConn_Write_NoTerminatorAdded(t *testing.T) {
	port := &mockPort{}
	conn := NewConn(port, time.Second)

	if err := conn.Write([]byte("f2450.0000000")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := port.written(); got != "f2450.0000000" {
		t.Errorf("written = %q, want %q", got, "f2450.0000000")
	}
	if strings.ContainsAny(port.written(), "\r\n") {
		t.Error("Write must not append a line terminator")
	}
}

func TestConn_Write_Error(t *testing.T) {
	port := &mockPort{writeErr: errors.New("boom")}
	conn := NewConn(port, time.Second)

	err := conn.Write([]byte("f?"))
	if !IsConnError(err) {
		t.Errorf("Write error = %v, want ConnError", err)
	}
}

func TestConn_BytesAvailable(t *testing.T) {
	port := &mockPort{}
	conn := NewConn(port, time.Second)

	if conn.BytesAvailable() {
		t.Error("BytesAvailable = true on empty port")
	}
	port.feed("1")
	if !conn.BytesAvailable() {
		t.Error("BytesAvailable = false with buffered byte")
	}
	// Repeated checks must not consume the byte.
	if !conn.BytesAvailable() {
		t.Error("BytesAvailable consumed the buffered byte")
	}
}

func TestConn_ResetBuffers_DiscardsPending(t *testing.T) {
	port := &mockPort{}
	port.feed("stale reply\n")
	conn := NewConn(port, time.Second)

	// Pull the stale bytes into the internal buffer first.
	if !conn.BytesAvailable() {
		t.Fatal("expected stale bytes")
	}
	if err := conn.ResetBuffers(); err != nil {
		t.Fatalf("ResetBuffers failed: %v", err)
	}

	line, err := conn.ReadLine(0)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "" {
		t.Errorf("after reset ReadLine = %q, want empty", line)
	}
}

func TestConn_ResetBuffers_Recovery(t *testing.T) {
	bad := &mockPort{resetErr: errors.New("termios error")}
	good := &mockPort{}
	conn := NewConn(bad, time.Second)
	conn.dial = func() (Port, error) { return good, nil }

	if err := conn.ResetBuffers(); err != nil {
		t.Fatalf("ResetBuffers should recover by reopening, got %v", err)
	}
	if !bad.closed {
		t.Error("faulted port was not closed during recovery")
	}

	// Subsequent I/O goes through the reopened port.
	if err := conn.Write([]byte("f?")); err != nil {
		t.Fatalf("Write after recovery failed: %v", err)
	}
	if good.written() != "f?" {
		t.Errorf("reopened port saw %q, want %q", good.written(), "f?")
	}
}

func TestConn_ResetBuffers_ReopenFails(t *testing.T) {
	bad := &mockPort{resetErr: errors.New("termios error")}
	conn := NewConn(bad, time.Second)
	conn.dial = func() (Port, error) { return nil, errors.New("no such device") }

	err := conn.ResetBuffers()
	if !IsConnError(err) {
		t.Fatalf("ResetBuffers = %v, want ConnError", err)
	}

	// The channel instance is dead after a failed recovery.
	if err := conn.Write([]byte("f?")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after fatal reset = %v, want ErrClosed", err)
	}
}

func TestConn_Close_Idempotent(t *testing.T) {
	port := &mockPort{}
	conn := NewConn(port, time.Second)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := conn.ReadLine(0); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadLine after Close = %v, want ErrClosed", err)
	}
}
