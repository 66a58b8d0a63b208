package capture

import (
	"io"
	"sync"
	"time"
)

// InMemory is a line source that is fed from memory. It blocks on Read until data is available or it is closed.
type InMemory struct {
	buffer         []byte
	lock           sync.Mutex
	closed         chan struct{}
	closeOnce      sync.Once
	closeWhenEmpty bool
}

func NewInMemory() *InMemory {
	return &InMemory{
		closed: make(chan struct{}),
	}
}

// NewInMemoryLines returns an InMemory source that provides the given lines and is closed after the last line was read.
func NewInMemoryLines(lines ...string) *InMemory {
	result := NewInMemory()
	for _, line := range lines {
		result.AppendLine(line)
	}
	result.CloseWhenEmpty()
	return result
}

func (m *InMemory) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
	return nil
}

func (m *InMemory) WaitUntilClosed() {
	<-m.closed
}

func (m *InMemory) Read(p []byte) (int, error) {
	for m.IsEmpty() {
		select {
		case <-m.closed:
			return 0, io.EOF
		case <-time.After(10 * time.Millisecond):
		}
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	n := copy(p, m.buffer)
	m.buffer = m.buffer[n:]
	if m.closeWhenEmpty && len(m.buffer) == 0 {
		m.closeOnce.Do(func() {
			close(m.closed)
		})
	}
	return n, nil
}

// Append raw data to the read buffer.
func (m *InMemory) Append(p []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.buffer = append(m.buffer, p...)
}

// AppendLine appends the given line with a trailing CRLF, as sent by most radios.
func (m *InMemory) AppendLine(line string) {
	m.Append([]byte(line + "\r\n"))
}

func (m *InMemory) IsEmpty() bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.buffer) == 0
}

// CloseWhenEmpty closes the source as soon as the read buffer was read completely.
// Calling it on an empty source closes it immediately.
func (m *InMemory) CloseWhenEmpty() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.closeWhenEmpty = true
	if len(m.buffer) == 0 {
		m.closeOnce.Do(func() {
			close(m.closed)
		})
	}
}
