package imu

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// StreamProvider consumes records from a stream (serial port) in background and keeps the latest valid one
type StreamProvider struct {
	source io.ReadCloser
	logger *slog.Logger

	mu    sync.RWMutex
	last  Orientation
	found bool
	err   error

	done chan struct{}
}

// NewStreamProvider starts reading records from source
func NewStreamProvider(source io.ReadCloser, logger *slog.Logger) *StreamProvider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &StreamProvider{
		source: source,
		logger: logger,
		done:   make(chan struct{}),
	}
	go p.read()
	return p
}

// OpenSerial opens serial port (8N1) at given baud rate and starts reading records from it
func OpenSerial(path string, baudRate int, logger *slog.Logger) (*StreamProvider, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open serial port %s", path)
	}
	return NewStreamProvider(port, logger), nil
}

func (p *StreamProvider) read() {
	defer close(p.done)
	scanner := bufio.NewScanner(p.source)
	for scanner.Scan() {
		line := scanner.Text()
		if skipLine(line) {
			continue
		}
		o, err := ParseRecord(line)
		if err != nil {
			p.logger.Debug("skip orientation record", "error", err)
			continue
		}
		if !o.Valid {
			continue
		}
		p.mu.Lock()
		p.last = o
		p.found = true
		p.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		p.logger.Warn("orientation stream stopped", "error", err)
	}
}

// LastOrientation returns the latest valid record received so far.
// Once the stream has failed the failure is returned even if some records were received before it
func (p *StreamProvider) LastOrientation(ctx context.Context) (Orientation, error) {
	if err := ctx.Err(); err != nil {
		return Orientation{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.err != nil {
		return Orientation{}, errors.Wrap(p.err, "orientation stream failed")
	}
	if !p.found {
		return Orientation{}, ErrNoOrientation
	}
	return p.last, nil
}

// Done is closed when the stream has ended
func (p *StreamProvider) Done() <-chan struct{} {
	return p.done
}

// Close closes the underlying stream and waits for the reader to stop
func (p *StreamProvider) Close() error {
	err := p.source.Close()
	<-p.done
	return err
}
