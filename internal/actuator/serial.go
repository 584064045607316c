package actuator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	"github.com/ararabots/vsscore/internal/action"
)

// DefaultFeedbackMaxAge is how long a wheel feedback line stays valid.
const DefaultFeedbackMaxAge = 250 * time.Millisecond

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("actuator: closed")

// Port is the part of a serial port the actuator uses.
type Port interface {
	io.ReadWriter
	io.Closer
}

// PortOptions are the serial line settings.
type PortOptions struct {
	BaudRate int
	DataBits int
}

// DefaultPortOptions matches the radio modules on the robots.
func DefaultPortOptions() PortOptions {
	return PortOptions{BaudRate: 115200, DataBits: 8}
}

// Mode converts o to a go.bug.st/serial mode, filling defaults.
func (o PortOptions) Mode() (*serial.Mode, error) {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultPortOptions().BaudRate
	}
	if o.DataBits == 0 {
		o.DataBits = 8
	}
	if o.DataBits < 5 || o.DataBits > 8 {
		return nil, fmt.Errorf("actuator: invalid data bits %d: must be between 5 and 8", o.DataBits)
	}
	return &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: o.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}, nil
}

// Serial sends actions over a serial link without blocking the decision
// loop. Only the latest unsent packet is kept: a slow link drops stale
// commands instead of queueing them.
type Serial struct {
	port  Port
	robot int
	log   *slog.Logger

	pending chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	// FeedbackMaxAge bounds how old feedback MeasuredWheelSpeed reports.
	// Zero or negative keeps feedback forever.
	FeedbackMaxAge time.Duration

	now      func() time.Time
	mu       sync.Mutex
	feedback [2]float64
	fbAt     time.Time
	haveFB   bool

	written atomic.Int64
	dropped atomic.Int64
}

// OpenSerial opens path and starts a Serial on it.
func OpenSerial(path string, robot int, opts PortOptions, log *slog.Logger) (*Serial, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("actuator: open %s: %w", path, err)
	}
	return NewSerial(port, robot, log), nil
}

// NewSerial drives an already open port. The Serial owns it from now on.
func NewSerial(port Port, robot int, log *slog.Logger) *Serial {
	if log == nil {
		log = slog.Default()
	}
	s := &Serial{
		port:           port,
		robot:          robot,
		log:            log,
		FeedbackMaxAge: DefaultFeedbackMaxAge,
		now:            time.Now,
		pending:        make(chan []byte, 1),
		done:           make(chan struct{}),
	}
	s.wg.Add(2)
	go s.writeLoop()
	go s.readLoop()
	return s
}

// Send queues a for transmission, replacing any packet not yet written.
func (s *Serial) Send(ctx context.Context, a action.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	pkt, err := Encode(s.robot, a)
	if err != nil {
		return err
	}
	for {
		select {
		case s.pending <- pkt:
			return nil
		default:
		}
		select {
		case <-s.pending:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *Serial) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case pkt := <-s.pending:
			if _, err := s.port.Write(pkt); err != nil {
				s.log.Error("[Actuator] serial write failed", "robot", s.robot, "error", err)
				continue
			}
			s.written.Add(1)
		}
	}
}

func (s *Serial) readLoop() {
	defer s.wg.Done()
	sc := bufio.NewScanner(s.port)
	for sc.Scan() {
		robot, wheels, err := ParseFeedback(sc.Text())
		if err != nil {
			s.log.Debug("[Actuator] ignoring serial line", "line", sc.Text())
			continue
		}
		if robot != s.robot {
			continue
		}
		s.mu.Lock()
		s.feedback, s.fbAt, s.haveFB = wheels, s.now(), true
		s.mu.Unlock()
	}
	select {
	case <-s.done:
	default:
		if err := sc.Err(); err != nil {
			s.log.Warn("[Actuator] serial read stopped", "robot", s.robot, "error", err)
		}
	}
}

// MeasuredWheelSpeed returns the latest wheel feedback for this robot.
// Feedback older than FeedbackMaxAge is unknown.
func (s *Serial) MeasuredWheelSpeed() ([2]float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveFB {
		return [2]float64{}, false
	}
	if s.FeedbackMaxAge > 0 && s.now().Sub(s.fbAt) > s.FeedbackMaxAge {
		return [2]float64{}, false
	}
	return s.feedback, true
}

// Written is the number of packets written to the port.
func (s *Serial) Written() int64 { return s.written.Load() }

// Dropped is the number of packets replaced before they were written.
func (s *Serial) Dropped() int64 { return s.dropped.Load() }

// Close stops the writer, closes the port and waits for both loops.
func (s *Serial) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.port.Close()
		s.wg.Wait()
	})
	return err
}
