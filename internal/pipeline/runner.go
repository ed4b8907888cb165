package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tphakala/go-fm-mpx/internal/rds"
)

// DefaultBlockSize is the synthesis block size in samples.
const DefaultBlockSize = 4096

// ErrInvalidConfig indicates invalid orchestrator configuration.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// Source produces composite sample blocks and accepts live station
// updates. The mpx generator satisfies it.
type Source interface {
	GetSamples([]float64) (int, error)
	QueueUpdate(rds.Update) error
	Close() error
}

// Converter carries blocks from the synthesis rate to the output rate.
type Converter interface {
	Process([]float64) ([]float64, error)
	Flush() ([]float64, error)
	Close() error
}

// Sink consumes interleaved stereo PCM. Write may block; that is the
// system's backpressure mechanism.
type Sink interface {
	Write([]int16) error
	Close() error
}

// Poller supplies at most one pending station update per call.
type Poller interface {
	Poll() *rds.Update
	Close() error
}

// Config wires a runner together. The sink and converter factories
// run during New so acquisition failures surface before the loop
// starts; the control factory's failure only degrades the run.
type Config struct {
	// Source is the composite generator, already constructed.
	Source Source

	// BlockSize is the synthesis pull size in samples. Zero selects
	// DefaultBlockSize.
	BlockSize int

	// Volume is the output volume in percent. Zero selects
	// DefaultVolume.
	Volume float64

	// OpenSink acquires the output sink. Required.
	OpenSink func() (Sink, error)

	// OpenConverter acquires the rate converter. Nil when synthesis
	// and output rates match.
	OpenConverter func() (Converter, error)

	// OpenControl acquires the live control channel. Nil disables
	// live control; an open failure logs and continues without it.
	OpenControl func() (Poller, error)
}

// Runner drives the synthesis loop over the acquired resources.
type Runner struct {
	state     State
	blockSize int

	source Source
	sink   Sink
	conv   Converter
	ctl    Poller
	post   *PostProcessor

	closeCtl    sync.Once
	closeConv   sync.Once
	closeSink   sync.Once
	closeSource sync.Once
	closeErr    error
}

// New acquires resources in order: sink, converter, control channel.
// Sink or converter failure releases whatever was acquired and fails;
// the run never starts partially wired.
func New(config Config) (*Runner, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidConfig)
	}
	if config.OpenSink == nil {
		return nil, fmt.Errorf("%w: sink factory is required", ErrInvalidConfig)
	}
	blockSize := config.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize < 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidConfig, config.BlockSize)
	}

	post, err := NewPostProcessor(config.Volume)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		state:     StateInit,
		blockSize: blockSize,
		source:    config.Source,
		post:      post,
	}

	r.sink, err = config.OpenSink()
	if err != nil {
		return nil, fmt.Errorf("failed to open sink: %w", err)
	}

	if config.OpenConverter != nil {
		r.conv, err = config.OpenConverter()
		if err != nil {
			_ = r.sink.Close()
			return nil, fmt.Errorf("failed to open resampler: %w", err)
		}
	}

	if config.OpenControl != nil {
		ctl, err := config.OpenControl()
		if err != nil {
			log.Printf("Running without live control: %v", err)
		} else {
			r.ctl = ctl
		}
	}

	return r, nil
}

// State reports the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Run executes the synthesis loop until the source ends, the context
// is cancelled or a streaming error occurs. Clean end of stream and
// cancellation return nil. Resources are released before returning.
func (r *Runner) Run(ctx context.Context) error {
	defer r.reportClipping()
	defer func() { _ = r.Close() }()

	r.state = StateRunning
	buf := make([]float64, r.blockSize)

	for {
		// Termination is checked once per iteration, so a request is
		// honored within one block's processing time.
		select {
		case <-ctx.Done():
			r.state = StateStopped
			return nil
		default:
		}

		r.pollControl()

		n, err := r.source.GetSamples(buf)
		if n > 0 {
			if werr := r.deliver(buf[:n]); werr != nil {
				r.state = StateStopped
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.drainTail()
			}
			r.state = StateStopped
			return err
		}
	}
}

// Close releases the control channel, converter, sink and source in
// reverse acquisition order. Each resource is released exactly once no
// matter how often Close runs or where the loop stopped.
func (r *Runner) Close() error {
	r.closeCtl.Do(func() {
		if r.ctl != nil {
			r.recordCloseErr(r.ctl.Close())
		}
	})
	r.closeConv.Do(func() {
		if r.conv != nil {
			r.recordCloseErr(r.conv.Close())
		}
	})
	r.closeSink.Do(func() {
		if r.sink != nil {
			r.recordCloseErr(r.sink.Close())
		}
	})
	r.closeSource.Do(func() {
		r.recordCloseErr(r.source.Close())
		r.state = StateStopped
	})
	return r.closeErr
}

// pollControl forwards at most one pending station update.
func (r *Runner) pollControl() {
	if r.ctl == nil {
		return
	}
	u := r.ctl.Poll()
	if u == nil {
		return
	}
	if err := r.source.QueueUpdate(*u); err != nil {
		log.Printf("Ignoring station update: %v", err)
	}
}

// deliver carries one block through conversion, post-processing and
// the blocking sink write.
func (r *Runner) deliver(block []float64) error {
	out := block
	if r.conv != nil {
		converted, err := r.conv.Process(block)
		if err != nil {
			return fmt.Errorf("resampling failed: %w", err)
		}
		out = converted
	}
	if len(out) == 0 {
		return nil
	}
	if err := r.sink.Write(r.post.Process(out)); err != nil {
		return fmt.Errorf("sink write failed: %w", err)
	}
	return nil
}

// drainTail flushes the converter after a clean end of stream. Error
// paths never reach here; they must not stretch the signal with a
// flushed tail.
func (r *Runner) drainTail() error {
	r.state = StateDraining
	defer func() { r.state = StateStopped }()

	if r.conv == nil {
		return nil
	}
	tail, err := r.conv.Flush()
	if err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	if len(tail) == 0 {
		return nil
	}
	if err := r.sink.Write(r.post.Process(tail)); err != nil {
		return fmt.Errorf("sink write failed: %w", err)
	}
	return nil
}

func (r *Runner) recordCloseErr(err error) {
	if err != nil && r.closeErr == nil {
		r.closeErr = err
	}
}

func (r *Runner) reportClipping() {
	if n := r.post.Clipped(); n > 0 {
		log.Printf("Warning: %d samples clipped; reduce volume", n)
	}
}
