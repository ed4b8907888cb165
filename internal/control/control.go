// Package control implements the runtime command channel: a named
// pipe polled once per synthesis loop iteration, carrying line
// oriented station commands such as "PS MyRadio" or "TA ON".
package control

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/go-fm-mpx/internal/rds"
)

const (
	// maxLineLength bounds a single command line. Anything longer is
	// discarded up to its terminating newline.
	maxLineLength = 256

	// readChunkSize exceeds maxLineLength so a single read can
	// complete an oversized line and its terminator.
	readChunkSize = 512
)

// Channel reads commands from a file, normally a FIFO. The pipe is
// opened read-write so it stays readable before any writer connects
// and across writer disconnects, and reads use an already-expired
// deadline so Poll never blocks the synthesis loop.
type Channel struct {
	f       *os.File
	chunk   []byte
	buf     []byte
	discard bool
}

// Open opens the command pipe at path.
func Open(path string) (*Channel, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open control pipe: %w", err)
	}
	return NewChannel(f), nil
}

// NewChannel wraps an already opened file. The file must support read
// deadlines; pipes and FIFOs do.
func NewChannel(f *os.File) *Channel {
	return &Channel{
		f:     f,
		chunk: make([]byte, readChunkSize),
	}
}

// Poll returns at most one pending station update. Malformed and
// oversized lines are logged and dropped; they never stop the stream.
func (c *Channel) Poll() *rds.Update {
	if c.f == nil {
		return nil
	}
	if u := c.takeLine(); u != nil {
		return u
	}
	c.fill()
	return c.takeLine()
}

// Close releases the pipe. Safe to call more than once.
func (c *Channel) Close() error {
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// fill performs one nonblocking read from the pipe.
func (c *Channel) fill() {
	if err := c.f.SetReadDeadline(time.Now()); err != nil {
		return
	}
	n, _ := c.f.Read(c.chunk)
	if n > 0 {
		c.buf = append(c.buf, c.chunk[:n]...)
	}
}

// takeLine extracts and parses the first complete line in the buffer.
func (c *Channel) takeLine() *rds.Update {
	for {
		idx := bytes.IndexByte(c.buf, '\n')
		if idx < 0 {
			if len(c.buf) > maxLineLength {
				c.buf = c.buf[:0]
				c.discard = true
			}
			return nil
		}

		line := string(c.buf[:idx])
		c.buf = append(c.buf[:0], c.buf[idx+1:]...)

		if c.discard {
			// Tail of an oversized line.
			c.discard = false
			continue
		}
		if len(line) > maxLineLength {
			log.Printf("Dropping oversized control line (%d bytes)", len(line))
			continue
		}

		u, err := parseCommand(line)
		if err != nil {
			log.Printf("Dropping control command: %v", err)
			continue
		}
		return u
	}
}

// parseCommand turns one command line into a station update.
func parseCommand(line string) (*rds.Update, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "PS":
		return &rds.Update{PS: &arg}, nil

	case "RT":
		return &rds.Update{RT: &arg}, nil

	case "PI":
		v, err := strconv.ParseUint(arg, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid PI value %q", arg)
		}
		pi := uint16(v)
		return &rds.Update{PI: &pi}, nil

	case "PTY":
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid PTY value %q", arg)
		}
		pty := uint8(v)
		return &rds.Update{PTY: &pty}, nil

	case "TP":
		on, err := parseSwitch(arg)
		if err != nil {
			return nil, err
		}
		return &rds.Update{TP: &on}, nil

	case "TA":
		on, err := parseSwitch(arg)
		if err != nil {
			return nil, err
		}
		return &rds.Update{TA: &on}, nil

	case "MS":
		on, err := parseSwitch(arg)
		if err != nil {
			return nil, err
		}
		return &rds.Update{MS: &on}, nil

	case "AF":
		if arg == "-" {
			empty := []float64{}
			return &rds.Update{AF: &empty}, nil
		}
		freqs, err := rds.ParseAFList(arg)
		if err != nil {
			return nil, err
		}
		return &rds.Update{AF: &freqs}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func parseSwitch(arg string) (bool, error) {
	switch arg {
	case "ON":
		return true, nil
	case "OFF":
		return false, nil
	default:
		return false, fmt.Errorf("invalid switch value %q (must be ON or OFF)", arg)
	}
}
