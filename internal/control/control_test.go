package control

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fm-mpx/internal/rds"
)

// newTestChannel returns a channel reading from an in-process pipe.
// os.Pipe file descriptors support read deadlines just like FIFOs.
func newTestChannel(t *testing.T) (*Channel, *os.File) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	ch := NewChannel(r)
	t.Cleanup(func() {
		_ = ch.Close()
		_ = w.Close()
	})
	return ch, w
}

func writeLine(t *testing.T, w *os.File, line string) {
	t.Helper()
	_, err := w.WriteString(line + "\n")
	require.NoError(t, err)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		check   func(t *testing.T, u *rds.Update)
		wantErr bool
	}{
		{
			name: "ps",
			line: "PS MyRadio",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.PS)
				assert.Equal(t, "MyRadio", *u.PS)
			},
		},
		{
			name: "ps_with_spaces",
			line: "PS My Radio",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.PS)
				assert.Equal(t, "My Radio", *u.PS)
			},
		},
		{
			name: "rt",
			line: "RT Now playing: something",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.RT)
				assert.Equal(t, "Now playing: something", *u.RT)
			},
		},
		{
			name: "pi_hex",
			line: "PI ABCD",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.PI)
				assert.Equal(t, uint16(0xABCD), *u.PI)
			},
		},
		{
			name: "pty",
			line: "PTY 10",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.PTY)
				assert.Equal(t, uint8(10), *u.PTY)
			},
		},
		{
			name: "tp_on",
			line: "TP ON",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.TP)
				assert.True(t, *u.TP)
			},
		},
		{
			name: "ta_off",
			line: "TA OFF",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.TA)
				assert.False(t, *u.TA)
			},
		},
		{
			name: "ms_on",
			line: "MS ON",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.MS)
				assert.True(t, *u.MS)
			},
		},
		{
			name: "af_list",
			line: "AF 98.0,101.1",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.AF)
				assert.Equal(t, []float64{98.0, 101.1}, *u.AF)
			},
		},
		{
			name: "af_clear",
			line: "AF -",
			check: func(t *testing.T, u *rds.Update) {
				require.NotNil(t, u.AF)
				assert.Empty(t, *u.AF)
			},
		},
		{name: "unknown_command", line: "VOLUME 50", wantErr: true},
		{name: "empty", line: "", wantErr: true},
		{name: "bad_pi", line: "PI WXYZ", wantErr: true},
		{name: "bad_pty", line: "PTY many", wantErr: true},
		{name: "bad_switch", line: "TA MAYBE", wantErr: true},
		{name: "bad_af", line: "AF 87.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := parseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}

func TestChannelPollEmptyPipe(t *testing.T) {
	ch, _ := newTestChannel(t)

	assert.Nil(t, ch.Poll())
	assert.Nil(t, ch.Poll(), "polling must stay nonblocking with no writer activity")
}

func TestChannelPollDeliversUpdate(t *testing.T) {
	ch, w := newTestChannel(t)

	writeLine(t, w, "PS NewName")

	u := ch.Poll()
	require.NotNil(t, u)
	require.NotNil(t, u.PS)
	assert.Equal(t, "NewName", *u.PS)

	assert.Nil(t, ch.Poll(), "no further commands pending")
}

func TestChannelAccumulatesPartialLines(t *testing.T) {
	ch, w := newTestChannel(t)

	_, err := w.WriteString("PS Ha")
	require.NoError(t, err)
	assert.Nil(t, ch.Poll(), "incomplete line must not produce an update")

	_, err = w.WriteString("lf\n")
	require.NoError(t, err)

	u := ch.Poll()
	require.NotNil(t, u)
	require.NotNil(t, u.PS)
	assert.Equal(t, "Half", *u.PS)
}

func TestChannelDeliversOneUpdatePerPoll(t *testing.T) {
	ch, w := newTestChannel(t)

	writeLine(t, w, "TA ON")
	writeLine(t, w, "TA OFF")

	u := ch.Poll()
	require.NotNil(t, u)
	require.NotNil(t, u.TA)
	assert.True(t, *u.TA)

	u = ch.Poll()
	require.NotNil(t, u)
	require.NotNil(t, u.TA)
	assert.False(t, *u.TA)

	assert.Nil(t, ch.Poll())
}

func TestChannelSkipsMalformedLines(t *testing.T) {
	ch, w := newTestChannel(t)

	writeLine(t, w, "BOGUS nonsense")
	writeLine(t, w, "TA ON")

	u := ch.Poll()
	require.NotNil(t, u, "malformed line should be dropped, not block later commands")
	require.NotNil(t, u.TA)
	assert.True(t, *u.TA)
}

func TestChannelDropsOversizedLines(t *testing.T) {
	ch, w := newTestChannel(t)

	// A terminated line over the limit is dropped whole.
	writeLine(t, w, "PS "+strings.Repeat("x", maxLineLength))
	writeLine(t, w, "TA ON")

	u := ch.Poll()
	require.NotNil(t, u)
	require.NotNil(t, u.TA)
	assert.True(t, *u.TA)
}

func TestChannelDiscardsUnterminatedOversizedLine(t *testing.T) {
	ch, w := newTestChannel(t)

	// Flood without a newline. Each poll reads one chunk, so several
	// polls may pass before the accumulator overflows and resets.
	_, err := w.WriteString(strings.Repeat("x", 3*maxLineLength))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.Nil(t, ch.Poll())
	}

	// The eventual newline ends the garbage; the next command parses.
	_, err = w.WriteString("tail\n")
	require.NoError(t, err)
	writeLine(t, w, "MS OFF")

	var u *rds.Update
	for i := 0; i < 5 && u == nil; i++ {
		u = ch.Poll()
	}
	require.NotNil(t, u)
	require.NotNil(t, u.MS)
	assert.False(t, *u.MS)
}

func TestChannelCloseIdempotent(t *testing.T) {
	ch, _ := newTestChannel(t)

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())
	assert.Nil(t, ch.Poll(), "closed channel polls as empty")
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no-such-fifo"))
	assert.Error(t, err)
}
