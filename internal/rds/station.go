package rds

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel errors for station validation. Wrapped errors add detail
// while remaining matchable with errors.Is.
var (
	ErrInvalidPI  = errors.New("invalid PI code")
	ErrInvalidPTY = errors.New("invalid program type")
	ErrInvalidAF  = errors.New("invalid alternative frequency")
)

// Station describes the transmitted service: identification, program
// flags and the texts cycled over the air.
type Station struct {
	// PI is the Program Identification code. Zero is reserved and
	// rejected by Validate.
	PI uint16

	// PS is the Program Service name, up to 8 characters. Shorter
	// names are space padded, longer ones truncated.
	PS string

	// RT is the Radio Text, up to 64 characters. Empty text disables
	// 2A groups entirely.
	RT string

	// PTY is the Program Type code, 0 to 31.
	PTY uint8

	// TP marks the station as carrying traffic programs.
	TP bool

	// TA signals an ongoing traffic announcement.
	TA bool

	// MS is the music/speech switch; true means music.
	MS bool

	// Stereo sets the decoder information bit announcing a stereo
	// transmission.
	Stereo bool

	// AF lists alternative frequencies in MHz, at most 25 entries,
	// each within 87.6 to 107.9 MHz.
	AF []float64
}

// Validate checks station parameters. AF entries are range checked at
// configuration time so a bad frequency never reaches the air.
func (s *Station) Validate() error {
	if s.PI == 0 {
		return fmt.Errorf("%w: 0x0000 is reserved", ErrInvalidPI)
	}
	if s.PTY > maxPTY {
		return fmt.Errorf("%w: %d (must be 0 to %d)", ErrInvalidPTY, s.PTY, maxPTY)
	}
	if _, err := encodeAFList(s.AF); err != nil {
		return err
	}
	return nil
}

// Update carries a partial station change. Nil fields keep their
// current value. The encoder stages updates and applies them at the
// next group boundary, so no transmitted group mixes old and new
// values.
type Update struct {
	PI     *uint16
	PS     *string
	RT     *string
	PTY    *uint8
	TP     *bool
	TA     *bool
	MS     *bool
	Stereo *bool

	// AF replaces the whole frequency list; an empty list clears it.
	AF *[]float64
}

// Validate checks the fields an update would change.
func (u *Update) Validate() error {
	if u.PI != nil && *u.PI == 0 {
		return fmt.Errorf("%w: 0x0000 is reserved", ErrInvalidPI)
	}
	if u.PTY != nil && *u.PTY > maxPTY {
		return fmt.Errorf("%w: %d (must be 0 to %d)", ErrInvalidPTY, *u.PTY, maxPTY)
	}
	if u.AF != nil {
		if _, err := encodeAFList(*u.AF); err != nil {
			return err
		}
	}
	return nil
}

// merge folds a later update into u field by field.
func (u *Update) merge(next *Update) {
	if next.PI != nil {
		u.PI = next.PI
	}
	if next.PS != nil {
		u.PS = next.PS
	}
	if next.RT != nil {
		u.RT = next.RT
	}
	if next.PTY != nil {
		u.PTY = next.PTY
	}
	if next.TP != nil {
		u.TP = next.TP
	}
	if next.TA != nil {
		u.TA = next.TA
	}
	if next.MS != nil {
		u.MS = next.MS
	}
	if next.Stereo != nil {
		u.Stereo = next.Stereo
	}
	if next.AF != nil {
		u.AF = next.AF
	}
}

// EncodeAF converts an alternative frequency in MHz to its channel
// code (1..204, covering 87.6 to 107.9 MHz in 100 kHz steps).
func EncodeAF(mhz float64) (byte, error) {
	code := int(math.Round(mhz*10)) - afCodeBase
	if code < afCodeMin || code > afCodeMax {
		return 0, fmt.Errorf("%w: %.1f MHz (must be between %.1f MHz and %.1f MHz)",
			ErrInvalidAF, mhz, AFMinMHz, AFMaxMHz)
	}
	return byte(code), nil
}

// ParseAFList parses a comma separated list of frequencies in MHz,
// such as "98.0,101.1". Every entry must encode to a valid channel
// code.
func ParseAFList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	freqs := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAF, p)
		}
		if _, err := EncodeAF(f); err != nil {
			return nil, err
		}
		freqs = append(freqs, f)
	}
	if len(freqs) > maxAFCount {
		return nil, fmt.Errorf("%w: %d entries (maximum %d)", ErrInvalidAF, len(freqs), maxAFCount)
	}
	return freqs, nil
}

// DecodeAF is the inverse of EncodeAF, mapping a channel code back to
// MHz. Provided for diagnostics; codes outside 1..204 return 0.
func DecodeAF(code byte) float64 {
	if code < afCodeMin || code > afCodeMax {
		return 0
	}
	return float64(afCodeBase+int(code)) / 10
}

func encodeAFList(freqs []float64) ([]byte, error) {
	if len(freqs) > maxAFCount {
		return nil, fmt.Errorf("%w: %d entries (maximum %d)", ErrInvalidAF, len(freqs), maxAFCount)
	}
	if len(freqs) == 0 {
		return nil, nil
	}
	codes := make([]byte, len(freqs))
	for i, f := range freqs {
		c, err := EncodeAF(f)
		if err != nil {
			return nil, err
		}
		codes[i] = c
	}
	return codes, nil
}

// normalizePS pads or truncates a service name to its fixed 8
// character on-air form.
func normalizePS(ps string) [psLength]byte {
	var out [psLength]byte
	for i := range out {
		if i < len(ps) {
			out[i] = ps[i]
		} else {
			out[i] = ' '
		}
	}
	return out
}

// normalizeRT prepares a radio text for transmission: truncate to 64
// characters, terminate shorter texts with a carriage return, and pad
// with spaces to a whole number of 4 character segments. Empty text
// yields nil, which suppresses 2A groups.
func normalizeRT(rt string) []byte {
	if rt == "" {
		return nil
	}
	if len(rt) > rtMaxLength {
		rt = rt[:rtMaxLength]
	}
	out := make([]byte, 0, rtMaxLength)
	out = append(out, rt...)
	if len(out) < rtMaxLength {
		out = append(out, rtTerminator)
	}
	for len(out)%rtSegmentLength != 0 {
		out = append(out, ' ')
	}
	return out
}
