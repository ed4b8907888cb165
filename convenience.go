package mpx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tphakala/go-fm-mpx/internal/rds"
)

// Station defaults transmitted when the operator overrides nothing.
const (
	DefaultPI = 0x1234
	DefaultPS = "mpxgen"
	DefaultRT = "mpxgen: FM Stereo and RDS encoder"
)

// Pre-emphasis selections understood by ParsePreemphasis.
const (
	preemphasisOff = "off"
	preemphasisEU  = "eu"
	preemphasisUS  = "us"
)

// DefaultStation returns the default service configuration: the
// default PI, PS and RT texts, music flag set, no traffic service and
// no alternative frequencies.
func DefaultStation() Station {
	return Station{
		PI: DefaultPI,
		PS: DefaultPS,
		RT: DefaultRT,
		MS: true,
	}
}

// NewWithDefaults creates a generator with RDS enabled and the default
// station; the station's stereo flag tracks the source channel count.
// A nil source produces a carrier-only composite.
func NewWithDefaults(source AudioSource) (*Generator, error) {
	station := DefaultStation()
	if source != nil {
		station.Stereo = source.Channels() == 2
	}
	return New(Config{
		Source:  source,
		RDS:     true,
		Station: station,
	})
}

// ParsePreemphasis maps an operator selection to a corner frequency in
// Hz: "off" or empty disables pre-emphasis, "eu" selects the 50
// microsecond standard, "us" the 75 microsecond standard, and any
// other value is read as an explicit corner frequency in Hz.
func ParsePreemphasis(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", preemphasisOff:
		return 0, nil
	case preemphasisEU:
		return PreemphasisEU, nil
	case preemphasisUS:
		return PreemphasisUS, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%w: pre-emphasis %q (must be off, eu, us or a corner frequency in Hz)",
			ErrInvalidConfig, s)
	}
	return f, nil
}

// ParseAFList parses a comma separated list of alternative frequencies
// in MHz, validating each against the broadcast band.
func ParseAFList(s string) ([]float64, error) {
	return rds.ParseAFList(s)
}
