package mpx

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-fm-mpx/internal/rds"
)

// Station describes the transmitted RDS service. It is an alias for
// the encoder's type so callers configure a station without reaching
// into internal packages.
type Station = rds.Station

// StationUpdate carries a partial station change. Nil fields keep
// their current value; the change is applied atomically at the next
// RDS group boundary.
type StationUpdate = rds.Update

// Common errors returned by the generator.
var (
	// ErrInvalidConfig indicates invalid generator configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrRDSDisabled is returned by QueueUpdate when the generator was
	// built without RDS.
	ErrRDSDisabled = errors.New("RDS is disabled")
)

// AudioSource supplies input audio to the generator. Implementations
// for WAV, MP3 and FLAC files plus synthetic tone and silence sources
// live in internal/source.
type AudioSource interface {
	// ReadBlock fills p with interleaved samples normalized to
	// [-1, 1] and returns the count written, always a whole number of
	// frames. io.EOF signals end of stream.
	ReadBlock(p []float64) (int, error)

	// SampleRate returns the source rate in Hz.
	SampleRate() int

	// Channels returns the channel count, 1 or 2.
	Channels() int

	// Close releases decoder resources.
	Close() error
}

// Config holds generator configuration.
type Config struct {
	// Source supplies the input audio. A nil source synthesizes a
	// carrier-only composite (pilot plus RDS over silence).
	Source AudioSource

	// SynthesisRate is the composite synthesis rate in Hz. Zero
	// selects DefaultSynthesisRate; any positive multiple of it is
	// accepted so the carrier tables stay on integer sample grids.
	SynthesisRate int

	// PreemphasisCutoff is the pre-emphasis corner frequency in Hz.
	// Zero disables pre-emphasis; PreemphasisEU and PreemphasisUS
	// select the regional standards.
	PreemphasisCutoff float64

	// RDS enables the 57 kHz subcarrier. When false no encoder is
	// constructed and the band is absent from the composite spectrum.
	RDS bool

	// Station is the transmitted service when RDS is enabled.
	Station Station

	// Mixing levels as fractions of full scale. Zero selects the
	// default for the component; the enabled levels must each be
	// within [0, 1] and sum to at most 1.
	AudioLevel float64
	PilotLevel float64
	RDSLevel   float64
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	rate := c.SynthesisRate
	if rate == 0 {
		rate = DefaultSynthesisRate
	}
	if rate < 0 || rate%rds.BaseSampleRate != 0 {
		return fmt.Errorf("%w: synthesis rate %d Hz (must be a positive multiple of %d Hz)",
			ErrInvalidConfig, c.SynthesisRate, rds.BaseSampleRate)
	}

	if c.PreemphasisCutoff < 0 {
		return fmt.Errorf("%w: pre-emphasis cutoff %f Hz (must not be negative)",
			ErrInvalidConfig, c.PreemphasisCutoff)
	}

	for _, l := range []struct {
		name  string
		value float64
	}{
		{"audio level", c.AudioLevel},
		{"pilot level", c.PilotLevel},
		{"RDS level", c.RDSLevel},
	} {
		if l.value < 0 || l.value > 1 {
			return fmt.Errorf("%w: %s %f (must be within [0, 1])",
				ErrInvalidConfig, l.name, l.value)
		}
	}

	sum := levelOrDefault(c.AudioLevel, DefaultAudioLevel) +
		levelOrDefault(c.PilotLevel, DefaultPilotLevel)
	if c.RDS {
		sum += levelOrDefault(c.RDSLevel, DefaultRDSLevel)
	}
	if sum > 1 {
		return fmt.Errorf("%w: mixing levels sum to %f (must not exceed 1)",
			ErrInvalidConfig, sum)
	}

	if c.RDS {
		if err := c.Station.Validate(); err != nil {
			return err
		}
	}

	if c.Source != nil {
		inRate := c.Source.SampleRate()
		if inRate <= 0 {
			return fmt.Errorf("%w: source sample rate %d Hz", ErrInvalidConfig, inRate)
		}
		if inRate > rate {
			return fmt.Errorf("%w: source rate %d Hz above synthesis rate %d Hz",
				ErrInvalidConfig, inRate, rate)
		}
		if ch := c.Source.Channels(); ch != 1 && ch != 2 {
			return fmt.Errorf("%w: %d source channels (must be 1 or 2)", ErrInvalidConfig, ch)
		}
	}

	return nil
}

// levelOrDefault resolves a configured mixing level, mapping the zero
// value to the component default.
func levelOrDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
