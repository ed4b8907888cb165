package mpx

import "github.com/tphakala/go-fm-mpx/internal/rds"

// Sample rates.
const (
	// DefaultSynthesisRate is the rate at which the composite is
	// synthesized. 228 kHz is the lowest rate where the 19 kHz pilot
	// (12 samples/cycle), the 38 kHz stereo subcarrier (6) and the
	// 57 kHz RDS subcarrier (4) all complete whole cycles on integer
	// sample counts, which keeps every carrier a fixed lookup table.
	DefaultSynthesisRate = rds.BaseSampleRate

	// DefaultOutputRate is the default playback device rate.
	DefaultOutputRate = 192000
)

// Subcarrier frequencies in Hz.
const (
	PilotFrequency         = 19000
	StereoCarrierFrequency = 2 * PilotFrequency
	RDSCarrierFrequency    = rds.CarrierFrequency
)

// Carrier table lengths at the base synthesis rate.
const (
	pilotSamplesPerCycle  = rds.BaseSampleRate / PilotFrequency
	stereoSamplesPerCycle = rds.BaseSampleRate / StereoCarrierFrequency
)

// Default mixing levels as fractions of full scale. The enabled levels
// must sum to at most 1 so the composite never clips at full-scale
// input.
const (
	DefaultAudioLevel = 0.90
	DefaultPilotLevel = 0.08
	DefaultRDSLevel   = 0.02
)

// Pre-emphasis corner frequencies in Hz for the regional broadcast
// standards.
const (
	// PreemphasisEU is the 50 microsecond time constant used in
	// Europe.
	PreemphasisEU = 3185

	// PreemphasisUS is the 75 microsecond time constant used in the
	// Americas and South Korea.
	PreemphasisUS = 2120
)

// Audio low-pass parameters. The filter runs at the synthesis rate,
// after the zero-order hold, so hold images from low input rates are
// stripped before they can land in the stereo or RDS bands.
const (
	audioCutoffHz   = 15000
	audioFilterTaps = 63

	// Input rates below minFullCutoffRate cannot carry the full 15 kHz
	// audio band; the cutoff drops to lowRateCutoffFraction of the
	// input rate instead.
	minFullCutoffRate     = 30000
	lowRateCutoffFraction = 0.4
)

// inputBlockSize is the pull size from the audio source in samples.
const inputBlockSize = 4096
