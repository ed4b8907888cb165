// Command mpxspectrum measures the band structure of a composite MPX
// recording. It reads a WAV file, computes its spectrum and reports
// each band as an equivalent sine amplitude, so the printed figures
// read back the generator's mixing levels directly: a pilot mixed at
// 0.08 of full scale reports 0.0800 (-21.9 dB).
//
// Usage:
//
//	mpxspectrum recording.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-fm-mpx/internal/source"
)

// Composite band edges in Hz.
const (
	monoLowHz  = 0
	monoHighHz = 15000

	pilotCenterHz = 19000
	pilotHalfHz   = 250

	stereoLowHz  = 23000
	stereoHighHz = 53000

	rdsCenterHz = 57000
	rdsHalfHz   = 2400
)

const (
	readBlockSize = 65536

	// minAmplitude floors the dB conversion for empty bands.
	minAmplitude = 1e-12

	hzPerKilohertz = 1000
)

type band struct {
	name   string
	lowHz  float64
	highHz float64
}

func compositeBands() []band {
	return []band{
		{"mono", monoLowHz, monoHighHz},
		{"pilot", pilotCenterHz - pilotHalfHz, pilotCenterHz + pilotHalfHz},
		{"stereo", stereoLowHz, stereoHighHz},
		{"rds", rdsCenterHz - rdsHalfHz, rdsCenterHz + rdsHalfHz},
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s recording.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reports the mono, pilot, stereo and RDS band levels of a\n")
		fmt.Fprintf(os.Stderr, "composite MPX recording.\n")
		return fmt.Errorf("expected one input file")
	}

	samples, rate, channels, err := readRecording(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples in %s", args[0])
	}

	duration := float64(len(samples)) / float64(rate)
	fmt.Printf("%s: %d Hz, %d channels, %.2f s (%d samples)\n",
		args[0], rate, channels, duration, len(samples))

	nyquist := float64(rate) / 2
	if nyquist < rdsCenterHz+rdsHalfHz {
		fmt.Printf("Warning: %d Hz cannot carry the full composite (need at least %d Hz)\n",
			rate, 2*(rdsCenterHz+rdsHalfHz))
	}
	fmt.Println()

	mags := spectrum(samples)
	binWidth := float64(rate) / float64(len(samples))

	fmt.Printf("%-8s %16s %12s %10s\n", "Band", "Range", "Amplitude", "Level")
	for _, b := range compositeBands() {
		amp := bandAmplitude(mags, binWidth, b.lowHz, b.highHz, len(samples))
		level := 20 * math.Log10(math.Max(amp, minAmplitude))
		fmt.Printf("%-8s %5.1f-%5.1f kHz %12.4f %8.1f dB\n",
			b.name, b.lowHz/hzPerKilohertz, b.highHz/hzPerKilohertz, amp, level)
	}
	return nil
}

// readRecording loads the first channel of a WAV file. Composite
// recordings carry the same signal on both channels, so one is enough.
func readRecording(path string) ([]float64, int, int, error) {
	src, err := source.OpenWAV(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer func() { _ = src.Close() }()

	channels := src.Channels()
	block := make([]float64, readBlockSize*channels)
	var samples []float64
	for {
		n, err := src.ReadBlock(block)
		for i := 0; i < n; i += channels {
			samples = append(samples, block[i])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return samples, src.SampleRate(), channels, nil
			}
			return nil, 0, 0, err
		}
	}
}

// spectrum returns the one-sided magnitude spectrum.
func spectrum(samples []float64) []float64 {
	fft := fourier.NewFFT(len(samples))
	coeffs := fft.Coefficients(nil, samples)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// bandAmplitude converts the energy within [lowHz, highHz] to the
// amplitude of a single sine carrying the same power. A pure tone of
// amplitude A inside the band reports exactly A. Bin 0 carries only DC
// offset and is skipped.
func bandAmplitude(mags []float64, binWidth, lowHz, highHz float64, n int) float64 {
	var energy float64
	for i := 1; i < len(mags); i++ {
		freq := float64(i) * binWidth
		if freq >= lowHz && freq <= highHz {
			energy += mags[i] * mags[i]
		}
	}
	return 2 * math.Sqrt(energy) / float64(n)
}
