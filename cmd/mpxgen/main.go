// Command mpxgen synthesizes an FM stereo multiplex baseband signal,
// optionally with RDS, and streams it to the default playback device
// or renders it to a WAV file.
//
// With no -audio flag the generator runs carrier-only: pilot and RDS
// over silence, useful for keeping a transmitter on the air between
// programs. Station parameters can be changed while running through a
// FIFO given with -ctl.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	mpx "github.com/tphakala/go-fm-mpx"
	"github.com/tphakala/go-fm-mpx/internal/control"
	"github.com/tphakala/go-fm-mpx/internal/pipeline"
	"github.com/tphakala/go-fm-mpx/internal/resample"
	"github.com/tphakala/go-fm-mpx/internal/sink"
	"github.com/tphakala/go-fm-mpx/internal/source"
)

const maxPTY = 31

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		audioPath  = flag.String("audio", "", "Input audio file (.wav, .mp3 or .flac); empty runs carrier-only")
		outputPath = flag.String("output", "", "Render to a WAV file instead of the playback device")
		outputRate = flag.Int("rate", mpx.DefaultOutputRate, "Output sample rate in Hz")
		volume     = flag.Float64("volume", pipeline.DefaultVolume, "Output volume in percent")
		preemph    = flag.String("preemph", "off", "Pre-emphasis: off, eu, us or a corner frequency in Hz")
		rdsOn      = flag.Bool("rds", true, "Enable the RDS subcarrier")
		piHex      = flag.String("pi", fmt.Sprintf("%04X", mpx.DefaultPI), "RDS Program Identification code in hex")
		psName     = flag.String("ps", mpx.DefaultPS, "RDS Program Service name, up to 8 characters")
		radioText  = flag.String("rt", mpx.DefaultRT, "RDS Radio Text, up to 64 characters")
		pty        = flag.Uint("pty", 0, "RDS Program Type code, 0 to 31")
		tp         = flag.Bool("tp", false, "RDS Traffic Program flag")
		afList     = flag.String("af", "", "RDS alternative frequencies in MHz, comma separated")
		ctlPath    = flag.String("ctl", "", "FIFO to read control commands from")
	)
	flag.Parse()

	station, err := buildStation(*piHex, *psName, *radioText, *pty, *tp, *afList)
	if err != nil {
		return err
	}

	cutoff, err := mpx.ParsePreemphasis(*preemph)
	if err != nil {
		return err
	}

	var src mpx.AudioSource
	if *audioPath != "" {
		s, err := source.Open(*audioPath)
		if err != nil {
			return err
		}
		src = s
		station.Stereo = s.Channels() == 2
	}

	gen, err := mpx.New(mpx.Config{
		Source:            src,
		PreemphasisCutoff: cutoff,
		RDS:               *rdsOn,
		Station:           station,
	})
	if err != nil {
		if src != nil {
			_ = src.Close()
		}
		return err
	}

	config := pipeline.Config{
		Source: gen,
		Volume: *volume,
		OpenSink: func() (pipeline.Sink, error) {
			if *outputPath != "" {
				return sink.NewWAVFile(*outputPath, *outputRate)
			}
			return sink.NewPlayback(*outputRate)
		},
	}
	if gen.SampleRate() != *outputRate {
		config.OpenConverter = func() (pipeline.Converter, error) {
			return resample.New(gen.SampleRate(), *outputRate)
		}
	}
	if *ctlPath != "" {
		config.OpenControl = func() (pipeline.Poller, error) {
			return control.Open(*ctlPath)
		}
	}

	runner, err := pipeline.New(config)
	if err != nil {
		_ = gen.Close()
		return err
	}

	printStartup(gen, station, *audioPath, *outputPath, *outputRate, *rdsOn, *ctlPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runner.Run(ctx)
	fmt.Println("MPX generator stopped")
	return err
}

// buildStation assembles the transmitted service from the RDS flags.
func buildStation(piHex, ps, rt string, pty uint, tp bool, afList string) (mpx.Station, error) {
	station := mpx.DefaultStation()

	pi, err := strconv.ParseUint(piHex, 16, 16)
	if err != nil {
		return station, fmt.Errorf("invalid -pi value %q (must be a 16 bit hex code)", piHex)
	}
	station.PI = uint16(pi)

	if pty > maxPTY {
		return station, fmt.Errorf("invalid -pty value %d (must be 0 to %d)", pty, maxPTY)
	}
	station.PTY = uint8(pty)

	station.PS = ps
	station.RT = rt
	station.TP = tp

	if afList != "" {
		freqs, err := mpx.ParseAFList(afList)
		if err != nil {
			return station, err
		}
		station.AF = freqs
	}

	return station, nil
}

func printStartup(gen *mpx.Generator, station mpx.Station, audioPath, outputPath string, outputRate int, rdsOn bool, ctlPath string) {
	switch {
	case audioPath != "":
		fmt.Printf("Playing %s\n", audioPath)
	default:
		fmt.Println("Carrier-only mode (no audio input)")
	}

	if outputPath != "" {
		fmt.Printf("Writing composite to %s at %d Hz\n", outputPath, outputRate)
	} else {
		fmt.Printf("Playing composite at %d Hz\n", outputRate)
	}
	if gen.SampleRate() != outputRate {
		fmt.Printf("Resampling %d Hz -> %d Hz\n", gen.SampleRate(), outputRate)
	}

	if rdsOn {
		fmt.Printf("RDS: PI %04X, PS \"%s\", PTY %d\n", station.PI, station.PS, station.PTY)
		fmt.Printf("RT: \"%s\"\n", station.RT)
		if len(station.AF) > 0 {
			fmt.Printf("AF: %v MHz\n", station.AF)
		}
	} else {
		fmt.Println("RDS disabled")
	}

	if ctlPath != "" {
		fmt.Printf("Reading control commands on %s.\n", ctlPath)
	}
}
