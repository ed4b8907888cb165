// Package mpx synthesizes the composite FM stereo multiplex (MPX)
// baseband signal with an optional RDS subcarrier, in pure Go.
//
// The composite follows the standard FM broadcast layout: the mono sum
// occupies 0 to 15 kHz, a 19 kHz pilot tone marks stereo transmissions,
// the left-right difference rides a suppressed 38 kHz DSB subcarrier,
// and RDS data is biphase-coded onto a 57 kHz subcarrier. Everything is
// synthesized at a common rate (228 kHz by default) where all three
// carriers complete whole cycles on integer sample counts, then
// resampled to the output device rate.
//
// # Features
//
//   - RDS group scheduler and protocol encoder: PS, RadioText, PI, PTY,
//     TP/TA/MS flags, alternative frequency lists, CRC checkwords and
//     differential coding, with live updates applied at group boundaries
//   - Band-limited biphase symbol shaping for a clean 57 kHz subcarrier
//   - 19 kHz pilot and 38 kHz stereo difference, phase locked by table
//     construction
//   - Selectable 50 us / 75 us / custom pre-emphasis
//   - Audio from WAV, MP3 or FLAC files, or any AudioSource
//     implementation; carrier-only operation without one
//   - Block-size invariant streaming: all filter, oscillator and encoder
//     state persists across calls
//
// # Quick Start
//
// Synthesize a carrier-only composite (pilot plus RDS over silence):
//
//	gen, err := mpx.NewWithDefaults(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf := make([]float64, 4096)
//	for {
//	    n, err := gen.GetSamples(buf)
//	    if err != nil {
//	        break
//	    }
//	    consume(buf[:n])
//	}
//
// For full control, fill a [Config]:
//
//	gen, err := mpx.New(mpx.Config{
//	    Source:            src,
//	    PreemphasisCutoff: mpx.PreemphasisEU,
//	    RDS:               true,
//	    Station: mpx.Station{
//	        PI: 0x1234,
//	        PS: "MyRadio",
//	        RT: "Now playing",
//	        MS: true,
//	    },
//	})
//
// Station parameters can be changed while the generator runs; the
// change lands on a group boundary so no transmitted group mixes old
// and new values:
//
//	ps := "NewName"
//	err := gen.QueueUpdate(mpx.StationUpdate{PS: &ps})
//
// # Signal Structure
//
// Each output sample is the sum of the enabled contributions:
//
//	audio·(mono + side·sin38k) + pilot·sin19k + rds·biphase·sin57k
//
// with the default mixing levels [DefaultAudioLevel],
// [DefaultPilotLevel] and [DefaultRDSLevel] summing below 1 so a
// full-scale input never clips the composite. When RDS is disabled the
// 57 kHz band is absent, not zeroed; a mono source likewise leaves the
// 23 to 53 kHz stereo region empty.
//
// # Concurrency
//
// A [Generator] is a single-threaded streaming object: calls to
// GetSamples and QueueUpdate must be serialized by the caller. The
// orchestration loop in cmd/mpxgen drives one generator from one
// goroutine and applies control-channel updates between blocks.
package mpx
