package mpx

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource reports a configurable format and no audio.
type fakeSource struct {
	rate     int
	channels int
}

func (f *fakeSource) ReadBlock(p []float64) (int, error) { return 0, io.EOF }
func (f *fakeSource) SampleRate() int                    { return f.rate }
func (f *fakeSource) Channels() int                      { return f.channels }
func (f *fakeSource) Close() error                       { return nil }

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty_defaults", Config{}, false},
		{"double_rate", Config{SynthesisRate: 2 * DefaultSynthesisRate}, false},
		{"rds_default_station", Config{RDS: true, Station: DefaultStation()}, false},
		{"explicit_levels", Config{AudioLevel: 0.8, PilotLevel: 0.1, RDSLevel: 0.05}, false},
		{"valid_source", Config{Source: &fakeSource{rate: 44100, channels: 2}}, false},

		{"negative_rate", Config{SynthesisRate: -DefaultSynthesisRate}, true},
		{"non_multiple_rate", Config{SynthesisRate: 200000}, true},
		{"negative_preemphasis", Config{PreemphasisCutoff: -50}, true},
		{"audio_level_above_one", Config{AudioLevel: 1.5}, true},
		{"negative_pilot_level", Config{PilotLevel: -0.1}, true},
		{"rds_level_above_one", Config{RDSLevel: 1.01}, true},
		{"levels_sum_above_one", Config{RDS: true, Station: DefaultStation(),
			AudioLevel: 0.9, PilotLevel: 0.08, RDSLevel: 0.05}, true},
		{"source_rate_zero", Config{Source: &fakeSource{rate: 0, channels: 1}}, true},
		{"source_above_synthesis_rate", Config{
			Source: &fakeSource{rate: DefaultSynthesisRate + 1, channels: 1}}, true},
		{"source_too_many_channels", Config{Source: &fakeSource{rate: 44100, channels: 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateStationError(t *testing.T) {
	// Station problems surface as their own errors, not as
	// ErrInvalidConfig, so callers can tell them apart.
	cfg := Config{RDS: true, Station: Station{PI: 0x1234, PTY: 40}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigLevelSumIgnoresDisabledRDS(t *testing.T) {
	// The same levels are fine without RDS because its contribution
	// never reaches the composite.
	cfg := Config{AudioLevel: 0.9, PilotLevel: 0.08, RDSLevel: 0.05}
	assert.NoError(t, cfg.Validate())
}

func TestLevelOrDefault(t *testing.T) {
	assert.Equal(t, DefaultAudioLevel, levelOrDefault(0, DefaultAudioLevel))
	assert.Equal(t, 0.5, levelOrDefault(0.5, DefaultAudioLevel))
}
