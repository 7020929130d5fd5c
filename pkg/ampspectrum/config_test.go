package ampspectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv(t *testing.T) {
	opts, err := ConfigFromEnv(envFrom(map[string]string{
		"SPECTRUM_INPUT":         "in.wav",
		"SPECTRUM_WINDOW":        "1024",
		"SPECTRUM_BINS":          "512",
		"SPECTRUM_LEAD_IN_BYTES": "6",
		"SPECTRUM_METHOD":        "FFT",
		"SPECTRUM_VALIDATION":    "strict",
		"SPECTRUM_RANGE_SEED":    "first",
		"SPECTRUM_DEGENERATE":    "fail",
		"SPECTRUM_MIX":           "round",
		"SPECTRUM_CROSS_CHECK":   "true",
		"SPECTRUM_DB_PATH":       "db/spectra.sqlite3",
	}))
	require.NoError(t, err)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	assert.Equal(t, "in.wav", cfg.InputPath)
	assert.Equal(t, 1024, cfg.WindowLength)
	assert.Equal(t, 512, cfg.Bins)
	assert.Equal(t, 6, cfg.LeadInBytes)
	assert.Equal(t, MethodFFT, cfg.Method)
	assert.Equal(t, Strict, cfg.Validation)
	assert.Equal(t, SeedFirst, cfg.RangeSeed)
	assert.Equal(t, DegenerateFail, cfg.Degenerate)
	assert.Equal(t, MixRound, cfg.Mix)
	assert.True(t, cfg.CrossCheck)
	assert.Equal(t, "db/spectra.sqlite3", cfg.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvDefaults(t *testing.T) {
	opts, err := ConfigFromEnv(envFrom(nil))
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestConfigFromEnvRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"SPECTRUM_WINDOW":      "lots",
		"SPECTRUM_METHOD":      "wavelet",
		"SPECTRUM_VALIDATION":  "paranoid",
		"SPECTRUM_MIX":         "average",
		"SPECTRUM_CROSS_CHECK": "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := ConfigFromEnv(envFrom(map[string]string{key: value}))
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero window", WithWindowLength(0)},
		{"negative bins", WithBins(-1)},
		{"negative lead-in", WithLeadInBytes(-6)},
		{"unknown method", WithMethod(Method("dct"))},
		{"fft bins beyond window", func(c *Config) {
			c.Method = MethodFourier
			c.WindowLength = 8
			c.Bins = 9
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.opt(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, defaultConfig().Validate())
}

func TestConfigProfile(t *testing.T) {
	a := defaultConfig()
	b := defaultConfig()
	assert.Equal(t, a.Profile(), b.Profile())

	b.Bins = a.WindowLength
	assert.Equal(t, a.Profile(), b.Profile(), "bins 0 and bins N describe the same output")

	b.Method = MethodDirect
	assert.NotEqual(t, a.Profile(), b.Profile())

	c := defaultConfig()
	c.Mix = MixRound
	assert.NotEqual(t, a.Profile(), c.Profile())
}
