package ampspectrum

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/himanishpuri/AmpSpectrum/internal/audio"
	"github.com/himanishpuri/AmpSpectrum/internal/spectrum"
)

// DefaultWindowLength is four seconds of frames at 44.1 kHz.
const DefaultWindowLength = 44100 * 4

type (
	ValidationMode   = audio.ValidationMode
	MixMode          = audio.MixMode
	Tags             = audio.Tags
	Method           = spectrum.Method
	RangeSeed        = spectrum.RangeSeed
	DegeneratePolicy = spectrum.DegeneratePolicy
)

const (
	Lenient = audio.Lenient
	Strict  = audio.Strict

	MixTruncate = audio.MixTruncate
	MixRound    = audio.MixRound

	MethodDirect  = spectrum.MethodDirect
	MethodParity  = spectrum.MethodParity
	MethodFFT     = spectrum.MethodFFT
	MethodFourier = spectrum.MethodFourier

	SeedZero  = spectrum.SeedZero
	SeedFirst = spectrum.SeedFirst

	DegenerateZero = spectrum.DegenerateZero
	DegenerateFail = spectrum.DegenerateFail
)

type Config struct {
	InputPath    string
	WindowLength int // frames extracted and analyzed
	Bins         int // frequency indices emitted; 0 means WindowLength
	LeadInBytes  int // skipped between the header and the first frame
	Method       Method
	Validation   ValidationMode
	RangeSeed    RangeSeed
	Degenerate   DegeneratePolicy
	Mix          MixMode
	Tags         Tags
	CrossCheck   bool   // compare the header against an independent decoder
	DBPath       string // empty disables persistence
	Logger       Logger
	Storage      Storage
}

type Option func(*Config)

func WithInputPath(path string) Option {
	return func(c *Config) {
		c.InputPath = path
	}
}

func WithWindowLength(n int) Option {
	return func(c *Config) {
		c.WindowLength = n
	}
}

func WithBins(n int) Option {
	return func(c *Config) {
		c.Bins = n
	}
}

func WithLeadInBytes(n int) Option {
	return func(c *Config) {
		c.LeadInBytes = n
	}
}

func WithMethod(m Method) Option {
	return func(c *Config) {
		c.Method = m
	}
}

func WithValidation(m ValidationMode) Option {
	return func(c *Config) {
		c.Validation = m
	}
}

func WithRangeSeed(s RangeSeed) Option {
	return func(c *Config) {
		c.RangeSeed = s
	}
}

func WithDegenerate(p DegeneratePolicy) Option {
	return func(c *Config) {
		c.Degenerate = p
	}
}

func WithMix(m MixMode) Option {
	return func(c *Config) {
		c.Mix = m
	}
}

func WithTags(t Tags) Option {
	return func(c *Config) {
		c.Tags = t
	}
}

func WithCrossCheck(enabled bool) Option {
	return func(c *Config) {
		c.CrossCheck = enabled
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		WindowLength: DefaultWindowLength,
		Method:       MethodParity,
		Validation:   Lenient,
		RangeSeed:    SeedZero,
		Degenerate:   DegenerateZero,
		Mix:          MixTruncate,
		Tags:         audio.DefaultTags(),
	}
}

// ParseMethod accepts an estimator name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	return spectrum.ParseMethod(s)
}

// Validate rejects settings no run could succeed with.
func (c *Config) Validate() error {
	if c.WindowLength <= 0 {
		return fmt.Errorf("%w: window length must be positive, got %d", ErrInvalidConfig, c.WindowLength)
	}
	if c.Bins < 0 {
		return fmt.Errorf("%w: bins must not be negative, got %d", ErrInvalidConfig, c.Bins)
	}
	if c.LeadInBytes < 0 {
		return fmt.Errorf("%w: lead-in must not be negative, got %d", ErrInvalidConfig, c.LeadInBytes)
	}
	switch c.Method {
	case MethodDirect, MethodParity, MethodFFT, MethodFourier:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, c.Method)
	}
	if (c.Method == MethodFFT || c.Method == MethodFourier) && c.Bins > c.WindowLength {
		return fmt.Errorf("%w: %s method yields at most %d bins, got %d", ErrInvalidConfig, c.Method, c.WindowLength, c.Bins)
	}
	return nil
}

// Profile identifies every setting that shapes the emitted amplitudes. Two runs
// over the same bytes with the same profile produce the same output.
func (c *Config) Profile() string {
	bins := c.Bins
	if bins == 0 {
		bins = c.WindowLength
	}
	return fmt.Sprintf("tags=%08x.%08x.%08x.%08x;window=%d;bins=%d;lead=%d;method=%s;validation=%s;seed=%s;degenerate=%s;mix=%s",
		c.Tags.Sync, c.Tags.Type, c.Tags.Format, c.Tags.Data,
		c.WindowLength, bins, c.LeadInBytes, c.Method,
		c.Validation, c.RangeSeed, c.Degenerate, c.Mix)
}

// ConfigFromEnv turns SPECTRUM_* variables into options. Unset variables keep
// their defaults; malformed ones are reported.
func ConfigFromEnv(getenv func(string) string) ([]Option, error) {
	var opts []Option

	if v := getenv("SPECTRUM_INPUT"); v != "" {
		opts = append(opts, WithInputPath(v))
	}
	if v := getenv("SPECTRUM_DB_PATH"); v != "" {
		opts = append(opts, WithDBPath(v))
	}

	ints := []struct {
		key string
		opt func(int) Option
	}{
		{"SPECTRUM_WINDOW", WithWindowLength},
		{"SPECTRUM_BINS", WithBins},
		{"SPECTRUM_LEAD_IN_BYTES", WithLeadInBytes},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, e.key, v)
		}
		opts = append(opts, e.opt(n))
	}

	if v := getenv("SPECTRUM_METHOD"); v != "" {
		m, err := spectrum.ParseMethod(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SPECTRUM_METHOD: %v", ErrInvalidConfig, err)
		}
		opts = append(opts, WithMethod(m))
	}

	choices := []struct {
		key     string
		choices map[string]Option
	}{
		{"SPECTRUM_VALIDATION", map[string]Option{
			"lenient": WithValidation(Lenient),
			"strict":  WithValidation(Strict),
		}},
		{"SPECTRUM_RANGE_SEED", map[string]Option{
			"zero":  WithRangeSeed(SeedZero),
			"first": WithRangeSeed(SeedFirst),
		}},
		{"SPECTRUM_DEGENERATE", map[string]Option{
			"zero": WithDegenerate(DegenerateZero),
			"fail": WithDegenerate(DegenerateFail),
		}},
		{"SPECTRUM_MIX", map[string]Option{
			"truncate": WithMix(MixTruncate),
			"round":    WithMix(MixRound),
		}},
	}
	for _, e := range choices {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		opt, ok := e.choices[strings.ToLower(strings.TrimSpace(v))]
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q is not one of %s", ErrInvalidConfig, e.key, v, keys(e.choices))
		}
		opts = append(opts, opt)
	}

	if v := getenv("SPECTRUM_CROSS_CHECK"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: SPECTRUM_CROSS_CHECK=%q is not a boolean", ErrInvalidConfig, v)
		}
		opts = append(opts, WithCrossCheck(b))
	}

	return opts, nil
}

func keys(m map[string]Option) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}
