package ampspectrum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/AmpSpectrum/internal/audio"
	"github.com/himanishpuri/AmpSpectrum/internal/spectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/logger"
	"github.com/himanishpuri/AmpSpectrum/pkg/models"
	"github.com/himanishpuri/AmpSpectrum/pkg/utils"
)

// spectrumService is the default implementation of the Service interface.
type spectrumService struct {
	storage Storage // nil when persistence is off
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stor := cfg.Storage
	if stor == nil && cfg.DBPath != "" {
		var err error
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &spectrumService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

func (s *spectrumService) Config() Config {
	return *s.config
}

// Analyze runs the pipeline over Config.InputPath.
func (s *spectrumService) Analyze(ctx context.Context) (*Result, error) {
	if s.config.InputPath == "" {
		return nil, &StageError{
			Stage: StageRead,
			Kind:  KindInvalidConfig,
			Err:   fmt.Errorf("%w: no input path configured", ErrInvalidConfig),
		}
	}
	return s.AnalyzeFile(ctx, s.config.InputPath)
}

// AnalyzeFile reads the whole file at path and analyzes it.
func (s *spectrumService) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, stageError(StageRead, err)
	}
	data, err := audio.LoadFile(path)
	if err != nil {
		return nil, stageError(StageRead, err)
	}
	return s.AnalyzeBytes(ctx, path, data)
}

// AnalyzeBytes locates the container in data, extracts the configured window,
// normalizes it and estimates its amplitudes. With persistence on, a stored
// analysis of identical bytes under the same profile is returned as is.
func (s *spectrumService) AnalyzeBytes(ctx context.Context, source string, data []byte) (*Result, error) {
	start := time.Now()
	cfg := s.config

	s.log.Infof("Analyzing %s (%s)", source, humanize.Bytes(uint64(len(data))))

	res := &Result{FrameSyncOffset: -1}
	if fs := audio.LocateFrameSync(data); fs < len(data) {
		res.FrameSyncOffset = fs
		s.log.Debugf("MPEG frame sync pattern at byte %d", fs)
	}

	digest := utils.Digest(data)
	profile := cfg.Profile()

	if cached := s.lookup(digest, profile); cached != nil {
		res.Analysis = *cached
		res.Source = source
		res.Cached = true
		if cfg.CrossCheck && cached.HeaderOffset >= 4 && cached.HeaderOffset <= len(data) {
			res.CrossCheck = s.crossCheck(data[cached.HeaderOffset-4:], headerOf(cached.Header))
		}
		res.Elapsed = time.Since(start)
		s.log.Infof("Reusing stored analysis %s (%d bins)", cached.ID, cached.Bins)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageLocate, err)
	}
	ct, err := audio.Decode(data, audio.DecodeOptions{
		Tags:        cfg.Tags,
		Validation:  cfg.Validation,
		Frames:      cfg.WindowLength,
		LeadInBytes: cfg.LeadInBytes,
		Mix:         cfg.Mix,
	})
	if err != nil {
		var de *audio.DecodeError
		if errors.As(err, &de) {
			return nil, stageError(Stage(de.Step), de.Err)
		}
		return nil, stageError(StageParse, err)
	}
	h := ct.Header
	s.log.Debugf("Sync marker ends at byte %d", ct.HeaderOffset)
	if mm := h.Mismatches(); len(mm) > 0 {
		s.log.Warnf("Header tags did not match: %s", strings.Join(mm, ", "))
	}
	s.log.Debugf("Header: format=%d channels=%d rate=%d bits=%d data=%s",
		h.AudioFormat, h.ChannelCount, h.SampleRate, h.BitsPerSample, humanize.Bytes(uint64(h.DataSize)))

	if cfg.CrossCheck {
		res.CrossCheck = s.crossCheck(data[ct.HeaderOffset-4:], h)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageNormalize, err)
	}
	lo, hi := spectrum.Bounds(ct.Mixed, cfg.RangeSeed)
	s.log.Debugf("Sample range [%d, %d] over %d frames", lo, hi, len(ct.Mixed))
	if lo == hi && cfg.Degenerate == DegenerateZero {
		s.log.Warnf("Sample range is degenerate; normalized signal is all zeros")
	}
	signal, err := spectrum.Normalize(ct.Mixed, spectrum.NormalizeOptions{Seed: cfg.RangeSeed, Degenerate: cfg.Degenerate})
	if err != nil {
		return nil, stageError(StageNormalize, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageEstimate, err)
	}
	amps, err := spectrum.Compute(ctx, signal, cfg.Bins, cfg.Method)
	if err != nil {
		return nil, stageError(StageEstimate, err)
	}

	res.Analysis = models.Analysis{
		Source:       source,
		Digest:       digest,
		Profile:      profile,
		HeaderOffset: ct.HeaderOffset,
		DataOffset:   ct.DataOffset,
		Header:       snapshot(h),
		Mismatches:   h.Mismatches(),
		WindowLength: cfg.WindowLength,
		Method:       string(cfg.Method),
		Bins:         len(amps),
		Amplitudes:   amps,
		CreatedAt:    time.Now().UTC(),
	}

	if s.storage != nil {
		if err := ctx.Err(); err != nil {
			return nil, stageError(StageStore, err)
		}
		if _, err := s.storage.SaveAnalysis(&res.Analysis); err != nil {
			return nil, stageError(StageStore, err)
		}
		s.log.Infof("Stored analysis %s", res.ID)
	}

	res.Elapsed = time.Since(start)
	s.log.Debugf("Analysis of %s took %s", source, res.Elapsed)
	return res, nil
}

func (s *spectrumService) lookup(digest, profile string) *models.Analysis {
	if s.storage == nil {
		return nil
	}
	a, err := s.storage.FindAnalysis(digest, profile)
	if err != nil {
		if !errors.Is(err, ErrAnalysisNotFound) {
			s.log.Warnf("Stored analysis lookup failed: %v", err)
		}
		return nil
	}
	return a
}

func (s *spectrumService) crossCheck(container []byte, h *audio.Header) []string {
	info, err := audio.Probe(container)
	if err != nil {
		s.log.Warnf("Cross-check decoder rejected the container: %v", err)
		return []string{fmt.Sprintf("decoder: %v", err)}
	}
	diffs := audio.CrossCheck(h, info)
	if len(diffs) > 0 {
		s.log.Warnf("Cross-check disagrees on: %s", strings.Join(diffs, ", "))
	} else {
		s.log.Debugf("Cross-check agrees (%s)", info.Duration)
	}
	return diffs
}

func snapshot(h *audio.Header) models.HeaderSnapshot {
	return models.HeaderSnapshot{
		DeclaredSize:       h.DeclaredSize,
		IsRecognizedType:   h.IsRecognizedType,
		IsFormatChunkValid: h.IsFormatChunkValid,
		FormatChunkLen:     h.FormatChunkLen,
		AudioFormat:        h.AudioFormat,
		ChannelCount:       h.ChannelCount,
		SampleRate:         h.SampleRate,
		ByteRate:           h.ByteRate,
		BlockAlign:         h.BlockAlign,
		BitsPerSample:      h.BitsPerSample,
		IsDataChunkValid:   h.IsDataChunkValid,
		DataSize:           h.DataSize,
	}
}

func headerOf(hs models.HeaderSnapshot) *audio.Header {
	return &audio.Header{
		DeclaredSize:       hs.DeclaredSize,
		IsRecognizedType:   hs.IsRecognizedType,
		IsFormatChunkValid: hs.IsFormatChunkValid,
		FormatChunkLen:     hs.FormatChunkLen,
		AudioFormat:        hs.AudioFormat,
		ChannelCount:       hs.ChannelCount,
		SampleRate:         hs.SampleRate,
		ByteRate:           hs.ByteRate,
		BlockAlign:         hs.BlockAlign,
		BitsPerSample:      hs.BitsPerSample,
		IsDataChunkValid:   hs.IsDataChunkValid,
		DataSize:           hs.DataSize,
	}
}

// GetAnalysis retrieves a stored analysis, amplitudes included.
func (s *spectrumService) GetAnalysis(id string) (*models.Analysis, error) {
	if s.storage == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.storage.GetAnalysis(id)
}

// ListAnalyses returns every stored analysis without amplitudes.
func (s *spectrumService) ListAnalyses() ([]models.Analysis, error) {
	if s.storage == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.storage.ListAnalyses()
}

func (s *spectrumService) DeleteAnalysis(id string) error {
	if s.storage == nil {
		return ErrPersistenceDisabled
	}
	return s.storage.DeleteAnalysis(id)
}

// Close releases all resources held by the service.
func (s *spectrumService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
