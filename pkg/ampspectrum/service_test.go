package ampspectrum

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/himanishpuri/AmpSpectrum/internal/audio"
	"github.com/himanishpuri/AmpSpectrum/internal/audiotest"
	"github.com/himanishpuri/AmpSpectrum/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu      sync.Mutex
	warns   []string
	onDebug func(format string)
}

func (l *recordingLogger) Infof(string, ...any)  {}
func (l *recordingLogger) Errorf(string, ...any) {}
func (l *recordingLogger) Debugf(format string, _ ...any) {
	if l.onDebug != nil {
		l.onDebug(format)
	}
}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) warned(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, opts ...Option) (Service, *recordingLogger) {
	t.Helper()

	log := &recordingLogger{}
	svc, err := NewService(append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		svc.Close()
	})
	return svc, log
}

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func render(t *testing.T, r *Result) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewTextSink(&buf).Emit(context.Background(), r))
	return buf.String()
}

func requireStage(t *testing.T, err error, stage Stage, kind Kind) {
	t.Helper()
	var se *StageError
	require.True(t, errors.As(err, &se), "expected *StageError, got %T: %v", err, err)
	assert.Equal(t, stage, se.Stage)
	assert.Equal(t, kind, se.Kind)
	assert.Contains(t, se.Error(), string(stage))
}

func TestNewService(t *testing.T) {
	svc, _ := newTestService(t)
	cfg := svc.Config()

	assert.Equal(t, DefaultWindowLength, cfg.WindowLength)
	assert.Equal(t, MethodParity, cfg.Method)
	assert.Equal(t, Lenient, cfg.Validation)
	assert.Equal(t, SeedZero, cfg.RangeSeed)
	assert.Equal(t, DegenerateZero, cfg.Degenerate)
	assert.Equal(t, audio.DefaultTags(), cfg.Tags)
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	_, err := NewService(WithLogger(&recordingLogger{}), WithWindowLength(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAnalyzeSilentContainer(t *testing.T) {
	const n = 8
	path := writeFixture(t, audiotest.Container(audiotest.SilentFrames(n)))
	svc, log := newTestService(t, WithInputPath(path), WithWindowLength(n))

	res, err := svc.Analyze(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Header.IsRecognizedType)
	assert.True(t, res.Header.IsFormatChunkValid)
	assert.True(t, res.Header.IsDataChunkValid)
	assert.Empty(t, res.Mismatches)
	assert.Equal(t, 4, res.HeaderOffset)
	assert.Equal(t, 44, res.DataOffset)
	assert.Equal(t, n, res.Bins)
	assert.True(t, log.warned("degenerate"))

	var want strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&want, "%d, 0\n", i)
	}
	assert.Equal(t, want.String(), render(t, res))
}

func TestAnalyzeDegenerateFail(t *testing.T) {
	data := audiotest.Container(audiotest.SilentFrames(4))
	svc, _ := newTestService(t, WithWindowLength(4), WithDegenerate(DegenerateFail))

	_, err := svc.AnalyzeBytes(context.Background(), "silence", data)
	requireStage(t, err, StageNormalize, KindDegenerateRange)
}

func TestAnalyzeSinePeak(t *testing.T) {
	const n = 32
	data := audiotest.Container(audiotest.SineFrames(n, 5, 1<<20))

	for _, m := range []Method{MethodDirect, MethodFFT, MethodFourier} {
		t.Run(string(m), func(t *testing.T) {
			svc, _ := newTestService(t, WithWindowLength(n), WithMethod(m), WithRangeSeed(SeedFirst))

			res, err := svc.AnalyzeBytes(context.Background(), "sine", data)
			require.NoError(t, err)
			require.Len(t, res.Amplitudes, n)

			best := 1
			for k := 1; k < n/2; k++ {
				if res.Amplitudes[k] > res.Amplitudes[best] {
					best = k
				}
			}
			assert.Equal(t, 5, best)
			assert.InDelta(t, res.Amplitudes[5], res.Amplitudes[n-5], 1e-6)
		})
	}
}

func TestAnalyzeParityIsAbsoluteSum(t *testing.T) {
	frames := []audiotest.Frame{{Left: 100, Right: 100}, {Left: -50, Right: -50}, {Left: 0, Right: 0}, {Left: 200, Right: 200}}
	data := audiotest.Container(frames)
	svc, _ := newTestService(t, WithWindowLength(4), WithBins(3))

	res, err := svc.AnalyzeBytes(context.Background(), "steps", data)
	require.NoError(t, err)

	// zero seed: range [-50, 200] so the samples map to 0.2, -1, -0.2, 1
	for _, a := range res.Amplitudes {
		assert.InDelta(t, 2.4, a, 1e-9)
	}
	assert.Len(t, res.Amplitudes, 3)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	data := audiotest.Container(audiotest.SineFrames(16, 2, 4000))
	svc, _ := newTestService(t, WithWindowLength(16), WithMethod(MethodDirect))

	first, err := svc.AnalyzeBytes(context.Background(), "a", data)
	require.NoError(t, err)
	second, err := svc.AnalyzeBytes(context.Background(), "a", data)
	require.NoError(t, err)

	assert.Equal(t, render(t, first), render(t, second))
}

func TestAnalyzeTagMismatch(t *testing.T) {
	data := audiotest.Build(audiotest.Options{TypeTag: "AVI ", Frames: audiotest.SineFrames(4, 1, 100)})

	t.Run("lenient", func(t *testing.T) {
		svc, log := newTestService(t, WithWindowLength(4))
		res, err := svc.AnalyzeBytes(context.Background(), "avi", data)
		require.NoError(t, err)
		assert.False(t, res.Header.IsRecognizedType)
		assert.Equal(t, []string{"type"}, res.Mismatches)
		assert.True(t, log.warned("type"))
	})

	t.Run("strict", func(t *testing.T) {
		svc, _ := newTestService(t, WithWindowLength(4), WithValidation(Strict))
		_, err := svc.AnalyzeBytes(context.Background(), "avi", data)
		requireStage(t, err, StageParse, KindTagMismatch)
		assert.ErrorIs(t, err, audio.ErrTagMismatch)
	})
}

func TestAnalyzeStageFailures(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		opts  []Option
		stage Stage
		kind  Kind
	}{
		{"no marker", []byte("hello world, no container here"), nil, StageLocate, KindHeaderNotFound},
		{"short header", audiotest.Container(nil)[:20], nil, StageParse, KindTruncatedData},
		{"short data", audiotest.Container(audiotest.SilentFrames(4)), []Option{WithWindowLength(10)}, StageExtract, KindTruncatedData},
		{"lead-in past data", audiotest.Container(audiotest.SilentFrames(4)), []Option{WithWindowLength(2), WithLeadInBytes(60)}, StageExtract, KindTruncatedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.opts...)
			_, err := svc.AnalyzeBytes(context.Background(), tt.name, tt.data)
			requireStage(t, err, tt.stage, tt.kind)
		})
	}
}

func TestAnalyzeReadFailures(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Analyze(context.Background())
	requireStage(t, err, StageRead, KindInvalidConfig)

	_, err = svc.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	requireStage(t, err, StageRead, KindIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnalyzeCancelled(t *testing.T) {
	svc, _ := newTestService(t, WithWindowLength(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeBytes(ctx, "x", audiotest.Container(audiotest.SilentFrames(4)))
	assert.ErrorIs(t, err, context.Canceled)
	requireStage(t, err, StageLocate, KindCancelled)
}

// expiringContext reports DeadlineExceeded once Err has been called live times.
type expiringContext struct {
	context.Context
	mu   sync.Mutex
	live int
}

func (c *expiringContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live <= 0 {
		return context.DeadlineExceeded
	}
	c.live--
	return nil
}

func (c *expiringContext) expireAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live = n
}

func TestAnalyzeDeadlineDuringEstimate(t *testing.T) {
	ctx := &expiringContext{Context: context.Background(), live: 1 << 30}
	log := &recordingLogger{}
	// Leaves one check for the estimate stage itself, so the first bin trips.
	log.onDebug = func(format string) {
		if strings.HasPrefix(format, "Sample range") {
			ctx.expireAfter(1)
		}
	}
	dbPath := filepath.Join(t.TempDir(), "spectra.sqlite3")
	svc, err := NewService(WithLogger(log), WithWindowLength(64), WithMethod(MethodParity), WithDBPath(dbPath))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.AnalyzeBytes(ctx, "slow.wav", audiotest.Container(audiotest.SineFrames(64, 3, 1000)))
	requireStage(t, err, StageEstimate, KindCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "bin 0 of 64")

	list, err := svc.ListAnalyses()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzeDeadlineBeforeStore(t *testing.T) {
	ctx := &expiringContext{Context: context.Background(), live: 1 << 30}
	log := &recordingLogger{}
	// The estimate pre-check and four bins pass; the store check trips.
	log.onDebug = func(format string) {
		if strings.HasPrefix(format, "Sample range") {
			ctx.expireAfter(5)
		}
	}
	svc, err := NewService(WithLogger(log), WithWindowLength(4), WithMethod(MethodDirect), WithStorage(failingStorage{}))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.AnalyzeBytes(ctx, "x", audiotest.Container(audiotest.SineFrames(4, 1, 10)))
	requireStage(t, err, StageStore, KindCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnalyzeWithPrefixAndCrossCheck(t *testing.T) {
	frames := audiotest.SineFrames(8, 1, 1000)
	data := audiotest.Build(audiotest.Options{Prefix: []byte("ID3junk"), Frames: frames})
	svc, log := newTestService(t, WithWindowLength(8), WithCrossCheck(true))

	res, err := svc.AnalyzeBytes(context.Background(), "prefixed", data)
	require.NoError(t, err)
	assert.Equal(t, 11, res.HeaderOffset)
	assert.Equal(t, 51, res.DataOffset)
	assert.Empty(t, res.CrossCheck)
	assert.False(t, log.warned("Cross-check"))
}

func TestAnalyzeEncoderFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encoded.wav")
	require.NoError(t, audiotest.WriteWithEncoder(path, 44100, audiotest.SineFrames(16, 3, 1<<18)))

	svc, _ := newTestService(t, WithWindowLength(16), WithCrossCheck(true), WithMethod(MethodFFT))
	res, err := svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, res.CrossCheck)
	assert.Equal(t, uint16(24), res.Header.BitsPerSample)
}

func TestPersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history", "spectra.sqlite3")
	data := audiotest.Container(audiotest.SineFrames(16, 4, 5000))
	svc, _ := newTestService(t, WithWindowLength(16), WithMethod(MethodDirect), WithDBPath(dbPath))
	ctx := context.Background()

	first, err := svc.AnalyzeBytes(ctx, "one.wav", data)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.Cached)

	second, err := svc.AnalyzeBytes(ctx, "two.wav", data)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "two.wav", second.Source)
	assert.Equal(t, render(t, first), render(t, second))

	list, err := svc.ListAnalyses()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 16, list[0].Bins)

	got, err := svc.GetAnalysis(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Amplitudes, got.Amplitudes)
	assert.Equal(t, first.Header, got.Header)

	require.NoError(t, svc.DeleteAnalysis(first.ID))
	_, err = svc.GetAnalysis(first.ID)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
	assert.ErrorIs(t, svc.DeleteAnalysis(first.ID), ErrAnalysisNotFound)
}

func TestCachedResultIsCrossChecked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spectra.sqlite3")
	data := audiotest.Build(audiotest.Options{TypeTag: "AVI ", Frames: audiotest.SineFrames(4, 1, 100)})
	svc, _ := newTestService(t, WithWindowLength(4), WithCrossCheck(true), WithDBPath(dbPath))
	ctx := context.Background()

	first, err := svc.AnalyzeBytes(ctx, "one.avi", data)
	require.NoError(t, err)
	require.NotEmpty(t, first.CrossCheck)
	assert.True(t, strings.HasPrefix(first.CrossCheck[0], "decoder: "))

	second, err := svc.AnalyzeBytes(ctx, "two.avi", data)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.CrossCheck, second.CrossCheck)
}

func TestPersistenceDisabled(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListAnalyses()
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	_, err = svc.GetAnalysis("x")
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	assert.ErrorIs(t, svc.DeleteAnalysis("x"), ErrPersistenceDisabled)
}

type failingStorage struct{}

func (failingStorage) SaveAnalysis(*models.Analysis) (string, error) {
	return "", errors.New("disk full")
}
func (failingStorage) FindAnalysis(string, string) (*models.Analysis, error) {
	return nil, ErrAnalysisNotFound
}
func (failingStorage) GetAnalysis(string) (*models.Analysis, error) { return nil, ErrAnalysisNotFound }
func (failingStorage) ListAnalyses() ([]models.Analysis, error)     { return nil, nil }
func (failingStorage) DeleteAnalysis(string) error                  { return nil }
func (failingStorage) Close() error                                 { return nil }

func TestAnalyzeStoreFailure(t *testing.T) {
	svc, _ := newTestService(t, WithWindowLength(4), WithStorage(failingStorage{}))

	_, err := svc.AnalyzeBytes(context.Background(), "x", audiotest.Container(audiotest.SineFrames(4, 1, 10)))
	requireStage(t, err, StageStore, KindStorage)
}
