package ampspectrum

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/himanishpuri/AmpSpectrum/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		index int
		amp   float64
		want  string
	}{
		{0, 0, "0, 0"},
		{1, 0.5, "1, 0.5"},
		{2, 176400, "2, 176400"},
		{3, 1e-7, "3, 0.0000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLine(tt.index, tt.amp))
	}
}

func TestWriteSpectrum(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSpectrum(&buf, []float64{1.25, 0, 3}))
	assert.Equal(t, "0, 1.25\n1, 0\n2, 3\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSpectrum(&buf, nil))
	assert.Empty(t, buf.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestTextSinkEmitFailure(t *testing.T) {
	r := &Result{Analysis: models.Analysis{Amplitudes: []float64{1, 2}}}

	err := NewTextSink(brokenWriter{}).Emit(context.Background(), r)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageEmit, se.Stage)
	assert.Equal(t, KindIO, se.Kind)
}
