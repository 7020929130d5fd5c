package ampspectrum

import (
	"bufio"
	"context"
	"io"
	"strconv"
)

// FormatLine renders one spectrum line as "<index>, <amplitude>".
func FormatLine(index int, amplitude float64) string {
	return strconv.FormatFloat(float64(index), 'f', -1, 64) + ", " + strconv.FormatFloat(amplitude, 'f', -1, 64)
}

// WriteSpectrum writes one line per frequency index, ascending.
func WriteSpectrum(w io.Writer, amplitudes []float64) error {
	bw := bufio.NewWriter(w)
	for i, a := range amplitudes {
		if _, err := bw.WriteString(FormatLine(i, a)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TextSink writes results in the line format of WriteSpectrum.
type TextSink struct {
	w io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (t *TextSink) Emit(ctx context.Context, r *Result) error {
	if err := ctx.Err(); err != nil {
		return stageError(StageEmit, err)
	}
	if err := WriteSpectrum(t.w, r.Amplitudes); err != nil {
		return stageError(StageEmit, err)
	}
	return nil
}
