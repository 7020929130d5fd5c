package spectrum

import "errors"

var (
	ErrDegenerateRange = errors.New("degenerate range: minimum equals maximum")
	ErrTooManyBins     = errors.New("requested bins exceed signal length")
	ErrUnknownMethod   = errors.New("unknown estimation method")
)
