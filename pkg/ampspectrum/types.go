package ampspectrum

import (
	"time"

	"github.com/himanishpuri/AmpSpectrum/pkg/models"
)

// Result is one analysis together with run-only diagnostics that are not stored.
type Result struct {
	models.Analysis

	// CrossCheck lists header fields an independent decoder read differently.
	// Empty unless Config.CrossCheck is set. Cached results are re-checked
	// against the submitted bytes.
	CrossCheck []string
	// FrameSyncOffset is the first MPEG frame-sync position, or -1 if none.
	FrameSyncOffset int
	Cached          bool // served from storage instead of recomputed
	Elapsed         time.Duration
}
