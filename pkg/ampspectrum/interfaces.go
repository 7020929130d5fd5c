package ampspectrum

import (
	"context"

	"github.com/himanishpuri/AmpSpectrum/pkg/models"
)

type Service interface {
	Analyze(ctx context.Context) (*Result, error)
	AnalyzeFile(ctx context.Context, path string) (*Result, error)
	AnalyzeBytes(ctx context.Context, source string, data []byte) (*Result, error)
	GetAnalysis(id string) (*models.Analysis, error)
	ListAnalyses() ([]models.Analysis, error)
	DeleteAnalysis(id string) error
	Config() Config
	Close() error
}

// Storage persists completed analyses. Lookups that match nothing return
// ErrAnalysisNotFound.
type Storage interface {
	SaveAnalysis(a *models.Analysis) (string, error)
	FindAnalysis(digest, profile string) (*models.Analysis, error)
	GetAnalysis(id string) (*models.Analysis, error)
	ListAnalyses() ([]models.Analysis, error)
	DeleteAnalysis(id string) error
	Close() error
}

// Sink receives finished results, e.g. a text writer or a plotting front end.
type Sink interface {
	Emit(ctx context.Context, r *Result) error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
