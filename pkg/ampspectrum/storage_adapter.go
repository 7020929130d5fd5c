//go:build !js && !wasm

package ampspectrum

import (
	"errors"
	"fmt"

	"github.com/himanishpuri/AmpSpectrum/internal/storage"
	"github.com/himanishpuri/AmpSpectrum/pkg/models"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveAnalysis(a *models.Analysis) (string, error) {
	return s.db.SaveAnalysis(a)
}

func (s *storageAdapter) FindAnalysis(digest, profile string) (*models.Analysis, error) {
	a, err := s.db.FindAnalysis(digest, profile)
	return a, translate(err, digest)
}

func (s *storageAdapter) GetAnalysis(id string) (*models.Analysis, error) {
	a, err := s.db.GetAnalysis(id)
	return a, translate(err, id)
}

func (s *storageAdapter) ListAnalyses() ([]models.Analysis, error) {
	return s.db.ListAnalyses()
}

func (s *storageAdapter) DeleteAnalysis(id string) error {
	return translate(s.db.DeleteAnalysis(id), id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func translate(err error, key string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAnalysisNotFound, key)
	}
	return err
}
