//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/AmpSpectrum/pkg/models"
	"github.com/himanishpuri/AmpSpectrum/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "ampspectrum.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when no analysis matches a lookup.
var ErrNotFound = errors.New("analysis not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Analysis struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Source       string
	Digest       string `gorm:"type:char(64);index:idx_analysis_profile,priority:1"`
	Profile      string `gorm:"index:idx_analysis_profile,priority:2"`
	HeaderOffset int
	DataOffset   int

	DeclaredSize       uint32
	IsRecognizedType   bool
	IsFormatChunkValid bool
	FormatChunkLen     uint32
	AudioFormat        uint16
	ChannelCount       uint16
	SampleRate         uint32
	ByteRate           uint32
	BlockAlign         uint16
	BitsPerSample      uint16
	IsDataChunkValid   bool
	DataSize           uint32

	Mismatches   string
	WindowLength int
	Method       string
	Bins         int
	CreatedAt    time.Time
}

type Amplitude struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	AnalysisID string  `gorm:"type:varchar(36);index:idx_amplitude_analysis,priority:1"`
	Bin        int     `gorm:"index:idx_amplitude_analysis,priority:2"`
	Value      float64 `json:"value"`
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Analysis{}, &Amplitude{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveAnalysis stores a and its amplitudes in one transaction and returns the new ID.
func (c *DBClient) SaveAnalysis(a *models.Analysis) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	row := toRow(a)
	row.ID = utils.GenerateUUID()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating analysis: %w", err)
		}

		entries := make([]Amplitude, 0, 1024)
		for bin, v := range a.Amplitudes {
			entries = append(entries, Amplitude{AnalysisID: row.ID, Bin: bin, Value: v})
			if len(entries) >= 1000 {
				if err := tx.CreateInBatches(entries, 500).Error; err != nil {
					return fmt.Errorf("batch insert amplitudes: %w", err)
				}
				entries = entries[:0]
			}
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 500).Error; err != nil {
				return fmt.Errorf("batch insert last amplitudes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return row.ID, nil
}

// FindAnalysis returns the newest analysis of the given input under the given
// profile, amplitudes included.
func (c *DBClient) FindAnalysis(digest, profile string) (*models.Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Analysis
	err := c.DB.Where("digest = ? AND profile = ?", digest, profile).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "querying analysis by digest")
	}
	return c.withAmplitudes(&row)
}

// GetAnalysis returns the analysis with the given ID, amplitudes included.
func (c *DBClient) GetAnalysis(id string) (*models.Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Analysis
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "querying analysis")
	}
	return c.withAmplitudes(&row)
}

// ListAnalyses returns every stored analysis, newest first, without amplitudes.
func (c *DBClient) ListAnalyses() ([]models.Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Analysis
	if err := c.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	out := make([]models.Analysis, 0, len(rows))
	for i := range rows {
		out = append(out, *fromRow(&rows[i]))
	}
	return out, nil
}

func (c *DBClient) DeleteAnalysis(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("analysis_id = ?", id).Delete(&Amplitude{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Analysis{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("deleting analysis %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (c *DBClient) AmplitudeCount(id string) (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&Amplitude{}).Where("analysis_id = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting amplitudes: %w", err)
	}
	return int(count), nil
}

func (c *DBClient) withAmplitudes(row *Analysis) (*models.Analysis, error) {
	var amps []Amplitude
	if err := c.DB.Where("analysis_id = ?", row.ID).Order("bin ASC").Find(&amps).Error; err != nil {
		return nil, fmt.Errorf("querying amplitudes: %w", err)
	}

	a := fromRow(row)
	a.Amplitudes = make([]float64, len(amps))
	for i, amp := range amps {
		a.Amplitudes[i] = amp.Value
	}
	return a, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func toRow(a *models.Analysis) Analysis {
	h := a.Header
	return Analysis{
		ID:                 a.ID,
		Source:             a.Source,
		Digest:             a.Digest,
		Profile:            a.Profile,
		HeaderOffset:       a.HeaderOffset,
		DataOffset:         a.DataOffset,
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
		Mismatches:         strings.Join(a.Mismatches, ","),
		WindowLength:       a.WindowLength,
		Method:             a.Method,
		Bins:               a.Bins,
		CreatedAt:          a.CreatedAt,
	}
}

func fromRow(r *Analysis) *models.Analysis {
	var mismatches []string
	if r.Mismatches != "" {
		mismatches = strings.Split(r.Mismatches, ",")
	}
	return &models.Analysis{
		ID:           r.ID,
		Source:       r.Source,
		Digest:       r.Digest,
		Profile:      r.Profile,
		HeaderOffset: r.HeaderOffset,
		DataOffset:   r.DataOffset,
		Header: models.HeaderSnapshot{
			DeclaredSize:       r.DeclaredSize,
			IsRecognizedType:   r.IsRecognizedType,
			IsFormatChunkValid: r.IsFormatChunkValid,
			FormatChunkLen:     r.FormatChunkLen,
			AudioFormat:        r.AudioFormat,
			ChannelCount:       r.ChannelCount,
			SampleRate:         r.SampleRate,
			ByteRate:           r.ByteRate,
			BlockAlign:         r.BlockAlign,
			BitsPerSample:      r.BitsPerSample,
			IsDataChunkValid:   r.IsDataChunkValid,
			DataSize:           r.DataSize,
		},
		Mismatches:   mismatches,
		WindowLength: r.WindowLength,
		Method:       r.Method,
		Bins:         r.Bins,
		CreatedAt:    r.CreatedAt,
	}
}
