package main

import (
	"time"

	"github.com/himanishpuri/AmpSpectrum/pkg/ampspectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/models"
)

// MaxUploadBytes bounds multipart uploads to POST /api/analyses.
const MaxUploadBytes = 100 << 20

// AnalysisDTO is an analysis in API responses. Amplitudes are omitted from listings.
type AnalysisDTO struct {
	ID           string                `json:"id,omitempty"`
	Source       string                `json:"source"`
	Digest       string                `json:"digest"`
	HeaderOffset int                   `json:"header_offset"`
	DataOffset   int                   `json:"data_offset"`
	Header       models.HeaderSnapshot `json:"header"`
	Mismatches   []string              `json:"mismatches,omitempty"`
	WindowLength int                   `json:"window_length"`
	Method       string                `json:"method"`
	Bins         int                   `json:"bins"`
	Amplitudes   []float64             `json:"amplitudes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func toDTO(a *models.Analysis) AnalysisDTO {
	return AnalysisDTO{
		ID:           a.ID,
		Source:       a.Source,
		Digest:       a.Digest,
		HeaderOffset: a.HeaderOffset,
		DataOffset:   a.DataOffset,
		Header:       a.Header,
		Mismatches:   a.Mismatches,
		WindowLength: a.WindowLength,
		Method:       a.Method,
		Bins:         a.Bins,
		Amplitudes:   a.Amplitudes,
		CreatedAt:    a.CreatedAt,
	}
}

// AnalyzeResponse is the response for POST /api/analyses
type AnalyzeResponse struct {
	Analysis        AnalysisDTO `json:"analysis"`
	Cached          bool        `json:"cached"`
	CrossCheck      []string    `json:"cross_check,omitempty"`
	FrameSyncOffset int         `json:"frame_sync_offset"`
	ElapsedMs       int64       `json:"elapsed_ms"`
}

func toAnalyzeResponse(r *ampspectrum.Result) AnalyzeResponse {
	return AnalyzeResponse{
		Analysis:        toDTO(&r.Analysis),
		Cached:          r.Cached,
		CrossCheck:      r.CrossCheck,
		FrameSyncOffset: r.FrameSyncOffset,
		ElapsedMs:       r.Elapsed.Milliseconds(),
	}
}

// ListAnalysesResponse is the response for GET /api/analyses
type ListAnalysesResponse struct {
	Analyses []AnalysisDTO `json:"analyses"`
	Count    int           `json:"count"`
}

// DeleteAnalysisResponse is the response for DELETE /api/analyses/{id}
type DeleteAnalysisResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
