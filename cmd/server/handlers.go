package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/AmpSpectrum/pkg/ampspectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/logger"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service ampspectrum.Service
	config  *ServerConfig
	log     ampspectrum.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service ampspectrum.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondStageError maps a pipeline failure onto a status code. Problems with
// the uploaded bytes are the client's; storage trouble is ours.
func (s *Server) respondStageError(w http.ResponseWriter, err error) {
	var se *ampspectrum.StageError
	if !errors.As(err, &se) {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusUnprocessableEntity
	switch se.Kind {
	case ampspectrum.KindInvalidConfig:
		status = http.StatusBadRequest
	case ampspectrum.KindStorage, ampspectrum.KindIO:
		status = http.StatusInternalServerError
	case ampspectrum.KindCancelled:
		status = http.StatusRequestTimeout
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
	}

	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: se.Err.Error(),
		Code:    status,
		Stage:   string(se.Stage),
		Kind:    string(se.Kind),
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "AmpSpectrum API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"listAnalyses":   "GET /api/analyses",
			"analyze":        "POST /api/analyses",
			"getAnalysis":    "GET /api/analyses/{id}",
			"deleteAnalysis": "DELETE /api/analyses/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"window": cfg.WindowLength,
		"method": cfg.Method,
	})
}

// handleListAnalyses handles GET /api/analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.service.ListAnalyses()
	if err != nil {
		s.log.Errorf("Failed to list analyses: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve analyses")
		return
	}

	dtos := make([]AnalysisDTO, len(analyses))
	for i := range analyses {
		dtos[i] = toDTO(&analyses[i])
	}

	s.respondJSON(w, http.StatusOK, ListAnalysesResponse{
		Analyses: dtos,
		Count:    len(dtos),
	})
}

// handleAnalyze handles POST /api/analyses (multipart field "audio")
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Warnf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.log.Errorf("Failed to read upload: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	s.log.Infof("Received %s (%s)", header.Filename, humanize.Bytes(uint64(len(data))))

	result, err := s.service.AnalyzeBytes(ctx, header.Filename, data)
	if err != nil {
		s.log.Warnf("Analysis of %s failed: %v", header.Filename, err)
		s.respondStageError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	s.respondJSON(w, status, toAnalyzeResponse(result))
}

// handleGetAnalysis handles GET /api/analyses/{id}
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	a, err := s.service.GetAnalysis(id)
	if err != nil {
		if errors.Is(err, ampspectrum.ErrAnalysisNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
			return
		}
		s.log.Errorf("Failed to get analysis %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}

	s.respondJSON(w, http.StatusOK, toDTO(a))
}

// handleDeleteAnalysis handles DELETE /api/analyses/{id}
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteAnalysis(id); err != nil {
		if errors.Is(err, ampspectrum.ErrAnalysisNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
			return
		}
		s.log.Errorf("Failed to delete analysis %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}

	s.log.Infof("Deleted analysis %s", id)
	s.respondJSON(w, http.StatusOK, DeleteAnalysisResponse{
		Message: "Analysis deleted successfully",
		ID:      id,
	})
}

// handleAnalyses routes /api/analyses by method
func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListAnalyses(w, r)
	case http.MethodPost:
		s.handleAnalyze(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAnalysis routes /api/analyses/{id} by method
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/analyses/"), "/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "analysis ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetAnalysis(w, r, id)
	case http.MethodDelete:
		s.handleDeleteAnalysis(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
