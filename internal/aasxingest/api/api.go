/*******************************************************************************
* Copyright (C) 2026 the Eclipse BaSyx Authors and Fraunhofer IESE
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package aasxingestapi exposes the parse pipeline over HTTP: one-shot
// ingestion of a package or JSON document, single-entry extraction, and the
// optional ingest journal.
package aasxingestapi

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/blobstore"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/journal"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/logger"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/worker"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

const componentName = "AASXIngest"

// maxUploadBytes bounds request bodies; AASX packages above this are
// rejected before touching the pipeline.
const maxUploadBytes = 512 << 20

// Service wires the worker pool to the HTTP surface. Journal and blob store
// are optional and skipped when nil.
type Service struct {
	pool    *worker.Pool
	journal *journal.Journal
	store   *blobstore.S3Store
}

// NewService builds the API service.
func NewService(pool *worker.Pool, j *journal.Journal, store *blobstore.S3Store) *Service {
	return &Service{pool: pool, journal: j, store: store}
}

// Routes registers all endpoints under the given context path.
func (s *Service) Routes(r *chi.Mux, contextPath string) {
	r.Post(contextPath+"/ingest", s.handleIngest)
	r.Post(contextPath+"/ingest/extract", s.handleExtract)
	if s.journal != nil {
		r.Get(contextPath+"/ingest/journal", s.handleJournalList)
		r.Get(contextPath+"/ingest/journal/{id}", s.handleJournalGet)
	}
	if s.store != nil {
		r.Get(contextPath+"/ingest/{id}/files/*", s.handleStoredFile)
	}
}

type ingestResponse struct {
	ID string `json:"id,omitempty"`
	*aasxingest.Result
}

func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.pool.Parse(r.Context(), data, filename)
	if err != nil {
		writeError(w, statusForParseError(err), err)
		return
	}

	response := ingestResponse{Result: result}
	if s.journal != nil {
		id, err := s.journal.Record(r.Context(), filename, int64(len(data)), result)
		if err != nil {
			logger.LogError("journal record", err)
		} else {
			response.ID = id
		}
	}
	if s.store != nil && response.ID != "" {
		s.storeSupplementaryFiles(r, response.ID, data, result)
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Service) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	entryPath := r.URL.Query().Get("path")
	if entryPath == "" {
		writeError(w, http.StatusBadRequest, common.NewErrBadRequest("missing path query parameter"))
		return
	}

	entry, contentType, err := s.pool.Extract(r.Context(), data, entryPath)
	if err != nil {
		status := http.StatusBadRequest
		if common.IsErrNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(entry); err != nil {
		log.Printf("🧩 [%s] Error writing extract response: %v", componentName, err)
	}
}

func (s *Service) handleJournalList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.List(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleJournalGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if common.IsErrNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Payload)
}

func (s *Service) handleStoredFile(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")
	entryPath := chi.URLParam(r, "*")
	if entryPath == "" {
		writeError(w, http.StatusBadRequest, common.NewErrBadRequest("missing file path"))
		return
	}

	data, contentType, err := s.store.Fetch(r.Context(), packageID, entryPath)
	if err != nil {
		status := http.StatusInternalServerError
		if common.IsErrNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Service) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, common.NewErrBadRequest("read request body: "+err.Error()))
		return nil, "", false
	}

	filename := r.URL.Query().Get("fileName")
	if filename == "" {
		filename = r.Header.Get("X-Filename")
	}
	return data, filename, true
}

func (s *Service) storeSupplementaryFiles(r *http.Request, packageID string, data []byte, result *aasxingest.Result) {
	for _, f := range result.SupplementaryFiles {
		entry, contentType, err := s.pool.Extract(r.Context(), data, f.Path)
		if err != nil {
			logger.LogError("extract supplementary "+f.Path, err)
			continue
		}
		if err := s.store.Store(r.Context(), packageID, f.Path, contentType, entry); err != nil {
			logger.LogError("store supplementary "+f.Path, err)
		}
	}
}

func statusForParseError(err error) int {
	switch {
	case common.IsErrEmptyFile(err):
		return http.StatusUnprocessableEntity
	case common.IsErrUnsupportedFormat(err):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := common.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	handler := common.NewErrorHandler("Exception", err, http.StatusText(status), "", time.Now().UTC().Format(time.RFC3339))
	payload, marshalErr := common.Marshal(handler)
	if marshalErr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
