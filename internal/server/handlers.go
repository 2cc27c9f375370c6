package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/storage"
)

// multipartOverhead leaves room for part headers and boundaries around a
// document of the maximum size.
const multipartOverhead = 64 << 10

type parseRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type importResponse struct {
	Result   *ingest.Result          `json:"result"`
	Template *models.WorkoutTemplate `json:"template"`
}

// handleParse runs the engine over pasted text. Nothing is stored.
// The body is either raw text (title from ?title=) or JSON {"text","title"}.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	req := parseRequest{Text: string(body), Title: r.URL.Query().Get("title")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		req = parseRequest{}
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	tpl := s.programs.Engine().Parse(req.Text, req.Title)
	s.log.Info("program parsed",
		"title", req.Title,
		"method", tpl.Method,
		"confidence", tpl.Confidence,
		"warnings", len(tpl.Warnings),
	)
	writeJSON(w, http.StatusOK, tpl)
}

// handleImport stores a document. The body is the raw document (name from
// ?name=) or a multipart form with the document in field "file".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	var src io.Reader = r.Body

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody+multipartOverhead)
		file, hdr, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "document too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field \"file\" required"})
			return
		}
		defer file.Close()
		if name == "" {
			name = hdr.Filename
		}
		src = file
	}

	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	if _, err := docpipe.DetectFormat(name); err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		return
	}

	res, tpl, err := s.programs.IngestDocument(r.Context(), name, src, userIDFromContext(r))
	if err != nil {
		s.log.Error("import error", "document", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if res.Inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, importResponse{Result: res, Template: tpl})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50, 500)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	templates, err := s.db.ListTemplates(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}

	tpl, err := s.db.GetTemplate(r.Context(), userIDFromContext(r), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}

	err = s.db.DeleteTemplate(r.Context(), userIDFromContext(r), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 20, 200)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("stats query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"formats": docpipe.SupportedFormats()})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseLimit reads ?limit=, applying def when absent and clamping to ceiling.
func parseLimit(r *http.Request, def, ceiling int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > ceiling {
		n = ceiling
	}
	return n, nil
}
