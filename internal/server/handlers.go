package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/session"
	"go.uber.org/zap"
)

// multipart bookkeeping on top of the raw file bytes
const formOverhead = 1 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.session.MaxUploadBytes()
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds the %d MB limit", limit>>20))
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files in field \"files\"")
		return
	}
	files := make([]models.UploadedFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to open %s", h.Filename))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", h.Filename))
			return
		}
		files = append(files, models.UploadedFile{Name: h.Filename, Data: data})
	}

	s.logger.Debug("upload request", zap.Int("files", len(files)))
	res, err := s.session.Upload(r.Context(), files)
	if err != nil {
		var tooLarge *session.UploadTooLargeError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.logger.Error("upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("chat request", zap.String("question", req.Question))
	resp, err := s.session.Chat(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, session.ErrEngineNotInitialized) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Reset(r.Context())
	if err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Status(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
