package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// Form field names accepted for the uploaded image, in lookup order.
var uploadFields = []string{"image", "file"}

// AnalyzeResponse is the body returned by POST /api/analyze.
type AnalyzeResponse struct {
	Score     int            `json:"score"`
	Label     detector.Label `json:"label"`
	Reason    string         `json:"reason"`
	Source    string         `json:"source"`
	Fallback  bool           `json:"fallback"`
	Cached    bool           `json:"cached"`
	RequestID string         `json:"request_id"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ProvidersResponse is the body returned by GET /api/providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Heuristic bool     `json:"heuristic"`
	MaxBytes  int64    `json:"max_bytes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": detector.FullVersion(),
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.analyzer.Providers()
	if providers == nil {
		providers = []string{}
	}
	writeJSON(w, http.StatusOK, ProvidersResponse{
		Providers: providers,
		Heuristic: s.analyzer.HeuristicEnabled(),
		MaxBytes:  s.analyzer.MaxBytes(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := requestID(r)
	limit := s.analyzer.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	data, declared, err := readUpload(r, limit)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			s.writeError(w, http.StatusRequestEntityTooLarge, detector.CodeTooLarge, "image exceeds the upload limit", requestID)
		case errors.Is(err, errNoFile):
			s.writeError(w, http.StatusBadRequest, "no_file", err.Error(), requestID)
		default:
			s.writeError(w, http.StatusBadRequest, "bad_request", err.Error(), requestID)
		}
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), data, declared)
	if err != nil {
		s.writeAnalyzeError(w, r, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Score:     result.Score,
		Label:     result.Label,
		Reason:    result.Reason,
		Source:    result.Source,
		Fallback:  result.Fallback,
		Cached:    result.Cached,
		RequestID: requestID,
	})
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	var verr *detector.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		switch verr.Code {
		case detector.CodeTooLarge:
			status = http.StatusRequestEntityTooLarge
		case detector.CodeUnsupported:
			status = http.StatusUnsupportedMediaType
		}
		s.writeError(w, status, verr.Code, verr.Error(), requestID)
		return
	}

	switch {
	case errors.Is(r.Context().Err(), context.Canceled):
		s.logger.Info("client went away", zap.String("request_id", requestID), zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, "cancelled", "request cancelled", requestID)
		return
	case errors.Is(r.Context().Err(), context.DeadlineExceeded):
		s.logger.Error("analysis timed out", zap.String("request_id", requestID), zap.Error(err))
		s.writeError(w, http.StatusGatewayTimeout, "timeout", "analysis timed out", requestID)
		return
	}

	s.logger.Error("analysis failed", zap.String("request_id", requestID), zap.Error(err))
	s.writeError(w, http.StatusBadGateway, "providers_failed", "no provider could analyze the image", requestID)
}

var errNoFile = errors.New("no image provided; send multipart field \"image\" or a raw image body")

// readUpload extracts the image from a multipart form or a raw body.
func readUpload(r *http.Request, limit int64) ([]byte, string, error) {
	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		return readMultipart(multipart.NewReader(r.Body, params["boundary"]), limit)
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errNoFile
	}
	return data, mediaType, nil
}

func readMultipart(mr *multipart.Reader, limit int64) ([]byte, string, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", errNoFile
		}
		if err != nil {
			return nil, "", err
		}

		if !isUploadField(part.FormName()) {
			part.Close()
			continue
		}

		var buf bytes.Buffer
		_, err = io.Copy(&buf, io.LimitReader(part, limit+1))
		part.Close()
		if err != nil {
			return nil, "", err
		}
		if buf.Len() == 0 {
			return nil, "", errNoFile
		}
		return buf.Bytes(), part.Header.Get("Content-Type"), nil
	}
}

func isUploadField(name string) bool {
	for _, f := range uploadFields {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg, requestID string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
