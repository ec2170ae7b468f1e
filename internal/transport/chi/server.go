// Package chi exposes the question-answering service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
	healthuc "github.com/askdoc/askdoc/internal/usecase/health"
)

// defaultMaxBodyBytes bounds uploads; a single document fits comfortably.
const defaultMaxBodyBytes = 10 << 20

// QAService answers a question about a document.
type QAService interface {
	AskQuestion(ctx context.Context, document, question string) (domain.Answer, error)
}

// Extractor turns an uploaded file into plain document text.
type Extractor interface {
	Extract(r io.Reader) (string, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the QA use cases.
type Server struct {
	qa            QAService
	extractor     Extractor
	health        HealthService
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(qa QAService, extractor Extractor, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		qa:           qa,
		extractor:    extractor,
		health:       health,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusUnprocessableEntity, codeEmptyDocument),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed),
	}
	return s
}

// WithMaxBodyBytes overrides the upload size limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	s.maxBodyBytes = n
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.Ask)
	r.Post("/ask/pdf", s.AskPDF)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type askRequest struct {
	Document string `json:"document"`
	Question string `json:"question"`
}

type chunkResponse struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

type askResponse struct {
	Answer       string          `json:"answer"`
	SourceChunks []chunkResponse `json:"source_chunks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeEmptyDocument        = "empty_document"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeGenerationFailed     = "generation_failed"
	codeInternalError        = "internal_error"
)

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := s.qa.AskQuestion(r.Context(), req.Document, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToResponse(ans))
}

// AskPDF handles POST /ask/pdf: a multipart upload with a "file" part
// holding the PDF and a "question" field.
func (s *Server) AskPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	if err := r.ParseMultipartForm(s.maxBodyBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "A PDF file part named \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	text, err := s.extractor.Extract(file)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ans, err := s.qa.AskQuestion(r.Context(), text, r.FormValue("question"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToResponse(ans))
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func answerToResponse(ans domain.Answer) askResponse {
	chunks := make([]chunkResponse, len(ans.SourceChunks))
	for i, ch := range ans.SourceChunks {
		chunks[i] = chunkResponse{ID: ch.ID, Text: ch.Text, Offset: ch.Offset}
	}
	return askResponse{Answer: ans.Text, SourceChunks: chunks}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrEmptyDocument,
		domain.ErrEmbeddingUnavailable,
		domain.ErrGenerationFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
