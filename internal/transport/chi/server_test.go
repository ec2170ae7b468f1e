package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
	healthuc "github.com/askdoc/askdoc/internal/usecase/health"
)

// --- Mocks ---

type mockQA struct {
	answer       domain.Answer
	err          error
	lastDocument string
	lastQuestion string
}

func (m *mockQA) AskQuestion(_ context.Context, document, question string) (domain.Answer, error) {
	m.lastDocument = document
	m.lastQuestion = question
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	return m.answer, nil
}

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(_ io.Reader) (string, error) {
	return m.text, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(qa QAService, extractor Extractor, health HealthService) http.Handler {
	s := NewServer(qa, extractor, health, zap.NewNop())
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestAsk_Success(t *testing.T) {
	qa := &mockQA{answer: domain.Answer{
		Text: "the answer",
		SourceChunks: []domain.Chunk{
			{ID: 2, Text: "relevant text", Offset: 800},
		},
	}}
	h := newTestRouter(qa, &mockExtractor{}, &mockHealth{})

	rec := doJSON(t, h, http.MethodPost, "/ask", `{"document":"some document","question":"a question"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Answer != "the answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.SourceChunks) != 1 || resp.SourceChunks[0].ID != 2 || resp.SourceChunks[0].Offset != 800 {
		t.Errorf("source chunks = %+v", resp.SourceChunks)
	}
	if qa.lastDocument != "some document" || qa.lastQuestion != "a question" {
		t.Errorf("service got document=%q question=%q", qa.lastDocument, qa.lastQuestion)
	}
}

func TestAsk_InvalidJSON(t *testing.T) {
	h := newTestRouter(&mockQA{}, &mockExtractor{}, &mockHealth{})

	rec := doJSON(t, h, http.MethodPost, "/ask", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if resp.Code != codeBadRequest {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestAsk_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
		{"empty document", domain.ErrEmptyDocument, http.StatusUnprocessableEntity, codeEmptyDocument},
		{"embedding down", domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable},
		{"generation failed", domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Wrapped the way use cases return them.
			qa := &mockQA{err: errors.Join(errors.New("ask"), tc.err)}
			h := newTestRouter(qa, &mockExtractor{}, &mockHealth{})

			rec := doJSON(t, h, http.MethodPost, "/ask", `{"document":"d","question":"q"}`)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, expected %d", rec.Code, tc.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal error response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %q, expected %q", resp.Code, tc.wantCode)
			}
			if tc.wantStatus == http.StatusInternalServerError && strings.Contains(resp.Message, "boom") {
				t.Errorf("internal detail leaked to the client: %q", resp.Message)
			}
		})
	}
}

func pdfUpload(t *testing.T, fileContent, question string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "doc.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(fileContent)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("question", question); err != nil {
		t.Fatalf("write question field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAskPDF_Success(t *testing.T) {
	qa := &mockQA{answer: domain.Answer{Text: "pdf answer"}}
	extractor := &mockExtractor{text: "extracted document text"}
	h := newTestRouter(qa, extractor, &mockHealth{})

	body, contentType := pdfUpload(t, "%PDF-fake", "what is inside?")
	req := httptest.NewRequest(http.MethodPost, "/ask/pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if qa.lastDocument != "extracted document text" {
		t.Errorf("service got document %q, expected the extracted text", qa.lastDocument)
	}
	if qa.lastQuestion != "what is inside?" {
		t.Errorf("service got question %q", qa.lastQuestion)
	}
}

func TestAskPDF_MissingFilePart(t *testing.T) {
	h := newTestRouter(&mockQA{}, &mockExtractor{}, &mockHealth{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("question", "no file here"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ask/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAskPDF_ExtractionFailure(t *testing.T) {
	extractor := &mockExtractor{err: domain.ErrValidation}
	h := newTestRouter(&mockQA{}, extractor, &mockHealth{})

	body, contentType := pdfUpload(t, "not a pdf", "q")
	req := httptest.NewRequest(http.MethodPost, "/ask/pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthCheck_StatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		status     healthuc.Status
		wantStatus int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded cache still serves", healthuc.Degraded, http.StatusOK},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			health := &mockHealth{report: healthuc.Report{
				Status: tc.status,
				Checks: map[string]healthuc.CheckResult{"embedding": healthuc.CheckOK},
			}}
			h := newTestRouter(&mockQA{}, &mockExtractor{}, health)

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, expected %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
