package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkap007/pdf-query-bot/models"
	"github.com/avkap007/pdf-query-bot/repository"
	"github.com/avkap007/pdf-query-bot/service"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

type stubVectorStore struct {
	results []vectorstore.SearchResult
	err     error
}

func (s stubVectorStore) Upsert(ctx context.Context, chunks []models.Chunk) error { return nil }

func (s stubVectorStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	return s.results, s.err
}

type stubCompleter struct {
	answer string
	err    error
}

func (s stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return s.answer, s.err
}

func testMetadata() *repository.MetadataStore {
	return repository.NewMetadataStore([]models.DocumentRecord{
		{
			Filename:      "r0325542_decision.pdf",
			ReviewRef:     "R0325542",
			PenaltyAmount: "4,500.00",
			PenaltyUpheld: true,
		},
	})
}

func newTestRouter(store vectorstore.Store, completer stubCompleter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewQueryService(
		service.QueryWithMetadataStore(testMetadata()),
		service.QueryWithVectorStore(store),
		service.QueryWithCompleter(completer),
	)

	queryHandler := NewQueryHandler(svc)
	docHandler := NewDocumentHandler(testMetadata())

	router := gin.New()
	api := router.Group("/api")
	api.POST("/query", queryHandler.Query)
	api.POST("/documents/:ref/followup", queryHandler.Followup)
	api.GET("/documents", docHandler.List)
	api.GET("/documents/:ref", docHandler.Get)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestQueryMetadataAnswer(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{answer: "unused"})

	w, body := doJSON(t, router, http.MethodPost, "/api/query",
		`{"question": "What was the final penalty in R0325542?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "metadata", data["provenance"])
	assert.Contains(t, data["answer"], "4,500.00")
}

func TestQueryMissingQuestion(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{})

	w, body := doJSON(t, router, http.MethodPost, "/api/query", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", errBody["code"])
}

func TestQueryRetrievalFailureMapped(t *testing.T) {
	router := newTestRouter(stubVectorStore{err: errors.New("index offline")}, stubCompleter{})

	w, body := doJSON(t, router, http.MethodPost, "/api/query",
		`{"question": "Summarize recent decisions"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "RETRIEVAL_FAILED", errBody["code"])
	assert.Contains(t, errBody["message"], "retry")
}

func TestQueryGenerationFailureMapped(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{err: errors.New("model overloaded")})

	w, body := doJSON(t, router, http.MethodPost, "/api/query",
		`{"question": "Summarize recent decisions"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "GENERATION_FAILED", errBody["code"])
}

func TestFollowupAlwaysOK(t *testing.T) {
	// No corpus source is wired, so the follow-up cannot load the letter and
	// must still come back 200 with an apology answer.
	router := newTestRouter(stubVectorStore{}, stubCompleter{answer: "unused"})

	w, body := doJSON(t, router, http.MethodPost, "/api/documents/R0325542/followup",
		`{"question": "Was due diligence argued?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["answer"])
}

func TestListDocuments(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{})

	w, body := doJSON(t, router, http.MethodGet, "/api/documents", "")

	require.Equal(t, http.StatusOK, w.Code)
	docs := body["data"].([]any)
	require.Len(t, docs, 1)
	first := docs[0].(map[string]any)
	assert.Equal(t, "R0325542", first["review_ref"])
}

func TestGetDocumentByRef(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{})

	w, body := doJSON(t, router, http.MethodGet, "/api/documents/R0325542", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "r0325542_decision.pdf", data["filename"])
}

func TestGetDocumentNotFound(t *testing.T) {
	router := newTestRouter(stubVectorStore{}, stubCompleter{})

	w, body := doJSON(t, router, http.MethodGet, "/api/documents/R0999999", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}
