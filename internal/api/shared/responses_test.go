package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondWithData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RespondWithData(rec, req, http.StatusOK, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"hello": "world"}, body["data"])
	assert.NotContains(t, body, "message")
	assert.NotContains(t, body, "pagination")
}

func TestRespondWithPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RespondWithPage(rec, req, http.StatusOK, []string{}, map[string]int{"page": 1})

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	// An empty page still serializes as an array, never null.
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Contains(t, body, "pagination")
}

func TestRespondWithMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()

	RespondWithMessage(rec, req, http.StatusOK, "Flashcard deleted", map[string]string{"id": "x"})

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Flashcard deleted", body["message"])
	assert.Contains(t, body, "data")
}

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusNotFound, "Flashcard not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Flashcard not found", body["message"])
	assert.NotEmpty(t, body["traceId"])
}

func TestRespondWithErrorAndLogDetailGating(t *testing.T) {
	internalErr := errors.New("pq: table cards does not exist")

	t.Run("production hides the underlying error", func(t *testing.T) {
		SetDevelopmentMode(false)
		defer SetDevelopmentMode(false)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Server error", internalErr)

		body := decodeBody(t, rec)
		assert.Equal(t, "Server error", body["message"])
	})

	t.Run("development appends the redacted detail to 5xx", func(t *testing.T) {
		SetDevelopmentMode(true)
		defer SetDevelopmentMode(false)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Server error", internalErr)

		body := decodeBody(t, rec)
		assert.Contains(t, body["message"], "Server error: ")
		assert.Contains(t, body["message"], "cards")
	})

	t.Run("4xx never carries error detail even in development", func(t *testing.T) {
		SetDevelopmentMode(true)
		defer SetDevelopmentMode(false)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		RespondWithErrorAndLog(rec, req, http.StatusBadRequest, "Bad input", internalErr)

		body := decodeBody(t, rec)
		assert.Equal(t, "Bad input", body["message"])
	})
}

func TestTraceIDGeneration(t *testing.T) {
	ctx := SetTraceID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	first := GetTraceID(ctx)
	assert.NotEmpty(t, first)

	second := GetTraceID(SetTraceID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
	assert.NotEqual(t, first, second)
}
