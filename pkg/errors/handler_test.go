package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name    string
		err     error
		status  int
		errType ErrorType
		code    string
	}{
		{"not found", NewNotFoundError("node"), http.StatusNotFound, ErrorTypeNotFound, ""},
		{"timeout", NewTimeoutError("expand"), http.StatusGatewayTimeout, ErrorTypeTimeout, ""},
		{"expansion with code", NewExpansionError("down", nil).WithCode("EXPANSION_STATUS"), http.StatusBadGateway, ErrorTypeExpansion, "EXPANSION_STATUS"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ErrorTypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			assert.True(t, resp.Error)
			assert.Equal(t, string(tt.errType), resp.Type)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestErrorHandler_HidesInternalMessageUnlessDebug(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), false).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret"))
	assert.Equal(t, "An internal error occurred", decodeResponse(t, rec).Message)

	rec = httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), true).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret"))
	assert.Equal(t, "secret", decodeResponse(t, rec).Message)
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		status  int
		errType ErrorType
	}{
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusMethodNotAllowed, ErrorTypeValidation},
		{http.StatusInternalServerError, ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()

			h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil), tt.status, "nope")

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, string(tt.errType), resp.Type)
			assert.Equal(t, "nope", resp.Message)
		})
	}
}
