package expansion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "ideaboard/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL)
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg, server.Client(), zap.NewNop()), server
}

func TestClient_Expand_Success(t *testing.T) {
	var got Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Path, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestion":"Cats as pets"}`))
	})

	suggestion, err := client.Expand(context.Background(), "Cats")

	require.NoError(t, err)
	assert.Equal(t, "Cats as pets", suggestion)
	assert.Equal(t, "Cats", got.Text)
}

func TestClient_Expand_NoSuggestion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"field absent", `{}`},
		{"field null", `{"suggestion":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			suggestion, err := client.Expand(context.Background(), "Cats")

			assert.ErrorIs(t, err, ErrNoSuggestion)
			assert.Empty(t, suggestion)
			assert.False(t, pkgerrors.IsExpansion(err))
		})
	}
}

func TestClient_Expand_EmptySuggestionIsData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestion":""}`))
	})

	suggestion, err := client.Expand(context.Background(), "Cats")

	require.NoError(t, err)
	assert.Equal(t, "", suggestion)
}

func TestClient_Expand_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    string
	}{
		{
			name: "server error",
			code: CodeStatus,
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "client error",
			code: CodeStatus,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
		},
		{
			name: "undecodable body",
			code: CodeDecode,
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>nope</html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)

			_, err := client.Expand(context.Background(), "Cats")

			require.Error(t, err)
			assert.True(t, pkgerrors.IsExpansion(err))
			assert.Equal(t, tt.code, pkgerrors.GetAppError(err).Code)
			assert.NotErrorIs(t, err, ErrNoSuggestion)
		})
	}
}

func TestClient_Expand_StatusDetails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	_, err := client.Expand(context.Background(), "Cats")

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Details["status"])
	assert.Contains(t, appErr.Details["body"], "upstream down")
}

func TestClient_Expand_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(DefaultClientConfig(url), nil, zap.NewNop())

	_, err := client.Expand(context.Background(), "Cats")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsExpansion(err))
	assert.Equal(t, CodeTransport, pkgerrors.GetAppError(err).Code)
}

func TestClient_Expand_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, server.Client(), zap.NewNop())

	start := time.Now()
	_, err := client.Expand(context.Background(), "Cats")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsExpansion(err))
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, CodeTimeout, pkgerrors.GetAppError(err).Code)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Expand_BreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL)
	cfg.MinRequests = 1
	cfg.FailureThreshold = 0.5
	cfg.OpenTimeout = time.Minute
	client := NewClient(cfg, server.Client(), zap.NewNop())

	_, err := client.Expand(context.Background(), "first")
	require.Error(t, err)

	_, err = client.Expand(context.Background(), "second")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsExpansion(err))
	assert.Contains(t, err.Error(), "temporarily unavailable")
	assert.Equal(t, CodeCircuitOpen, pkgerrors.GetAppError(err).Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_Expand_CanceledCallsDoNotOpenBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestion":"ok"}`))
	})

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 2*int(DefaultClientConfig("").MinRequests); i++ {
		_, err := client.Expand(canceled, "Cats")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, CodeCanceled, pkgerrors.GetAppError(err).Code)
	}

	suggestion, err := client.Expand(context.Background(), "Cats")

	require.NoError(t, err)
	assert.Equal(t, "ok", suggestion)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(DefaultClientConfig("http://example.test/"), nil, zap.NewNop())

	assert.Equal(t, "http://example.test/api/expand", client.Endpoint())
}
