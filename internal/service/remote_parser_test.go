package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finbook/internal/statement"
	"finbook/pkg/config"
)

func newTestParseClient(baseURL string) *ParseClient {
	return NewParseClient(&config.ParserConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		RequestTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func testFile() UploadFile {
	return UploadFile{Name: "statement.csv", Size: 4, LastModified: 1700000000, Content: []byte("data")}
}

func TestParseClientSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.FormValue("use_vision"))

		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"transactions": [
				{"date": "2024-01-05", "description": "Coffee, Ltd", "amount": "-4.50"},
				{"date": "2024-01-06", "description": "Salary", "amount": 2500}
			]
		}`))
	}))
	defer server.Close()

	client := newTestParseClient(server.URL)
	txs, err := client.Parse(context.Background(), testFile(), ParseOptions{UseVision: true})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Coffee, Ltd", txs[0].Description)
	assert.True(t, txs[0].Selected)
	assert.False(t, txs[1].Selected)
}

func TestParseClientStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind statement.ErrorKind
	}{
		{"unauthorized is fatal auth", http.StatusUnauthorized, statement.KindAuth},
		{"rate limit is fatal provider", http.StatusTooManyRequests, statement.KindProvider},
		{"bad gateway is retryable", http.StatusBadGateway, statement.KindNetwork},
		{"service unavailable is retryable", http.StatusServiceUnavailable, statement.KindNetwork},
		{"bad request is provider", http.StatusBadRequest, statement.KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestParseClient(server.URL)
			_, err := client.Parse(context.Background(), testFile(), ParseOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, statement.KindOf(err))
		})
	}
}

func TestParseClientProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "all providers exhausted"}`))
	}))
	defer server.Close()

	client := newTestParseClient(server.URL)
	_, err := client.Parse(context.Background(), testFile(), ParseOptions{})
	require.Error(t, err)
	assert.Equal(t, statement.KindProvider, statement.KindOf(err))
}

func TestParseClientEmptyTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "transactions": []}`))
	}))
	defer server.Close()

	client := newTestParseClient(server.URL)
	_, err := client.Parse(context.Background(), testFile(), ParseOptions{})
	require.Error(t, err)
	assert.Equal(t, statement.KindContent, statement.KindOf(err), "empty result is distinct from transport failure")
}

func TestParseClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestParseClient(server.URL)
	_, err := client.Parse(context.Background(), testFile(), ParseOptions{})
	require.Error(t, err)
	assert.Equal(t, statement.KindProvider, statement.KindOf(err))
}

func TestParseClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestParseClient(server.URL)
	_, err := client.Parse(context.Background(), testFile(), ParseOptions{})
	require.Error(t, err)
	assert.Equal(t, statement.KindNetwork, statement.KindOf(err))
}
