package docai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_ExtractFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "license-data-v1", req.Model)
		assert.Equal(t, "document_url", req.Document.Type)
		assert.Equal(t, "https://blob.example/doc?sig=x", req.Document.DocumentURL)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": {"value": "Jordan Ellis"}, "license_no": "D1234-56789"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Key: "test-key"})

	fields, err := c.ExtractFields(context.Background(), "https://blob.example/doc?sig=x", "license-data-v1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": "Jordan Ellis"}, fields["name"])
	assert.Equal(t, "D1234-56789", fields["license_no"])
}

func TestHTTPClient_ExtractFields_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "document could not be processed"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Key: "test-key"})

	_, err := c.ExtractFields(context.Background(), "https://blob.example/doc", "claims-data-v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestHTTPClient_ExtractFields_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Key: "test-key"})

	_, err := c.ExtractFields(context.Background(), "https://blob.example/doc", "claims-data-v1")
	assert.Error(t, err)
}
