// Package docai is the client for the document-understanding service that
// extracts structured fields from stored claim documents.
package docai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

// Client extracts structured fields from a stored document, addressed by a
// presigned URL. Field values come back as a scalar, a mapping with a
// "value" key, or a sequence of such mappings.
type Client interface {
	ExtractFields(ctx context.Context, documentURL, model string) (map[string]any, error)
}

// Config holds document-understanding service settings.
type Config struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	Key          string `yaml:"key" mapstructure:"key"`
	LicenseModel string `yaml:"license_model" mapstructure:"license_model"`
	ClaimModel   string `yaml:"claim_model" mapstructure:"claim_model"`
}

// HTTPClient implements Client over the service's JSON API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an HTTPClient from config.
func NewClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.Key,
		client:  &http.Client{},
	}
}

type extractRequest struct {
	Model    string          `json:"model"`
	Document extractDocument `json:"document"`
}

type extractDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// ExtractFields submits a presigned document URL to the named extraction
// model and returns the raw field map.
func (c *HTTPClient) ExtractFields(ctx context.Context, documentURL, model string) (map[string]any, error) {
	reqBody := extractRequest{
		Model: model,
		Document: extractDocument{
			Type:        "document_url",
			DocumentURL: documentURL,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "docai: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "docai: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "docai: API call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "docai: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("docai: API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var fields map[string]any
	if err := json.Unmarshal(respBody, &fields); err != nil {
		return nil, eris.Wrap(err, "docai: unmarshal response")
	}

	return fields, nil
}
