package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmbeddingClient talks to an HTTP embedding service that accepts
// {"inputs": [...]} and returns an array of float vectors, the protocol of
// text-embeddings-inference style servers.
type EmbeddingClient struct {
	endpoint string
	client   *http.Client
}

// NewEmbeddingClient builds a client for the given endpoint.
func NewEmbeddingClient(endpoint string) *EmbeddingClient {
	return &EmbeddingClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type embeddingRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed returns one vector per input text.
func (ec *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Inputs: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ec.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ec.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedSingle embeds one text.
func (ec *EmbeddingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := ec.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
