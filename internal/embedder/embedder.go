// Package embedder wraps the external embedding service behind a narrow
// Embedder interface (spec.md §4.3, §6). The pipeline never talks HTTP
// directly — it only calls Embedder.Embed.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"unicode/utf8"
)

// MaxEmbeddingBytes is the UTF-8 byte budget a text is truncated to before
// being sent for embedding.
const MaxEmbeddingBytes = 16000

// Embedder produces a fixed-length unit vector for a text. Embed reports a
// failed embedding as an error; EmbedAll turns that error into an empty
// slice, which the caller (internal/pipeline) treats as "exclude from
// clustering" rather than propagating an error, per spec.md §7.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /v1/embeddings endpoint,
// following the same bytes.Buffer + encoding/json + http.Client shape as
// the teacher's internal/llm/openai.go.
type OpenAIEmbedder struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewOpenAIEmbedder(baseURL, model, apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = Utf8Substr(text, MaxEmbeddingBytes)

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	return parsed.Data[0].Embedding, nil
}

// EmbedAll submits one request per text concurrently and returns vectors
// indexed by submission position regardless of completion order. A failed
// request yields an empty vector at its index rather than aborting the
// batch — this is the pipeline's first suspension barrier (spec.md §5).
func EmbedAll(ctx context.Context, e Embedder, texts []string) [][]float32 {
	results := make([][]float32, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			vec, err := e.Embed(ctx, text)
			if err != nil {
				results[i] = []float32{}
				return
			}
			results[i] = vec
		}(i, text)
	}
	wg.Wait()

	return results
}

// Utf8Substr returns the longest prefix of s that is at most n bytes and
// remains valid UTF-8 — it never splits a multi-byte rune.
func Utf8Substr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	b := s[:n]
	for len(b) > 0 && !utf8.ValidString(b) {
		b = b[:len(b)-1]
	}
	return b
}
