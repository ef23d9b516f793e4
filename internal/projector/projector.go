// Package projector wraps the external 2-D visualization service behind a
// narrow Project2D interface (spec.md §4.3, §6). No dimensionality-reduction
// library appears anywhere in the example pack, so this stays an opaque
// HTTP client rather than a hand-rolled PCA/UMAP implementation.
package projector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Point2D is one embedding's 2-D visualization coordinate.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Project2D reduces a batch of vectors to 2-D points, one per input vector
// in the same order. A failed request yields zeroed points for the whole
// batch rather than an error, per spec.md §7.
type Project2D interface {
	Project(ctx context.Context, vectors [][]float32) []Point2D
}

// HTTPProjector calls a projection service over HTTP, following the same
// request/response shape as the teacher's internal/llm/openai.go.
type HTTPProjector struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProjector(baseURL string) *HTTPProjector {
	return &HTTPProjector{baseURL: baseURL, client: &http.Client{}}
}

type projectRequest struct {
	Vectors [][]float32 `json:"vectors"`
}

type projectResponse struct {
	Points []Point2D `json:"points"`
}

func (p *HTTPProjector) Project(ctx context.Context, vectors [][]float32) []Point2D {
	points, err := p.project(ctx, vectors)
	if err != nil {
		return make([]Point2D, len(vectors))
	}
	if len(points) != len(vectors) {
		return make([]Point2D, len(vectors))
	}
	return points
}

func (p *HTTPProjector) project(ctx context.Context, vectors [][]float32) ([]Point2D, error) {
	body, err := json.Marshal(projectRequest{Vectors: vectors})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal projection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/project2d", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create projection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("projection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("projection request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read projection response: %w", err)
	}

	var parsed projectResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projection response: %w", err)
	}

	return parsed.Points, nil
}
