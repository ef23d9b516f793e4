// Package summarizer wraps the external commit-message service behind a
// narrow Summarizer interface (spec.md §4.3, §6).
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agusespa/gcommit/internal/diffmodel"
)

// EmptyCommitMessage is returned when the diff context is blank (empty or
// whitespace only); no request is sent in that case.
const EmptyCommitMessage = "empty commit"

// FallbackMessage is returned when the summarization request itself fails.
const FallbackMessage = "update code"

// Summarizer turns the diff context for one group of chunks into a single
// commit-message line. It never returns an error: a failed request falls
// back to FallbackMessage, per spec.md §7.
type Summarizer interface {
	Summarize(ctx context.Context, diffContext string) string
}

// OpenAISummarizer calls an OpenAI-compatible chat-completions endpoint,
// following the same request/response shape as the teacher's
// internal/llm/openai.go.
type OpenAISummarizer struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewOpenAISummarizer(baseURL, model, apiKey string) *OpenAISummarizer {
	return &OpenAISummarizer{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

const systemPrompt = "You write a single concise commit message subject line " +
	"for the given diff. Respond with the subject line only, no quotes, no body."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, diffContext string) string {
	if strings.TrimSpace(diffContext) == "" {
		return EmptyCommitMessage
	}

	msg, err := s.summarize(ctx, diffContext)
	if err != nil {
		return FallbackMessage
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return FallbackMessage
	}
	return msg
}

func (s *OpenAISummarizer) summarize(ctx context.Context, diffContext string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: diffContext},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summarization request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create summarization request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("summarization request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read summarization response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal summarization response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no summarization choices returned")
	}

	return parsed.Choices[0].Message.Content, nil
}

// BuildDiffContext renders a cluster's chunks into the "Insertion:"/
// "Deletion:"-prefixed form the summarizer expects as input (spec.md §5):
// every line is emitted with its mode as a prefix, EQ and NO_NEWLINE lines
// passed through with no prefix.
func BuildDiffContext(chunks []diffmodel.DiffChunk) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "File: %s\n", c.Filepath)
		for _, l := range c.Lines {
			switch l.Mode {
			case diffmodel.Insertion:
				fmt.Fprintf(&b, "Insertion: %s\n", l.Content)
			case diffmodel.Deletion:
				fmt.Fprintf(&b, "Deletion: %s\n", l.Content)
			default:
				b.WriteString(l.Content + "\n")
			}
		}
	}
	return b.String()
}
