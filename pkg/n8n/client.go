// Package n8n talks to the external workflow webhooks that host the AI
// patient persona and the session review generator. Both calls are
// best-effort: the review path substitutes a minimal fallback on any failure
// so finalization always succeeds from the user's perspective.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	chatWebhookURL   string
	reviewWebhookURL string
	httpClient       *http.Client
}

func NewClient(chatWebhookURL, reviewWebhookURL string) *Client {
	return &Client{
		chatWebhookURL:   chatWebhookURL,
		reviewWebhookURL: reviewWebhookURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ChatRequest is forwarded to the AI patient workflow.
type ChatRequest struct {
	ChatId      string `json:"chat_id"`
	ThreadId    string `json:"thread_id,omitempty"`
	Sessao      int    `json:"sessao"`
	Diagnostico string `json:"diagnostico"`
	Protocolo   string `json:"protocolo"`
	Message     string `json:"message"`
}

type ChatResponse struct {
	Output   string `json:"output"`
	ThreadId string `json:"thread_id,omitempty"`
}

// SendChat forwards a user message and returns the persona's reply.
func (c *Client) SendChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatWebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("chat webhook returned malformed payload: %w", err)
	}
	if out.Output == "" {
		return nil, fmt.Errorf("chat webhook returned empty output")
	}
	return &out, nil
}

// ReviewRequest asks the review workflow to summarize a finished session.
type ReviewRequest struct {
	ChatId      string `json:"chat_id"`
	Sessao      int    `json:"sessao"`
	Diagnostico string `json:"diagnostico"`
}

// ReviewPayload is the structured summary produced by the workflow.
type ReviewPayload struct {
	ResumoAtendimento string   `json:"resumoAtendimento"`
	FeedbackDireto    string   `json:"feedbackDireto"`
	SinaisPaciente    []string `json:"sinaisPaciente"`
	PontosPositivos   []string `json:"pontosPositivos"`
	PontosNegativos   []string `json:"pontosNegativos"`
}

type reviewEnvelope struct {
	Output ReviewPayload `json:"output"`
}

// GenerateReview calls the review workflow. An error here means the caller
// should fall back to a minimal review, never abort the finalization.
func (c *Client) GenerateReview(ctx context.Context, req *ReviewRequest) (*ReviewPayload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.reviewWebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("review webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review webhook returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope reviewEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("review webhook returned malformed payload: %w", err)
	}

	if envelope.Output.ResumoAtendimento == "" && envelope.Output.FeedbackDireto == "" {
		return nil, fmt.Errorf("review webhook returned insufficient data")
	}

	return &envelope.Output, nil
}
