package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the OpenAI chat completions endpoint
const DefaultAPIURL = "https://api.openai.com/v1/chat/completions"

// ChatGPT grades quiz answers with an OpenAI-compatible chat completion API. It satisfies
// quiz.Classifier and emits the same labels as the local model: 0 for a low-quality answer,
// 1 for an acceptable one.
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new ChatGPT grader
func New(apiKey, apiURL, model string) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &ChatGPT{
		apiKey:      apiKey,
		apiURL:      apiURL,
		model:       model,
		maxTokens:   5,
		temperature: 0,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const gradingPrompt = "Você avalia respostas de um quiz de história. O texto recebido contém, nesta ordem, " +
	"a pergunta, a resposta esperada e a resposta do jogador. Responda apenas com 1 se a resposta do " +
	"jogador for aceitável ou com 0 se for de baixa qualidade."

// Predict returns the quality label for one classifier input
func (c *ChatGPT) Predict(ctx context.Context, text string) (int, error) {
	request := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: gradingPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if response.Error != nil {
		return 0, fmt.Errorf("API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return 0, fmt.Errorf("no response choices returned")
	}

	return parseLabel(response.Choices[0].Message.Content)
}

// Classes returns the labels Predict can emit
func (c *ChatGPT) Classes() []int {
	return []int{0, 1}
}

// parseLabel takes the first 0 or 1 in the reply
func parseLabel(reply string) (int, error) {
	reply = strings.TrimSpace(reply)
	for _, r := range reply {
		switch r {
		case '0':
			return 0, nil
		case '1':
			return 1, nil
		}
	}
	return 0, fmt.Errorf("unexpected grading reply %q", reply)
}
