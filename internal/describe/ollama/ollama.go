package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vbonduro/pingallery/internal/describe"
	"github.com/vbonduro/pingallery/internal/domain"
)

type OllamaDescriber struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaDescriber(host, model string) *OllamaDescriber {
	return &OllamaDescriber{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (d *OllamaDescriber) Describe(ctx context.Context, c domain.Collection) (string, error) {
	prompt, err := describe.Prompt(c)
	if err != nil {
		return "", err
	}

	reqBody := map[string]interface{}{
		"model":  d.model,
		"prompt": prompt,
		"stream": false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Response string `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := describe.ParseResponse(respBody.Response)
	if text == "" {
		return "", fmt.Errorf("ollama returned no description")
	}
	return text, nil
}
