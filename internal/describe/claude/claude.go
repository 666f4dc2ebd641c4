package claude

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/pingallery/internal/describe"
	"github.com/vbonduro/pingallery/internal/domain"
)

// maxTokens leaves room for one sentence plus any preamble the model adds.
const maxTokens = 256

type ClaudeDescriber struct {
	client *anthropic.Client
	model  string
}

func NewClaudeDescriber(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeDescriber {
	return &ClaudeDescriber{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (d *ClaudeDescriber) Describe(ctx context.Context, c domain.Collection) (string, error) {
	prompt, err := describe.Prompt(c)
	if err != nil {
		return "", err
	}

	resp, err := d.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(d.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			if text := describe.ParseResponse(blk.GetText()); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("claude returned no description")
}
