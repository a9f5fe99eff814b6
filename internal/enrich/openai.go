package enrich

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const keywordSystemPrompt = `You suggest search keywords for finding relevant
source files in a code repository. Reply with a plain list of short keywords,
one per line. No explanations, no JSON, no markdown.`

// OpenAIOracle implements Oracle using the OpenAI Chat Completions API (or
// any OpenAI-compatible endpoint via baseURL).
type OpenAIOracle struct {
	client *openai.Client
	model  string
}

// NewOpenAIOracle creates an oracle for the given API key and model.
// baseURL may be empty for the default endpoint.
func NewOpenAIOracle(apiKey, model, baseURL string) *OpenAIOracle {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIOracle{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// SuggestKeywords asks the model for keywords relevant to the goal. The
// response is returned as raw lines; parsing and validation happen in
// ParseKeywordText, which tolerates any formatting the model produces.
func (o *OpenAIOracle) SuggestKeywords(ctx context.Context, goal, repoSummary string) ([]string, error) {
	prompt := fmt.Sprintf("Learning goal: %s\n\nRepository summary:\n%s\n\nSuggest up to 15 keywords.", goal, repoSummary)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: keywordSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}
	return strings.Split(resp.Choices[0].Message.Content, "\n"), nil
}
