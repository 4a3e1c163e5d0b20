// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const translationPrompt = "You translate museum exhibit text from English. " +
	"Reply with the translation only, in the language with ISO 639-1 code %q. " +
	"Keep names, numbers and line breaks."

// OpenAITranslator translates through a chat completion model.
type OpenAITranslator struct {
	client openai.Client
	model  string
}

// NewOpenAITranslator creates a translator. baseURL may be empty.
func NewOpenAITranslator(apiKey, model, baseURL string) *OpenAITranslator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAITranslator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Translate implements Translator.
func (o *OpenAITranslator) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(translationPrompt, target)),
			openai.UserMessage(text),
		},
		Model: openai.ChatModel(o.model),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
