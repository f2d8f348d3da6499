// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/vitaeworks/vitae/ai"
)

// Extractor implements ai.Extractor using OpenAI-compatible chat APIs.
type Extractor struct {
	client     llms.Model
	timeout    time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

// Wire types matching the JSON structure expected from the model.
type wireProfile struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Institution *string `json:"institution"`
	Website     *string `json:"website"`
}

type wireEntry struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	URL         *string `json:"url"`
}

type wireCategory struct {
	Name    string      `json:"name"`
	Entries []wireEntry `json:"entries"`
}

type wireExtraction struct {
	Profile    wireProfile    `json:"profile"`
	Categories []wireCategory `json:"categories"`
}

// newExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		client:     client,
		timeout:    config.RequestTimeout,
		retryDelay: config.RetryDelay,
		logger:     slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewExtractor creates a new structured extractor using the provided configuration.
//
// Returns ai.Extractor interface to enforce abstraction.
func NewExtractor(config *ai.Config) (ai.Extractor, error) {
	return newExtractor(config)
}

// Extract sends one chunk of document text to the model and parses the
// structured response. The call is bounded by the configured timeout and
// retried once after a fixed delay on transport or parse failures; the
// retry budget is part of the same timeout.
func (e *Extractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			e.logger.Warn("retrying extraction", "attempt", attempt+1, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.retryDelay):
			}
		}

		result, err := e.generateOnce(ctx, content)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}

	e.logger.Error("extraction failed after retry", "err", lastErr)
	return nil, lastErr
}

// generateOnce performs a single model call and parses the response.
func (e *Extractor) generateOnce(ctx context.Context, content []llms.MessageContent) (*ai.Extraction, error) {
	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(response.Choices) < 1 {
		e.logger.Debug("no choices returned from model")
		return ai.EmptyExtraction(), nil
	}

	// Strip markdown code fences if present
	responseText := strings.TrimSpace(response.Choices[0].Content)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var wire wireExtraction
	if err := json.Unmarshal([]byte(responseText), &wire); err != nil {
		// Second chance with common JSON issues repaired.
		repaired := repairJSON(responseText)
		if err := json.Unmarshal([]byte(repaired), &wire); err != nil {
			e.logger.Warn("error parsing extraction response", "response", responseText, "err", err)
			return nil, fmt.Errorf("parse extraction response: %w", err)
		}
	}

	return fromWire(&wire), nil
}

// fromWire converts the model's wire format into the domain result,
// dropping entries without a usable title.
func fromWire(wire *wireExtraction) *ai.Extraction {
	result := &ai.Extraction{
		Profile: ai.Profile{
			Name:        deref(wire.Profile.Name),
			Email:       deref(wire.Profile.Email),
			Phone:       deref(wire.Profile.Phone),
			Address:     deref(wire.Profile.Address),
			Institution: deref(wire.Profile.Institution),
			Website:     deref(wire.Profile.Website),
		},
	}

	for _, wc := range wire.Categories {
		name := strings.TrimSpace(wc.Name)
		if name == "" {
			continue
		}
		category := ai.ExtractedCategory{Name: name}
		for _, we := range wc.Entries {
			title := strings.TrimSpace(we.Title)
			if title == "" {
				continue
			}
			category.Entries = append(category.Entries, ai.ExtractedEntry{
				Title:       title,
				Description: deref(we.Description),
				Date:        deref(we.Date),
				Location:    deref(we.Location),
				URL:         deref(we.URL),
			})
		}
		if len(category.Entries) > 0 {
			result.Categories = append(result.Categories, category)
		}
	}

	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
