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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for extraction service providers.
type Config struct {
	// Host is the base URL for the extraction service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier used for structured extraction.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// RequestTimeout bounds a single chunk extraction call, including the
	// internal retry. Default: 45 seconds.
	RequestTimeout time.Duration

	// RetryDelay is the fixed pause before the single retry of a failed
	// call. Default: 2 seconds.
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the extraction service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the extraction model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithRequestTimeout sets the per-call timeout budget.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithRetryDelay sets the fixed delay before the single retry.
func WithRetryDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		RequestTimeout: 45 * time.Second,
		RetryDelay:     2 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds the
// /v1 suffix to the host if missing, which most OpenAI-compatible APIs
// (Ollama, LocalAI, vLLM, etc) require.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ai config: RequestTimeout must be positive")
	}
	if c.RetryDelay < 0 {
		return errors.New("ai config: RetryDelay cannot be negative")
	}
	return nil
}
