// Copyright 2025 Poiesic Systems
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

// Config carries the connection settings for the embedding and
// completion services.
type Config struct {
	// EmbeddingHost is the base URL of the embedding endpoint, such as
	// "http://localhost:11434/v1".
	EmbeddingHost string

	// CompletionHost is the base URL of the completion endpoint. It can
	// differ from EmbeddingHost when the two services run on separate
	// machines.
	CompletionHost string

	// EmbeddingModel names the model that turns text into vectors, for
	// example "embeddinggemma".
	EmbeddingModel string

	// CompletionModel names the model behind intent recognition and
	// answer synthesis, for example "qwen2.5:3b".
	CompletionModel string

	// Temperature is the sampling temperature for completions. Intent
	// recognition needs deterministic output, so the default is 0.
	Temperature float64

	// CompletionTimeout bounds a single completion call.
	// Default: 30s
	CompletionTimeout time.Duration

	// EmbeddingTimeout bounds a single embedding call.
	// Default: 15s
	EmbeddingTimeout time.Duration
}

// ConfigOption adjusts a Config at construction time.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the base URL for embedding calls.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the base URL for completion calls.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost points both services at the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingModel sets the model used for embeddings.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the model used for completions.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithTemperature sets the completion sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithCompletionTimeout sets the per-call completion timeout.
func WithCompletionTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.CompletionTimeout = timeout
	}
}

// WithEmbeddingTimeout sets the per-call embedding timeout.
func WithEmbeddingTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.EmbeddingTimeout = timeout
	}
}

// DefaultConfig targets a local Ollama instance in OpenAI compatibility
// mode, with both services on the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:     defaultHost,
		CompletionHost:    defaultHost,
		EmbeddingModel:    "embeddinggemma",
		CompletionModel:   "qwen2.5:3b",
		Temperature:       0,
		CompletionTimeout: 30 * time.Second,
		EmbeddingTimeout:  15 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options on top.
//
//	cfg := NewConfig(
//		WithHost("http://localhost:11434"), // /v1 added automatically
//		WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form: hosts get the /v1
// suffix OpenAI-compatible APIs expect, and non-positive timeouts fall
// back to the defaults.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.CompletionHost = normalizeHost(c.CompletionHost)

	if c.CompletionTimeout <= 0 {
		c.CompletionTimeout = 30 * time.Second
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = 15 * time.Second
	}
}

// normalizeHost appends /v1 to a non-empty host, tolerating a trailing slash.
func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate normalizes the configuration and then checks that every
// required field is set and Temperature stays within range.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost must be set")
	}
	if c.CompletionHost == "" {
		return errors.New("ai config: CompletionHost must be set")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel must be set")
	}
	if c.CompletionModel == "" {
		return errors.New("ai config: CompletionModel must be set")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	return nil
}
