package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	want := &Config{
		EmbeddingHost:     "http://localhost:11434/v1",
		CompletionHost:    "http://localhost:11434/v1",
		EmbeddingModel:    "embeddinggemma",
		CompletionModel:   "qwen2.5:3b",
		Temperature:       0,
		CompletionTimeout: 30 * time.Second,
		EmbeddingTimeout:  15 * time.Second,
	}
	assert.Equal(t, want, DefaultConfig())
}

func TestNewConfig(t *testing.T) {
	cases := []struct {
		name  string
		opts  []ConfigOption
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "no options keeps the defaults",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "one host for both services",
			opts: []ConfigOption{WithHost("http://gpu-box:8001/v1")},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://gpu-box:8001/v1", cfg.EmbeddingHost)
				assert.Equal(t, "http://gpu-box:8001/v1", cfg.CompletionHost)
			},
		},
		{
			name: "split hosts",
			opts: []ConfigOption{
				WithEmbeddingHost("http://embed.internal:9000/v1"),
				WithCompletionHost("http://chat.internal:9001/v1"),
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://embed.internal:9000/v1", cfg.EmbeddingHost)
				assert.Equal(t, "http://chat.internal:9001/v1", cfg.CompletionHost)
			},
		},
		{
			name: "model overrides",
			opts: []ConfigOption{
				WithEmbeddingModel("nomic-embed-text"),
				WithCompletionModel("llama3.1:8b"),
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
				assert.Equal(t, "llama3.1:8b", cfg.CompletionModel)
			},
		},
		{
			name: "temperature and timeouts",
			opts: []ConfigOption{
				WithTemperature(0.4),
				WithCompletionTimeout(90 * time.Second),
				WithEmbeddingTimeout(20 * time.Second),
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.4, cfg.Temperature)
				assert.Equal(t, 90*time.Second, cfg.CompletionTimeout)
				assert.Equal(t, 20*time.Second, cfg.EmbeddingTimeout)
			},
		},
		{
			name: "later options win",
			opts: []ConfigOption{
				WithHost("http://gpu-box:8001/v1"),
				WithCompletionHost("http://chat.internal:9001/v1"),
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://gpu-box:8001/v1", cfg.EmbeddingHost)
				assert.Equal(t, "http://chat.internal:9001/v1", cfg.CompletionHost)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, NewConfig(tc.opts...))
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	cases := []struct {
		name string
		host string
		want string
	}{
		{"keeps an existing /v1", "http://ollama-host:11434/v1", "http://ollama-host:11434/v1"},
		{"appends /v1", "http://ollama-host:11434", "http://ollama-host:11434/v1"},
		{"strips a trailing slash first", "http://ollama-host:11434/", "http://ollama-host:11434/v1"},
		{"leaves empty hosts empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tc.host, CompletionHost: tc.host}
			cfg.Normalize()

			assert.Equal(t, tc.want, cfg.EmbeddingHost)
			assert.Equal(t, tc.want, cfg.CompletionHost)
		})
	}

	t.Run("hosts normalize independently", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost:  "http://embed.internal:9000",
			CompletionHost: "http://chat.internal:9001/v1",
		}
		cfg.Normalize()

		assert.Equal(t, "http://embed.internal:9000/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat.internal:9001/v1", cfg.CompletionHost)
	})

	t.Run("zero timeouts pick up the defaults", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()

		assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
		assert.Equal(t, 15*time.Second, cfg.EmbeddingTimeout)
	})
}

// validConfig is a minimal configuration that passes Validate.
func validConfig() *Config {
	return NewConfig(WithHost("http://ollama-host:11434"))
}

func TestConfigValidate(t *testing.T) {
	t.Run("passes and normalizes", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "http://ollama-host:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://ollama-host:11434/v1", cfg.CompletionHost)
	})

	t.Run("the defaults validate", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
		assert.NoError(t, NewConfig().Validate())
	})

	missing := []struct {
		name  string
		strip func(*Config)
		field string
	}{
		{"embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"completion host", func(c *Config) { c.CompletionHost = "" }, "CompletionHost"},
		{"embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"completion model", func(c *Config) { c.CompletionModel = "" }, "CompletionModel"},
	}

	for _, tc := range missing {
		t.Run("rejects a blank "+tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.strip(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	t.Run("temperature range is inclusive", func(t *testing.T) {
		for _, temp := range []float64{0, 1.3, 2} {
			cfg := validConfig()
			cfg.Temperature = temp
			assert.NoError(t, cfg.Validate(), "temperature %v is in range", temp)
		}

		for _, temp := range []float64{-0.1, 2.5} {
			cfg := validConfig()
			cfg.Temperature = temp

			err := cfg.Validate()
			require.Error(t, err, "temperature %v is out of range", temp)
			assert.Contains(t, err.Error(), "Temperature")
		}
	})
}
