package findit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/ai/mock"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/search"
)

func newTestAssistant(t *testing.T) (*Assistant, *mock.MockProvider) {
	t.Helper()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	assistant, err := NewAssistant("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { assistant.Close() })

	return assistant, provider
}

// seedFindings stores three findings and embeds them, so semantic and
// hybrid retrieval have vectors to rank against.
func seedFindings(t *testing.T, assistant *Assistant) []*core.AuditRecord {
	t.Helper()

	records := []*core.AuditRecord{
		{
			Code:        "AUD-2024-001",
			Project:     "Grand Plaza Mall",
			Year:        2024,
			Department:  "Engineering",
			RiskArea:    "Permit Compliance",
			Description: "IMB renewal for the mall extension was not filed before expiry.",
			Nilai:       18,
		},
		{
			Code:        "AUD-2024-002",
			Project:     "Harbor View Apartments",
			Year:        2024,
			Department:  "Engineering",
			RiskArea:    "Contract Management",
			Description: "PPJB agreements signed without the standard penalty clause.",
			Nilai:       12,
		},
		{
			Code:        "AUD-2023-007",
			Project:     "Riverside Office Park",
			Year:        2023,
			Department:  "Procurement",
			RiskArea:    "Vendor Selection",
			Description: "Vendor shortlisting skipped the mandated three-quote comparison.",
			Nilai:       8,
		},
	}

	added, err := assistant.AuditRepository().AddAuditRecords(context.Background(), records...)
	require.NoError(t, err)
	require.NoError(t, assistant.PrewarmEmbeddings(context.Background(), nil))
	return added
}

func TestNewAssistant(t *testing.T) {
	t.Run("create new assistant", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		assistant, err := NewAssistant(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, assistant)
		defer assistant.Close()

		assert.NotNil(t, assistant.AuditRepository())
		assert.NotNil(t, assistant.CheckpointRepository())
		assert.NotNil(t, assistant.Extractor())
		assert.NotNil(t, assistant.backend)
		assert.NotNil(t, assistant.logger)
	})

	t.Run("in memory ignores the path", func(t *testing.T) {
		assistant, err := NewAssistant("", WithInMemory(), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, assistant)
		defer assistant.Close()
	})

	t.Run("rejects a path that is a file", func(t *testing.T) {
		// A file where the database directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		assistant, err := NewAssistant(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, assistant)
	})

	t.Run("custom options", func(t *testing.T) {
		assistant, err := NewAssistant("",
			WithInMemory(),
			WithProvider(mock.NewMockProvider()),
			WithPageSize(2),
			WithSessionTTL(time.Minute),
			WithBuildOptions(search.BuildOptions{MaxResults: 1}),
		)
		require.NoError(t, err)
		defer assistant.Close()

		assert.Equal(t, 2, assistant.formatter.PageSize())
		assert.Equal(t, 1, assistant.buildOpts.MaxResults)
	})
}

func TestAssistant_Answer(t *testing.T) {
	t.Run("simple listing for search intent", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"search_findings","confidence":0.9,"requires_analysis":false,"filters":{"year":"2024"}}`, nil
		}

		response, err := assistant.Answer(context.Background(), "s1", "findings from 2024", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseSimple, response.Type)
		assert.Contains(t, response.Answer, "AUD-2024-001")
		assert.Contains(t, response.Answer, "AUD-2024-002")
		assert.NotContains(t, response.Answer, "AUD-2023-007")
		assert.Len(t, response.FindingSummaries, 2)
		assert.Equal(t, core.IntentSearchFindings, response.Metadata.Intent)
		assert.Equal(t, core.StrategyKeyword, response.Metadata.Strategy)
		assert.Empty(t, provider.GetMockChats(), "listing queries open no conversation")
	})

	t.Run("analytical answer cites its sources", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"analyze_findings","confidence":0.85,"requires_analysis":true,"filters":{}}`, nil
		}

		response, err := assistant.Answer(context.Background(), "s1", "why do permit findings keep recurring", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseComplex, response.Type)
		assert.Contains(t, response.Answer, "mock reply")
		assert.Contains(t, response.Answer, "Source findings referenced:")
		assert.Equal(t, core.StrategySemantic, response.Metadata.Strategy)

		chats := provider.GetMockChats()
		require.Len(t, chats, 1)
		assert.Contains(t, chats[0].Messages[0], "Audit findings retrieved for this question:")
		assert.Contains(t, chats[0].Messages[0], "why do permit findings keep recurring")
	})

	t.Run("hybrid shape for analytical query with filters", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"analyze_findings","confidence":0.8,"requires_analysis":true,"filters":{"year":"2024"}}`, nil
		}

		response, err := assistant.Answer(context.Background(), "s1", "analyze the 2024 permit findings", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseHybrid, response.Type)
		assert.Contains(t, response.Answer, "Database results")
		assert.Contains(t, response.Answer, "AI analysis")
		assert.Contains(t, response.Answer, "mock reply")
		assert.Equal(t, core.StrategyHybrid, response.Metadata.Strategy)
	})

	t.Run("degrades to listing when synthesis fails", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"analyze_findings","confidence":0.85,"requires_analysis":true,"filters":{}}`, nil
		}
		provider.OpenChatFunc = func(systemPrompt string) ai.Chat {
			chat := mock.NewMockChat()
			chat.SendFunc = func(ctx context.Context, message string) (string, error) {
				return "", assert.AnError
			}
			return chat
		}

		response, err := assistant.Answer(context.Background(), "s1", "why do permit findings keep recurring", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseSimple, response.Type)
		assert.NotEmpty(t, response.FindingSummaries)
	})

	t.Run("no matches returns the placeholder", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"search_findings","confidence":0.9,"requires_analysis":false,"filters":{"department":"Finance"}}`, nil
		}

		response, err := assistant.Answer(context.Background(), "s1", "findings from the finance department", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseSimple, response.Type)
		assert.Equal(t, "No audit findings matched your query.", response.Answer)
		assert.Empty(t, response.FindingSummaries)
		assert.Zero(t, response.Metadata.TotalCandidates)
		assert.Zero(t, response.Metadata.SelectedCount)
		assert.Empty(t, provider.GetMockChats())
	})

	t.Run("recognition falls back when model output is malformed", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		// The default mock completion is not JSON, so the recognizer
		// exhausts its parse attempts and takes the pattern path.
		response, err := assistant.Answer(context.Background(), "s1", "critical findings 2024", 1)
		require.NoError(t, err)

		assert.Equal(t, core.ResponseSimple, response.Type)
		assert.Equal(t, core.IntentSearchFindings, response.Metadata.Intent)
		assert.InDelta(t, 0.6, response.Metadata.Confidence, 0.001)
		assert.Equal(t, core.StrategyKeyword, response.Metadata.Strategy)
		assert.Len(t, response.FindingSummaries, 2)
		assert.Positive(t, provider.GetMockCompleter().CallCount())
	})

	t.Run("sessions keep one conversation per key", func(t *testing.T) {
		assistant, provider := newTestAssistant(t)
		seedFindings(t, assistant)

		provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
			return `{"intent":"analyze_findings","confidence":0.85,"requires_analysis":true,"filters":{}}`, nil
		}

		ctx := context.Background()
		_, err := assistant.Answer(ctx, "alpha", "why do permit findings keep recurring", 1)
		require.NoError(t, err)
		_, err = assistant.Answer(ctx, "alpha", "summarize the worst ones", 1)
		require.NoError(t, err)
		_, err = assistant.Answer(ctx, "beta", "why do permit findings keep recurring", 1)
		require.NoError(t, err)

		chats := provider.GetMockChats()
		require.Len(t, chats, 2)
		assert.Equal(t, 2, chats[0].CallCount())
		assert.Equal(t, 1, chats[1].CallCount())
		assert.Contains(t, chats[0].SystemPrompt, "audit findings")
	})

	t.Run("empty database answers without error", func(t *testing.T) {
		assistant, _ := newTestAssistant(t)

		response, err := assistant.Answer(context.Background(), "s1", "findings from 2024", 1)
		require.NoError(t, err)
		assert.Equal(t, "No audit findings matched your query.", response.Answer)
	})
}

func TestAssistant_Ingest(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	ctx := context.Background()

	added, err := assistant.Ingest(ctx,
		&core.AuditRecord{
			Code:        "AUD-2024-010",
			Project:     "Grand Plaza Mall",
			Year:        2024,
			Department:  "Engineering",
			Description: "Fire safety certificate expired during fit-out works.",
			Nilai:       20,
		},
		&core.AuditRecord{
			Code:        "AUD-2024-011",
			Project:     "Harbor View Apartments",
			Year:        2024,
			Department:  "Legal",
			Description: "AJB conversions delayed past the contractual deadline.",
			Nilai:       10,
		},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)

	// Embedding happens on the background pool
	assert.Eventually(t, func() bool {
		stored, err := assistant.AuditRepository().GetAllAuditRecords(ctx)
		if err != nil || len(stored) != 2 {
			return false
		}
		for _, record := range stored {
			if len(record.Vector) == 0 {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAssistant_PrewarmEmbeddings(t *testing.T) {
	assistant, _ := newTestAssistant(t)
	ctx := context.Background()

	_, err := assistant.AuditRepository().AddAuditRecords(ctx,
		&core.AuditRecord{
			Code:        "AUD-2024-020",
			Project:     "Riverside Office Park",
			Year:        2024,
			Department:  "Engineering",
			Description: "Structural inspection reports missing for two floors.",
			Nilai:       15,
		},
		&core.AuditRecord{
			Code:        "AUD-2024-021",
			Project:     "Riverside Office Park",
			Year:        2024,
			Department:  "Finance",
			Description: "Retention payments released before defect clearance.",
			Nilai:       11,
		},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, assistant.PrewarmEmbeddings(ctx, &buf))
	assert.Contains(t, buf.String(), "Starting reembedding of 2 records")

	stored, err := assistant.AuditRepository().GetAllAuditRecords(ctx)
	require.NoError(t, err)
	for _, record := range stored {
		assert.NotEmpty(t, record.Vector)
	}

	// A second pass finds nothing left to embed
	var again bytes.Buffer
	require.NoError(t, assistant.PrewarmEmbeddings(ctx, &again))
	assert.Contains(t, again.String(), "All records already have embeddings")
}

func TestAssistant_FactoryMethods(t *testing.T) {
	assistant, _ := newTestAssistant(t)

	t.Run("builds an ingestion pipeline", func(t *testing.T) {
		pipeline, err := assistant.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder := assistant.NewReembedder(nil, nil)
		require.NotNil(t, reembedder)
	})
}

func TestAssistant_Close(t *testing.T) {
	tmpDir := t.TempDir()
	assistant, err := NewAssistant(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, assistant)

	err = assistant.Close()
	assert.NoError(t, err)
}
