package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func command(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not defined", name)
	return nil
}

func stringFlag(t *testing.T, cmd *cli.Command, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("string flag %q not defined on %q", name, cmd.Name)
	return nil
}

func intFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not defined on %q", name, cmd.Name)
	return nil
}

func TestIngestCommandFlags(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "ingest", "--file", "findings.json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("file is required", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "ingest", "--db", "/tmp/test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})

	t.Run("embedding-model is optional", func(t *testing.T) {
		flag := stringFlag(t, command(t, "ingest"), "embedding-model")
		assert.False(t, flag.Required)
		assert.Empty(t, flag.Value)
	})

	t.Run("embedding-host defaults to the local service", func(t *testing.T) {
		flag := stringFlag(t, command(t, "ingest"), "embedding-host")
		assert.Equal(t, "http://localhost:11434/v1", flag.Value)
	})
}

func TestReembedCommandFlags(t *testing.T) {
	t.Run("refuses to run without embedding-model", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "reembed", "--db", "/tmp/test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})

	t.Run("refuses to run without db", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "reembed", "--embedding-model", "test-model"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("embedding-host defaults to the local service", func(t *testing.T) {
		flag := stringFlag(t, command(t, "reembed"), "embedding-host")
		assert.Equal(t, "http://localhost:11434/v1", flag.Value)
		assert.Empty(t, flag.EnvVars)
	})

	t.Run("batch-size defaults to 100", func(t *testing.T) {
		flag := intFlag(t, command(t, "reembed"), "batch-size")
		assert.Equal(t, 100, flag.Value)
	})

	t.Run("report-interval defaults to 100", func(t *testing.T) {
		flag := intFlag(t, command(t, "reembed"), "report-interval")
		assert.Equal(t, 100, flag.Value)
	})

	t.Run("max-retries defaults to 3", func(t *testing.T) {
		flag := intFlag(t, command(t, "reembed"), "max-retries")
		assert.Equal(t, 3, flag.Value)
	})

	t.Run("only-missing defaults to false", func(t *testing.T) {
		cmd := command(t, "reembed")
		var boolFlag *cli.BoolFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.BoolFlag); ok && f.Name == "only-missing" {
				boolFlag = f
				break
			}
		}
		require.NotNil(t, boolFlag)
		assert.False(t, boolFlag.Value)
	})
}

func TestAskCommandFlags(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "ask", "why", "so", "many", "findings"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("query is required", func(t *testing.T) {
		// The query check runs before the database is touched
		err := newApp().Run([]string{"findit", "ask", "--db", "/tmp/test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("session falls back to the shared default", func(t *testing.T) {
		flag := stringFlag(t, command(t, "ask"), "session")
		assert.Equal(t, "default", flag.Value)
	})

	t.Run("page defaults to 1", func(t *testing.T) {
		flag := intFlag(t, command(t, "ask"), "page")
		assert.Equal(t, 1, flag.Value)
	})

	t.Run("model flags mirror the AI defaults", func(t *testing.T) {
		cmd := command(t, "ask")
		assert.Equal(t, "http://localhost:11434/v1", stringFlag(t, cmd, "completion-host").Value)
		assert.Equal(t, "qwen2.5:3b", stringFlag(t, cmd, "completion-model").Value)
		assert.Equal(t, "http://localhost:11434/v1", stringFlag(t, cmd, "embedding-host").Value)
		assert.Equal(t, "embeddinggemma", stringFlag(t, cmd, "embedding-model").Value)
	})

	t.Run("tiktoken is optional", func(t *testing.T) {
		flag := stringFlag(t, command(t, "ask"), "tiktoken")
		assert.False(t, flag.Required)
		assert.Empty(t, flag.Value)
	})
}

func TestSetupLogger(t *testing.T) {
	// probeApp wires setupLogger into a throwaway app so the hook can be
	// exercised without touching a database.
	probeApp := func(onRun cli.ActionFunc) *cli.App {
		if onRun == nil {
			onRun = func(*cli.Context) error { return nil }
		}
		return &cli.App{
			Name: "probe",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info"},
			},
			Before: setupLogger,
			Action: onRun,
		}
	}

	t.Run("accepts known levels in any casing", func(t *testing.T) {
		for _, level := range []string{"debug", "INFO", "Warn", "eRRor"} {
			t.Run(level, func(t *testing.T) {
				assert.NoError(t, probeApp(nil).Run([]string{"probe", "--log-level", level}))
			})
		}
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		err := probeApp(nil).Run([]string{"probe", "--log-level", "chatty"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("wired into the real app", func(t *testing.T) {
		err := newApp().Run([]string{"findit", "--log-level", "chatty", "ask", "--db", "/tmp/test", "anything"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("accepts the -l alias", func(t *testing.T) {
		seen := ""
		app := probeApp(func(c *cli.Context) error {
			seen = c.String("log-level")
			return nil
		})
		require.NoError(t, app.Run([]string{"probe", "-l", "debug"}))
		assert.Equal(t, "debug", seen)
	})
}
