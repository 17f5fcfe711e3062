package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	def, err := filepath.Abs(filepath.Join("..", "infra", "gridfile", "testdata", "grid.yaml"))
	require.NoError(t, err)
	data := "grid:\n  definition: " + def + "\n" +
		"logging:\n  backend: none\n" +
		"store:\n  path: " + filepath.Join(dir, "runs.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		runFormat, runOut, runPercent = "text", "", 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunAndHistory(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := execute(t, "run", "-c", cfg, "--format", "json")
	require.NoError(t, err)
	var rep struct {
		RunID   string `json:"run_id"`
		Summary struct {
			StopReason string `json:"stop_reason"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "all_satisfied", rep.Summary.StopReason)

	htmlPath := filepath.Join(t.TempDir(), "report.html")
	_, err = execute(t, "run", "-c", cfg, "--format", "html", "--out", htmlPath, "--percent", "50")
	require.NoError(t, err)
	b, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Kent")

	out, err = execute(t, "history", "-c", cfg, "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, rep.RunID)
}

func TestRun_Errors(t *testing.T) {
	_, err := execute(t, "run", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "run", "-c", writeTestConfig(t), "--format", "pdf")
	assert.Error(t, err)
}
