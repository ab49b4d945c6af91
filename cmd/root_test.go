package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, out, "blogcast version test-version")
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"run", "serve", "stages", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestStagesCommand(t *testing.T) {
	out, err := executeCommand("stages")
	require.NoError(t, err)

	assert.Contains(t, out, "1. extract (extract) <- request URL")
	assert.Contains(t, out, "2. structure (generate) <- extract")
	assert.Contains(t, out, "3. style (generate) <- structure")
	assert.Contains(t, out, "minimum final length: 50")
}

const customStages = `version: 1
min_final_length: 10
stages:
  - name: fetch
    kind: extract
    instructions: Fetch {{url}}
  - name: summarize
    kind: generate
    upstream: fetch
    instructions: Summarize the article
`

// resetFlags restores the persistent flag values a test changed
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath = "config.yml"
		stagesPath = ""
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStagesCommandUsesConfigFile(t *testing.T) {
	resetFlags(t)
	t.Setenv("BLOGCAST_STAGES", "")
	dir := t.TempDir()
	stages := writeFile(t, dir, "stages.yml", customStages)
	cfgPath := writeFile(t, dir, "config.yml", "stages_path: "+stages+"\n")

	out, err := executeCommand("stages", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "1. fetch (extract) <- request URL")
	assert.Contains(t, out, "2. summarize (generate) <- fetch")
	assert.Contains(t, out, "minimum final length: 10")
	assert.NotContains(t, out, "style")
}

func TestStagesCommandUsesEnvironment(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	t.Setenv("BLOGCAST_STAGES", writeFile(t, dir, "stages.yml", customStages))

	out, err := executeCommand("stages", "--config", filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "2. summarize (generate) <- fetch")
}

func TestStagesCommandFlagOverridesConfig(t *testing.T) {
	resetFlags(t)
	t.Setenv("BLOGCAST_STAGES", "")
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", "stages_path: "+filepath.Join(dir, "missing-stages.yml")+"\n")
	stages := writeFile(t, dir, "stages.yml", customStages)

	out, err := executeCommand("stages", "--config", cfgPath, "--stages", stages)
	require.NoError(t, err)
	assert.Contains(t, out, "1. fetch (extract) <- request URL")
}

func TestRunRequiresURL(t *testing.T) {
	_, err := executeCommand("run")
	assert.Error(t, err)
}

func TestSubcommandHelp(t *testing.T) {
	for _, sub := range []string{"run", "serve", "stages"} {
		out, err := executeCommand(sub, "--help")
		assert.NoError(t, err, sub)
		assert.NotEmpty(t, out, sub)
	}
}
