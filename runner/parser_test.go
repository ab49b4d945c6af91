package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDefinition(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	assert.Equal(t, 1, def.Version)
	assert.Equal(t, DefaultMinFinalLength, def.MinFinalLength)

	stages, err := def.Ordered()
	require.NoError(t, err)
	require.Len(t, stages, 3)

	assert.Equal(t, "extract", stages[0].Name)
	assert.Equal(t, KindExtract, stages[0].Kind)
	assert.Equal(t, "structure", stages[1].Name)
	assert.Equal(t, "extract", stages[1].Upstream)
	assert.Equal(t, "style", stages[2].Name)
	assert.Equal(t, "structure", stages[2].Upstream)
	assert.Contains(t, stages[0].Instructions, "{{url}}")
}

func TestLoadDefinition(t *testing.T) {
	def, err := LoadDefinition("")
	require.NoError(t, err)
	assert.Len(t, def.Stages, 3)

	path := filepath.Join(t.TempDir(), "stages.yml")
	content := `version: 1
stages:
  - name: summarize
    kind: generate
    upstream: fetch
    instructions: Summarize the article.
  - name: fetch
    kind: extract
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	def, err = LoadDefinition(path)
	require.NoError(t, err)
	stages, err := def.Ordered()
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "fetch", stages[0].Name)
	assert.Equal(t, "summarize", stages[1].Name)

	_, err = LoadDefinition(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "wrong version",
			yaml:    "version: 2\nstages:\n  - name: a\n    kind: extract\n",
			wantErr: "unsupported stages version",
		},
		{
			name:    "no stages",
			yaml:    "version: 1\n",
			wantErr: "no stages",
		},
		{
			name:    "unnamed stage",
			yaml:    "version: 1\nstages:\n  - kind: extract\n",
			wantErr: "has no name",
		},
		{
			name:    "unknown kind",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: translate\n",
			wantErr: "unknown kind",
		},
		{
			name:    "generate without upstream",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: generate\n",
			wantErr: "has no upstream",
		},
		{
			name:    "extract with upstream",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: b\n    kind: extract\n    upstream: a\n",
			wantErr: "cannot have an upstream",
		},
		{
			name:    "duplicate names",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: a\n    kind: extract\n",
			wantErr: "duplicate stage name",
		},
		{
			name:    "unknown upstream",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: b\n    kind: generate\n    upstream: missing\n",
			wantErr: "unknown stage 'missing'",
		},
		{
			name:    "cycle",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: b\n    kind: generate\n    upstream: c\n  - name: c\n    kind: generate\n    upstream: b\n",
			wantErr: "cycle",
		},
		{
			name:    "fan out",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: b\n    kind: generate\n    upstream: a\n  - name: c\n    kind: generate\n    upstream: a\n",
			wantErr: "single path",
		},
		{
			name:    "two roots",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n  - name: b\n    kind: extract\n",
			wantErr: "exactly one first stage",
		},
		{
			name:    "unknown template variable",
			yaml:    "version: 1\nstages:\n  - name: a\n    kind: extract\n    instructions: \"{{topic}}\"\n",
			wantErr: "missing template variables: topic",
		},
		{
			name:    "invalid yaml",
			yaml:    "version: [",
			wantErr: "failed to parse stages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
