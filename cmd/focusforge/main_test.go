package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebtf/focusforge/internal/config"
	"github.com/thebtf/focusforge/pkg/models"
)

const sampleInput = `{
  "session": {"id": "s1", "status": "ended", "started_at": 1000, "ended_at": 361000,
              "intent_raw": "Practice graphs", "intent_tags": ["leetcode"]},
  "events": [
    {"type": "STOP", "ts": 361000},
    {"type": "TAB_ACTIVE", "url": "https://github.com/me/repo", "title": "repo", "ts": 301000},
    {"type": "TAB_ACTIVE", "url": "https://leetcode.com/problems/1", "title": "Two Sum", "ts": 1000}
  ]
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{config.KeyTaxonomyPath, config.KeyInternalDomains} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestComputeJSON(t *testing.T) {
	out, err := run(t, sampleInput, "compute")
	require.NoError(t, err)

	var sum models.ComputedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "s1", sum.SessionID)
	assert.Equal(t, "Practice graphs", sum.GoalInferred)
	require.Len(t, sum.Domains, 2)
	assert.Equal(t, "leetcode.com", sum.Domains[0].Domain)
	assert.Equal(t, 300, sum.Domains[0].TimeSec)
	assert.Equal(t, 60, sum.Domains[1].TimeSec)
	require.NotNil(t, sum.LastStop)
	assert.Equal(t, "https://github.com/me/repo", sum.LastStop.URL)
}

func TestComputeEpochStart(t *testing.T) {
	in := `{
  "session": {"id": "a", "status": "ended", "started_at": 0, "ended_at": 180000,
              "intent_tags": ["leetcode practice"]},
  "events": [
    {"ts": 0, "type": "TAB_ACTIVE", "url": "https://leetcode.com/problems/two-sum", "title": "Two Sum"},
    {"ts": 120000, "type": "TAB_ACTIVE", "url": "https://youtube.com/watch?v=x", "title": "Funny cat video"}
  ]
}`
	out, err := run(t, in, "compute")
	require.NoError(t, err)

	var sum models.ComputedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Domains, 2)
	assert.Equal(t, 120, sum.Domains[0].TimeSec)
	assert.Equal(t, 60, sum.Domains[1].TimeSec)
}

func TestComputeMarkdown(t *testing.T) {
	out, err := run(t, sampleInput, "compute", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Practice graphs")
	assert.Contains(t, out, "https://github.com/me/repo")
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"bad format", sampleInput, []string{"compute", "--format", "xml"}},
		{"bad json", "{", []string{"compute"}},
		{"invalid event", `{"events":[{"type":"NOPE","ts":1}]}`, []string{"compute"}},
		{"bad taxonomy", sampleInput, []string{"compute", "--taxonomy", "BAD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name == "bad taxonomy" {
				path := filepath.Join(t.TempDir(), "bad.yaml")
				require.NoError(t, os.WriteFile(path, []byte("labels: [unclosed"), 0600))
				args = []string{"compute", "--taxonomy", path}
			}
			_, err := run(t, tt.stdin, args...)
			assert.Error(t, err)
		})
	}
}

func TestComputeCustomTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels:\n  leetcode.com: Grind\n"), 0600))

	out, err := run(t, sampleInput, "compute", "--taxonomy", path)
	require.NoError(t, err)

	var sum models.ComputedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.NotEmpty(t, sum.Domains)
	assert.Equal(t, "Grind", sum.Domains[0].Label)
}

func TestTaxonomyCommand(t *testing.T) {
	out, err := run(t, "", "taxonomy")
	require.NoError(t, err)
	assert.Contains(t, out, "labels:")
	assert.Contains(t, out, "categories:")

	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels:\n  a.com: A\n"), 0600))
	out, err = run(t, "", "taxonomy", "--taxonomy", path)
	require.NoError(t, err)
	assert.Contains(t, out, "a.com: A")
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
