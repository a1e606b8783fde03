package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProfileCommand(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", "city,sales\nOslo,10\nLima,25\n")

	out, err := runCLI(t, "profile", path, "--label", "Q1")
	require.NoError(t, err)

	var p map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Q1", p["filename"])
	assert.Equal(t, float64(2), p["summary"].(map[string]interface{})["rows"])

	pretty, err := runCLI(t, "profile", path, "--pretty")
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  \"filename\": \"sales.csv\"")
}

func TestProfileCommandErrors(t *testing.T) {
	_, err := runCLI(t, "profile")
	assert.Error(t, err)

	_, err = runCLI(t, "profile", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	empty := writeCSV(t, t.TempDir(), "empty.csv", "a,b\n")
	_, err = runCLI(t, "profile", empty)
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", "city,sales\nOslo,10\nLima,25\n")

	md, err := runCLI(t, "report", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Data profile: sales.csv"))

	html, err := runCLI(t, "report", path, "--html")
	require.NoError(t, err)
	assert.Contains(t, html, "<html")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", "x,y\n1,2\n3,4\n")
	bad := filepath.Join(dir, "missing.csv")

	out, err := runCLI(t, "batch", good, bad, "--concurrency", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FILE"))
	assert.Contains(t, lines[1], "good.csv")
	assert.Contains(t, lines[1], "ready")
	assert.Contains(t, lines[2], "missing.csv")
	assert.Contains(t, lines[2], "error")

	_, err = runCLI(t, "batch", bad)
	assert.Error(t, err)
}
