package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

var (
	rootOnce sync.Once
	root     *cobra.Command
)

// execute runs the shared root command; commands are package singletons so
// callers must not run in parallel
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootOnce.Do(func() { root = NewRootCmd() })

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestSettingsSetCommand(t *testing.T) {
	path := writeConfig(t, `
baseURL: https://local.example
catalog:
  sources:
    - https://a.example/jsonapi/webforms
`)

	out, err := execute(t, "settings", "set", "--config", path,
		"--source", "https://b.example/jsonapi/webforms", "--ttl", "120")
	require.NoError(t, err)
	assert.Equal(t, "sources_ttl: 120s\nsources:\n  - https://b.example/jsonapi/webforms\n", out)

	out, err = execute(t, "settings", "show", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "sources_ttl: disabled\nsources:\n  - https://a.example/jsonapi/webforms\n", out)
}

func TestMigrateRequiresDatabase(t *testing.T) {
	path := writeConfig(t, "baseURL: https://local.example\n")

	_, err := execute(t, "migrate", "up", "--config", path, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database configuration is required")
}

func TestFormsDeleteUnknown(t *testing.T) {
	path := writeConfig(t, "baseURL: https://local.example\n")

	_, err := execute(t, "forms", "delete", "missing", "--config", path)
	require.Error(t, err)
}

func TestWriteImportResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := forms.New("contact")
	err := writeImportResult(&buf, &importer.Result{
		Form:    f,
		Record:  &provenance.Record{LocalFormID: "contact", SourceURL: "https://a.example/jsonapi/webforms/contact"},
		Created: true,
	})
	require.NoError(t, err)

	var got importOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, importOutput{
		ID:      "contact",
		UUID:    f.UUID,
		URL:     "https://a.example/jsonapi/webforms/contact",
		Created: true,
	}, got)
}

func TestWriteTables(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeImportedTable(&buf, []*provenance.Record{{
		LocalFormID: "contact",
		SourceURL:   "https://a.example/jsonapi/webforms/contact",
		UpdatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}))
	assert.Contains(t, buf.String(), "contact")
	assert.Contains(t, buf.String(), "2026-01-02T03:04:05Z")

	buf.Reset()
	require.NoError(t, writeAvailableTable(&buf, []catalog.Entry{{
		ID:         "survey",
		SourceURL:  "https://a.example/jsonapi/webforms/survey",
		Attributes: map[string]any{"title": "Survey"},
	}}))
	assert.Contains(t, buf.String(), "Survey")
	assert.Contains(t, buf.String(), "https://a.example/jsonapi/webforms/survey")
}

func TestWriteSettings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeSettings(&buf, settings.Settings{Sources: []string{"https://a.example"}, SourcesTTL: 0}))
	assert.Equal(t, "sources_ttl: disabled\nsources:\n  - https://a.example\n", buf.String())
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "Y\n", want: true},
		{input: "y", want: true},
		{input: "no\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Continue?"))
			assert.Equal(t, "Continue? (yes/no): ", out.String())
		})
	}
}

func TestPromptable(t *testing.T) {
	t.Parallel()

	assert.False(t, promptable(strings.NewReader("yes\n")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.False(t, promptable(f))
}
