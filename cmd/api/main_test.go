package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// TestParseDateCommand - Sexta a partir de uma quarta
func TestParseDateCommand(t *testing.T) {
	out, err := run(t, "parse-date", "--now", "2026-10-21T12:00:00-03:00", "sexta", "às", "15h")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2026-10-23T15:00:00-03:00"), out)
}

// TestParseDateCommandInvalid - Texto sem data é erro
func TestParseDateCommandInvalid(t *testing.T) {
	_, err := run(t, "parse-date", "--now", "2026-10-21T12:00:00-03:00", "qualquer", "hora")
	assert.Error(t, err)
}

// TestToolCommandSQLite - migrate e tool contra um SQLite temporário
func TestToolCommandSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "concierge.db"))

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "tool", "create_lead", "--user", "u1", "--args", `{"name":"Ana Souza"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)

	out, err = run(t, "tool", "add_note_to_lead", "--user", "u1", "--args", `{"lead_name":"ana","note":"pediu orçamento"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza")

	out, err = run(t, "tool", "schedule_post", "--user", "u1", "--args", `{"scheduled_date":"amanhã"}`)
	assert.Error(t, err)
	assert.Contains(t, out, `"success": false`)

	_, err = run(t, "tool", "delete_everything", "--user", "u1")
	assert.Error(t, err)
}
