package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// execute runs the root command with args and resets the flags afterwards.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer resetFlags(rootCmd)
	return rootCmd.Execute()
}

func TestSettingsCommands_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()

	require.NoError(t, execute(t, "settings", "set-key", "AIzaTestKey1234", "--settings", path))
	require.NoError(t, execute(t, "settings", "set-app", "--name", "Notes", "--short", "Take notes fast", "--settings", path))
	require.NoError(t, execute(t, "settings", "set-app", "--full", "A notebook for everything.", "--settings", path))
	require.NoError(t, execute(t, "settings", "set-tool", "--purpose", "custom", "--prompt", "Keep it formal", "--settings", path))
	require.NoError(t, execute(t, "settings", "show", "--settings", path))

	store := settings.NewFileStore(path)

	key, err := store.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AIzaTestKey1234", key)

	data, err := store.AppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, &types.AppData{
		AppName:          "Notes",
		ShortDescription: "Take notes fast",
		FullDescription:  "A notebook for everything.",
	}, data)

	ts, err := store.ToolSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PurposeCustom, ts.Purpose)
	assert.Equal(t, "Keep it formal", ts.CustomPrompt)
	assert.Equal(t, types.DefaultTargetLanguage, ts.TargetLanguage)
}

func TestSettingsCommands_Rejected(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	err := execute(t, "settings", "set-app", "--name", "A name that is far too long for the store", "--settings", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid listing data")

	err = execute(t, "settings", "set-tool", "--purpose", "summarize", "--settings", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tool settings")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSettingsSetApp_FullFromFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	full := filepath.Join(dir, "full.txt")
	require.NoError(t, os.WriteFile(full, []byte("Line one.\nLine two."), 0644))

	require.NoError(t, execute(t, "settings", "set-app", "--full-file", full, "--settings", path))

	data, err := settings.NewFileStore(path).AppData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Line one.\nLine two.", data.FullDescription)
	assert.Empty(t, data.AppName)
}

func TestTranslateCommand_NoAppData(t *testing.T) {
	isolate(t)
	t.Cleanup(func() { translateLanguages = nil })
	path := filepath.Join(t.TempDir(), "settings.json")

	err := execute(t, "translate", "--lang", "german", "--settings", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings set-app")
}

func TestSettingsValidate(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	valid := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"apiKey": "k", "toolSettings": {"toolPurpose": "custom"}}`), 0600))
	invalid := filepath.Join(dir, "edited.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"toolSettings": {"toolPurpose": "summarize"}}`), 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, execute(t, "settings", "validate", valid))
	assert.Contains(t, out.String(), "is valid")

	out.Reset()
	require.NoError(t, execute(t, "settings", "validate", "--settings", valid))
	assert.Contains(t, out.String(), valid)

	err := execute(t, "settings", "validate", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toolPurpose")

	err = execute(t, "settings", "validate", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSettingsValidate_PostgresNeedsFile(t *testing.T) {
	isolate(t)

	err := execute(t, "settings", "validate", "--db-url", "postgres://localhost/bot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass a FILE")
}

func TestSettingsSchema(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, execute(t, "settings", "schema"))

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	assert.Contains(t, schema, "properties")
}

func TestStoreLocation(t *testing.T) {
	fs := settings.NewFileStore("/tmp/listing-bot/settings.json")
	assert.Equal(t, "/tmp/listing-bot/settings.json", storeLocation(fs))

	type otherStore struct{ settings.Store }
	assert.Equal(t, "PostgreSQL", storeLocation(otherStore{}))
}

func TestCLI_Help(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "--help").CombinedOutput()
	require.NoError(t, err)
	for _, sub := range []string{"run", "serve", "translate", "settings", "token"} {
		assert.Contains(t, string(output), sub)
	}
}

func TestCLI_SetKeyRequiresArgument(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "settings", "set-key").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "accepts 1 arg(s)")
}
