package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusuf-polat/AI-Translate/internal/types"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "listing-bot", "settings.json"))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestFileStore_EmptyWhenMissing(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, key)

	data, err := s.AppData(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	settings, err := s.ToolSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultToolSettings(), settings)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAPIKey(ctx, "AIza-test"))
	require.NoError(t, s.SaveAppData(ctx, types.AppData{AppName: "Foo", ShortDescription: "Bar", FullDescription: "Baz"}))
	require.NoError(t, s.SaveToolSettings(ctx, types.ToolSettings{Purpose: types.PurposeCustom, CustomPrompt: "Be brief"}))

	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AIza-test", key)

	data, err := s.AppData(ctx)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "Foo", data.AppName)
	assert.Equal(t, "Baz", data.FullDescription)

	settings, err := s.ToolSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.PurposeCustom, settings.Purpose)
	assert.Equal(t, "Be brief", settings.CustomPrompt)
	assert.Equal(t, types.DefaultTargetLanguage, settings.TargetLanguage)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T09:30:00Z", doc.UpdatedAt)
}

func TestFileStore_FileMode(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.SaveAPIKey(context.Background(), "secret"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileStore_RejectsInvalidInput(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	err := s.SaveAppData(ctx, types.AppData{AppName: strings.Repeat("a", 31)})
	require.Error(t, err)
	var settingsErr *Error
	assert.ErrorAs(t, err, &settingsErr)

	err = s.SaveToolSettings(ctx, types.ToolSettings{Purpose: "summarize"})
	require.Error(t, err)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "rejected saves must not create the file")
}

func TestFileStore_RejectsFileFailingSchema(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0700))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"apiKey": 12}`), 0600))

	_, err := s.APIKey(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings file")
}

func TestFileStore_KeepsOtherFieldsOnUpdate(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAppData(ctx, types.AppData{AppName: "Foo"}))
	require.NoError(t, s.SaveAPIKey(ctx, "k"))

	data, err := s.AppData(ctx)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "Foo", data.AppName)
}

func TestDefaultPath_UsesXDGConfigHome(t *testing.T) {
	if os.Getenv("HOME") == "" {
		t.Skip("HOME not set")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	if filepath.Dir(filepath.Dir(path)) == dir {
		assert.Equal(t, filepath.Join(dir, "listing-bot", "settings.json"), path)
	} else {
		assert.True(t, strings.HasSuffix(path, filepath.Join("listing-bot", "settings.json")))
	}
}
