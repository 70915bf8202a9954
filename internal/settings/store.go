// Package settings persists the operator's API key, source listing and tool
// settings, either in a local JSON file or in PostgreSQL.
package settings

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// APIKeyEnv is consulted before the store when resolving the API key.
const APIKeyEnv = "GEMINI_API_KEY"

// Store reads and writes the bot settings.
type Store interface {
	// APIKey returns the saved key, or "" when none is saved.
	APIKey(ctx context.Context) (string, error)
	// AppData returns the saved listing, or nil when none is saved.
	AppData(ctx context.Context) (*types.AppData, error)
	// ToolSettings returns the saved settings with defaults applied.
	ToolSettings(ctx context.Context) (types.ToolSettings, error)

	SaveAPIKey(ctx context.Context, key string) error
	SaveAppData(ctx context.Context, data types.AppData) error
	SaveToolSettings(ctx context.Context, s types.ToolSettings) error
}

// Document is the persisted form of every setting.
type Document struct {
	APIKey       string              `json:"apiKey,omitempty"`
	AppData      *types.AppData      `json:"appData,omitempty"`
	ToolSettings *types.ToolSettings `json:"toolSettings,omitempty"`
	UpdatedAt    string              `json:"updatedAt,omitempty"`
}

func (d *Document) touch(now time.Time) {
	d.UpdatedAt = now.UTC().Format(time.RFC3339)
}

// ResolveAPIKey returns the first non-empty key from the flag value, the
// GEMINI_API_KEY environment variable and the store, in that order.
func ResolveAPIKey(ctx context.Context, flagValue string, store Store) (string, error) {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}
	if store == nil {
		return "", nil
	}
	key, err := store.APIKey(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// Open returns a PostgresStore when databaseURL is set and a FileStore at
// path otherwise. An empty path uses DefaultPath. The returned func releases
// the store.
func Open(ctx context.Context, databaseURL, path string) (Store, func(), error) {
	if databaseURL != "" {
		store, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	return NewFileStore(path), func() {}, nil
}

func validateAppData(data types.AppData) error {
	if err := data.Validate(); err != nil {
		return &Error{Message: "invalid listing data", Cause: err}
	}
	return nil
}

func validateToolSettings(s types.ToolSettings) error {
	if err := s.Validate(); err != nil {
		return &Error{Message: "invalid tool settings", Cause: err}
	}
	return nil
}
