package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yusuf-polat/AI-Translate/internal/schemas"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// DefaultPath returns $XDG_CONFIG_HOME/listing-bot/settings.json, or the
// platform's user config directory equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", &Error{Message: "cannot locate user config directory", Cause: err}
	}
	return filepath.Join(dir, "listing-bot", "settings.json"), nil
}

// FileStore keeps settings in a single JSON file readable only by its owner.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a FileStore at path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the settings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and validates the whole document. A missing file is an empty document.
func (s *FileStore) Load(_ context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) APIKey(ctx context.Context) (string, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return doc.APIKey, nil
}

func (s *FileStore) AppData(ctx context.Context) (*types.AppData, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.AppData, nil
}

func (s *FileStore) ToolSettings(ctx context.Context) (types.ToolSettings, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return types.ToolSettings{}, err
	}
	if doc.ToolSettings == nil {
		return types.DefaultToolSettings(), nil
	}
	return doc.ToolSettings.WithDefaults(), nil
}

func (s *FileStore) SaveAPIKey(_ context.Context, key string) error {
	return s.update(func(d *Document) { d.APIKey = key })
}

func (s *FileStore) SaveAppData(_ context.Context, data types.AppData) error {
	if err := validateAppData(data); err != nil {
		return err
	}
	return s.update(func(d *Document) { d.AppData = &data })
}

func (s *FileStore) SaveToolSettings(_ context.Context, settings types.ToolSettings) error {
	if err := validateToolSettings(settings); err != nil {
		return err
	}
	return s.update(func(d *Document) { d.ToolSettings = &settings })
}

func (s *FileStore) update(apply func(*Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	apply(doc)
	doc.touch(s.now())
	return s.write(doc)
}

func (s *FileStore) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read %s", s.path), Cause: err}
	}

	if err := schemas.ValidateSettings(data); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid settings file %s", s.path), Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to parse %s", s.path), Cause: err}
	}
	return &doc, nil
}

// write replaces the file atomically with mode 0600.
func (s *FileStore) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &Error{Message: "failed to encode settings", Cause: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &Error{Message: fmt.Sprintf("failed to create %s", dir), Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return &Error{Message: "failed to create temporary file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return &Error{Message: "failed to restrict settings file", Cause: err}
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Message: "failed to write settings", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Message: "failed to write settings", Cause: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &Error{Message: fmt.Sprintf("failed to replace %s", s.path), Cause: err}
	}
	return nil
}
