package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Row keys in bot_settings.
const (
	KeyAPIKey       = "api_key"
	KeyAppData      = "app_data"
	KeyToolSettings = "tool_settings"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS bot_settings (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps each setting as a JSONB row in bot_settings.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it and makes sure the table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create bot_settings: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) APIKey(ctx context.Context) (string, error) {
	var key string
	if _, err := s.get(ctx, KeyAPIKey, &key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PostgresStore) AppData(ctx context.Context) (*types.AppData, error) {
	var data types.AppData
	found, err := s.get(ctx, KeyAppData, &data)
	if err != nil || !found {
		return nil, err
	}
	return &data, nil
}

func (s *PostgresStore) ToolSettings(ctx context.Context) (types.ToolSettings, error) {
	var settings types.ToolSettings
	if _, err := s.get(ctx, KeyToolSettings, &settings); err != nil {
		return types.ToolSettings{}, err
	}
	return settings.WithDefaults(), nil
}

func (s *PostgresStore) SaveAPIKey(ctx context.Context, key string) error {
	return s.put(ctx, KeyAPIKey, key)
}

func (s *PostgresStore) SaveAppData(ctx context.Context, data types.AppData) error {
	if err := validateAppData(data); err != nil {
		return err
	}
	return s.put(ctx, KeyAppData, data)
}

func (s *PostgresStore) SaveToolSettings(ctx context.Context, settings types.ToolSettings) error {
	if err := validateToolSettings(settings); err != nil {
		return err
	}
	return s.put(ctx, KeyToolSettings, settings)
}

// get decodes the value stored under key into dest. It reports false when
// no row exists.
func (s *PostgresStore) get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM bot_settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, &Error{Message: fmt.Sprintf("corrupt setting %s", key), Cause: err}
	}
	return true, nil
}

func (s *PostgresStore) put(ctx context.Context, key string, value any) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO bot_settings (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
