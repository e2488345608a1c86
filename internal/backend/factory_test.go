package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelboard/internal/config"
	"fuelboard/internal/source/file"
	"fuelboard/internal/storage"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"file ok", Config{Type: FileBackend, PricesFile: "p.csv"}, ""},
		{"file missing path", Config{Type: FileBackend}, "prices file path is required"},
		{"sqlite missing path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"sheets missing id", Config{Type: SheetsBackend}, "Google Spreadsheet ID is required"},
		{"unknown", Config{Type: "memory"}, "invalid backend type: memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", PricesFile: "p.csv"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)

	_, err = FromAppConfig(&config.Config{DataBackend: "nope"})
	assert.Error(t, err)
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: FileBackend, PricesFile: "prices.xlsx", XLSXSheet: "Data"})
		require.NoError(t, err)
		assert.IsType(t, &file.Source{}, res.Backend)
		assert.Equal(t, "prices.xlsx", res.Watch)
		assert.Nil(t, res.Cleanup)
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")})
		require.NoError(t, err)
		assert.IsType(t, &storage.SQLiteRepository{}, res.Backend)
		assert.Empty(t, res.Watch)
		require.NotNil(t, res.Cleanup)
		assert.NoError(t, res.Cleanup())
	})

	t.Run("sheets without credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		_, err := f.CreateBackend(ctx, Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize Google Sheets client")
	})
}
