package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/config"
	"lifedash/internal/sheets"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("sqlite").IsValid())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "script without url", config: Config{Type: ScriptBackend}, wantErr: true},
		{name: "script", config: Config{Type: ScriptBackend, ScriptURL: "https://example.com/exec"}},
		{name: "sheets without id", config: Config{Type: SheetsBackend}, wantErr: true},
		{name: "amqp without queue", config: Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, wantErr: true},
		{name: "unknown", config: Config{Type: "csv"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	app := &config.Config{
		DataBackend:  "script",
		ScriptURL:    "https://example.com/exec",
		StoreTimeout: 10 * time.Second,
		SheetFinance: "Daily", SheetDreams: "Dreams", SheetDreamTracker: "Dream Tracker",
		SheetFuel: "Fuel Trackers", SheetLogin: "Login",
		Timezone: "UTC",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, ScriptBackend, cfg.Type)
	assert.Equal(t, sheets.DefaultNames(), cfg.Sheets)
	assert.Equal(t, time.UTC, cfg.Location)

	app.DataBackend = "sqlite"
	_, err = FromAppConfig(app)
	assert.Error(t, err)
}

func TestCreateStore_Memory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Daily.tsv"),
		[]byte("timestamp\tserial\ttype\tamount\tcategory\tdescription\tdate\n01/03/2024 10:00:00\tIN-001\tIncome\t300\tSalary\tMarch\t01/03/2024\n"), 0o644))

	f := NewFactory(nil)
	res, err := f.CreateStore(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir, Sheets: sheets.DefaultNames()})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, res.Type)

	rows, err := res.Store.FetchRows(context.Background(), "Daily")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = res.Store.FetchRows(context.Background(), "Login")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "missing seed file yields a header-only sheet")
}

func TestCreateStore_Script(t *testing.T) {
	res, err := NewFactory(nil).CreateStore(context.Background(), Config{Type: ScriptBackend, ScriptURL: "https://example.com/exec"})
	require.NoError(t, err)
	assert.Equal(t, ScriptBackend, res.Type)

	_, err = NewFactory(nil).CreateStore(context.Background(), Config{Type: ScriptBackend, ScriptURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestCreateRecorder(t *testing.T) {
	f := NewFactory(nil)

	none, err := f.CreateRecorder(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Nil(t, none.Recorder)
	assert.Nil(t, none.Journal)
	assert.NoError(t, none.Cleanup())

	res, err := f.CreateRecorder(context.Background(), Config{
		Type:         MemoryBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "journal.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Journal)
	assert.Same(t, res.Journal, res.Recorder)
	assert.NoError(t, res.Cleanup())
}
