package backend

import (
	"context"
	"time"

	"lifedash/internal/services"
	"lifedash/internal/sheets"
	"lifedash/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the store and an optional cleanup function.
type StoreResult struct {
	Store   sheets.Store
	Type    BackendType
	Cleanup CleanupFunc
}

// RecorderResult holds the write recorder built from the optional journal
// and event bus. Journal is nil when journaling is disabled.
type RecorderResult struct {
	Recorder services.WriteRecorder
	Journal  *storage.Journal
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateRecorder(ctx context.Context, config Config) (*RecorderResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Script endpoint
	ScriptURL        string
	ScriptMaxRetries int
	StoreTimeout     time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend
	DataDirectory string

	Sheets   sheets.Names
	Location *time.Location

	// Write recording, both optional
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	ScriptBackend BackendType = "script"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case ScriptBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
