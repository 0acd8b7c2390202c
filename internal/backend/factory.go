package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lifedash/internal/amqp"
	"lifedash/internal/services"
	gsheet "lifedash/internal/sheets/google"
	"lifedash/internal/sheets/memory"
	"lifedash/internal/sheets/script"
	"lifedash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case ScriptBackend:
		return f.createScriptStore(config)
	case SheetsBackend:
		return f.createSheetsStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createScriptStore(config Config) (*StoreResult, error) {
	cli, err := script.New(script.Options{
		Endpoint: config.ScriptURL,
		Timeout:  config.StoreTimeout,
		RetryMax: config.ScriptMaxRetries,
		Logger:   f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize script client: %w", err)
	}

	f.logger.Info("Initialized script backend", "endpoint", cli.String(), "max_retries", config.ScriptMaxRetries)

	return &StoreResult{Store: cli, Type: ScriptBackend}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (*StoreResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		Location:           config.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &StoreResult{Store: cli, Type: SheetsBackend}, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (*StoreResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	n := config.Sheets
	store := memory.NewFromFiles(dataDir, n.Finance, n.Dreams, n.DreamTracker, n.Fuel, n.Login).
		WithLocation(config.Location)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &StoreResult{Store: store, Type: MemoryBackend}, nil
}

// CreateRecorder opens the journal and the event publisher when they are
// configured. A journal that cannot be opened is an error; an unreachable
// broker only disables publishing.
func (f *DefaultFactory) CreateRecorder(ctx context.Context, config Config) (*RecorderResult, error) {
	var (
		recorders services.Recorders
		cleanups  []CleanupFunc
		journal   *storage.Journal
	)

	if config.SQLiteDBPath != "" {
		j, err := storage.OpenJournal(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open write journal: %w", err)
		}
		journal = j
		recorders = append(recorders, j)
		cleanups = append(cleanups, j.Close)
		f.logger.InfoContext(ctx, "Initialized write journal", "db_path", config.SQLiteDBPath)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			recorders = append(recorders, client)
			cleanups = append(cleanups, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res := &RecorderResult{
		Journal: journal,
		Cleanup: func() error {
			var errs []error
			for i := len(cleanups) - 1; i >= 0; i-- {
				errs = append(errs, cleanups[i]())
			}
			return errors.Join(errs...)
		},
	}
	switch len(recorders) {
	case 0:
	case 1:
		res.Recorder = recorders[0]
	default:
		res.Recorder = recorders
	}
	return res, nil
}
