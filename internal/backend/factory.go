package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartspend/internal/adapters"
	"smartspend/internal/amqp"
	gsheet "smartspend/internal/sheets/google"
	"smartspend/internal/storage"
	"smartspend/internal/storage/memory"
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

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	result := &BackendResult{Store: store}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		switch {
		case err != nil && config.RequireAMQP:
			store.Close()
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		case err != nil:
			f.logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
		default:
			result.AMQP = client
			result.Publisher = adapters.NewAMQPPublisher(client)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	if config.EnableSheets {
		exporter, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			ServiceAccountFile: config.GoogleServiceAccountFile,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
		})
		if err != nil {
			result.close()
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		result.Exporter = exporter
		f.logger.Info("Initialized Google Sheets exporter")
	}

	result.Cleanup = result.close
	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (Store, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		if config.HistoryLimit > 0 {
			store.SetHistoryLimit(config.HistoryLimit)
		}
		f.logger.Info("Initialized SQLite backend",
			"db_path", config.SQLiteDBPath,
			"history_limit", store.HistoryLimit())
		return store, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (r *BackendResult) close() error {
	var errs []error
	if r.AMQP != nil {
		if err := r.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AMQP: %w", err))
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
