package backend

import (
	"context"

	"smartspend/internal/adapters"
	"smartspend/internal/amqp"
	"smartspend/internal/sheets"
)

// Store is the persistence slot behind the ledger.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Exporter writes reports and alerts to a spreadsheet.
type Exporter interface {
	sheets.ReportWriter
	sheets.AlertWriter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired infrastructure and a cleanup function
// releasing all of it.
type BackendResult struct {
	Store Store
	// AMQP and Publisher are nil when no broker is configured or reachable.
	AMQP      *amqp.Client
	Publisher *adapters.AMQPPublisher
	// Exporter is nil unless spreadsheet export was requested and configured.
	Exporter Exporter
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	// HistoryLimit is how many snapshots per key the SQLite store keeps.
	// Zero keeps the store default.
	HistoryLimit int

	// Optional broker
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP makes a broker connection failure fatal.
	RequireAMQP bool

	// Optional spreadsheet export
	EnableSheets             bool
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
