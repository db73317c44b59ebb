// Package backend selects and constructs the document store implementation.
package backend

import (
	"context"

	"tyotilasto/internal/catalog"
	"tyotilasto/internal/docstore"
)

// Backend is the read side used by the summary and report services.
type Backend = docstore.Store

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite mirror
	SQLiteDBPath string

	// Firestore
	FirestoreProjectID        string
	FirestoreDatabase         string
	FirestoreSeriesCollection string
	FirestoreReportCollection string
	FirestoreEmulatorHost     string
	GoogleServiceAccountJSON  string
	GoogleServiceAccountFile  string
	FirebaseCredentialsBase64 string

	// Memory
	DataDirectory string

	// Catalog maps indicator codes to the labels used as document keys.
	Catalog *catalog.Catalog
}

// BackendType represents the type of backend.
type BackendType string

const (
	MemoryBackend    BackendType = "memory"
	FirestoreBackend BackendType = "firestore"
	SQLiteBackend    BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FirestoreBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
