package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tyotilasto/internal/adapters"
	"tyotilasto/internal/docstore/firestore"
	"tyotilasto/internal/docstore/memory"
	"tyotilasto/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case FirestoreBackend:
		return f.createFirestoreBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: adapters.NewSQLiteAdapter(repo),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createFirestoreBackend(ctx context.Context, config Config) (*BackendResult, error) {
	fsCfg := firestore.Config{
		ProjectID:        config.FirestoreProjectID,
		Database:         config.FirestoreDatabase,
		SeriesCollection: config.FirestoreSeriesCollection,
		ReportCollection: config.FirestoreReportCollection,
	}

	if config.FirestoreEmulatorHost != "" {
		host := config.FirestoreEmulatorHost
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		fsCfg.Endpoint = strings.TrimSuffix(host, "/") + "/"
	} else {
		creds, err := firestore.Credentials{
			JSON:       config.GoogleServiceAccountJSON,
			File:       config.GoogleServiceAccountFile,
			Base64JSON: config.FirebaseCredentialsBase64,
		}.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load firestore credentials: %w", err)
		}
		fsCfg.CredentialsJSON = creds
		if fsCfg.ProjectID == "" {
			fsCfg.ProjectID = firestore.ProjectID(creds)
		}
	}

	client, err := firestore.New(ctx, fsCfg, config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	f.logger.Info("Initialized Firestore backend",
		"project", fsCfg.ProjectID,
		"emulator", config.FirestoreEmulatorHost != "")

	return &BackendResult{Backend: client}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Backend: store}, nil
}
