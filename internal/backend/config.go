package backend

import (
	"errors"
	"fmt"

	"tyotilasto/internal/catalog"
	"tyotilasto/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config, cat *catalog.Catalog) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	// GOOGLE_APPLICATION_CREDENTIALS is a file path like GOOGLE_SERVICE_ACCOUNT_FILE.
	saFile := appConfig.GoogleServiceAccountFile
	if saFile == "" {
		saFile = appConfig.GoogleApplicationCredentials
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		FirestoreProjectID:        appConfig.FirestoreProjectID,
		FirestoreDatabase:         appConfig.FirestoreDatabase,
		FirestoreSeriesCollection: appConfig.FirestoreSeriesCollection,
		FirestoreReportCollection: appConfig.FirestoreReportCollection,
		FirestoreEmulatorHost:     appConfig.FirestoreEmulatorHost,
		GoogleServiceAccountJSON:  appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile:  saFile,
		FirebaseCredentialsBase64: appConfig.FirebaseCredentialsBase64,

		DataDirectory: appConfig.DataDir,
		Catalog:       cat,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case FirestoreBackend:
		hasCreds := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" || c.FirebaseCredentialsBase64 != ""
		if !hasCreds && c.FirestoreEmulatorHost == "" {
			return errors.New("service account credentials are required for firestore backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data"
	}
	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, FirestoreBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings.
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
