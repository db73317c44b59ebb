package firestore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Credentials lists the places a service account key may come from, in
// order of preference.
type Credentials struct {
	JSON       string // GOOGLE_SERVICE_ACCOUNT_JSON
	File       string // GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS
	Base64JSON string // FIREBASE_CREDENTIALS_BASE64
}

// ErrNoCredentials is returned when no source is configured.
var ErrNoCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_CREDENTIALS_BASE64)")

// Load resolves the key bytes and checks they are a JSON object.
func (c Credentials) Load() ([]byte, error) {
	var (
		raw    []byte
		source string
	)
	switch {
	case strings.TrimSpace(c.JSON) != "":
		raw, source = []byte(strings.TrimSpace(c.JSON)), "inline json"
	case strings.TrimSpace(c.File) != "":
		b, err := os.ReadFile(strings.TrimSpace(c.File))
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw, source = b, "file"
	case strings.TrimSpace(c.Base64JSON) != "":
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.Base64JSON))
		if err != nil {
			return nil, fmt.Errorf("decode base64 credentials: %w", err)
		}
		raw, source = b, "base64"
	default:
		return nil, ErrNoCredentials
	}

	var probe struct {
		Type      string `json:"type"`
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("credentials from %s are not valid json: %w", source, err)
	}
	return raw, nil
}

// ProjectID returns the project_id embedded in a service account key.
func ProjectID(credentialsJSON []byte) string {
	var probe struct {
		ProjectID string `json:"project_id"`
	}
	if json.Unmarshal(credentialsJSON, &probe) != nil {
		return ""
	}
	return probe.ProjectID
}
