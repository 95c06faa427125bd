package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Credentials hold the service account used to call the identity provider's
// admin API. They are loaded exactly once at process start; a missing or
// unreadable file is a fatal startup condition, never a per-request error.
type Credentials struct {
	ProjectID string `json:"project_id"`
	APIKey    string `json:"api_key"`
	Endpoint  string `json:"endpoint"`
}

// LoadCredentials reads and validates a credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("identity credentials file not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read identity credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse identity credentials: %w", err)
	}

	if creds.APIKey == "" {
		return nil, errors.New("identity credentials missing api_key")
	}
	if creds.Endpoint == "" {
		return nil, errors.New("identity credentials missing endpoint")
	}

	return &creds, nil
}
