package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSecrets reads the credentials file. The path comes from
// STOCKHOME_SECRETS when set; otherwise secrets.json next to the binary.
// Alpaca env vars override file values so CI never needs the file.
func LoadSecrets() (*Secrets, error) {
	secrets := &Secrets{}

	secretsFile := "secrets.json"
	if p := os.Getenv("STOCKHOME_SECRETS"); p != "" {
		secretsFile = p
	}

	f, err := os.ReadFile(secretsFile)
	if err == nil {
		if err := json.Unmarshal(f, secrets); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", secretsFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		secrets.Alpaca.ApiKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		secrets.Alpaca.ApiSecret = v
	}

	return secrets, nil
}
