package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnsureUserConfig returns the path of config.yml in dataDir, creating it on
// first run. The new file is seeded from defaultPath, or from Default() when
// defaultPath does not exist. An existing file is never touched.
func EnsureUserConfig(dataDir, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	seed, err := seedConfig(defaultPath)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(userPath, seed); err != nil {
		return "", err
	}
	return userPath, nil
}

// seedConfig returns the bytes to install. The shipped file is copied as is
// so its comments survive, but only if it parses.
func seedConfig(defaultPath string) ([]byte, error) {
	b, err := os.ReadFile(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return yaml.Marshal(Default())
	}
	if err != nil {
		return nil, err
	}
	var parsed Config
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("default config %s: %w", defaultPath, err)
	}
	return b, nil
}
