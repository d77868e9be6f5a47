package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "legalconnect"

	// JWTSecretEnv overrides the keychain when set.
	JWTSecretEnv = "LEGALCONNECT_JWT_SECRET"

	minSecretLen = 32
)

type Source string

const (
	SourceEnv       Source = "env"
	SourceKeyring   Source = "keyring"
	SourceGenerated Source = "generated"
)

func GetJWTSecret(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		s, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", errors.New("JWT secret not found (set it in keychain or via env)")
}

func SetJWTSecret(keyringAccount, secret string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if len(strings.TrimSpace(secret)) < minSecretLen {
		return fmt.Errorf("secret must be at least %d characters", minSecretLen)
	}
	return keyring.Set(KeyringService, keyringAccount, secret)
}

func DeleteJWTSecret(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// LoadJWTSecret resolves the token signing secret: the environment first,
// then the keychain, else a freshly generated secret that is stored in the
// keychain for the next start.
func LoadJWTSecret(keyringAccount string) ([]byte, Source, error) {
	if s := strings.TrimSpace(os.Getenv(JWTSecretEnv)); s != "" {
		if len(s) < minSecretLen {
			return nil, "", fmt.Errorf("%s must be at least %d characters", JWTSecretEnv, minSecretLen)
		}
		return []byte(s), SourceEnv, nil
	}

	if s, err := GetJWTSecret(keyringAccount); err == nil {
		return []byte(s), SourceKeyring, nil
	}

	s, err := RotateJWTSecret(keyringAccount)
	if err != nil {
		return nil, "", err
	}
	return []byte(s), SourceGenerated, nil
}

// RotateJWTSecret stores a new random secret. Tokens signed with the old
// secret stop verifying once the server reloads it.
func RotateJWTSecret(keyringAccount string) (string, error) {
	s, err := GenerateSecret()
	if err != nil {
		return "", err
	}
	if err := SetJWTSecret(keyringAccount, s); err != nil {
		return "", fmt.Errorf("store generated secret: %w", err)
	}
	return s, nil
}

func GenerateSecret() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
