package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// MinSecretBytes is the shortest accepted HMAC secret.
const MinSecretBytes = 32

// SecretEnv is the environment variable holding the primary HMAC secret.
// Rotation secrets use SecretEnv_1, SecretEnv_2, ... without gaps.
const SecretEnv = EnvPrefix + "_HMAC_SECRET"

// HMACSecrets reads API key secrets from the environment.
// Each value is <secret_id>:<base64_secret>; the result maps secret_id
// to the decoded secret.
func HMACSecrets() (map[string][]byte, error) {
	return hmacSecretsFrom(os.Getenv)
}

func hmacSecretsFrom(getenv func(string) string) (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(name, val string) error {
		id, secret, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, dup := secrets[id]; dup {
			return fmt.Errorf("duplicate secret_id '%s' in %s (check %s and %s_* for conflicts)", id, name, SecretEnv, SecretEnv)
		}
		secrets[id] = secret
		return nil
	}

	if val := getenv(SecretEnv); val != "" {
		if err := add(SecretEnv, val); err != nil {
			return nil, err
		}
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", SecretEnv, i)
		val := getenv(name)
		if val == "" {
			break
		}
		if err := add(name, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecret decodes a bare base64 secret.
func ParseHMACSecret(value string) ([]byte, error) {
	return decodeSecret(strings.TrimSpace(value))
}

// ParseHMACSecretWithID parses <secret_id>:<base64_secret>. The id is a
// UUIDv7 written as 32 lowercase hex chars, as embedded in API keys.
func ParseHMACSecretWithID(value string) (secretID string, secret []byte, err error) {
	id, encoded, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}
	if len(id) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	if _, err := hex.DecodeString(id); err != nil || strings.ToLower(id) != id {
		return "", nil, fmt.Errorf("secret_id must be lowercase hex chars only")
	}

	secret, err = decodeSecret(encoded)
	if err != nil {
		return "", nil, err
	}
	return id, secret, nil
}

func decodeSecret(encoded string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("secret must be at least %d bytes, got %d", MinSecretBytes, len(secret))
	}
	return secret, nil
}
