package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyPrefix starts every API key: fk-v1-<secret_id>-<random>.
const KeyPrefix = "fk-v1-"

const (
	secretIDLen = 32
	randomLen   = 64
)

// ParseAPIKey splits a key into its secret id and random part.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return "", "", ErrInvalidKeyFormat
	}
	secretID, randomData, ok = strings.Cut(rest, "-")
	if !ok || len(secretID) != secretIDLen || len(randomData) != randomLen {
		return "", "", ErrInvalidKeyFormat
	}
	if !isLowerHex(secretID) || !isLowerHex(randomData) {
		return "", "", ErrInvalidKeyFormat
	}
	return secretID, randomData, nil
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ComputeHMAC returns HMAC-SHA256(secret, apiKey). Only this hash is stored.
func ComputeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}

// VerifyHMAC compares two hashes in constant time.
func VerifyHMAC(expected, computed []byte) bool {
	return hmac.Equal(expected, computed)
}

// FormatAPIKey assembles a key from its parts.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s%s-%s", KeyPrefix, secretID, randomData)
}

// GenerateAPIKey creates a key bound to secretID with 256 random bits.
func GenerateAPIKey(secretID string) (string, error) {
	if len(secretID) != secretIDLen || !isLowerHex(secretID) {
		return "", fmt.Errorf("secret_id must be %d lowercase hex chars", secretIDLen)
	}
	buf := make([]byte, randomLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return FormatAPIKey(secretID, hex.EncodeToString(buf)), nil
}
