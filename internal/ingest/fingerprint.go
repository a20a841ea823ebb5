package ingest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// DefaultFingerprintKey keys content hashes when no key is configured.
// A fixed key keeps fingerprints stable across processes.
var DefaultFingerprintKey = []byte("csvcore-content-fingerprint-key!")

// Fingerprint returns the hex HighwayHash-256 of the file at path.
func Fingerprint(path string, key []byte) (string, error) {
	if len(key) != 32 {
		return "", fmt.Errorf("fingerprint key must be exactly 32 bytes, got %d", len(key))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := highwayhash.New(key)
	if err != nil {
		return "", fmt.Errorf("create hash: %w", err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
