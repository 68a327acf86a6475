package idhash

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// ComputeArtifactID computes a deterministic artifact_id from artifact
// contents using SHA256. Returns base58-encoded hash.
func ComputeArtifactID(contents []byte) string {
	hash := sha256.Sum256(contents)
	return base58.Encode(hash[:])
}

// ComputeArtifactIDFromFile reads the artifact at path and hashes it.
func ComputeArtifactIDFromFile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return ComputeArtifactID(contents), nil
}
