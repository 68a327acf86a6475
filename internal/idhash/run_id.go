package idhash

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(seed_start|simulations|steps|epoch_len|artifact_ids...)
// Returns base58-encoded hash.
func ComputeRunID(
	seedStart uint64,
	simulations int,
	steps int,
	epochLen int,
	artifactIDs []string,
) string {
	data := fmt.Sprintf("%d|%d|%d|%d|%s",
		seedStart,
		simulations,
		steps,
		epochLen,
		strings.Join(artifactIDs, "|"),
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
