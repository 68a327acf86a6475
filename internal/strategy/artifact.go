package strategy

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Artifact authenticity errors.
var (
	ErrBadSignerKey   = errors.New("signer key is not a valid ed25519 point")
	ErrBadSignature   = errors.New("artifact signature does not verify")
	ErrUnsignedDenied = errors.New("unsigned artifact rejected")
)

// Artifact describes one submitted strategy artifact as handed over by the
// job layer: the compiled module plus an optional detached ed25519
// signature from the submission service.
type Artifact struct {
	Path      string
	SignerKey string // base58 ed25519 public key, empty if unsigned
	Signature string // base58 signature over the artifact bytes
}

// Verify checks the artifact's signature. Unsigned artifacts pass only when
// allowUnsigned is set.
func (a Artifact) Verify(allowUnsigned bool) error {
	if a.SignerKey == "" {
		if allowUnsigned {
			return nil
		}
		return fmt.Errorf("%s: %w", a.Path, ErrUnsignedDenied)
	}

	key, err := base58.Decode(a.SignerKey)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return fmt.Errorf("%s: %w", a.Path, ErrBadSignerKey)
	}
	// Reject keys that are not points on the curve before doing any
	// signature math.
	if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
		return fmt.Errorf("%s: %w", a.Path, ErrBadSignerKey)
	}

	sig, err := base58.Decode(a.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%s: %w", a.Path, ErrBadSignature)
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", a.Path, err)
	}
	if !ed25519.Verify(ed25519.PublicKey(key), data, sig) {
		return fmt.Errorf("%s: %w", a.Path, ErrBadSignature)
	}
	return nil
}
