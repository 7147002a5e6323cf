package crypto

import (
	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Signer is a private key able to authorize transactions.
type Signer interface {
	// KeyType returns the algorithm of the key.
	KeyType() grug.KeyType
	// PublicKey returns the compressed public key.
	PublicKey() []byte
	// Sign returns the transaction credential for the given sign bytes.
	// Plain keys return a DER encoded signature, other signers may return
	// any credential the account contract understands.
	Sign(signBytes []byte) ([]byte, error)
}

// Verify checks a DER encoded signature of digest against a compressed
// public key of the given type.
func Verify(keyType grug.KeyType, pubKey, digest, sig []byte) (bool, error) {
	switch keyType {
	case grug.KeyTypeSecp256k1:
		return verifySecp256k1(pubKey, digest, sig)
	case grug.KeyTypeSecp256r1:
		return verifySecp256r1(pubKey, digest, sig)
	default:
		return false, errors.Wrapf(errors.ErrInvalidKeyType, "%q", string(keyType))
	}
}

// AccountSalt returns the salt the account factory uses to register the
// serial-th account of the signer.
func AccountSalt(s Signer, serial uint32) ([]byte, error) {
	return grug.DeriveSalt(s.KeyType(), s.PublicKey(), serial)
}

func checkDigest(digest []byte) error {
	if len(digest) != grug.HashLength {
		return errors.Wrapf(errors.ErrInvalidInput, "digest must be %d bytes, got %d", grug.HashLength, len(digest))
	}
	return nil
}
