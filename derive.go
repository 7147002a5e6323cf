package grug

import (
	"crypto/sha256"

	"github.com/left-curve/grug-go/errors"
)

// KeyType is the public key algorithm of an account. The account factory
// only registers accounts for the key types listed below.
type KeyType string

const (
	KeyTypeSecp256k1 KeyType = "secp256k1"
	KeyTypeSecp256r1 KeyType = "secp256r1"
)

// ParseKeyType returns the key type of the given name or ErrInvalidKeyType.
func ParseKeyType(s string) (KeyType, error) {
	kt := KeyType(s)
	if err := kt.Validate(); err != nil {
		return "", err
	}
	return kt, nil
}

// Validate returns ErrInvalidKeyType for unsupported algorithms.
func (kt KeyType) Validate() error {
	switch kt {
	case KeyTypeSecp256k1, KeyTypeSecp256r1:
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidKeyType, "%q", string(kt))
	}
}

// DeriveAddress returns the address a contract will be instantiated at.
//
//   address = sha256(deployer | codeHash | salt)
//
// The result only depends on the arguments, so an instantiate address can
// be computed before the transaction is confirmed.
func DeriveAddress(deployer Address, codeHash Hash, salt []byte) Address {
	h := sha256.New()
	h.Write(deployer)
	h.Write(codeHash)
	h.Write(salt)
	return h.Sum(nil)
}

// DeriveAddressFromString is DeriveAddress for a deployer given in its
// textual form. The 0x prefix is stripped before the raw bytes are hashed.
func DeriveAddressFromString(deployer string, codeHash Hash, salt []byte) (Address, error) {
	addr, err := ParseAddress(deployer)
	if err != nil {
		return nil, errors.Wrap(err, "deployer")
	}
	return DeriveAddress(addr, codeHash, salt), nil
}

// DeriveSalt returns the salt used by the account factory to register the
// serial-th account of a public key.
//
//   salt = sha256(utf8(keyType) | publicKey | bigEndian32(serial))
func DeriveSalt(keyType KeyType, publicKey []byte, serial uint32) ([]byte, error) {
	if err := keyType.Validate(); err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write([]byte(keyType))
	h.Write(publicKey)
	h.Write(EncodeBigEndian32(uint64(serial)))
	return h.Sum(nil), nil
}
