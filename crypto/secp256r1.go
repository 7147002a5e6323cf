package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Secp256r1Key is a private key on the NIST P-256 curve, the curve used by
// platform authenticators.
type Secp256r1Key struct {
	priv *ecdsa.PrivateKey
}

var _ Signer = (*Secp256r1Key)(nil)

// GenSecp256r1 returns a random new private key.
func GenSecp256r1() (*Secp256r1Key, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "generate key: %s", err)
	}
	return &Secp256r1Key{priv: priv}, nil
}

// Secp256r1FromBytes loads a 32 byte private key scalar.
func Secp256r1FromBytes(raw []byte) (*Secp256r1Key, error) {
	if len(raw) != 32 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "private key must be 32 bytes, got %d", len(raw))
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "private key out of range")
	}
	priv := &ecdsa.PrivateKey{D: d}
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(raw)
	return &Secp256r1Key{priv: priv}, nil
}

func (k *Secp256r1Key) KeyType() grug.KeyType {
	return grug.KeyTypeSecp256r1
}

func (k *Secp256r1Key) PublicKey() []byte {
	return elliptic.MarshalCompressed(k.priv.Curve, k.priv.X, k.priv.Y)
}

func (k *Secp256r1Key) Sign(digest []byte) ([]byte, error) {
	if err := checkDigest(digest); err != nil {
		return nil, err
	}
	sig, err := ecdsa.SignASN1(rand.Reader, k.priv, digest)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "sign: %s", err)
	}
	return sig, nil
}

// ParseSecp256r1PublicKey decodes a compressed or uncompressed P-256 point.
func ParseSecp256r1PublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()
	var x, y *big.Int
	if len(raw) == 33 {
		x, y = elliptic.UnmarshalCompressed(curve, raw)
	} else {
		x, y = elliptic.Unmarshal(curve, raw)
	}
	if x == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "malformed secp256r1 public key")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// CompressSecp256r1 returns the compressed form of a P-256 point given in
// any encoding.
func CompressSecp256r1(raw []byte) ([]byte, error) {
	pub, err := ParseSecp256r1PublicKey(raw)
	if err != nil {
		return nil, err
	}
	return elliptic.MarshalCompressed(pub.Curve, pub.X, pub.Y), nil
}

func verifySecp256r1(pubKey, digest, sig []byte) (bool, error) {
	pub, err := ParseSecp256r1PublicKey(pubKey)
	if err != nil {
		return false, err
	}
	return ecdsa.VerifyASN1(pub, digest, sig), nil
}
