package crypto

import (
	"github.com/btcsuite/btcd/btcec"
	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Secp256k1Key is a private key on the bitcoin curve.
type Secp256k1Key struct {
	priv *btcec.PrivateKey
}

var _ Signer = (*Secp256k1Key)(nil)

// GenSecp256k1 returns a random new private key.
func GenSecp256k1() (*Secp256k1Key, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "generate key: %s", err)
	}
	return &Secp256k1Key{priv: priv}, nil
}

// Secp256k1FromBytes loads a 32 byte private key scalar.
func Secp256k1FromBytes(raw []byte) (*Secp256k1Key, error) {
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "private key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(raw))
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return &Secp256k1Key{priv: priv}, nil
}

func (k *Secp256k1Key) KeyType() grug.KeyType {
	return grug.KeyTypeSecp256k1
}

func (k *Secp256k1Key) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// Bytes returns the private key scalar.
func (k *Secp256k1Key) Bytes() []byte {
	return k.priv.Serialize()
}

func (k *Secp256k1Key) Sign(digest []byte) ([]byte, error) {
	if err := checkDigest(digest); err != nil {
		return nil, err
	}
	sig, err := k.priv.Sign(digest)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "sign: %s", err)
	}
	return sig.Serialize(), nil
}

func verifySecp256k1(pubKey, digest, sig []byte) (bool, error) {
	pub, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return false, errors.Wrapf(errors.ErrInvalidInput, "public key: %s", err)
	}
	s, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return false, errors.Wrapf(errors.ErrInvalidInput, "signature: %s", err)
	}
	return s.Verify(digest, pub), nil
}
