package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/left-curve/grug-go/errors"
)

// CoinType is the BIP-44 coin type used for account keys.
const CoinType = 60

// HDPath returns the BIP-44 path of the i-th account key.
func HDPath(i uint32) string {
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", CoinType, i)
}

// DeriveSecp256k1 derives the i-th account key of a BIP-39 seed following
// m/44'/60'/0'/0/i.
func DeriveSecp256k1(seed []byte, i uint32) (*Secp256k1Key, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "master key: %s", err)
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + CoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		i,
	}
	key := master
	for _, idx := range path {
		key, err = key.Child(idx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %s: %s", HDPath(i), err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "private key: %s", err)
	}
	return &Secp256k1Key{priv: priv}, nil
}
