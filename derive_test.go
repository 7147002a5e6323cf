package grug

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func TestDeriveAddress(t *testing.T) {
	deployer := Address(bytes.Repeat([]byte{0x11}, AddressLength))
	codeHash := CodeHashOf([]byte("hello wasm"))
	assert.Equal(t, "136f0dec77ef3c5570737642efa4c7e150d23a492a37fc5b2eff183ef7084f02", codeHash.String())

	addr := DeriveAddress(deployer, codeHash, []byte("salt-1"))
	assert.Equal(t, "0x1096a65ea3fae88755eadffbe974fbf63d92d6dbefdaaf510c37b9b25dac96d1", addr.String())

	// Same input, same output.
	again := DeriveAddress(deployer, codeHash, []byte("salt-1"))
	assert.Equal(t, addr, again)

	// The textual form only differs by its prefix.
	fromString, err := DeriveAddressFromString(deployer.String(), codeHash, []byte("salt-1"))
	assert.Nil(t, err)
	assert.Equal(t, addr, fromString)
}

func TestDeriveAddressSaltsDoNotCollide(t *testing.T) {
	deployer := Address(bytes.Repeat([]byte{0x42}, AddressLength))
	codeHash := CodeHashOf([]byte("code"))

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		addr := DeriveAddress(deployer, codeHash, EncodeBigEndian32(uint64(i)))
		if _, ok := seen[addr.String()]; ok {
			t.Fatalf("salt %d collides", i)
		}
		seen[addr.String()] = struct{}{}
	}
}

func TestDeriveAddressFromMalformedString(t *testing.T) {
	_, err := DeriveAddressFromString("0x1234", CodeHashOf(nil), nil)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestDeriveSalt(t *testing.T) {
	pubKey := append([]byte{0x02}, bytes.Repeat([]byte{0xab}, 32)...)

	salt, err := DeriveSalt(KeyTypeSecp256k1, pubKey, 7)
	assert.Nil(t, err)
	assert.Equal(t, "b4fc61926923da2f364e623e2da3b692b914a3cbe4e3927b6c1dfcc67e3c095d", hex.EncodeToString(salt))

	other, err := DeriveSalt(KeyTypeSecp256r1, pubKey, 7)
	assert.Nil(t, err)
	if bytes.Equal(salt, other) {
		t.Fatal("key type must be part of the salt")
	}

	_, err = DeriveSalt(KeyType("ed25519"), pubKey, 7)
	assert.IsErr(t, errors.ErrInvalidKeyType, err)
}

func TestParseKeyType(t *testing.T) {
	kt, err := ParseKeyType("secp256r1")
	assert.Nil(t, err)
	assert.Equal(t, KeyTypeSecp256r1, kt)

	_, err = ParseKeyType("rsa")
	assert.IsErr(t, errors.ErrInvalidKeyType, err)
}
