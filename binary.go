package grug

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// HashLength is the size of a Hash in bytes.
const HashLength = sha256.Size

// Binary is a byte sequence that is transported as a base64 string.
type Binary []byte

// MarshalJSON provides a base64 representation for JSON.
func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON parses JSON in base64 representation.
func (b *Binary) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "binary must be a string")
	}
	bz, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "malformed base64: %s", err)
	}
	*b = bz
	return nil
}

// String returns the base64 representation.
func (b Binary) String() string {
	return base64.StdEncoding.EncodeToString(b)
}

// HexBinary is a byte sequence that is transported as a hex string.
type HexBinary []byte

// MarshalJSON provides a hex representation for JSON,
// to override the standard base64 []byte encoding
func (h HexBinary) MarshalJSON() ([]byte, error) {
	return marshalHex(h)
}

// UnmarshalJSON parses JSON in hex representation,
// to override the standard base64 []byte encoding
func (h *HexBinary) UnmarshalJSON(src []byte) error {
	return unmarshalHex((*[]byte)(h), src)
}

// String returns the hex representation.
func (h HexBinary) String() string {
	return hex.EncodeToString(h)
}

// Hash is a sha256 digest, transported as a hex string. Code is identified
// by the hash of its bytes.
type Hash []byte

// CodeHashOf returns the content address of the given code. Two uploads of
// identical bytes always have the same hash.
func CodeHashOf(code []byte) Hash {
	h := sha256.Sum256(code)
	return h[:]
}

// ParseHash decodes a hex encoded hash.
func ParseHash(s string) (Hash, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "malformed hash: %s", err)
	}
	h := Hash(bz)
	return h, h.Validate()
}

// Validate returns an error if the hash is not of the valid size.
func (h Hash) Validate() error {
	if len(h) != HashLength {
		return errors.Wrapf(errors.ErrInvalidInput, "hash must be %d bytes, got %d", HashLength, len(h))
	}
	return nil
}

// Equals checks if two hashes are the same.
func (h Hash) Equals(o Hash) bool {
	return bytes.Equal(h, o)
}

// String returns the hex representation.
func (h Hash) String() string {
	return hex.EncodeToString(h)
}

// MarshalJSON provides a hex representation for JSON.
func (h Hash) MarshalJSON() ([]byte, error) {
	return marshalHex(h)
}

// UnmarshalJSON parses a hex encoded hash of the valid size.
func (h *Hash) UnmarshalJSON(src []byte) error {
	var bz []byte
	if err := unmarshalHex(&bz, src); err != nil {
		return err
	}
	if err := Hash(bz).Validate(); err != nil {
		return err
	}
	*h = bz
	return nil
}

func unmarshalHex(dst *[]byte, src []byte) error {
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "hex must be a string")
	}
	bz, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "malformed hex: %s", err)
	}
	*dst = bz
	return nil
}

func marshalHex(bytes []byte) ([]byte, error) {
	return json.Marshal(hex.EncodeToString(bytes))
}
