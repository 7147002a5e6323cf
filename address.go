package grug

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/left-curve/grug-go/errors"
)

const (
	// AddressLength is the length of all addresses.
	AddressLength = 32

	// AddressPrefix is prepended to the hex representation of an address.
	AddressPrefix = "0x"
)

// Address represents a collision-free, one-way digest identifying an
// account on chain. Contract addresses are never chosen, they are derived
// from the deployer, the code hash and a salt (see DeriveAddress).
//
// It will be of size AddressLength
type Address []byte

// ParseAddress decodes the textual representation of an address. The 0x
// prefix is optional.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, AddressPrefix)
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "malformed address %q: %s", s, err)
	}
	addr := Address(bz)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress, but panics instead of returning
// errors. Only use with constant input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInvalidInput, "address must be %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// String returns the 0x prefixed, lowercase hex representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return AddressPrefix + hex.EncodeToString(a)
}

// MarshalJSON provides the 0x prefixed hex representation for JSON,
// to override the standard base64 []byte encoding
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON parses JSON in 0x prefixed hex representation.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "address must be a string")
	}
	// No value zero the address.
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
