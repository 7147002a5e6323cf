package grug

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/left-curve/grug-go/errors"
)

// Serialize returns the canonical wire representation of the given value.
//
// The wire format is JSON. Struct fields are always written in declaration
// order and map keys are sorted, so serializing equal values always produces
// identical bytes. This property is relied upon when computing sign bytes.
func Serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidType, "serialize %T: %s", v, err)
	}
	// Encoder always terminates a value with a new line.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// MustSerialize is like Serialize, but panics instead of returning errors.
// Only use when you control the value being passed in.
func MustSerialize(v interface{}) []byte {
	bz, err := Serialize(v)
	if err != nil {
		panic(err)
	}
	return bz
}

// Deserialize decodes wire representation into the value pointed by v.
// Unknown struct fields are ignored so that newer nodes can extend responses,
// but tagged unions reject any unknown or ambiguous variant.
func Deserialize(bz []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(bz))
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidType, "deserialize %T: %s", v, err)
	}
	if dec.More() {
		return errors.Wrapf(errors.ErrInvalidType, "deserialize %T: trailing data", v)
	}
	return nil
}

// EncodeBigEndian32 returns the fixed 4 byte big endian representation of
// n, as used in hash pre-images.
//
// Values that do not fit in 32 bits are a programming error and cause a
// panic.
func EncodeBigEndian32(n uint64) []byte {
	if n > math.MaxUint32 {
		panic(errors.Wrapf(errors.ErrOverflow, "%d does not fit in 32 bits", n))
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	return b
}

// DecodeBigEndian32 is the reverse of EncodeBigEndian32.
func DecodeBigEndian32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "want 4 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}
