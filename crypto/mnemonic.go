package crypto

import (
	"crypto/sha512"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/left-curve/grug-go/errors"
)

// SeedFromMnemonic returns the BIP-39 seed of a mnemonic sentence. Words
// are separated by single spaces before hashing. The checksum of the
// sentence is not verified.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "mnemonic of %d words", len(words))
	}
	sentence := strings.Join(words, " ")
	return pbkdf2.Key([]byte(sentence), []byte("mnemonic"+passphrase), 2048, 64, sha512.New), nil
}
