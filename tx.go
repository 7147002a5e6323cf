package grug

import (
	"crypto/sha256"
	"strconv"

	"github.com/left-curve/grug-go/errors"
)

// Tx is the envelope broadcast to the chain. The credential is verified by
// the sender account contract against the sign bytes of the transaction.
type Tx struct {
	Sender     Address   `json:"sender"`
	Msgs       []Message `json:"msgs"`
	Credential Binary    `json:"credential"`
}

// Validate checks the envelope and all carried messages.
func (tx Tx) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", tx.Sender.Validate())
	if len(tx.Msgs) == 0 {
		errs = errors.AppendField(errs, "Msgs", errors.ErrEmpty)
	}
	for i, m := range tx.Msgs {
		errs = errors.AppendField(errs, "Msgs."+strconv.Itoa(i), m.Validate())
	}
	if len(tx.Credential) == 0 {
		errs = errors.AppendField(errs, "Credential", errors.ErrEmpty)
	}
	return errs
}

/*
SignBytes returns the digest signed by the sender of a transaction.

The account contract rebuilds the same pre-image, so the layout must match
exactly:

serialize(msgs) | sender      | chainID     | sequence
json            | utf8 (0x..) | utf8 string | uint32 (bigendian)

The pre-image is hashed with sha256.
*/
func SignBytes(msgs []Message, sender Address, chainID string, sequence uint32) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no messages")
	}
	if err := sender.Validate(); err != nil {
		return nil, errors.Wrap(err, "sender")
	}
	if chainID == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "chain id")
	}
	bz, err := Serialize(msgs)
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write(bz)
	h.Write([]byte(sender.String()))
	h.Write([]byte(chainID))
	h.Write(EncodeBigEndian32(uint64(sequence)))
	return h.Sum(nil), nil
}
