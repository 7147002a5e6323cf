package grug

import (
	"encoding/hex"
	"testing"

	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func TestSignBytes(t *testing.T) {
	msgs := []Message{NewTransferMsg(testAddr(0x22), Coins{NewCoin("uatom", 100)})}

	bz, err := SignBytes(msgs, testAddr(0x11), "grug-1", 5)
	assert.Nil(t, err)
	assert.Equal(t, "dd7c58484695629edc0e7492e9d9c68fd7e56924aa190f46cba7bb67aa1c556f", hex.EncodeToString(bz))

	// Every part of the pre-image must change the digest.
	variants := map[string][]byte{}
	variants["sequence"], _ = SignBytes(msgs, testAddr(0x11), "grug-1", 6)
	variants["chain"], _ = SignBytes(msgs, testAddr(0x11), "grug-2", 5)
	variants["sender"], _ = SignBytes(msgs, testAddr(0x12), "grug-1", 5)
	for name, other := range variants {
		if hex.EncodeToString(other) == hex.EncodeToString(bz) {
			t.Fatalf("%s does not change sign bytes", name)
		}
	}
}

func TestSignBytesErrors(t *testing.T) {
	msgs := []Message{NewStoreCodeMsg([]byte{1})}

	_, err := SignBytes(nil, testAddr(1), "grug-1", 0)
	assert.IsErr(t, errors.ErrEmpty, err)

	_, err = SignBytes(msgs, testAddr(1), "", 0)
	assert.IsErr(t, errors.ErrEmpty, err)

	_, err = SignBytes(msgs, Address{1}, "grug-1", 0)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestTxRoundTrip(t *testing.T) {
	tx := Tx{
		Sender:     testAddr(7),
		Msgs:       []Message{NewStoreCodeMsg([]byte("wasm")), NewTransferMsg(testAddr(8), Coins{NewCoin("uatom", 1)})},
		Credential: []byte{0x30, 0x44},
	}
	assert.Nil(t, tx.Validate())

	raw, err := Serialize(tx)
	assert.Nil(t, err)

	var back Tx
	assert.Nil(t, Deserialize(raw, &back))
	assert.Equal(t, tx, back)
}

func TestTxValidate(t *testing.T) {
	err := Tx{Sender: testAddr(1)}.Validate()
	assert.FieldError(t, err, "Msgs", errors.ErrEmpty)
	assert.FieldError(t, err, "Credential", errors.ErrEmpty)
	assert.FieldError(t, err, "Sender", nil)
}
