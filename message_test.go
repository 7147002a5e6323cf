package grug

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func testAddr(b byte) Address {
	return Address(bytes.Repeat([]byte{b}, AddressLength))
}

func TestMessageWireFormat(t *testing.T) {
	to := testAddr(0x22)
	admin := testAddr(0x33)
	codeHash := CodeHashOf([]byte("code"))

	instantiate, err := NewInstantiateMsg(codeHash, map[string]string{"name": "x"}, []byte("s"), nil, &admin)
	assert.Nil(t, err)

	cases := map[string]struct {
		msg     Message
		wantTag string
		wantRaw string
	}{
		"transfer": {
			msg:     NewTransferMsg(to, Coins{NewCoin("uatom", 100)}),
			wantTag: MsgTagTransfer,
			wantRaw: `{"transfer":{"to":"` + to.String() + `","coins":[{"denom":"uatom","amount":"100"}]}}`,
		},
		"store code": {
			msg:     NewStoreCodeMsg([]byte{1, 2, 3}),
			wantTag: MsgTagStoreCode,
			wantRaw: `{"store_code":{"wasm_byte_code":"AQID"}}`,
		},
		"instantiate": {
			msg:     instantiate,
			wantTag: MsgTagInstantiate,
			wantRaw: `{"instantiate":{"code_hash":"` + codeHash.String() + `","msg":"eyJuYW1lIjoieCJ9","salt":"cw==","funds":[],"admin":"` + admin.String() + `"}}`,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantTag, tc.msg.Kind())

			raw, err := Serialize(tc.msg)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantRaw, string(raw))

			var back Message
			assert.Nil(t, Deserialize(raw, &back))
			assert.Equal(t, tc.msg, back)
		})
	}
}

func TestMessageRoundTrip(t *testing.T) {
	owner := testAddr(0x01)
	execute, err := NewExecuteMsg(testAddr(0x02), map[string]interface{}{"mint": map[string]int{"amount": 3}}, Coins{NewCoin("uatom", 1)})
	assert.Nil(t, err)
	migrate, err := NewMigrateMsg(testAddr(0x03), CodeHashOf([]byte("v2")), struct{}{})
	assert.Nil(t, err)

	msgs := []Message{
		execute,
		migrate,
		NewUpdateConfigMsg(Config{
			Owner:         &owner,
			Bank:          testAddr(0x04),
			BeginBlockers: []Address{testAddr(0x05)},
			EndBlockers:   []Address{},
			Permissions: Permissions{
				Upload:      Permission{Kind: PermissionSomebodies, Somebodies: []Address{owner}},
				Instantiate: Permission{Kind: PermissionEverybody},
			},
		}),
	}

	raw, err := Serialize(msgs)
	assert.Nil(t, err)

	var back []Message
	assert.Nil(t, Deserialize(raw, &back))
	assert.Equal(t, msgs, back)
}

func TestMessageExactlyOneVariant(t *testing.T) {
	var empty Message
	_, err := empty.MarshalJSON()
	assert.IsErr(t, errors.ErrInvalidMsg, err)
	assert.Equal(t, "", empty.Kind())

	both := NewStoreCodeMsg([]byte{1})
	both.Transfer = &TransferMsg{To: testAddr(1)}
	_, err = both.MarshalJSON()
	assert.IsErr(t, errors.ErrInvalidMsg, err)
	assert.IsErr(t, errors.ErrInvalidMsg, both.Validate())

	cases := map[string]string{
		"no variant":      `{}`,
		"two variants":    `{"store_code":{"wasm_byte_code":"AQ=="},"transfer":{"to":"","coins":[]}}`,
		"unknown variant": `{"burn":{}}`,
		"not an object":   `"transfer"`,
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var m Message
			err := json.Unmarshal([]byte(raw), &m)
			assert.IsErr(t, errors.ErrInvalidMsg, err)
		})
	}
}

func TestMessageValidate(t *testing.T) {
	assert.Nil(t, NewTransferMsg(testAddr(1), Coins{NewCoin("uatom", 1)}).Validate())

	err := NewTransferMsg(Address{1, 2}, nil).Validate()
	assert.FieldError(t, err, "To", errors.ErrInvalidInput)
	assert.FieldError(t, err, "Coins", errors.ErrEmpty)

	err = NewStoreCodeMsg(nil).Validate()
	assert.FieldError(t, err, "WasmByteCode", errors.ErrEmpty)

	err = Message{Migrate: &MigrateMsg{Contract: testAddr(1)}}.Validate()
	assert.FieldError(t, err, "Contract", nil)
	assert.FieldError(t, err, "NewCodeHash", errors.ErrInvalidInput)
}

func TestPermissionJSON(t *testing.T) {
	cases := map[string]struct {
		perm Permission
		raw  string
	}{
		"nobody":    {perm: Permission{Kind: PermissionNobody}, raw: `"nobody"`},
		"everybody": {perm: Permission{Kind: PermissionEverybody}, raw: `"everybody"`},
		"somebodies": {
			perm: Permission{Kind: PermissionSomebodies, Somebodies: []Address{testAddr(9)}},
			raw:  `{"somebodies":["` + testAddr(9).String() + `"]}`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := json.Marshal(tc.perm)
			assert.Nil(t, err)
			assert.Equal(t, tc.raw, string(raw))

			var back Permission
			assert.Nil(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tc.perm, back)
		})
	}

	var p Permission
	assert.IsErr(t, errors.ErrInvalidType, json.Unmarshal([]byte(`"somebody"`), &p))
}
