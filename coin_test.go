package grug

import (
	"encoding/json"
	"testing"

	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func TestUintKeepsPrecision(t *testing.T) {
	// Larger than any 64 bit integer.
	const big = "340282366920938463463374607431768211455"

	u := MustParseUint(big)
	raw, err := json.Marshal(u)
	assert.Nil(t, err)
	assert.Equal(t, `"`+big+`"`, string(raw))

	var back Uint
	assert.Nil(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 0, u.Cmp(back))

	sum := back.Add(NewUint(1))
	assert.Equal(t, "340282366920938463463374607431768211456", sum.String())
	// Operations never modify their receiver.
	assert.Equal(t, big, back.String())
}

func TestParseUint(t *testing.T) {
	cases := map[string]struct {
		input   string
		wantErr *errors.Error
	}{
		"zero":     {input: "0"},
		"decimal":  {input: "1234"},
		"negative": {input: "-1", wantErr: errors.ErrInvalidAmount},
		"float":    {input: "1.5", wantErr: errors.ErrInvalidAmount},
		"empty":    {input: "", wantErr: errors.ErrInvalidAmount},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			u, err := ParseUint(tc.input)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.input, u.String())
		})
	}
}

func TestUintRejectsNumbers(t *testing.T) {
	var u Uint
	err := json.Unmarshal([]byte(`12`), &u)
	assert.IsErr(t, errors.ErrInvalidAmount, err)
}

func TestUintSub(t *testing.T) {
	res, err := NewUint(10).Sub(NewUint(4))
	assert.Nil(t, err)
	assert.Equal(t, "6", res.String())

	_, err = NewUint(4).Sub(NewUint(10))
	assert.IsErr(t, errors.ErrInvalidAmount, err)

	var zero Uint
	assert.Equal(t, true, zero.IsZero())
	assert.Equal(t, "0", zero.String())
}

func TestCoinValidate(t *testing.T) {
	cases := map[string]struct {
		coin       Coin
		wantFields map[string]*errors.Error
	}{
		"valid": {
			coin: NewCoin("uatom", 1),
			wantFields: map[string]*errors.Error{
				"Denom":  nil,
				"Amount": nil,
			},
		},
		"factory denom": {
			coin: NewCoin("factory/0xabc/token", 1),
			wantFields: map[string]*errors.Error{
				"Denom":  nil,
				"Amount": nil,
			},
		},
		"zero amount": {
			coin: NewCoin("uatom", 0),
			wantFields: map[string]*errors.Error{
				"Denom":  nil,
				"Amount": errors.ErrEmpty,
			},
		},
		"bad denom": {
			coin: NewCoin("1atom", 5),
			wantFields: map[string]*errors.Error{
				"Denom":  errors.ErrInvalidInput,
				"Amount": nil,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.coin.Validate()
			for field, want := range tc.wantFields {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestCoinsAdd(t *testing.T) {
	var cs Coins
	cs = cs.Add(NewCoin("uosmo", 3))
	cs = cs.Add(NewCoin("uatom", 1))
	cs = cs.Add(NewCoin("uosmo", 2))
	cs = cs.Add(NewCoin("zzz", 0))

	assert.Equal(t, "1uatom,5uosmo", cs.String())
	assert.Nil(t, cs.Validate())
	assert.Equal(t, "5", cs.AmountOf("uosmo").String())
	assert.Equal(t, true, cs.AmountOf("missing").IsZero())
}

func TestCoinsValidate(t *testing.T) {
	unsorted := Coins{NewCoin("uosmo", 1), NewCoin("uatom", 1)}
	assert.IsErr(t, errors.ErrInvalidInput, unsorted.Validate())

	duplicated := Coins{NewCoin("uatom", 1), NewCoin("uatom", 1)}
	assert.IsErr(t, errors.ErrInvalidInput, duplicated.Validate())

	_, err := NewCoins(NewCoin("uatom", 1), NewCoin("uatom", 2))
	assert.Nil(t, err)
}

func TestCoinsJSON(t *testing.T) {
	var none Coins
	raw, err := json.Marshal(none)
	assert.Nil(t, err)
	assert.Equal(t, `[]`, string(raw))

	var back Coins
	assert.Nil(t, json.Unmarshal(raw, &back))
	assert.Equal(t, none, back)

	some := Coins{NewCoin("uatom", 7)}
	raw, err = json.Marshal(some)
	assert.Nil(t, err)
	assert.Equal(t, `[{"denom":"uatom","amount":"7"}]`, string(raw))
}

func TestParseCoins(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    string
		wantErr *errors.Error
	}{
		"single":       {raw: "10uatom", want: "10uatom"},
		"normalized":   {raw: "3uosmo, 1uatom,2uosmo", want: "1uatom,5uosmo"},
		"empty":        {raw: "", want: ""},
		"no amount":    {raw: "uatom", wantErr: errors.ErrInvalidInput},
		"no denom":     {raw: "12", wantErr: errors.ErrInvalidInput},
		"zero":         {raw: "0uatom", wantErr: errors.ErrEmpty},
		"bad denom":    {raw: "1u atom", wantErr: errors.ErrInvalidInput},
		"negative":     {raw: "-1uatom", wantErr: errors.ErrInvalidInput},
		"ibc denom ok": {raw: "7ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2", want: "7ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2"},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseCoins(tc.raw)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}
