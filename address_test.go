package grug

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func TestParseAddress(t *testing.T) {
	hexAddr := strings.Repeat("ab", AddressLength)

	cases := map[string]struct {
		input   string
		wantErr *errors.Error
	}{
		"with prefix": {
			input: "0x" + hexAddr,
		},
		"without prefix": {
			input: hexAddr,
		},
		"too short": {
			input:   "0xabcd",
			wantErr: errors.ErrInvalidInput,
		},
		"not hex": {
			input:   "0x" + strings.Repeat("zz", AddressLength),
			wantErr: errors.ErrInvalidInput,
		},
		"empty": {
			input:   "",
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			addr, err := ParseAddress(tc.input)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, "0x"+hexAddr, addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("0x" + strings.Repeat("0f", AddressLength))

	raw, err := json.Marshal(addr)
	assert.Nil(t, err)
	assert.Equal(t, `"0x`+strings.Repeat("0f", AddressLength)+`"`, string(raw))

	var back Address
	assert.Nil(t, json.Unmarshal(raw, &back))
	assert.Equal(t, true, addr.Equals(back))

	var empty Address
	assert.Nil(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Equal(t, 0, len(empty))

	assert.IsErr(t, errors.ErrInvalidInput, json.Unmarshal([]byte(`123`), &empty))
}
