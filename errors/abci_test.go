package errors

import (
	stdlib "errors"
	"strings"
	"testing"
)

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err       error
		debug     bool
		wantSpace string
		wantCode  uint32
		wantLog   string
	}{
		"nil error": {
			err:      nil,
			wantCode: SuccessABCICode,
		},
		"registered root error": {
			err:       ErrNotFound,
			wantSpace: Codespace,
			wantCode:  ErrNotFound.Code(),
			wantLog:   "not found",
		},
		"wrapped error keeps the root code": {
			err:       Wrap(ErrUnauthorized, "sequence"),
			wantSpace: Codespace,
			wantCode:  ErrUnauthorized.Code(),
			wantLog:   "sequence: unauthorized",
		},
		"field errors report the first member": {
			err:       AppendField(AppendField(nil, "To", ErrEmpty), "Coins", ErrInvalidAmount),
			wantSpace: Codespace,
			wantCode:  ErrEmpty.Code(),
		},
		"stdlib errors are redacted": {
			err:       stdlib.New("disk on fire"),
			wantSpace: Codespace,
			wantCode:  internalABCICode,
			wantLog:   internalABCILog,
		},
		"stdlib errors are shown in debug mode": {
			err:       stdlib.New("disk on fire"),
			debug:     true,
			wantSpace: Codespace,
			wantCode:  internalABCICode,
			wantLog:   "disk on fire",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			space, code, log := ABCIInfo(tc.err, tc.debug)
			if space != tc.wantSpace {
				t.Errorf("want %q codespace, got %q", tc.wantSpace, space)
			}
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if tc.wantLog != "" && !strings.HasPrefix(log, tc.wantLog) {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}
