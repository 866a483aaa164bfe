package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateOTP(t *testing.T) {
	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"six digits", "123456", true},
		{"all zeros", "000000", true},
		{"too short", "12345", false},
		{"too long", "1234567", false},
		{"empty", "", false},
		{"letters", "12a456", false},
		{"unicode digits rejected", "12345٠", false},
		{"spaces", "123 56", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOTP(tc.code)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidOTP)
			}
		})
	}
}

func TestGetOTP_RepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer

	// Two bad codes, then a valid one. Only the valid code comes back.
	code, err := GetOTP(rdr("12345\nabcdef\n654321\n"), &out)

	require.NoError(t, err)
	require.Equal(t, "654321", code)
	require.Contains(t, out.String(), "exactly 6 digits")
}

func TestGetOTP_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetOTP(rdr(""), &out)
	require.Error(t, err)
}
