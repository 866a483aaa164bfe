package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrInvalidOTP is returned when the entered verification code is not
// exactly six digits. Validation happens locally, before any request.
var ErrInvalidOTP = errors.New("verification code must be exactly 6 digits")

// GetSimpleText prints a prompt to w and reads a single trimmed line from
// reader. A partial line before EOF is still returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ValidateOTP checks that code is exactly six ASCII digits.
func ValidateOTP(code string) error {
	if len(code) != 6 {
		return ErrInvalidOTP
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrInvalidOTP
		}
	}
	return nil
}

// GetOTP prompts for a 6-digit verification code and validates it locally,
// re-prompting on bad input so an invalid code never reaches the server.
func GetOTP(reader *bufio.Reader, w io.Writer) (string, error) {
	for {
		code, err := GetSimpleText(reader, "Enter the 6-digit verification code from your email", w)
		if err != nil {
			return "", err
		}
		if err := ValidateOTP(code); err != nil {
			fmt.Fprintln(w, err.Error())
			continue
		}
		return code, nil
	}
}
