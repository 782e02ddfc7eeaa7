package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptToken asks for the developer token on the terminal behind fd without
// echoing it.
func promptToken(w io.Writer, fd int) (string, error) {
	if !isTerminal(fd) {
		return "", errors.New("developer token is not configured and stdin is not a terminal")
	}
	if _, err := fmt.Fprint(w, "Developer token: "); err != nil {
		return "", err
	}
	b, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", errors.New("empty developer token")
	}
	return token, nil
}
