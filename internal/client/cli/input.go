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

// Terminal seams replaced in tests.
var (
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var errEmptyInput = errors.New("input required")

// promptLine writes "label: " and returns the next line from r without
// surrounding whitespace. A final line without newline is accepted.
// An empty answer is errEmptyInput.
func promptLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)

	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), errEmptyInput)
	}
	return line, nil
}

// promptPassword reads a password with echo off. The caller owns the
// returned slice and should wipe it.
func promptPassword(w io.Writer, label string) ([]byte, error) {
	fmt.Fprintf(w, "%s: ", label)
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return nil, fmt.Errorf("password: %w", errEmptyInput)
	}
	return pw, nil
}
