// Package credentials provides the interactive last link of the Session
// Controller's credential resolution chain (spec §4.5): when no stored
// PAT or OAuth token exists for a source, the CLI front end falls back to
// asking the user directly.
package credentials

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PromptPassword reads a password from stdin without echoing it to the
// terminal, printing prompt to out first. Falls back to a plain line
// read when stdin isn't a terminal (e.g. piped input in tests).
func PromptPassword(out io.Writer, in *os.File, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(in, &line); err != nil && err != io.EOF {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	}

	bytes, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}
