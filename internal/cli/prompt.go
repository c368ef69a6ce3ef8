package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// terminal returns the command's stdin when it is an interactive terminal
func terminal(cmd *cobra.Command) (*os.File, bool) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

// readSecret prompts for a password without echo on a terminal.
// Piped input is read one line at a time.
func readSecret(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := terminal(cmd); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readText reads all of stdin, telling terminal users how to finish
func readText(cmd *cobra.Command, label string) (string, error) {
	if _, ok := terminal(cmd); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter the %s, then press Ctrl-D:\n", label)
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(b), nil
}
