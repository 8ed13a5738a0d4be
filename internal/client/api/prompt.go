package api

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassword prints label and reads a password from in. Terminal input
// is not echoed; piped input is read up to the end of the line.
func ReadPassword(in *os.File, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptLine prints label and returns the next trimmed line from scanner.
// ok is false once input is exhausted.
func PromptLine(scanner *bufio.Scanner, out io.Writer, label string) (line string, ok bool) {
	fmt.Fprint(out, label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
