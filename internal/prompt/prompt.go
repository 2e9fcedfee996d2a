// Package prompt asks the operator for the report file name.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// FileName asks for the report name and returns def when the answer is blank
// or the input is closed before a line is read.
func FileName(in io.Reader, out io.Writer, def string) string {
	fmt.Fprintf(out, "Como deseja nomear o arquivo? [%s]: ", def)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return def
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return def
	}
	return name
}
