package commands

import (
	"io"
	"os"
)

// readInput reads the named file, or stdin for "" and "-".
func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

// writeOutput writes data plus a newline to the named file, or to
// stdout for "" and "-".
func writeOutput(stdout io.Writer, name string, data []byte) error {
	data = append(data, '\n')
	if name == "" || name == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}
