// Package env loads KEY=VALUE pairs from a .env file into the process
// environment so config files can reference them as ${VAR}.
package env

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultFile is read from the working directory by Load.
const DefaultFile = ".env"

// Load reads DefaultFile if it exists. A missing file is not an error;
// system environment variables still apply.
func Load() error {
	return LoadFile(DefaultFile)
}

// LoadFile sets every KEY=VALUE line of path in the environment. Blank lines
// and lines starting with # are skipped, an optional "export " prefix is
// accepted, and surrounding quotes are stripped. Values in the file win over
// variables already set.
func LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", path, lineNo)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty key", path, lineNo)
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
