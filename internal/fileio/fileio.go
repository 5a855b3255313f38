// Package fileio reads AsyncAPI input files and writes rewritten documents.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holydocs/ceprep"
)

// InputExtension is the only accepted input file extension.
const InputExtension = ".json"

// ReadInput returns the content of an existing .json file.
func ReadInput(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("error checking file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != InputExtension {
		return nil, ceprep.NewUnsupportedFormatError(ext, InputExtension)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	return content, nil
}

// WriteOutput writes data to path, creating missing parent directories.
func WriteOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}

	return nil
}
