package gen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files into their package directories.
// Empty files remove a previously generated file, if any.
func WriteFiles(files []*GeneratedFile) error {
	for _, file := range files {
		if file.Empty() {
			err := os.Remove(file.Path())
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing stale file %s: %w", file.Path(), err)
			}

			continue
		}

		// Create output directory if it doesn't exist
		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		if err := os.WriteFile(file.Path(), file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}
