package common

import (
	"fmt"
	"os"
	"path/filepath"

	"resumeforge/internal/errors"
	"resumeforge/internal/utils"
)

// ReadInputFiles validates every filename and returns their contents in the
// same order. Non-text extensions only produce a warning; plenty of valid
// resumes arrive without one.
func ReadInputFiles(logger *errors.Logger, filenames ...string) ([]string, error) {
	contents := make([]string, 0, len(filenames))

	for _, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if !utils.IsTextFile(filename) {
			if logger != nil {
				logger.Warn("File may not be a text file", "filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s may not be a text file\n", filename)
			}
		}

		data, err := os.ReadFile(filename)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
					fmt.Sprintf("File not found: %s", filename), err)
			}
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot read file: %s", filename), err)
		}

		contents = append(contents, string(data))
	}

	return contents, nil
}

// WriteOutputFile writes content to path, creating parent directories as
// needed. An empty path is rejected here; callers route that case to stdout.
func WriteOutputFile(path, content string) error {
	if path == "" {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			"Output file path is empty", nil)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}

	return nil
}
