package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTypeNotAllowed is returned for files whose extension is not in AllowedExtensions
var ErrFileTypeNotAllowed = errors.New("file type not allowed")

// AllowedExtensions lists the accepted upload extensions, lower case and without the dot
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"pdf":  {},
	"svg":  {},
	"webp": {},
}

var folderRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// AllowedExtension returns the lower-cased extension of filename, or ErrFileTypeNotAllowed
func AllowedExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := AllowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrFileTypeNotAllowed, filename)
	}
	return ext, nil
}

// GenerateFileName generates a new file name based on the file extension
// It creates a UUID-based filename with the provided extension
func GenerateFileName(extension string) string {
	newUUID := uuid.New().String()
	// Ensure extension starts with a dot if it doesn't already
	if extension != "" && extension[0] != '.' {
		return newUUID + "." + extension
	}
	return newUUID + extension
}

func validateFolder(folder string) error {
	if !folderRegex.MatchString(folder) {
		return fmt.Errorf("invalid upload folder %q", folder)
	}
	return nil
}
