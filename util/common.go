package util

import "os"

// ToPtr returns a pointer to the given value.
func ToPtr[T any](v T) *T {
	return &v
}

// FileExists returns true if specified file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
