package textutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UniquePath returns path when nothing exists there, otherwise the first
// "<stem> (n)<ext>" sibling that is free, counting from 1.
func UniquePath(path string) string {
	if !exists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// OutputPath joins dir with the sanitized title and extension, made unique.
func OutputPath(dir, title, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return UniquePath(filepath.Join(dir, SanitizeFileName(title)+ext))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
