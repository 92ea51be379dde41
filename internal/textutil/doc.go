// Package textutil prepares media titles for use as file names.
//
// SanitizeFileName folds accents to ASCII, strips shell metacharacters and
// path separators, and caps the length. UniquePath picks a free path by
// appending " (n)" before the extension.
package textutil
