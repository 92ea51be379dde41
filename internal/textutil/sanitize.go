package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxFileNameLength bounds sanitized names, excluding the extension.
	MaxFileNameLength = 200
	// DefaultFileName replaces names that sanitize to nothing.
	DefaultFileName = "untitled"
)

var (
	shellUnsafe      = regexp.MustCompile("[&;$|`\\\\<>{}()\\[\\]!#^~'\"*?]")
	whitespaceRun    = regexp.MustCompile(`\s+`)
	separatorReplace = strings.NewReplacer("/", "-", ":", "-")
)

// foldASCII strips combining marks after decomposition so "Café" becomes
// "Cafe" rather than "Caf".
func foldASCII(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeFileName turns a media title into a safe file name stem. Accents
// are folded, other non-ASCII characters and shell metacharacters are
// dropped, path separators and colons become dashes, whitespace collapses,
// and leading or trailing dots are trimmed. The result is capped at
// MaxFileNameLength and never empty.
func SanitizeFileName(name string) string {
	return SanitizeFileNameMax(name, MaxFileNameLength)
}

// SanitizeFileNameMax is SanitizeFileName with a custom length cap.
func SanitizeFileNameMax(name string, maxLength int) string {
	if strings.TrimSpace(name) == "" {
		return DefaultFileName
	}
	name = foldASCII(name)
	name = shellUnsafe.ReplaceAllString(name, "")
	name = separatorReplace.Replace(name)
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
	name = strings.Trim(name, ". ")
	if maxLength > 0 && len(name) > maxLength {
		name = strings.TrimSpace(name[:maxLength])
	}
	if name == "" {
		return DefaultFileName
	}
	return name
}
