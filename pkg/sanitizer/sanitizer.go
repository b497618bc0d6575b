package sanitizer

import (
	"path/filepath"
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reUnsafeFilename  = regexp.MustCompile(`[^0-9A-Za-z._-]+`)
	reMultiUnderscore = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseUnderscores(s string) string {
	s = reMultiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeEmail lowercases and trims an address. Users are keyed by email,
// so every lookup and insert goes through here.
func NormalizeEmail(email string) string {
	return trimAndLower(email)
}

// SanitizeFilename reduces an uploaded file name to a safe object key suffix,
// keeping the lowercased extension.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	p := Pipeline{
		trimAndLower,
		func(s string) string { return reUnsafeFilename.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	stem = p.Apply(stem)
	if stem == "" {
		stem = "file"
	}
	return stem + reUnsafeFilename.ReplaceAllString(ext, "")
}
