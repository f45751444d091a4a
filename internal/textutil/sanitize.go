package textutil

import (
	"path/filepath"
	"strconv"
	"strings"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace
// and dots so it can never resolve to "." or "..".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	return strings.Trim(name, ".")
}

// SplitName returns the stem and extension of the final path element.
// Dotfiles without a further extension keep their leading dot in the stem.
func SplitName(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	if ext == base {
		return base, ""
	}
	return strings.TrimSuffix(base, ext), ext
}

// NumberedName returns stem_n.ext, the naming scheme used for destination
// collisions.
func NumberedName(stem, ext string, n int) string {
	return stem + "_" + strconv.Itoa(n) + ext
}
