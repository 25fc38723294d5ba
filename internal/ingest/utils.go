package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/study-notebook/constants"
)

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// ExtSet lowercases includeExts, falling back to the default page image set.
func ExtSet(includeExts []string) map[string]struct{} {
	if len(includeExts) == 0 {
		return constants.ImageExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range includeExts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
