package constants

import "strings"

// Source kinds accepted by the extraction pipeline.
const (
	IMAGE = "IMAGE"
	HEIC  = "HEIC"
)

// ImageExtensions holds the default page image extensions for notebook ingestion.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"webp": {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHEICExt reports whether ext (normalized or not) is a HEIC/HEIF container.
func IsHEICExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "heic", "heif", "heics", "heifs":
		return true
	}
	return false
}

// MapExtToFormat returns IMAGE, HEIC or "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if IsHEICExt(ext) {
		return HEIC
	}
	if _, ok := ImageExtensions[ext]; ok {
		return IMAGE
	}
	return ""
}
