package media

import (
	"path/filepath"
	"slices"
	"strings"
)

type Kind int

const (
	ImageKind Kind = iota
	VideoKind
	UnknownKind
)

var (
	imageExtensions = []string{".heic", ".jpg", ".jpeg", ".png", ".arw", ".dng"}
	videoExtensions = []string{".mov", ".mp4", ".avi"}
)

// KindOf classifies a file by its extension alone; no part of the pipeline
// ever sniffs file content to decide what it is.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(imageExtensions, ext):
		return ImageKind
	case slices.Contains(videoExtensions, ext):
		return VideoKind
	default:
		return UnknownKind
	}
}

// Eligible reports whether the file at the given path is a candidate for
// selection. Hidden files are never eligible, and videos are only eligible
// when the caller has asked for them.
func Eligible(path string, includeVideos bool) bool {
	if IsHidden(path) {
		return false
	}

	switch KindOf(path) {
	case ImageKind:
		return true
	case VideoKind:
		return includeVideos
	default:
		return false
	}
}

// IsHidden reports whether the final element of the path is dot-prefixed.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// RawCompanionPath returns the path a camera raw sibling of the given JPEG
// would live at, along with whether the path is eligible for raw matching at
// all. Only .jpg files have raw companions; whether the companion actually
// exists is for the caller to check.
func RawCompanionPath(path string) (string, bool) {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".jpg") {
		return "", false
	}

	return strings.TrimSuffix(path, ext) + ".ARW", true
}

func (kind Kind) String() string {
	switch kind {
	case ImageKind:
		return "IMAGE"
	case VideoKind:
		return "VIDEO"
	default:
		return "UNKNOWN"
	}
}
