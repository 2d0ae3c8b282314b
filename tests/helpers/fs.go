package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TempDirWithFiles(t *testing.T, files []string) (string, []string) {
	dirPath := t.TempDir()
	filePaths := make([]string, 0, len(files))
	for _, filename := range files {
		fileName, err := os.CreateTemp(dirPath, "*"+filename)
		assert.NilError(t, err, "failed to create temporary file in temporary dir")
		filePaths = append(filePaths, fileName.Name())
	}

	assert.Equal(t, len(filePaths), len(files), "Expected file paths recorded to match length of requested files")
	return dirPath, filePaths
}

// TempDirWithNamedFiles creates a temporary directory holding exactly the
// relative paths provided (nested directories are created as needed). The
// returned paths are in the same order as the input.
func TempDirWithNamedFiles(t *testing.T, relativePaths []string) (string, []string) {
	dirPath := t.TempDir()
	filePaths := make([]string, 0, len(relativePaths))
	for _, relative := range relativePaths {
		path := filepath.Join(dirPath, relative)
		assert.NilError(t, os.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm), "failed to create parent directory for %s", path)
		assert.NilError(t, os.WriteFile(path, []byte("placeholder"), 0o644), "failed to create file %s", path)
		filePaths = append(filePaths, path)
	}

	return dirPath, filePaths
}

// WritePacketFile overwrites the file at the given path with binary junk
// carrying an embedded metadata packet declaring the rating and label
// provided. The packet sits at the end of the file, after 'padding' bytes
// of filler, mimicking where most cameras leave it.
func WritePacketFile(t *testing.T, path string, rating int, label string, padding int) {
	var body strings.Builder
	for body.Len() < padding {
		body.WriteString("\xff\xd8\xfe filler segment ")
	}

	body.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	body.WriteString(fmt.Sprintf(" <rdf:Description xmp:Rating=\"%d\"/>\n", rating))
	if label != "" {
		body.WriteString(fmt.Sprintf(" <rdf:Description xmp:Label=\"%s\"/>\n", label))
	}
	body.WriteString("</x:xmpmeta>")

	assert.NilError(t, os.WriteFile(path, []byte(body.String()), 0o644), "failed to write packet file %s", path)
}

// AssertRelocated checks that the file originally at src now exists at
// dest and is gone from src.
func AssertRelocated(t *testing.T, src string, dest string) {
	_, err := os.Stat(src)
	assert.Assert(t, os.IsNotExist(err), "expected source %s to be gone after relocation", src)

	info, err := os.Stat(dest)
	assert.NilError(t, err, "expected destination %s to exist after relocation", dest)
	assert.Assert(t, !info.IsDir(), "expected destination %s to be a regular file", dest)
}
