package selection_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hbomb79/Cull/internal/selection"
	"github.com/hbomb79/Cull/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Action_MovePreservesRelativePath(t *testing.T) {
	t.Parallel()
	srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{filepath.Join("shoot-01", "a.jpg")})
	destRoot := t.TempDir()

	action, err := selection.NewAction(selection.Move, srcRoot, destRoot)
	require.NoError(t, err)

	require.NoError(t, action.Apply(files[0]))
	helpers.AssertRelocated(t, files[0], filepath.Join(destRoot, "shoot-01", "a.jpg"))
}

func Test_Action_MoveSkipsExistingDestination(t *testing.T) {
	t.Parallel()
	srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{"a.jpg"})
	destRoot := t.TempDir()

	dest := filepath.Join(destRoot, "a.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	action, err := selection.NewAction(selection.Move, srcRoot, destRoot)
	require.NoError(t, err)
	require.NoError(t, action.Apply(files[0]))

	// The source must be untouched and the established destination preserved
	_, err = os.Stat(files[0])
	assert.NoError(t, err, "expected source file to remain when destination exists")
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(content), "expected existing destination content to be preserved")
}

func Test_Action_CopyDuplicatesFile(t *testing.T) {
	t.Parallel()
	srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{filepath.Join("nested", "b.png")})
	destRoot := t.TempDir()

	require.NoError(t, os.WriteFile(files[0], []byte("pixels"), 0o640))

	action, err := selection.NewAction(selection.Copy, srcRoot, destRoot)
	require.NoError(t, err)
	require.NoError(t, action.Apply(files[0]))

	dest := filepath.Join(destRoot, "nested", "b.png")
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(content))

	srcInfo, err := os.Stat(files[0])
	require.NoError(t, err, "expected source file to remain after copy")
	destInfo, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, srcInfo.Mode().Perm(), destInfo.Mode().Perm(), "expected copy to preserve file mode")
}

func Test_Action_DeleteRemovesFile(t *testing.T) {
	t.Parallel()
	srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{"c.heic"})

	action, err := selection.NewAction(selection.Delete, srcRoot, "")
	require.NoError(t, err)
	require.NoError(t, action.Apply(files[0]))

	_, err = os.Stat(files[0])
	assert.True(t, os.IsNotExist(err), "expected file to be deleted")
}

func Test_Action_PrintWritesPath(t *testing.T) {
	t.Parallel()
	srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{"d.jpg", "e.jpg"})

	action, err := selection.NewAction(selection.Print, srcRoot, "")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	action.Out = out

	require.NoError(t, action.Apply(files[0]))
	require.NoError(t, action.Apply(files[1]))
	assert.Equal(t, files[0]+"\n"+files[1]+"\n", out.String())
}

func Test_NewAction_DestinationValidation(t *testing.T) {
	t.Parallel()

	t.Run("Missing destination directory is created", func(t *testing.T) {
		srcRoot := t.TempDir()
		destRoot := filepath.Join(t.TempDir(), "not-yet-created")

		_, err := selection.NewAction(selection.Move, srcRoot, destRoot)
		require.NoError(t, err)

		info, err := os.Stat(destRoot)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Destination pointing at a file is rejected", func(t *testing.T) {
		srcRoot, files := helpers.TempDirWithNamedFiles(t, []string{"occupied"})

		_, err := selection.NewAction(selection.Copy, srcRoot, files[0])
		assert.Error(t, err)
	})

	t.Run("Move requires a destination", func(t *testing.T) {
		_, err := selection.NewAction(selection.Move, t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("Print requires no destination", func(t *testing.T) {
		_, err := selection.NewAction(selection.Print, t.TempDir(), "")
		assert.NoError(t, err)
	})
}

func Test_ParseActionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary   string
		input     string
		expected  selection.ActionType
		shouldErr bool
	}{
		{summary: "move", input: "move", expected: selection.Move},
		{summary: "copy", input: "copy", expected: selection.Copy},
		{summary: "delete", input: "delete", expected: selection.Delete},
		{summary: "print", input: "print", expected: selection.Print},
		{summary: "enum spelling", input: "MOVE", expected: selection.Move},
		{summary: "unknown action", input: "shred", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			actionType, err := selection.ParseActionType(tt.input)
			if tt.shouldErr {
				assert.Error(t, err, "ParseActionType(%q) expected to return an error", tt.input)
				return
			}

			assert.NoError(t, err, "ParseActionType(%q) returned an unexpected error", tt.input)
			assert.Equal(t, tt.expected, actionType)
		})
	}
}
