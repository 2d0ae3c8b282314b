package selection

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbomb79/Cull/pkg/logger"
)

type ActionType int

const (
	Move ActionType = iota
	Copy
	Delete
	Print
)

func (e ActionType) Values() []string {
	return []string{"MOVE", "COPY", "DELETE", "PRINT"}
}

func (e ActionType) String() string {
	return e.Values()[e]
}

// ParseActionType maps the user-facing action spellings to their
// ActionType value.
func ParseActionType(raw string) (ActionType, error) {
	switch raw {
	case "move", "MOVE":
		return Move, nil
	case "copy", "COPY":
		return Copy, nil
	case "delete", "DELETE":
		return Delete, nil
	case "print", "PRINT":
		return Print, nil
	}

	return Print, fmt.Errorf("action '%s' is not recognised (accepted: move, copy, delete, print)", raw)
}

// Action applies the user's chosen command to files the selection
// criteria accepts. Move and Copy preserve each file's position relative
// to the source root underneath the destination root.
type Action struct {
	// Out receives the paths written by the PRINT action. Defaults
	// to stdout.
	Out io.Writer

	aType      ActionType
	sourceRoot string
	destRoot   string
}

// NewAction creates an Action ready for subsequent calls to 'Apply'.
//
// For MOVE and COPY the destination root is validated to be an existing
// directory. If the directory is missing it will be created, if the path
// provided points to an existing FILE, an error is returned.
func NewAction(aType ActionType, sourceRoot string, destRoot string) (*Action, error) {
	if aType == Move || aType == Copy {
		if destRoot == "" {
			return nil, fmt.Errorf("action %s requires a destination path", aType)
		}

		if info, err := os.Stat(destRoot); err == nil {
			if !info.IsDir() {
				return nil, fmt.Errorf("destination path '%s' is not a directory", destRoot)
			}
		} else if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(destRoot, os.ModeDir|os.ModePerm); err != nil {
				return nil, fmt.Errorf("destination path '%s' could not be created: %w", destRoot, err)
			}
		} else {
			return nil, fmt.Errorf("destination path '%s' could not be accessed: %w", destRoot, err)
		}
	}

	return &Action{
		Out:        os.Stdout,
		aType:      aType,
		sourceRoot: sourceRoot,
		destRoot:   destRoot,
	}, nil
}

func (action *Action) Type() ActionType { return action.aType }

// Apply performs this action against the file at the given path. The
// path must sit underneath the source root the action was created with.
func (action *Action) Apply(path string) error {
	switch action.aType {
	case Move:
		return action.relocate(path, true)
	case Copy:
		return action.relocate(path, false)
	case Delete:
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}

		return nil
	case Print:
		fmt.Fprintln(action.Out, path)
		return nil
	default:
		return fmt.Errorf("action type %d is not recognised", int(action.aType))
	}
}

// relocate computes the destination for the path, preserving its position
// relative to the source root, and either moves or copies the file there.
// A file already present at the destination is left untouched so that
// re-running a sweep never clobbers earlier output.
func (action *Action) relocate(path string, removeSource bool) error {
	rel, err := filepath.Rel(action.sourceRoot, path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s relative to %s: %w", path, action.sourceRoot, err)
	}

	dest := filepath.Join(action.destRoot, rel)
	if _, err := os.Stat(dest); err == nil {
		log.Emit(logger.WARNING, "Skipping %s of %s as destination %s already exists\n", action.aType, path, dest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModeDir|os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dest, err)
	}

	if removeSource {
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", path, dest, err)
		}

		return nil
	}

	return copyFile(path, dest)
}

// copyFile copies src to dest, carrying the source's file mode over to
// the new file.
func copyFile(src string, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}

	return out.Close()
}
