package selection

import "time"

// Config contains configuration options that allow
// customization of how Cull discovers files to select from.
type Config struct {
	// The path to the directory the service should sweep
	// for rated media files
	SourcePath string

	// The SelectionService uses a directory watcher when running in
	// watch mode, but a 'force' sync is performed on a regular interval
	// to protect against the watcher failing.
	ForceSyncSeconds int

	// An array of substrings used to FILTER the top-level directories
	// of the source path. A directory whose name contains any of these
	// fragments is skipped entirely. Nested directories are never
	// filtered, only those directly beneath the source path.
	ExcludedDirs []string

	// Inverts the exclusion filter so that ONLY top-level directories
	// matching an ExcludedDirs fragment are swept
	FlipExclusion bool

	// When a selected JPEG has a raw sibling (same name, .ARW extension)
	// sitting next to it, apply the chosen action to the raw file too
	MatchRaws bool

	// Video containers carry the same embedded packets as images, but
	// scanning them is slow. They are skipped unless this is enabled.
	IncludeVideos bool

	// When a new file is detected, it's likely to be an in-progress
	// transfer from a camera or card reader. As we cannot KNOW when the
	// transfer is complete, we instead wait for the 'modtime' of
	// the item to be at least this long in the past before processing
	RequiredModTimeAgeSeconds int

	// Controls the number of workers that can perform selections. Reducing
	// to 1 means one file scanned at a time. Scanning is I/O bound so
	// values past the disk's queue depth buy little.
	Parallelism int

	// Keep the service running after the initial sweep completes,
	// watching the source path for new files. When false the service
	// returns once every discovered item has been dealt with.
	Watch bool
}

func (config *Config) RequiredModTimeAgeDuration() time.Duration {
	return time.Duration(config.RequiredModTimeAgeSeconds) * time.Second
}
