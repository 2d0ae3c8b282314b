// The cache package persists the packet fields recovered from scanned
// files so that repeated sweeps of the same library do not re-read
// multi-gigabyte files whose ratings have not changed.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/hbomb79/Cull/pkg/logger"
	"github.com/hbomb79/Cull/pkg/sync"
)

var log = logger.Get("Cache")

type (
	// Entry records the fields recovered from one file, along with the
	// size and modtime the file had when it was scanned. An entry is
	// only current while both still match.
	Entry struct {
		Rating  int       `json:"rating"`
		Label   string    `json:"label"`
		Size    int64     `json:"size"`
		ModTime time.Time `json:"mod_time"`
	}

	// Store is a concurrency-safe rating cache which can be loaded from,
	// and saved to, a JSON file on disk.
	Store struct {
		filePath string
		entries  *sync.TypedSyncMap[string, Entry]
	}
)

// New constructs a new Store, setting the location for loading/saving
// to the path provided. If a file already exists at the path provided,
// the cache content is loaded from it; a malformed cache file is
// discarded in favour of an empty cache.
func New(path string) *Store {
	store := &Store{
		filePath: path,
		entries:  new(sync.TypedSyncMap[string, Entry]),
	}

	if err := store.load(); err != nil {
		log.Emit(logger.WARNING, "Failed to load existing rating cache from %s: %s. Defaulting to empty cache\n", path, err.Error())
	}

	return store
}

// Lookup returns the cached fields for the path provided, if the entry
// is still current for the file info given. A stale entry (size or
// modtime mismatch) is treated as a miss.
func (store *Store) Lookup(path string, info fs.FileInfo) (xmp.PacketFields, bool) {
	entry, ok := store.entries.Load(path)
	if !ok {
		return xmp.PacketFields{}, false
	}

	if entry.Size != info.Size() || !entry.ModTime.Equal(info.ModTime()) {
		log.Emit(logger.DEBUG, "Cache entry for %s is stale, discarding\n", path)
		store.entries.Delete(path)
		return xmp.PacketFields{}, false
	}

	return xmp.PacketFields{Rating: entry.Rating, Label: entry.Label}, true
}

// Store records the fields for the path provided against the size and
// modtime of the file info given.
// Note: This method will *overwrite* any entry already stored for the path.
func (store *Store) Store(path string, info fs.FileInfo, fields xmp.PacketFields) {
	store.entries.Store(path, Entry{
		Rating:  fields.Rating,
		Label:   fields.Label,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

// Len returns the number of entries currently held by the store.
func (store *Store) Len() int {
	return store.entries.Len()
}

// Save encodes the store content to JSON and writes it to the file path
// this store was constructed with, creating parent directories as needed.
func (store *Store) Save() error {
	snapshot := make(map[string]Entry, store.entries.Len())
	store.entries.Range(func(key string, value Entry) bool {
		snapshot[key] = value
		return true
	})

	content, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode rating cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.filePath), os.ModeDir|os.ModePerm); err != nil {
		return fmt.Errorf("failed to create rating cache directory: %w", err)
	}

	if err := os.WriteFile(store.filePath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write rating cache to %s: %w", store.filePath, err)
	}

	return nil
}

func (store *Store) load() error {
	content, err := os.ReadFile(store.filePath)
	if err != nil {
		// A missing cache file is normal on first run
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	loaded := make(map[string]Entry)
	if err := json.Unmarshal(content, &loaded); err != nil {
		return err
	}

	for key, value := range loaded {
		store.entries.Store(key, value)
	}

	log.Emit(logger.DEBUG, "Loaded %d rating cache entries from %s\n", len(loaded), store.filePath)
	return nil
}
