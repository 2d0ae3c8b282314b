package selection

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Cull/internal/media"
	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/hbomb79/Cull/pkg/logger"
)

type (
	ItemState int
	Item      struct {
		ID      uuid.UUID
		Path    string
		State   ItemState
		Trouble *Trouble
		Fields  *xmp.PacketFields
	}
)

const (
	IDLE ItemState = iota
	HOLD
	SCANNING
	SELECTED
	REJECTED
	TROUBLED
)

var (
	ErrNoTrouble              = errors.New("selection item has no trouble")
	ErrItemNotFound           = errors.New("no selection item could be found")
	ErrResolutionIncompatible = errors.New("provided resolution method is not valid for selection trouble")
)

// cull is the main task for a selection item which:
// - Recovers the embedded rating and label for the file (from the cache
// when the cached entry is still current, by scanning otherwise)
// - Checks the recovered fields against the selection criteria
// - Applies the configured action if the criteria accepts the item
// The returned bool reports whether the criteria accepted the item.
// Any of the above can encounter an error - if the error can be cast to the
// Trouble type then it should be raised as a TROUBLE on the item.
func (item *Item) cull(reader fieldReader, cache ratingCache, criteria Criteria, action *Action, matchRaws bool) (bool, error) {
	log.Emit(logger.NEW, "Beginning selection of item %s\n", item)
	info, err := os.Stat(item.Path)
	if err != nil {
		// The file can legitimately disappear between discovery and
		// scanning, most commonly when it was relocated as the raw
		// companion of an earlier item.
		if errors.Is(err, os.ErrNotExist) {
			log.Emit(logger.WARNING, "Item %s source is no longer present, rejecting\n", item)
			return false, nil
		}

		return false, Trouble{error: fmt.Errorf("source file inaccessible: %w", err), tType: SCAN_FAILURE}
	}

	if item.Fields == nil {
		if fields, ok := cache.Lookup(item.Path, info); ok {
			log.Emit(logger.DEBUG, "Reusing cached fields for %s: %+v\n", item.Path, fields)
			item.Fields = &fields
		} else {
			log.Emit(logger.DEBUG, "Scanning %s for an embedded packet\n", item.Path)
			fields, err := reader.ReadPacketFields(item.Path)
			if err != nil {
				if errors.Is(err, xmp.ErrPacketNotFound) {
					log.Emit(logger.DEBUG, "No packet inside %s, treating file as unrated\n", item.Path)
					fields = xmp.PacketFields{}
				} else {
					var parseErr *xmp.RatingParseError
					if errors.As(err, &parseErr) {
						return false, newTrouble(err)
					}

					return false, Trouble{error: err, tType: SCAN_FAILURE}
				}
			}

			cache.Store(item.Path, info, fields)
			item.Fields = &fields
		}
	}

	if !criteria.Accepts(*item.Fields) {
		log.Emit(logger.DEBUG, "Item %s (fields %+v) rejected by %s\n", item, *item.Fields, &criteria)
		return false, nil
	}

	log.Emit(logger.INFO, "Item %s (fields %+v) accepted by %s\n", item, *item.Fields, &criteria)
	if err := action.Apply(item.Path); err != nil {
		return false, Trouble{error: err, tType: ACTION_FAILURE}
	}

	if matchRaws {
		if rawPath, ok := media.RawCompanionPath(item.Path); ok {
			if _, err := os.Stat(rawPath); err == nil {
				log.Emit(logger.DEBUG, "Applying %s to raw companion %s of item %s\n", action.Type(), rawPath, item)
				if err := action.Apply(rawPath); err != nil {
					return false, Trouble{error: err, tType: ACTION_FAILURE}
				}
			}
		}
	}

	log.Emit(logger.SUCCESS, "Applied %s to item %s\n", action.Type(), item)
	return true, nil
}

func (item *Item) modtimeDiff() (*time.Duration, error) {
	itemInfo, err := os.Stat(item.Path)
	if err != nil {
		return nil, err
	}

	diff := time.Since(itemInfo.ModTime())
	return &diff, nil
}

func (item *Item) String() string {
	return fmt.Sprintf("Item{ID=%s state=%s}", item.ID, item.State)
}

func (s ItemState) String() string {
	switch s {
	case IDLE:
		return fmt.Sprintf("IDLE[%d]", s)
	case HOLD:
		return fmt.Sprintf("HOLD[%d]", s)
	case SCANNING:
		return fmt.Sprintf("SCANNING[%d]", s)
	case SELECTED:
		return fmt.Sprintf("SELECTED[%d]", s)
	case REJECTED:
		return fmt.Sprintf("REJECTED[%d]", s)
	case TROUBLED:
		return fmt.Sprintf("TROUBLED[%d]", s)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", s)
	}
}
