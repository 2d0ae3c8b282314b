package selection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Cull/internal/event"
	"github.com/hbomb79/Cull/internal/media"
	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/hbomb79/Cull/pkg/logger"
	"github.com/hbomb79/Cull/pkg/worker"
	"github.com/rjeczalik/notify"
)

var log = logger.Get("SelectServ")

type (
	fieldReader interface {
		ReadPacketFields(path string) (xmp.PacketFields, error)
	}

	ratingCache interface {
		Lookup(path string, info fs.FileInfo) (xmp.PacketFields, bool)
		Store(path string, info fs.FileInfo, fields xmp.PacketFields)
	}

	// selectionService is responsible for sweeping the configured source
	// directory and deciding the fate of each media file found. The
	// discovered files are:
	// - Scanned for their embedded rating and label (consulting the rating
	//   cache first to avoid re-reading unchanged files)
	// - Checked against the user's selection criteria
	// - Acted on (moved/copied/deleted/printed) when the criteria accepts them
	selectionService struct {
		*sync.Mutex
		reader   fieldReader
		cache    ratingCache
		eventBus event.EventCoordinator

		config   Config
		criteria Criteria
		action   *Action

		items                []*Item
		holdTimers           map[uuid.UUID]*time.Timer
		workerPool           *worker.WorkerPool
		sweepDirty           bool
		sweepCompleteChannel chan event.SweepStats
	}
)

// New creates a new selection service, using the provided config for
// subsequent calls to 'Run'.
//
// The configs 'SourcePath' is validated to be an existing directory, and
// the criteria to be legal. Zero values for ForceSyncSeconds and
// Parallelism are replaced with sane defaults.
func New(config Config, criteria Criteria, action *Action, reader fieldReader, cache ratingCache, eventBus event.EventCoordinator) (*selectionService, error) {
	if info, err := os.Stat(config.SourcePath); err != nil {
		return nil, fmt.Errorf("source path '%s' could not be accessed: %s", config.SourcePath, err.Error())
	} else if !info.IsDir() {
		return nil, fmt.Errorf("source path '%s' is not a directory", config.SourcePath)
	}

	if err := criteria.ValidateLegal(); err != nil {
		return nil, fmt.Errorf("refusing to construct selection service: %w", err)
	}

	if action == nil {
		return nil, errors.New("refusing to construct selection service without an action")
	}

	if config.ForceSyncSeconds <= 0 {
		config.ForceSyncSeconds = 30
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}

	service := &selectionService{
		Mutex:                &sync.Mutex{},
		reader:               reader,
		cache:                cache,
		eventBus:             eventBus,
		config:               config,
		criteria:             criteria,
		action:               action,
		items:                make([]*Item, 0),
		holdTimers:           make(map[uuid.UUID]*time.Timer),
		workerPool:           worker.NewWorkerPool(),
		sweepDirty:           true,
		sweepCompleteChannel: make(chan event.SweepStats, 1),
	}

	for i := 0; i < config.Parallelism; i++ {
		label := fmt.Sprintf("selection-worker-%d", i)
		worker := worker.NewWorker(label, service.PerformItemSelection)

		service.workerPool.PushWorker(worker)
	}

	return service, nil
}

// Run is the main entry point of this service. It performs an initial
// sweep of the source path and hands the discovered items to the worker
// pool. When watch mode is enabled the service then stays alive,
// listening to the OS file system and responding to change events (as
// well as regularly polling the file system irrespective of the watcher);
// otherwise Run returns once every discovered item has reached a
// terminal state.
// To kill the service early, the calling code should cancel the context
// provided.
func (service *selectionService) Run(ctx context.Context) error {
	if err := service.workerPool.Start(); err != nil {
		return fmt.Errorf("failed to start selection worker pool: %w", err)
	}
	defer service.workerPool.Close()
	defer service.clearAllHoldTimers()

	fsNotifyChannel := make(chan notify.EventInfo, 1)
	if service.config.Watch {
		watchPath := filepath.Join(service.config.SourcePath, "...")
		if err := notify.Watch(watchPath, fsNotifyChannel, notify.All); err != nil {
			return fmt.Errorf("failed to watch source path '%s': %w", service.config.SourcePath, err)
		}
		defer notify.Stop(fsNotifyChannel)
	}

	forceSyncTicker := time.NewTicker(time.Second * time.Duration(service.config.ForceSyncSeconds))
	defer forceSyncTicker.Stop()

	service.DiscoverSources()

	for {
		select {
		case <-fsNotifyChannel:
			service.DiscoverSources()
		case <-forceSyncTicker.C:
			service.DiscoverSources()
		case stats := <-service.sweepCompleteChannel:
			log.Emit(logger.SUCCESS, "Sweep complete: examined=%d selected=%d rejected=%d troubled=%d\n",
				stats.Examined, stats.Selected, stats.Rejected, stats.Troubled)
			service.eventBus.Dispatch(event.SWEEP_COMPLETE, stats)
			if !service.config.Watch {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// PerformItemSelection is the worker function for the selection service,
// which is called by the services WorkerPool.
// This function will claim the first IDLE item it finds and attempt to cull it.
// If the culling fails with a Trouble, then it will be set on the item
// and it's state set to TROUBLED.
func (service *selectionService) PerformItemSelection(w worker.Worker) (bool, error) {
	item := service.claimIdleItem()
	if item == nil {
		return false, nil
	}

	service.eventBus.Dispatch(event.ITEM_UPDATE, item.ID)

	accepted, err := item.cull(service.reader, service.cache, service.criteria, service.action, service.config.MatchRaws)
	if err != nil {
		trbl, ok := err.(Trouble)
		if !ok {
			return false, err
		}

		service.raiseItemTrouble(item, trbl)
	} else {
		service.completeItem(item, accepted)
	}

	service.evaluateSweepProgress()
	return true, nil
}

// completeItem commits the item's terminal state and announces the
// result on the event bus.
func (service *selectionService) completeItem(item *Item, accepted bool) {
	service.Lock()
	if accepted {
		item.State = SELECTED
	} else {
		item.State = REJECTED
	}
	service.Unlock()

	service.eventBus.Dispatch(event.ITEM_COMPLETE, item.ID)
	service.eventBus.Dispatch(event.ITEM_UPDATE, item.ID)
}

// DiscoverSources will sweep the host file system at the source path
// configured and check for eligible media files that are not yet tracked
// by this service. Top-level directories matching the configured
// exclusion fragments (or, with FlipExclusion, those NOT matching) are
// skipped, as are hidden files and directories.
func (service *selectionService) DiscoverSources() {
	for _, itemID := range service.discoverNewItems() {
		service.eventBus.Dispatch(event.ITEM_UPDATE, itemID)
	}

	service.evaluateSweepProgress()
}

// Note: This function will take ownership of the mutex, and releases it when returning
func (service *selectionService) discoverNewItems() []uuid.UUID {
	service.Lock()
	defer service.Unlock()

	known := make(map[string]bool, len(service.items))
	for _, item := range service.items {
		known[item.Path] = true
	}

	newItems, err := walkSourceTree(service.config, known)
	if err != nil {
		log.Emit(logger.FATAL, "file system sweep failed: %s\n", err.Error())
		return nil
	}

	minModtimeAge := service.config.RequiredModTimeAgeDuration()
	discovered := make([]uuid.UUID, 0, len(newItems))
	dirty := false
	for itemPath, itemInfo := range newItems {
		itemID := uuid.New()
		timeDiff := time.Since(itemInfo.ModTime())

		itemState := HOLD
		if timeDiff >= minModtimeAge {
			dirty = true
			itemState = IDLE
		}

		item := &Item{
			ID:    itemID,
			Path:  itemPath,
			State: itemState,
		}

		service.items = append(service.items, item)
		service.sweepDirty = true
		discovered = append(discovered, itemID)
		if itemState == HOLD {
			service.scheduleHoldTimer(itemID, minModtimeAge-timeDiff)
		}
	}

	if dirty {
		service.wakeupWorkerPool()
	}

	return discovered
}

// RemoveItem looks for an item with the ID provided in the services
// state, and removes it if it's found.
// This method *fails* if the item is currently 'SCANNING' as interrupting
// the scan is not possible.
// This method does not error if the itemID does not exist.
func (service *selectionService) RemoveItem(itemID uuid.UUID) error {
	service.Lock()
	defer service.Unlock()

	item := service.findItem(itemID)
	if item == nil {
		return nil
	}

	if item.State == SCANNING {
		return fmt.Errorf("cannot remove item %v as a worker is currently scanning it", itemID)
	}

	service.clearHoldTimer(itemID)
	service.spliceItem(itemID)
	return nil
}

// GetItem accepts the ID of a selection item and attempts to find it
// in the services queue. If it cannot be found, nil is returned.
func (service *selectionService) GetItem(itemID uuid.UUID) *Item {
	service.Lock()
	defer service.Unlock()

	return service.findItem(itemID)
}

// GetAllItems returns a snapshot of the items being processed by
// this service.
func (service *selectionService) GetAllItems() []*Item {
	service.Lock()
	defer service.Unlock()

	items := make([]*Item, len(service.items))
	copy(items, service.items)
	return items
}

// ResolveTroubledItem accepts the ID of a TROUBLED item along with the
// resolution method to apply to it. A RETRY resolution returns the item
// to the queue for another attempt, an ABORT resolution marks the item
// REJECTED without applying any action to its file.
func (service *selectionService) ResolveTroubledItem(itemID uuid.UUID, method ResolutionType) error {
	if err := service.applyTroubleResolution(itemID, method); err != nil {
		return err
	}

	service.eventBus.Dispatch(event.ITEM_UPDATE, itemID)
	service.evaluateSweepProgress()
	return nil
}

// Note: This function takes ownership of the mutex, and releases it when returning
func (service *selectionService) applyTroubleResolution(itemID uuid.UUID, method ResolutionType) error {
	service.Lock()
	defer service.Unlock()

	item := service.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}

	if item.State != TROUBLED || item.Trouble == nil {
		return ErrNoTrouble
	}

	resolution, err := item.Trouble.GenerateResolution(method)
	if err != nil {
		return err
	}

	switch resolution.(type) {
	case *RetryResolution:
		item.Trouble = nil
		item.State = IDLE
		service.sweepDirty = true
		service.wakeupWorkerPool()
	case *AbortResolution:
		item.Trouble = nil
		item.State = REJECTED
	default:
		return ErrResolutionIncompatible
	}

	return nil
}

// evaluateItemHold accepts the ID of an item that is on HOLD, and checks
// it's modtime to see if the item can be moved on to the 'IDLE' state.
// If the item with the ID provided no longer exists, the method is a NO-OP.
// If the item exists, but it's source file no longer exists, the item is
// removed from the services state.
// If the item exists and it's source still does not meet modtime
// requirements, then a new timer will be scheduled to re-evaluate the
// item hold.
func (service *selectionService) evaluateItemHold(id uuid.UUID) {
	service.progressItemHold(id)
	service.evaluateSweepProgress()
}

// Note: This function takes ownership of the mutex, and releases it when returning
func (service *selectionService) progressItemHold(id uuid.UUID) {
	service.Lock()
	defer service.Unlock()

	item := service.findItem(id)
	if item == nil || item.State != HOLD {
		return
	}

	timeDiff, err := item.modtimeDiff()
	if err != nil {
		// Item's source file has gone away!
		service.spliceItem(id)
		return
	}

	thresholdModTime := service.config.RequiredModTimeAgeDuration()
	if *timeDiff < thresholdModTime {
		service.scheduleHoldTimer(id, thresholdModTime-*timeDiff)
		return
	}

	item.State = IDLE
	service.wakeupWorkerPool()
}

// raiseItemTrouble records the trouble against the item and announces the
// state change on the event bus.
func (service *selectionService) raiseItemTrouble(item *Item, trbl Trouble) {
	log.Emit(logger.ERROR, "Item %s raised trouble %s: %s\n", item, trbl.Type(), trbl.Error())

	service.Lock()
	item.Trouble = &trbl
	item.State = TROUBLED
	service.Unlock()

	service.eventBus.Dispatch(event.ITEM_TROUBLE, item.ID)
	service.eventBus.Dispatch(event.ITEM_UPDATE, item.ID)
}

// evaluateSweepProgress checks whether every tracked item has reached a
// terminal state and, if so, delivers the sweep statistics to the Run
// loop. Repeated calls after a completed sweep are NO-OPs until a
// discovery (or a trouble resolution) introduces new work.
//
// Note: This function takes ownership of the mutex, and releases it when returning
func (service *selectionService) evaluateSweepProgress() {
	service.Lock()
	defer service.Unlock()

	if !service.sweepDirty {
		return
	}

	stats := event.SweepStats{Examined: len(service.items)}
	for _, item := range service.items {
		switch item.State {
		case SELECTED:
			stats.Selected++
		case REJECTED:
			stats.Rejected++
		case TROUBLED:
			stats.Troubled++
		default:
			return
		}
	}

	service.sweepDirty = false
	select {
	case service.sweepCompleteChannel <- stats:
	default:
	}
}

// scheduleHoldTimer will call evaluateItemHold for the item provided
// after the delay duration specified has elapsed. Any existing hold timer
// for the item specified will be *cancelled* before the new timer is created.
func (service *selectionService) scheduleHoldTimer(id uuid.UUID, delay time.Duration) {
	service.clearHoldTimer(id)
	service.holdTimers[id] = time.AfterFunc(delay, func() {
		service.evaluateItemHold(id)
	})
}

// clearHoldTimer cancels and deletes the hold timer associatted with the
// item ID specified.
func (service *selectionService) clearHoldTimer(id uuid.UUID) {
	if timer, ok := service.holdTimers[id]; ok {
		timer.Stop()
		delete(service.holdTimers, id)
	}
}

// clearAllHoldTimers cancels and deletes the hold timers for all items.
func (service *selectionService) clearAllHoldTimers() {
	service.Lock()
	defer service.Unlock()

	for key, timer := range service.holdTimers {
		timer.Stop()
		delete(service.holdTimers, key)
	}
}

// claimIdleItem will try and find an IDLE item in the selection service,
// and set it's state to 'SCANNING' to prevent another worker from
// claiming it once the mutex lock is released.
//
// Note: This function takes ownership of the mutex, and releases it when returning
func (service *selectionService) claimIdleItem() *Item {
	service.Lock()
	defer service.Unlock()

	for _, item := range service.items {
		if item.State == IDLE {
			item.State = SCANNING
			return item
		}
	}

	return nil
}

func (service *selectionService) findItem(itemID uuid.UUID) *Item {
	for _, item := range service.items {
		if item.ID == itemID {
			return item
		}
	}

	return nil
}

func (service *selectionService) spliceItem(itemID uuid.UUID) {
	for k, v := range service.items {
		if v.ID == itemID {
			service.items = append(service.items[:k], service.items[k+1:]...)
			return
		}
	}
}

func (service *selectionService) wakeupWorkerPool() {
	service.workerPool.WakeupWorkers()
}

// walkSourceTree will walk the file system, starting at the source path
// configured, and construct a map of all the eligible media files inside.
// Files whose paths are included in the 'known' map will NOT be included
// in the result. The key of the returned map is the path, and the value
// contains the FileInfo.
func walkSourceTree(config Config, known map[string]bool) (map[string]fs.FileInfo, error) {
	root := filepath.Clean(config.SourcePath)
	foundItems := make(map[string]fs.FileInfo, 0)
	err := filepath.WalkDir(root, func(path string, dir fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		if dir.IsDir() {
			if media.IsHidden(path) {
				return filepath.SkipDir
			}

			if filepath.Dir(path) == root && isDirectoryExcluded(config, dir.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !media.Eligible(path, config.IncludeVideos) {
			return nil
		}

		if _, ok := known[path]; ok {
			return nil
		}

		fileInfo, err := dir.Info()
		if err != nil {
			return err
		}

		foundItems[path] = fileInfo
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk file system: %s", err.Error())
	}

	return foundItems, nil
}

// isDirectoryExcluded checks the directory name against the exclusion
// fragments. A name containing any fragment is excluded; FlipExclusion
// inverts the verdict so that ONLY matching directories are swept.
func isDirectoryExcluded(config Config, name string) bool {
	excluded := false
	for _, fragment := range config.ExcludedDirs {
		if strings.Contains(name, fragment) {
			excluded = true
			break
		}
	}

	if config.FlipExclusion {
		return !excluded
	}

	return excluded
}
