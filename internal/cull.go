package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/hbomb79/Cull/internal/cache"
	"github.com/hbomb79/Cull/internal/event"
	"github.com/hbomb79/Cull/internal/selection"
	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/hbomb79/Cull/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	SelectionService interface {
		RunnableService
		DiscoverSources()
		GetItem(uuid.UUID) *selection.Item
		GetAllItems() []*selection.Item
		RemoveItem(uuid.UUID) error
		ResolveTroubledItem(uuid.UUID, selection.ResolutionType) error
	}
)

// Cull represents the top-level object for the program, and is responsible
// for initialising the packet scanner, rating cache, event handling and the
// selection service, and for reporting the outcome of the sweep once the
// service finishes.
type cullImpl struct {
	eventBus         event.EventCoordinator
	config           CullConfig
	ratingCache      *cache.Store
	selectionService SelectionService

	statsMutex sync.Mutex
	lastStats  *event.SweepStats
}

const CULL_USER_DIR_SUFFIX = "/cull/"

func New(config CullConfig, selectionConfig selection.Config, criteria selection.Criteria, action *selection.Action) *cullImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Cull services using config: %#v\n", config)
	cull := &cullImpl{
		eventBus:    event.New(),
		config:      config,
		ratingCache: cache.New(config.CacheFilePath()),
	}

	scanner := xmp.NewScanner(config.Scanner)
	if serv, err := selection.New(selectionConfig, criteria, action, scanner, cull.ratingCache, cull.eventBus); err == nil {
		cull.selectionService = serv
	} else {
		panic(fmt.Sprintf("failed to construct selection service due to error: %s", err.Error()))
	}

	cull.eventBus.RegisterHandlerFunction(event.SWEEP_COMPLETE, func(_ event.Event, payload event.Payload) {
		stats := payload.(event.SweepStats)

		cull.statsMutex.Lock()
		defer cull.statsMutex.Unlock()
		cull.lastStats = &stats
	})

	return cull
}

// Run will start Cull by bringing up the selection service and waiting for
// it to finish. In one-shot mode the service returns once the sweep has
// settled; in watch mode it runs until the process is interrupted. Either
// way the rating cache is persisted and the sweep outcome reported before
// this function returns.
// To stop Cull early, the provided context can be cancelled.
func (cull *cullImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		crashMutex sync.Mutex
		crashErr   error
	)
	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())

		crashMutex.Lock()
		if crashErr == nil {
			crashErr = err
		}
		crashMutex.Unlock()

		cancel()
	}

	exit := make(chan os.Signal, 1) // we need to reserve to buffer size 1, so the notifier are not blocked
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(exit)
	go func() {
		select {
		case <-exit:
			log.Emit(logger.INFO, "SIGTERM/Interrupt caught! Shutting down...\n")
			cancel()
		case <-ctx.Done():
		}
	}()

	wg := &sync.WaitGroup{}
	cull.spawnAsyncService(ctx, wg, cull.selectionService, "selection-service", crashHandler)
	log.Emit(logger.SUCCESS, "Cull services spawned!\n")
	wg.Wait()

	if err := cull.ratingCache.Save(); err != nil {
		log.Emit(logger.WARNING, "Failed to persist rating cache: %s\n", err.Error())
	}

	cull.reportOutcome()

	crashMutex.Lock()
	defer crashMutex.Unlock()
	return crashErr
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the Cull service waitgroup is updated correctly
func (cull *cullImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		defer wg.Done()
		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}

// reportOutcome summarises the most recent sweep for the user, listing
// any items which finished in a TROUBLED state along with their troubles.
func (cull *cullImpl) reportOutcome() {
	cull.statsMutex.Lock()
	stats := cull.lastStats
	cull.statsMutex.Unlock()

	if stats == nil {
		log.Emit(logger.WARNING, "No sweep completed before shutdown\n")
		return
	}

	log.Emit(logger.INFO, "Sweep outcome: %d examined, %d selected, %d rejected, %d troubled\n",
		stats.Examined, stats.Selected, stats.Rejected, stats.Troubled)

	if stats.Troubled == 0 {
		return
	}

	for _, item := range cull.selectionService.GetAllItems() {
		if item.State == selection.TROUBLED && item.Trouble != nil {
			log.Emit(logger.ERROR, "Item %s raised %s: %s\n", item.Path, item.Trouble.Type(), item.Trouble.Error())
		}
	}
}
