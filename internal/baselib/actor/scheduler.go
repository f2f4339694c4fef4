package actor

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sync"
)

// DefaultBatchSize is the fixed number of messages a worker processes per
// cell visit before moving on (spec §4.2, §4.5: "N fixed, e.g. 10"),
// resolved to exactly 10 per akio/src/dispatcher.rs's process_messages(10).
const DefaultBatchSize = 10

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// NumWorkers is the fixed pool size. Defaults to runtime.NumCPU().
	NumWorkers int

	// BatchSize is the max messages processed per cell visit. Defaults
	// to DefaultBatchSize.
	BatchSize int

	// Affinity, when true, pins each worker to one logical CPU on
	// platforms that support it (currently Linux). DefaultSchedulerConfig
	// sets it to true; NewScheduler leaves a false value unpinned.
	Affinity bool
}

// DefaultSchedulerConfig returns sane defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		NumWorkers: runtime.NumCPU(),
		BatchSize:  DefaultBatchSize,
		Affinity:   true,
	}
}

// worker owns a single-producer-consumer-style inbox of cells-to-run and a
// single-threaded event loop that drains it (spec §4.5).
type worker struct {
	index int
	inbox chan schedulable
}

// Scheduler is the fixed pool of worker threads described in spec §4.5: no
// work stealing, uniform-random placement on Idle->Scheduled transitions,
// bounded batches per visit. Grounded on akio/src/dispatcher.rs for the
// policy and on the teacher's goroutine+channel idiom (generalized from one
// goroutine per actor to one goroutine per worker, each multiplexing many
// cells) for the Go realization.
type Scheduler struct {
	cfg     SchedulerConfig
	workers []*worker
	system  *System

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler constructs a Scheduler. Start must be called before any cell
// is submitted.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	s := &Scheduler{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	s.workers = make([]*worker, cfg.NumWorkers)
	for i := range s.workers {
		s.workers[i] = &worker{
			index: i,
			inbox: make(chan schedulable, 1024),
		}
	}

	return s
}

// Start launches one goroutine per worker, each carrying the worker-scoped
// ambient context (spec §4.7's thread-local layer) bound to sys.
func (s *Scheduler) Start(sys *System) {
	s.system = sys

	for _, w := range s.workers {
		s.wg.Add(1)
		go s.runWorker(w)
	}
}

func (s *Scheduler) runWorker(w *worker) {
	defer s.wg.Done()

	if s.cfg.Affinity {
		pinToCPU(w.index)
	}

	ctx := withWorkerContext(context.Background(), s, s.system)

	for {
		select {
		case c, ok := <-w.inbox:
			if !ok {
				return
			}
			s.runOnce(ctx, c)

		case <-s.stopCh:
			return
		}
	}
}

// runOnce executes one batch for c and, per spec §4.2, either lets it go
// Idle or resubmits it to a freshly (and independently) chosen worker.
func (s *Scheduler) runOnce(ctx context.Context, c schedulable) {
	_, terminated := c.RunBatch(ctx, s.cfg.BatchSize)
	if terminated {
		return
	}

	if c.FinalizeBatch() {
		s.submit(c)
	}
}

// submit hands c to a uniformly-randomly chosen worker (spec §4.5's
// dispatch policy: no coordination, no work stealing). If the scheduler is
// stopping, the submission is dropped; cells that outlive scheduler
// shutdown are expected to be torn down by System.Shutdown separately.
func (s *Scheduler) submit(c schedulable) {
	idx := rand.IntN(len(s.workers))
	w := s.workers[idx]

	select {
	case w.inbox <- c:
	case <-s.stopCh:
	}
}

// Join broadcasts Stop to every worker and waits for all worker goroutines
// to exit (spec §4.5's worker lifecycle). Safe to call multiple times.
func (s *Scheduler) Join() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}
