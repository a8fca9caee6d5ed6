package automatic

// Batch solving. Deal (or load) many puzzles and solve them in parallel,
// logging one CSV row per puzzle.

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/countdown/puzzles"
)

var (
	SolveCounter *expvar.Int
	IsSolving    *expvar.Int
)

// PerSolveMemory is a rough upper bound for the frontier of a single
// six-tile solve.
const PerSolveMemory = 2 << 30

// running guards RunBatch; IsSolving only mirrors it for expvar.
var running atomic.Bool

// Running is true while a batch is in progress.
func Running() bool {
	return running.Load()
}

var ErrAlreadyRunning = errors.New("a batch is already running, please wait till complete")

func init() {
	SolveCounter = expvar.NewInt("solveCounter")
	IsSolving = expvar.NewInt("isSolving")
}

type BatchOptions struct {
	// NumPuzzles random puzzles are dealt with NumLarge large tiles,
	// unless PuzzleFile is set.
	NumPuzzles int
	NumLarge   int
	PuzzleFile string

	Threads    int
	Timeout    time.Duration
	OutputFile string
	// DBPath, if set, is a sqlite database the results are also
	// recorded in.
	DBPath string
}

// DefaultThreads is the number of parallel solves the machine can hold
// in memory, capped by the CPU count.
func DefaultThreads() int {
	byMem := int(memory.TotalMemory() / PerSolveMemory)
	return max(1, min(runtime.NumCPU(), byMem))
}

// RunBatch solves a batch of puzzles and blocks until they are all done
// or ctx is cancelled. It returns the batch ID, which keys the rows in the
// results database.
func RunBatch(ctx context.Context, opts BatchOptions) (string, error) {
	if !running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}
	IsSolving.Set(1)
	defer func() {
		IsSolving.Set(0)
		running.Store(false)
	}()

	var ps []*puzzles.Puzzle
	var err error
	if opts.PuzzleFile != "" {
		ps, err = puzzles.LoadFile(opts.PuzzleFile)
	} else {
		ps, err = puzzles.DealN(opts.NumLarge, opts.NumPuzzles)
	}
	if err != nil {
		return "", err
	}

	logfile, err := os.Create(opts.OutputFile)
	if err != nil {
		return "", err
	}
	defer logfile.Close()

	var store *Store
	if opts.DBPath != "" {
		store, err = OpenStore(opts.DBPath)
		if err != nil {
			return "", err
		}
		defer store.Close()
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = DefaultThreads()
	}
	batchID := uuid.NewString()
	log.Info().Str("batch", batchID).Int("puzzles", len(ps)).Int("threads", threads).
		Msg("starting-batch")

	SolveCounter.Set(0)
	results := make(chan *Result, 100)
	writerDone := make(chan error, 1)
	go func() {
		writerDone <- writeResults(logfile, store, batchID, results)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
queueLoop:
	for i, p := range ps {
		select {
		case <-gctx.Done():
			log.Info().Msg("got stop signal, exiting soon...")
			break queueLoop
		default:
		}
		g.Go(func() error {
			r, err := SolvePuzzle(gctx, p, opts.Timeout)
			if err != nil {
				return err
			}
			results <- r
			SolveCounter.Add(1)
			return nil
		})
		if (i+1)%100 == 0 {
			log.Info().Msgf("queued %v puzzles", i+1)
		}
	}
	err = g.Wait()
	close(results)
	werr := <-writerDone
	log.Info().Int64("solved", SolveCounter.Value()).Msg("batch-finished")
	if err != nil {
		return batchID, err
	}
	return batchID, werr
}

func writeResults(f *os.File, store *Store, batchID string, results <-chan *Result) error {
	w := csv.NewWriter(f)
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(w.Write(CSVHeader))
	for r := range results {
		keep(w.Write(r.CSVRecord()))
		if store != nil {
			keep(store.Record(batchID, r))
		}
	}
	w.Flush()
	keep(w.Error())
	return firstErr
}
