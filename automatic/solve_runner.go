// Package automatic runs batches of Numbers round puzzles through the
// solver and collects statistics about them.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/countdown/puzzles"
	"github.com/domino14/countdown/solver"
)

// Result is the outcome of solving a single puzzle.
type Result struct {
	Puzzle    *puzzles.Puzzle
	Value     int
	Distance  int
	RPN       string
	Infix     string
	Generated uint64
	Visited   uint64
	Elapsed   time.Duration
	TimedOut  bool
}

func (r *Result) Exact() bool {
	return r.Distance == 0 && !r.NoValue()
}

// NoValue is true if the solver never reached a single value, which
// only happens for an empty tile set or a timeout before any tile was
// pushed.
func (r *Result) NoValue() bool {
	return r.Distance < 0
}

// Report renders the result the way the command line tools print it.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Numbers: %v\n", r.Puzzle.Tiles)
	fmt.Fprintf(&b, "Target: %d\n", r.Puzzle.Target)
	if r.NoValue() {
		b.WriteString("Solution: none\n")
	} else {
		fmt.Fprintf(&b, "Solution: %s = %d\n", r.RPN, r.Value)
		fmt.Fprintf(&b, "Expression: %s = %d\n", r.Infix, r.Value)
	}
	if r.TimedOut {
		b.WriteString("Search timed out; the solution is the best found so far\n")
	}
	fmt.Fprintf(&b, "Elapsed: %d ms\n", r.Elapsed.Milliseconds())
	st := solver.Stats{Generated: r.Generated, Visited: r.Visited}
	fmt.Fprintf(&b, "Stats: %s\n", st.String())
	return b.String()
}

var CSVHeader = []string{
	"id", "tiles", "target", "value", "distance", "exact", "rpn", "infix",
	"generated", "visited", "elapsed_ms", "timed_out",
}

func (r *Result) CSVRecord() []string {
	return []string{
		strconv.FormatUint(r.Puzzle.ID(), 16),
		r.Puzzle.TilesString(),
		strconv.Itoa(r.Puzzle.Target),
		strconv.Itoa(r.Value),
		strconv.Itoa(r.Distance),
		strconv.FormatBool(r.Exact()),
		r.RPN,
		r.Infix,
		strconv.FormatUint(r.Generated, 10),
		strconv.FormatUint(r.Visited, 10),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		strconv.FormatBool(r.TimedOut),
	}
}

// SolvePuzzle solves p, giving up after timeout (if positive). Running
// out of time is not an error: the best state found so far is reported
// with TimedOut set. An error is only returned if ctx itself is done.
func SolvePuzzle(ctx context.Context, p *puzzles.Puzzle, timeout time.Duration) (*Result, error) {
	solveCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	stats := &solver.Stats{}
	start := time.Now()
	best, err := solver.SolveContext(solveCtx, p.Tiles, p.Target, stats)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	r := &Result{
		Puzzle:    p,
		RPN:       best.String(),
		Infix:     best.Infix(),
		Generated: stats.Expanded(),
		Visited:   stats.Visited,
		Elapsed:   elapsed,
		TimedOut:  errors.Is(err, context.DeadlineExceeded),
		Distance:  -1,
	}
	if v, verr := best.TryValue(); verr == nil {
		r.Value = v
		r.Distance = abs(v - p.Target)
	}
	log.Debug().Str("puzzle", p.String()).Int("value", r.Value).
		Uint64("visited", r.Visited).Dur("elapsed", elapsed).
		Bool("timed-out", r.TimedOut).Msg("puzzle-solved")
	return r, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
