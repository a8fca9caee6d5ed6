// Package solver finds the closest reachable value to a target in the
// Numbers round of Countdown, by breadth-first search over postfix
// expressions built from the given tiles.
package solver

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ContextCheckInterval is how many states SolveContext visits between
// checks of its context.
const ContextCheckInterval = 1 << 12

// Solve searches every expression over tiles, breadth first, and returns
// the state whose value is closest to target. The first exact match ends
// the search. Among equally close values the first one dequeued wins.
// If no state ever holds a value (no tiles), the root is returned.
//
// stats may be nil.
func Solve(tiles []int, target int, stats *Stats) *State {
	best, _ := search(context.Background(), tiles, target, stats)
	return best
}

// SolveContext is Solve with a caller-imposed deadline. If ctx is done
// before the search ends it returns the best state seen so far together
// with ctx.Err().
func SolveContext(ctx context.Context, tiles []int, target int, stats *Stats) (*State, error) {
	return search(ctx, tiles, target, stats)
}

func search(ctx context.Context, tiles []int, target int, stats *Stats) (*State, error) {
	if stats == nil {
		stats = &Stats{}
	}
	root := Root(tiles)
	frontier := []*State{root}
	stats.Generated++

	best := root
	bestDiff := -1

	for head := 0; head < len(frontier); head++ {
		node := frontier[head]
		// release the slot; the node stays reachable through its children.
		frontier[head] = nil
		stats.Visited++

		if stats.Visited%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				log.Debug().Uint64("visited", stats.Visited).Err(err).Msg("solve-interrupted")
				return best, err
			}
		}

		if node.HasValue() {
			v := node.Value()
			diff := abs(v - target)
			if bestDiff < 0 || diff < bestDiff {
				best = node
				bestDiff = diff
			}
			if diff == 0 {
				log.Debug().Uint64("generated", stats.Generated).
					Uint64("visited", stats.Visited).Msg("exact-match")
				return node, nil
			}
		}

		children := node.Expand()
		frontier = append(frontier, children...)
		stats.Generated += uint64(len(children))

		// compact once the consumed prefix dominates the queue.
		if head > 1024 && head*2 > len(frontier) {
			n := copy(frontier, frontier[head+1:])
			clear(frontier[n:])
			frontier = frontier[:n]
			head = -1
		}
	}
	log.Debug().Uint64("generated", stats.Generated).
		Uint64("visited", stats.Visited).Int("distance", bestDiff).Msg("search-exhausted")
	return best, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
