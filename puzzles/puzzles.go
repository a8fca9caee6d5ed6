// Package puzzles deals, parses, and stores Numbers round puzzles.
package puzzles

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"
)

const (
	NumTiles  = 6
	MaxLarge  = 4
	MinTarget = 101
	MaxTarget = 999
)

var (
	LargeNumbers = []int{25, 50, 75, 100}
	// every small number appears twice in the game.
	SmallNumbers = []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10}
)

var (
	ErrNoTiles   = errors.New("no tiles given")
	ErrBadTile   = errors.New("tiles must be non-negative integers")
	ErrBadTarget = errors.New("target must be an integer")
	ErrNumLarge  = fmt.Errorf("number of large tiles must be between 0 and %d", MaxLarge)
)

type Puzzle struct {
	Tiles  []int `yaml:"tiles"`
	Target int   `yaml:"target"`
}

// ID is a stable hash of the tiles (in order) and the target.
func (p *Puzzle) ID() uint64 {
	return xxhash.Sum64String(p.String())
}

func (p *Puzzle) String() string {
	return fmt.Sprintf("%s -> %d", p.TilesString(), p.Target)
}

func (p *Puzzle) TilesString() string {
	return strings.Join(lo.Map(p.Tiles, func(t int, _ int) string {
		return strconv.Itoa(t)
	}), " ")
}

// Deal draws a puzzle following the show's rules: `large` tiles from the
// large numbers, the rest from the small numbers, and a target between
// MinTarget and MaxTarget.
func Deal(large int) (*Puzzle, error) {
	if large < 0 || large > MaxLarge {
		return nil, ErrNumLarge
	}
	tiles := make([]int, 0, NumTiles)
	tiles = append(tiles, draw(LargeNumbers, large)...)
	tiles = append(tiles, draw(SmallNumbers, NumTiles-large)...)
	return &Puzzle{
		Tiles:  tiles,
		Target: MinTarget + frand.Intn(MaxTarget-MinTarget+1),
	}, nil
}

func DealN(large, n int) ([]*Puzzle, error) {
	ps := make([]*Puzzle, n)
	for i := range ps {
		p, err := Deal(large)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return ps, nil
}

// draw picks n distinct positions from set without replacement.
func draw(set []int, n int) []int {
	idx := frand.Perm(len(set))[:n]
	return lo.Map(idx, func(i int, _ int) int { return set[i] })
}

func ParseTiles(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, ErrNoTiles
	}
	tiles := make([]int, len(args))
	for i, a := range args {
		t, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || t < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadTile, a)
		}
		tiles[i] = t
	}
	return tiles, nil
}

func Parse(target string, tiles []string) (*Puzzle, error) {
	t, err := strconv.Atoi(strings.TrimSpace(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadTarget, target)
	}
	ts, err := ParseTiles(tiles)
	if err != nil {
		return nil, err
	}
	return &Puzzle{Tiles: ts, Target: t}, nil
}

type puzzleFile struct {
	Puzzles []*Puzzle `yaml:"puzzles"`
}

// LoadFile reads a YAML puzzle set.
func LoadFile(path string) ([]*Puzzle, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pf := &puzzleFile{}
	if err := yaml.Unmarshal(bts, pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, p := range pf.Puzzles {
		if len(p.Tiles) == 0 {
			return nil, fmt.Errorf("puzzle %d: %w", i, ErrNoTiles)
		}
		if lo.ContainsBy(p.Tiles, func(t int) bool { return t < 0 }) {
			return nil, fmt.Errorf("puzzle %d: %w", i, ErrBadTile)
		}
	}
	return pf.Puzzles, nil
}

func Save(path string, ps []*Puzzle) error {
	bts, err := yaml.Marshal(&puzzleFile{Puzzles: ps})
	if err != nil {
		return err
	}
	return os.WriteFile(path, bts, 0644)
}
