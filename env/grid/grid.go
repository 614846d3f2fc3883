// Package grid implements a Flood-It environment: an N×N grid of C
// colors, flooded one color at a time from the top-left cell outward.
package grid

import (
	"crypto/sha256"

	"github.com/portstow/az/env"
)

// State is a Flood-It board: an N×N grid of color indices in [0, C).
// The flooded region always starts at (0,0) and grows each move to
// absorb every orthogonally-adjacent cell sharing the newly chosen color.
type State struct {
	size, colors int
	cells        []byte // row-major, size*size
	moves        int
	lastColor    int // color of the flooded region; -1 before the first move
}

// New returns a fresh board with the given cell colors (row-major,
// length size*size) and palette size colors.
func New(size, colors int, cells []byte) *State {
	cp := make([]byte, len(cells))
	copy(cp, cells)
	return &State{size: size, colors: colors, cells: cp, lastColor: -1}
}

func (s *State) at(r, c int) byte { return s.cells[r*s.size+c] }

func (s *State) floodedColor() byte {
	if s.lastColor < 0 {
		return s.cells[0]
	}
	return byte(s.lastColor)
}

// floodRegion returns the set of cells currently part of the flooded
// region, starting from (0,0) and growing through same-colored neighbors.
func (s *State) floodRegion() []bool {
	n := s.size * s.size
	region := make([]bool, n)
	target := s.floodedColor()
	if s.cells[0] != target {
		// Not reached in practice: floodedColor returns cells[0] before
		// the first move, and Step always recolors cell 0 to lastColor.
		return region
	}
	stack := []int{0}
	region[0] = true
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := idx/s.size, idx%s.size
		for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nr, nc := r+d[0], c+d[1]
			if nr < 0 || nr >= s.size || nc < 0 || nc >= s.size {
				continue
			}
			ni := nr*s.size + nc
			if region[ni] || s.cells[ni] != target {
				continue
			}
			region[ni] = true
			stack = append(stack, ni)
		}
	}
	return region
}

func (s *State) Copy() env.Env {
	cp := *s
	cp.cells = make([]byte, len(s.cells))
	copy(cp.cells, s.cells)
	return &cp
}

// Step recolors the flooded region to color action, then re-grows it to
// absorb every newly-adjacent cell of that color.
func (s *State) Step(action int) {
	region := s.floodRegion()
	target := byte(action)
	for i, in := range region {
		if in {
			s.cells[i] = target
		}
	}
	s.lastColor = action
	s.moves++
}

func (s *State) Terminal() bool {
	for _, in := range s.floodRegion() {
		if !in {
			return false
		}
	}
	return true
}

// Mask reports every color as legal except the flooded region's current
// color (a no-op once at least one move has been made).
func (s *State) Mask() []bool {
	mask := make([]bool, s.colors)
	for i := range mask {
		mask[i] = true
	}
	if s.lastColor >= 0 {
		mask[s.lastColor] = false
	}
	return mask
}

func (s *State) ActionSpace() int { return s.colors }

// Observation one-hot encodes every cell's color into a flat
// size*size*colors feature vector, the layout gorgonia-based
// convolutional or dense oracles expect.
func (s *State) Observation() env.Observation {
	obs := make(env.Observation, len(s.cells)*s.colors)
	for i, c := range s.cells {
		obs[i*s.colors+int(c)] = 1
	}
	return obs
}

// FinalReward is the negative move count once solved: fewer moves is a
// higher reward.
func (s *State) FinalReward() float64 { return -float64(s.moves) }

func (s *State) Close() {}

func (s *State) Key() env.StateKey {
	return sha256.Sum256(s.cells)
}

func (s *State) Equal(other env.Env) bool {
	o, ok := other.(*State)
	if !ok || o.size != s.size || o.colors != s.colors {
		return false
	}
	for i := range s.cells {
		if s.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Moves reports the number of recoloring actions applied so far.
func (s *State) Moves() int { return s.moves }

// Size reports the board's side length.
func (s *State) Size() int { return s.size }

// Colors reports the palette size.
func (s *State) Colors() int { return s.colors }

// Cells returns a copy of the row-major color grid, for inspection
// tools (debug/render) that must not alias the board's own state.
func (s *State) Cells() []byte {
	cp := make([]byte, len(s.cells))
	copy(cp, s.cells)
	return cp
}
