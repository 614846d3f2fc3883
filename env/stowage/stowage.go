// Package stowage implements a simplified multi-port container stowage
// environment: containers destined for later ports arrive on a FIFO
// schedule and are stacked into the columns of a bay; popping a column's
// top container back onto the front of the schedule counts as a
// reshuffle. There is no discharge step: a container leaves the bay only
// through a reshuffle.
package stowage

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/portstow/az/env"
)

// State is a bay of R rows by C columns, each cell holding a destination
// port id (0 meaning empty), plus the FIFO schedule of containers still
// to load and a running reshuffle count.
type State struct {
	rows, cols int
	bay        [][]int16 // bay[col] is a stack, index 0 = bottom
	schedule   []int16   // destination ports still to load, front = next
	reshuffles int
	placed     int
}

// New returns a fresh, empty bay of the given dimensions with schedule
// as the ordered list of container destination ports to load.
func New(rows, cols int, schedule []int16) *State {
	bay := make([][]int16, cols)
	for c := range bay {
		bay[c] = make([]int16, 0, rows)
	}
	sched := make([]int16, len(schedule))
	copy(sched, schedule)
	return &State{rows: rows, cols: cols, bay: bay, schedule: sched}
}

func (s *State) Copy() env.Env {
	cp := &State{
		rows:       s.rows,
		cols:       s.cols,
		reshuffles: s.reshuffles,
		placed:     s.placed,
	}
	cp.bay = make([][]int16, s.cols)
	for c := range s.bay {
		cp.bay[c] = append([]int16(nil), s.bay[c]...)
	}
	cp.schedule = append([]int16(nil), s.schedule...)
	return cp
}

// Step applies action: a < cols is an add onto column a, a >= cols
// (index a-cols) is a remove from that column back onto the schedule.
func (s *State) Step(action int) {
	if action < s.cols {
		container := s.schedule[0]
		s.schedule = s.schedule[1:]
		s.bay[action] = append(s.bay[action], container)
		s.placed++
		return
	}
	col := action - s.cols
	n := len(s.bay[col])
	container := s.bay[col][n-1]
	s.bay[col] = s.bay[col][:n-1]
	s.schedule = append([]int16{container}, s.schedule...)
	s.reshuffles++
}

func (s *State) Terminal() bool {
	if len(s.schedule) != 0 {
		return false
	}
	for _, col := range s.bay {
		if len(col) != 0 {
			return false
		}
	}
	return true
}

// Mask reports add actions (index < cols) legal when the column has
// spare rows and the schedule is non-empty, and remove actions
// (index >= cols) legal when the column is non-empty.
func (s *State) Mask() []bool {
	mask := make([]bool, 2*s.cols)
	for c := 0; c < s.cols; c++ {
		mask[c] = len(s.schedule) > 0 && len(s.bay[c]) < s.rows
		mask[s.cols+c] = len(s.bay[c]) > 0
	}
	return mask
}

func (s *State) ActionSpace() int { return 2 * s.cols }

// Observation flattens the bay (row-major per column, zero-padded),
// followed by the schedule (zero-padded to rows*cols, the worst-case
// number of containers ever in flight at once).
func (s *State) Observation() env.Observation {
	obs := make(env.Observation, 0, s.rows*s.cols+s.rows*s.cols)
	for c := 0; c < s.cols; c++ {
		for r := 0; r < s.rows; r++ {
			if r < len(s.bay[c]) {
				obs = append(obs, float32(s.bay[c][r]))
			} else {
				obs = append(obs, 0)
			}
		}
	}
	for i := 0; i < s.rows*s.cols; i++ {
		if i < len(s.schedule) {
			obs = append(obs, float32(s.schedule[i]))
		} else {
			obs = append(obs, 0)
		}
	}
	return obs
}

// FinalReward is -moves_to_solve: one unit of cost per add, plus one
// extra unit per reshuffle, matching the reshuffle-minimization objective
// that actually drives multi-port stowage planning.
func (s *State) FinalReward() float64 {
	return -float64(s.placed + s.reshuffles)
}

func (s *State) Close() {}

func (s *State) Key() env.StateKey {
	buf := make([]byte, 0, 2*(s.rows*s.cols+len(s.schedule))+8)
	for _, col := range s.bay {
		for _, v := range col {
			var b [2]byte
			binary.BigEndian.PutUint16(b[:], uint16(v))
			buf = append(buf, b[:]...)
		}
		buf = append(buf, 0xFF) // column separator so "1,2" != "12"
	}
	for _, v := range s.schedule {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(v))
		buf = append(buf, b[:]...)
	}
	return sha256.Sum256(buf)
}

func (s *State) Equal(other env.Env) bool {
	o, ok := other.(*State)
	if !ok {
		return false
	}
	return s.Key() == o.Key()
}

// TotalReward is the running (negative) cost accrued so far, used by a
// bound-and-prune predicate to abandon dominated branches early.
func (s *State) TotalReward() float64 {
	return -float64(s.placed + s.reshuffles)
}

// reshufflesPerPortBound is the dominated-branch threshold for
// ReshufflesPerPort: once more than half of the containers placed so far
// required an intervening reshuffle, the branch is treated as unable to
// recover a competitive plan.
const reshufflesPerPortBound = -0.5

// BelowBound reports whether the branch has crossed the dominated-branch
// threshold on ReshufflesPerPort.
func (s *State) BelowBound() bool {
	if s.placed == 0 {
		return false
	}
	return s.ReshufflesPerPort() < reshufflesPerPortBound
}

// ReshufflesPerPort is the reshuffle count per container placed so far,
// negated to match TotalReward's cost-as-negative-reward convention: more
// reshuffling relative to progress pushes this further below zero.
func (s *State) ReshufflesPerPort() float64 {
	if s.placed == 0 {
		return 0
	}
	return -float64(s.reshuffles) / float64(s.placed)
}

// LiveColumns reports the bay's actual width, for oracles trained on a
// wider configured maximum action space.
func (s *State) LiveColumns() int { return s.cols }
