// Package idgen generates node identifiers and initial placements for
// nodes added to a diagram.
//
// [Random] is used in production: ids are the node kind followed by a short
// base-36 suffix ("service-k3f9a") and positions are uniform within the
// placement rectangle. [Sequence] is deterministic and intended for tests.
package idgen

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// Placement rectangle for newly added nodes.
const (
	MinX = 160.0
	MaxX = 640.0
	MinY = 120.0
	MaxY = 480.0
)

// suffixLen is the number of base-36 characters appended to the kind.
const suffixLen = 5

// Generator produces identifiers and positions for new nodes.
type Generator interface {
	NodeID(kind diagram.NodeType) string
	Position() diagram.Position
}

// Random is a Generator backed by a pseudo-random source. It is safe for
// concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random seeded from the runtime's entropy source.
func NewRandom() *Random {
	return &Random{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Random with a fixed seed, producing a reproducible
// stream of ids and positions.
func NewSeeded(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NodeID returns kind followed by a dash and a random base-36 suffix.
func (r *Random) NodeID(kind diagram.NodeType) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := make([]byte, 0, len(kind)+1+suffixLen)
	buf = append(buf, kind...)
	buf = append(buf, '-')
	for i := 0; i < suffixLen; i++ {
		buf = append(buf, base36[r.rng.IntN(len(base36))])
	}
	return string(buf)
}

// Position returns a point drawn uniformly from the placement rectangle.
func (r *Random) Position() diagram.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return diagram.Position{
		X: MinX + r.rng.Float64()*(MaxX-MinX),
		Y: MinY + r.rng.Float64()*(MaxY-MinY),
	}
}

// Sequence is a deterministic Generator: ids are "kind-1", "kind-2", ...
// counted per kind, and positions walk a fixed grid inside the placement
// rectangle.
type Sequence struct {
	mu     sync.Mutex
	counts map[diagram.NodeType]int
	step   int
}

// NewSequence returns a Sequence starting at 1 for every kind.
func NewSequence() *Sequence {
	return &Sequence{counts: make(map[diagram.NodeType]int)}
}

// NodeID returns the next id for kind.
func (s *Sequence) NodeID(kind diagram.NodeType) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[diagram.NodeType]int)
	}
	s.counts[kind]++
	return string(kind) + "-" + strconv.Itoa(s.counts[kind])
}

// gridCols and gridRows define the position cycle of a Sequence.
const (
	gridCols = 5
	gridRows = 4
)

// Position returns the next grid point, wrapping after gridCols*gridRows.
func (s *Sequence) Position() diagram.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.step % (gridCols * gridRows)
	s.step++
	col, row := i%gridCols, i/gridCols
	return diagram.Position{
		X: MinX + float64(col)*(MaxX-MinX)/(gridCols-1),
		Y: MinY + float64(row)*(MaxY-MinY)/(gridRows-1),
	}
}

// Fixed is a Generator that always returns the same id and position.
// It exists to exercise collision handling.
type Fixed struct {
	ID  string
	Pos diagram.Position
}

// NodeID returns f.ID regardless of kind.
func (f Fixed) NodeID(diagram.NodeType) string { return f.ID }

// Position returns f.Pos.
func (f Fixed) Position() diagram.Position { return f.Pos }
