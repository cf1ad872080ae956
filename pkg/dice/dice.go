// Package dice provides the seedable randomness source injected into
// the drama scheduler and interview selector, so trigger and selection
// outcomes are reproducible under test.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Roller is the minimal random surface the engine consumes.
type Roller interface {
	// Percent returns a uniform roll in [1, 100]. A probability check
	// with chance c (0-100) passes when Percent() <= c.
	Percent() int
	// Intn returns a uniform int in [0, n). n must be > 0.
	Intn(n int) int
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

type pcgRoller struct {
	r *rand.Rand
}

// NewRoller creates a seeded Roller backed by a PCG source.
func NewRoller(seed int64) Roller {
	return &pcgRoller{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (p *pcgRoller) Percent() int {
	return p.r.IntN(100) + 1
}

func (p *pcgRoller) Intn(n int) int {
	return p.r.IntN(n)
}

// Fixed is a test stub that replays scripted rolls. Each queue repeats
// its final value once exhausted, so a single scripted value behaves
// like a constant roller.
type Fixed struct {
	Percents []int
	Ints     []int

	pi, ii int
}

func (f *Fixed) Percent() int {
	if len(f.Percents) == 0 {
		return 100
	}
	v := f.Percents[f.pi]
	if f.pi < len(f.Percents)-1 {
		f.pi++
	}
	return v
}

func (f *Fixed) Intn(n int) int {
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ii]
	if f.ii < len(f.Ints)-1 {
		f.ii++
	}
	if v >= n {
		v = n - 1
	}
	return v
}
