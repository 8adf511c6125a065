package dice

import (
	"math/rand"
	"time"
)

// Generator produces randomized rolls.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with the current time.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a Generator with a fixed seed.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Rolls returns count canonical rolls of fair six-sided dice.
func (g *Generator) Rolls(count int) []Roll {
	out := make([]Roll, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Canonical(g.face(), g.face(), g.face()))
	}
	return out
}

// Triples returns count uniformly sampled triples. They are not canonicalized.
func (g *Generator) Triples(count int) []Roll {
	out := make([]Roll, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Roll{g.face(), g.face(), g.face()})
	}
	return out
}

// Jitter adds independent noise in {-1, 0, 1} to every position of r.
func (g *Generator) Jitter(r Roll) Roll {
	for i := range r {
		r[i] += g.rnd.Intn(3) - 1
	}
	return r
}

func (g *Generator) face() int {
	return g.rnd.Intn(Faces) + 1
}
