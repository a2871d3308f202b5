// Package generator builds randomized substitution mappings.
package generator

import (
	"math/rand"
	"time"

	"github.com/adriansteffan/jumbletype/internal/mapping"
)

// DefaultAlphabet is the alphabet jumbled when none is given.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Generator produces randomized jumble mappings.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for reproducible
// trial configurations.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Jumble returns a mapping that permutes the alphabet so that no
// character maps to itself. Sattolo's shuffle yields a single cycle,
// which guarantees the fixed-point-free property for len > 1.
func (g *Generator) Jumble(alphabet []rune) mapping.Mapping {
	out := mapping.Mapping{}
	if len(alphabet) < 2 {
		return out
	}
	perm := make([]rune, len(alphabet))
	copy(perm, alphabet)
	for i := len(perm) - 1; i > 0; i-- {
		j := g.rnd.Intn(i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i, r := range alphabet {
		out[string(r)] = string(perm[i])
	}
	return out
}
