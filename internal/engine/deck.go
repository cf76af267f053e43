// internal/engine/deck.go
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/stax-cards/stax/internal/models"
)

// Archetype weights out of 100. Policy constants; the game has no finite
// deck, so every draw synthesizes a fresh card from this distribution and
// there is no reshuffle or exhaustion case.
const (
	weightNumber      = 57
	weightWild        = 10
	weightPlus2       = 14
	weightPlus4       = 5
	weightPlus20Wild  = 2
	weightPlus20Color = 1
	weightSkip        = 4
	weightReverse     = 4
	weightSwap        = 3
)

const weightTotal = weightNumber + weightWild + weightPlus2 + weightPlus4 +
	weightPlus20Wild + weightPlus20Color + weightSkip + weightReverse + weightSwap

// Generator synthesizes cards on demand. One seeded source is shared
// across rooms, guarded by a mutex.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a time-seeded generator.
func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededGenerator returns a deterministic generator for tests.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Card draws one card from the weighted distribution.
func (g *Generator) Card() models.Card {
	g.mu.Lock()
	defer g.mu.Unlock()

	roll := g.rnd.Intn(weightTotal)
	switch {
	case roll < weightNumber:
		return models.Card{Kind: models.KindNumber, Color: g.color(), Value: g.numberValue()}
	case roll < weightNumber+weightWild:
		return models.Card{Kind: models.KindWild}
	case roll < weightNumber+weightWild+weightPlus2:
		return models.Card{Kind: models.KindPlus2, Color: g.color()}
	case roll < weightNumber+weightWild+weightPlus2+weightPlus4:
		return models.Card{Kind: models.KindPlus4}
	case roll < weightNumber+weightWild+weightPlus2+weightPlus4+weightPlus20Wild:
		return models.Card{Kind: models.KindPlus20}
	case roll < weightNumber+weightWild+weightPlus2+weightPlus4+weightPlus20Wild+weightPlus20Color:
		return models.Card{Kind: models.KindPlus20, Color: g.color()}
	case roll < weightNumber+weightWild+weightPlus2+weightPlus4+weightPlus20Wild+weightPlus20Color+weightSkip:
		return models.Card{Kind: models.KindSkip, Color: g.color()}
	case roll < weightTotal-weightSwap:
		return models.Card{Kind: models.KindReverse, Color: g.color()}
	default:
		return models.Card{Kind: models.KindSwap, Color: g.color()}
	}
}

// NeutralCard draws until the distribution yields a number or wild card,
// used for the initial discard top so the game never opens on a penalty,
// skip, reverse or swap effect.
func (g *Generator) NeutralCard() models.Card {
	for {
		c := g.Card()
		if c.Kind == models.KindNumber || c.Kind == models.KindWild {
			return c
		}
	}
}

// Color draws one of the four playable colors uniformly.
func (g *Generator) Color() models.Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.color()
}

// color assumes g.mu is held.
func (g *Generator) color() models.Color {
	return models.Colors[g.rnd.Intn(len(models.Colors))]
}

// numberValue draws a number card value: 0-7 or 9, never 8.
// Assumes g.mu is held.
func (g *Generator) numberValue() int {
	v := g.rnd.Intn(9)
	if v == 8 {
		v = 9
	}
	return v
}
