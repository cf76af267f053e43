// internal/engine/rules_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

// rulesRoom is the minimal discard state CanPlay consults.
func rulesRoom(top models.Card, active models.Color) *room.Room {
	return &room.Room{
		Status:      room.StatusPlaying,
		DiscardTop:  top,
		ActiveColor: active,
	}
}

func TestCanPlayColorAndValueMatch(t *testing.T) {
	r := rulesRoom(models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 5}, models.ColorRed)

	cases := []struct {
		name string
		card models.Card
		want bool
	}{
		{"same color number", models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 2}, true},
		{"same value off-color", models.Card{Kind: models.KindNumber, Color: models.ColorBlue, Value: 5}, true},
		{"off-color off-value", models.Card{Kind: models.KindNumber, Color: models.ColorBlue, Value: 2}, false},
		{"wild", models.Card{Kind: models.KindWild}, true},
		{"plus4", models.Card{Kind: models.KindPlus4}, true},
		{"swap any color", models.Card{Kind: models.KindSwap, Color: models.ColorGreen}, true},
		{"matching plus2", models.Card{Kind: models.KindPlus2, Color: models.ColorRed}, true},
		{"off-color plus2", models.Card{Kind: models.KindPlus2, Color: models.ColorGreen}, false},
		{"matching skip", models.Card{Kind: models.KindSkip, Color: models.ColorRed}, true},
		{"off-color skip", models.Card{Kind: models.KindSkip, Color: models.ColorYellow}, false},
		{"matching reverse", models.Card{Kind: models.KindReverse, Color: models.ColorRed}, true},
		{"off-color reverse", models.Card{Kind: models.KindReverse, Color: models.ColorBlue}, false},
		{"colorless plus20", models.Card{Kind: models.KindPlus20}, true},
		{"matching colored plus20", models.Card{Kind: models.KindPlus20, Color: models.ColorRed}, true},
		{"off-color colored plus20", models.Card{Kind: models.KindPlus20, Color: models.ColorBlue}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanPlay(tc.card, r))
		})
	}
}

func TestCanPlayValueMatchNeedsNumberTop(t *testing.T) {
	// Against a non-number top there is no value to match, so an off-color
	// number is out regardless of its value.
	r := rulesRoom(models.Card{Kind: models.KindSkip, Color: models.ColorRed}, models.ColorRed)
	assert.False(t, CanPlay(models.Card{Kind: models.KindNumber, Color: models.ColorBlue, Value: 5}, r))
	assert.True(t, CanPlay(models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 5}, r))
}

func TestCanPlayDeflectionGate(t *testing.T) {
	r := rulesRoom(models.Card{Kind: models.KindPlus2, Color: models.ColorRed}, models.ColorRed)
	r.PendingDraws = 2

	// Only plus cards deflect, and color is irrelevant while a penalty is
	// unresolved.
	assert.True(t, CanPlay(models.Card{Kind: models.KindPlus2, Color: models.ColorGreen}, r))
	assert.True(t, CanPlay(models.Card{Kind: models.KindPlus4}, r))
	assert.True(t, CanPlay(models.Card{Kind: models.KindPlus20}, r))
	assert.True(t, CanPlay(models.Card{Kind: models.KindPlus20, Color: models.ColorBlue}, r))

	assert.False(t, CanPlay(models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 2}, r))
	assert.False(t, CanPlay(models.Card{Kind: models.KindWild}, r))
	assert.False(t, CanPlay(models.Card{Kind: models.KindSkip, Color: models.ColorRed}, r))
	assert.False(t, CanPlay(models.Card{Kind: models.KindReverse, Color: models.ColorRed}, r))
	assert.False(t, CanPlay(models.Card{Kind: models.KindSwap, Color: models.ColorRed}, r))
}

func TestCanPlayReverseStackCap(t *testing.T) {
	r := rulesRoom(models.Card{Kind: models.KindReverse, Color: models.ColorRed}, models.ColorRed)
	reverse := models.Card{Kind: models.KindReverse, Color: models.ColorRed}

	for stack := 0; stack < MaxReverseStack; stack++ {
		r.ReverseStack = stack
		assert.True(t, CanPlay(reverse, r), "stack %d", stack)
	}
	r.ReverseStack = MaxReverseStack
	assert.False(t, CanPlay(reverse, r))

	// The cap binds reverses only.
	assert.True(t, CanPlay(models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 1}, r))
}
