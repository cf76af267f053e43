// internal/models/card.go
package models

import "fmt"

// Color is one of the four playable colors, or ColorNone for colorless cards.
type Color string

const (
	ColorNone   Color = ""
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// Colors lists the playable colors in a fixed order.
var Colors = [4]Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Valid reports whether c is one of the four playable colors.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// CardKind tags the card variant. Legality and effect resolution switch
// exhaustively over this tag; a new kind must be handled at every site.
type CardKind string

const (
	KindNumber  CardKind = "number"
	KindWild    CardKind = "wild"
	KindPlus2   CardKind = "plus2"
	KindPlus4   CardKind = "plus4"
	KindPlus20  CardKind = "plus20"
	KindSkip    CardKind = "skip"
	KindReverse CardKind = "reverse"
	KindSwap    CardKind = "swap"
)

// Card is a tagged variant. Which fields are meaningful depends on Kind:
// Number carries Color and Value (0-7 or 9); Wild and Plus4 are colorless;
// Plus2, Skip, Reverse and Swap carry a Color; Plus20 exists both colored
// and colorless.
type Card struct {
	Kind  CardKind `json:"kind"`
	Color Color    `json:"color,omitempty"`
	Value int      `json:"value,omitempty"`
}

// PlusMagnitude returns the draw-penalty magnitude for plus cards, or 0.
func (c Card) PlusMagnitude() int {
	switch c.Kind {
	case KindPlus2:
		return 2
	case KindPlus4:
		return 4
	case KindPlus20:
		return 20
	case KindNumber, KindWild, KindSkip, KindReverse, KindSwap:
		return 0
	}
	return 0
}

// Colorless reports whether the card has no intrinsic color and therefore
// needs a resolved color supplied when played.
func (c Card) Colorless() bool {
	return c.Color == ColorNone
}

// String renders a short human-readable form, e.g. "red 5" or "plus4".
func (c Card) String() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("%s %d", c.Color, c.Value)
	case KindWild, KindPlus4:
		return string(c.Kind)
	case KindPlus2, KindPlus20, KindSkip, KindReverse, KindSwap:
		if c.Color == ColorNone {
			return string(c.Kind)
		}
		return fmt.Sprintf("%s %s", c.Color, c.Kind)
	}
	return string(c.Kind)
}
