package snotmosaic

import (
	"fmt"
	"strings"
)

// Sizes in basic-unit pixels. A brick is 5 wide and 6 tall seen from the
// side, a plate 2 tall, and a SNOT block 10×10 (two plates stacked five high,
// or the same area built sideways).
const (
	BrickWidth     = 5
	BrickHeight    = 6
	PlateHeight    = 2
	SnotBlockWidth = 10
)

// Type is a construction variant: how the bricks face the viewer.
type Type int

const (
	// TopStuds: 1×1 plates seen from the top.
	TopStuds Type = iota
	// SideBricks: bricks stacked, seen from the side.
	SideBricks
	// SidePlates: plates stacked, seen from the side.
	SidePlates
	// VerticalSidePlates: plates turned on their side.
	VerticalSidePlates
	// SnotBlock: 10×10 blocks built either normally or sideways, whichever
	// reproduces the image better.
	SnotBlock
	numTypes
)

var typeInfo = [numTypes]struct {
	name         string
	unitW, unitH int
}{
	TopStuds:           {"top", BrickWidth, BrickWidth},
	SideBricks:         {"bricks", BrickWidth, BrickHeight},
	SidePlates:         {"plates", BrickWidth, PlateHeight},
	VerticalSidePlates: {"vplates", PlateHeight, BrickWidth},
	SnotBlock:          {"snot", SnotBlockWidth, SnotBlockWidth},
}

func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeInfo[t].name
}

// UnitWidth is the width in pixels of one placeable unit of t.
func (t Type) UnitWidth() int {
	return typeInfo[t].unitW
}

// UnitHeight is the height in pixels of one placeable unit of t.
func (t Type) UnitHeight() int {
	return typeInfo[t].unitH
}

// ParseType maps a name as printed by String back to its Type.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t := Type(0); t < numTypes; t++ {
		if typeInfo[t].name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown construction type %q", s)
}
