package arena

import (
	"fmt"
	"math"
)

// Zone is a named region of the field. Every point classifies into exactly
// one zone.
type Zone int

const (
	Center Zone = iota
	UpBorder
	DownBorder
	LeftGoal
	RightGoal
	LeftGoalArea
	RightGoalArea
	LeftUpCorner
	LeftDownCorner
	RightUpCorner
	RightDownCorner
	LeftUpBottomLine
	LeftDownBottomLine
	RightUpBottomLine
	RightDownBottomLine

	zoneCount
)

var zoneNames = [zoneCount]string{
	Center:              "center",
	UpBorder:            "up-border",
	DownBorder:          "down-border",
	LeftGoal:            "left-goal",
	RightGoal:           "right-goal",
	LeftGoalArea:        "left-goal-area",
	RightGoalArea:       "right-goal-area",
	LeftUpCorner:        "left-up-corner",
	LeftDownCorner:      "left-down-corner",
	RightUpCorner:       "right-up-corner",
	RightDownCorner:     "right-down-corner",
	LeftUpBottomLine:    "left-up-bottom-line",
	LeftDownBottomLine:  "left-down-bottom-line",
	RightUpBottomLine:   "right-up-bottom-line",
	RightDownBottomLine: "right-down-bottom-line",
}

func (z Zone) String() string {
	if z >= 0 && z < zoneCount {
		return zoneNames[z]
	}
	return fmt.Sprintf("Zone(%d)", int(z))
}

// Zones lists every zone in declaration order.
func Zones() []Zone {
	out := make([]Zone, zoneCount)
	for i := range out {
		out[i] = Zone(i)
	}
	return out
}

// In reports whether z is one of zs.
func (z Zone) In(zs ...Zone) bool {
	for _, o := range zs {
		if z == o {
			return true
		}
	}
	return false
}

func (z Zone) IsGoal() bool { return z == LeftGoal || z == RightGoal }

func (z Zone) IsGoalArea() bool { return z == LeftGoalArea || z == RightGoalArea }

func (z Zone) IsCorner() bool {
	return z.In(LeftUpCorner, LeftDownCorner, RightUpCorner, RightDownCorner)
}

func (z Zone) IsBottomLine() bool {
	return z.In(LeftUpBottomLine, LeftDownBottomLine, RightUpBottomLine, RightDownBottomLine)
}

func (z Zone) IsBorder() bool { return z == UpBorder || z == DownBorder }

// IsEdge reports whether z runs along a wall: borders, bottom lines and corners.
func (z Zone) IsEdge() bool { return z.IsBorder() || z.IsBottomLine() || z.IsCorner() }

// Defends reports whether z is the goal or goal area belonging to side.
func (z Zone) Defends(side Side) bool {
	if side == Left {
		return z == LeftGoal || z == LeftGoalArea
	}
	return z == RightGoal || z == RightGoalArea
}

// WallNormal returns the outward unit normal of the wall an edge zone runs
// along. Corners point diagonally out.
func (z Zone) WallNormal() (Vec2, bool) {
	d := 1 / math.Sqrt2
	switch z {
	case UpBorder:
		return Vec2{0, 1}, true
	case DownBorder:
		return Vec2{0, -1}, true
	case LeftUpBottomLine, LeftDownBottomLine:
		return Vec2{-1, 0}, true
	case RightUpBottomLine, RightDownBottomLine:
		return Vec2{1, 0}, true
	case LeftUpCorner:
		return Vec2{-d, d}, true
	case LeftDownCorner:
		return Vec2{-d, -d}, true
	case RightUpCorner:
		return Vec2{d, d}, true
	case RightDownCorner:
		return Vec2{d, -d}, true
	}
	return Vec2{}, false
}
