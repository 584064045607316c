package arena

import "math"

type zoneRule struct {
	zone  Zone
	match func(g *Geometry, p Vec2) bool
}

// zoneRules is evaluated top to bottom and the first match wins, which is
// what makes the zones mutually exclusive where their shapes overlap.
var zoneRules = [...]zoneRule{
	{LeftGoal, func(g *Geometry, p Vec2) bool {
		return p.X < 0 && g.inMouth(p.Y)
	}},
	{RightGoal, func(g *Geometry, p Vec2) bool {
		return p.X > g.Length && g.inMouth(p.Y)
	}},
	{LeftGoalArea, func(g *Geometry, p Vec2) bool {
		return g.inArea(p, 0, g.AreaDepth) || g.inBulge(p, g.AreaDepth)
	}},
	{RightGoalArea, func(g *Geometry, p Vec2) bool {
		return g.inArea(p, g.Length-g.AreaDepth, g.Length) || g.inBulge(p, g.Length-g.AreaDepth)
	}},
	{LeftUpCorner, func(g *Geometry, p Vec2) bool {
		return p.X < g.Corner && p.Y > g.Width-g.Corner
	}},
	{LeftDownCorner, func(g *Geometry, p Vec2) bool {
		return p.X < g.Corner && p.Y < g.Corner
	}},
	{RightUpCorner, func(g *Geometry, p Vec2) bool {
		return p.X > g.Length-g.Corner && p.Y > g.Width-g.Corner
	}},
	{RightDownCorner, func(g *Geometry, p Vec2) bool {
		return p.X > g.Length-g.Corner && p.Y < g.Corner
	}},
	{LeftUpBottomLine, func(g *Geometry, p Vec2) bool {
		return p.X < g.BottomLine && p.Y >= g.Width/2
	}},
	{LeftDownBottomLine, func(g *Geometry, p Vec2) bool {
		return p.X < g.BottomLine
	}},
	{RightUpBottomLine, func(g *Geometry, p Vec2) bool {
		return p.X > g.Length-g.BottomLine && p.Y >= g.Width/2
	}},
	{RightDownBottomLine, func(g *Geometry, p Vec2) bool {
		return p.X > g.Length-g.BottomLine
	}},
	{UpBorder, func(g *Geometry, p Vec2) bool {
		return p.Y > g.Width-g.Border
	}},
	{DownBorder, func(g *Geometry, p Vec2) bool {
		return p.Y < g.Border
	}},
}

func (g *Geometry) inMouth(y float64) bool { return y > g.GoalYMin && y < g.GoalYMax }

func (g *Geometry) inArea(p Vec2, x0, x1 float64) bool {
	return p.X >= x0 && p.X <= x1 && p.Y > g.AreaYMin && p.Y < g.AreaYMax
}

func (g *Geometry) inBulge(p Vec2, cx float64) bool {
	if g.BulgeRX == 0 || g.BulgeRY == 0 {
		return false
	}
	dx := (p.X - cx) / g.BulgeRX
	dy := (p.Y - g.Width/2) / g.BulgeRY
	return dx*dx+dy*dy < 1
}

// Classify returns the zone containing p. Unseen or non-finite points
// classify as Center.
func (g Geometry) Classify(p Vec2) Zone {
	if !p.Seen() || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return Center
	}
	for i := range zoneRules {
		if zoneRules[i].match(&g, p) {
			return zoneRules[i].zone
		}
	}
	return Center
}

// Classify classifies p on the default field.
func Classify(p Vec2) Zone { return Default.Classify(p) }
