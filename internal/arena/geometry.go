package arena

import (
	"errors"
	"fmt"
)

// Geometry holds the field dimensions the zone table is derived from.
type Geometry struct {
	Length float64 // along x
	Width  float64 // along y

	// Goal mouth, open between GoalYMin and GoalYMax.
	GoalYMin, GoalYMax float64

	// Goal area rectangle, plus an elliptical bulge centred on its front edge.
	AreaDepth          float64
	AreaYMin, AreaYMax float64
	BulgeRX, BulgeRY   float64

	Corner     float64 // side of the square corner zones
	BottomLine float64 // depth of the strips along each goal line
	Border     float64 // depth of the strips along the side walls

	// KeeperLine is the distance of the goalkeeper's line from its goal line.
	KeeperLine float64
}

// DefaultGeometry returns the standard IEEE VSS field.
func DefaultGeometry() Geometry {
	return Geometry{
		Length:     150,
		Width:      130,
		GoalYMin:   45,
		GoalYMax:   85,
		AreaDepth:  15,
		AreaYMin:   30,
		AreaYMax:   100,
		BulgeRX:    10,
		BulgeRY:    5,
		Corner:     10,
		BottomLine: 10,
		Border:     10,
		KeeperLine: 10,
	}
}

// Default is the geometry used by the package-level helpers.
var Default = DefaultGeometry()

// Validate rejects geometries that would make the zone table inconsistent.
func (g Geometry) Validate() error {
	var errs []error
	if g.Length <= 0 || g.Width <= 0 {
		errs = append(errs, fmt.Errorf("field size must be positive, got %vx%v", g.Length, g.Width))
	}
	if g.GoalYMin >= g.GoalYMax {
		errs = append(errs, fmt.Errorf("goal mouth is empty: %v..%v", g.GoalYMin, g.GoalYMax))
	}
	if g.AreaYMin >= g.AreaYMax || g.AreaDepth <= 0 {
		errs = append(errs, errors.New("goal area is empty"))
	}
	if 2*g.AreaDepth >= g.Length {
		errs = append(errs, errors.New("goal areas overlap"))
	}
	if g.Corner < 0 || g.BottomLine < 0 || g.Border < 0 || g.BulgeRX < 0 || g.BulgeRY < 0 {
		errs = append(errs, errors.New("zone sizes must not be negative"))
	}
	return errors.Join(errs...)
}

// Center returns the centre spot.
func (g Geometry) Center() Vec2 { return Vec2{g.Length / 2, g.Width / 2} }

// GoalLineX returns the x coordinate of the goal line defended by side.
func (g Geometry) GoalLineX(side Side) float64 {
	if side == Right {
		return g.Length
	}
	return 0
}

// KeeperX returns the x coordinate of the goalkeeper line for side.
func (g Geometry) KeeperX(side Side) float64 {
	if side == Right {
		return g.Length - g.KeeperLine
	}
	return g.KeeperLine
}

// Mirror returns x measured from side's own goal line.
func (g Geometry) Mirror(side Side, x float64) float64 {
	if side == Right {
		return g.Length - x
	}
	return x
}

// OwnGoal returns the centre of the goal defended by side.
func (g Geometry) OwnGoal(side Side) Vec2 { return Vec2{g.GoalLineX(side), g.Width / 2} }

// AttackGoal returns the centre of the goal side is attacking.
func (g Geometry) AttackGoal(side Side) Vec2 { return g.OwnGoal(side.Opponent()) }
