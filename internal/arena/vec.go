package arena

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Vec2 is a point or displacement on the field, in centimetres.
type Vec2 struct {
	X, Y float64
}

// Unseen marks a position that perception did not report this frame.
var Unseen = Vec2{X: math.NaN(), Y: math.NaN()}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Seen reports whether v holds a real measurement.
func (v Vec2) Seen() bool { return !math.IsNaN(v.X) && !math.IsNaN(v.Y) }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross is the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) Norm() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length 1, or the zero vector when v is zero.
func (v Vec2) Unit() Vec2 {
	n := v.Norm()
	if n == 0 {
		return Vec2{}
	}
	return v.Scale(1 / n)
}

// Angle returns the heading of v in radians, in (-pi, pi].
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Heading returns the unit vector pointing along theta radians.
func Heading(theta float64) Vec2 { return Vec2{math.Cos(theta), math.Sin(theta)} }

// AngleBetween returns the signed angle that rotates a onto b, in (-pi, pi].
func AngleBetween(a, b Vec2) float64 {
	return math.Atan2(a.Cross(b), a.Dot(b))
}

func (v Vec2) String() string {
	if !v.Seen() {
		return "(unseen)"
	}
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// MarshalJSON encodes v as [x, y], or null when unseen.
func (v Vec2) MarshalJSON() ([]byte, error) {
	if !v.Seen() {
		return []byte("null"), nil
	}
	return json.Marshal([2]float64{v.X, v.Y})
}

// UnmarshalJSON accepts [x, y], {"x": .., "y": ..} or null (unseen).
func (v *Vec2) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unseen
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var pair [2]float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("arena: invalid vector %s: %w", data, err)
		}
		*v = Vec2{pair[0], pair[1]}
		return nil
	}
	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("arena: invalid vector %s: %w", data, err)
	}
	if obj.X == nil || obj.Y == nil {
		*v = Unseen
		return nil
	}
	*v = Vec2{*obj.X, *obj.Y}
	return nil
}
