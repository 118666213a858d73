package combat

import "math"

// scriptedRand returns vals in order, then def forever. Shuffle keeps the
// input order.
type scriptedRand struct {
	vals []float64
	def  float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.vals) == 0 {
		return r.def
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

func grunt(id string) UnitType {
	return UnitType{
		ID:             id,
		Name:           id,
		DamageMin:      10,
		DamageMax:      10,
		Health:         100,
		AttackSpeed:    1,
		MoveSpeed:      1,
		Range:          1,
		CritMultiplier: 2,
	}
}

func at(x, y int) *Cell { return &Cell{X: x, Y: y} }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
