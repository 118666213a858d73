package combat

// FindTarget picks the nearest living placed enemy within the actor's range.
// When inRangeOnly is false and nothing is in range, the globally nearest
// enemy is returned instead. The first enemy encountered wins ties.
func FindTarget(actor *UnitStack, enemies []*UnitStack, inRangeOnly bool) *UnitStack {
	if !actor.active() {
		return nil
	}
	var inRange, nearest *UnitStack
	bestIn, best := 0, 0
	for _, e := range enemies {
		if !e.active() {
			continue
		}
		d := Chebyshev(actor.Pos, e.Pos)
		if d <= actor.Range && (inRange == nil || d < bestIn) {
			inRange, bestIn = e, d
		}
		if nearest == nil || d < best {
			nearest, best = e, d
		}
	}
	if inRange != nil || inRangeOnly {
		return inRange
	}
	return nearest
}
