package combat

// GridSize is the width and height of the battlefield.
const GridSize = 10

// Cell is a grid coordinate. X is the column, Y the row.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Chebyshev is the movement and range metric: max(|dx|, |dy|).
func Chebyshev(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
