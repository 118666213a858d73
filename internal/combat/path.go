package combat

// NextStep runs a breadth-first search from start to goal and returns the
// first cell of the shortest path found. Occupied cells block the search,
// except for goal itself. It returns false when goal cannot be reached.
func NextStep(start, goal Cell, occupied func(Cell) bool) (Cell, bool) {
	if start == goal {
		return goal, true
	}
	prev := map[Cell]Cell{start: start}
	queue := []Cell{start}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, n := range Neighbors(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			if n != goal && occupied(n) {
				continue
			}
			prev[n] = cur
			if n == goal {
				step := n
				for prev[step] != start {
					step = prev[step]
				}
				return step, true
			}
			queue = append(queue, n)
		}
	}
	return Cell{}, false
}
