package combat

// Relation describes who holds a cell from a viewer's point of view.
type Relation uint8

const (
	Ally Relation = iota + 1
	Enemy
)

// neighborOffsets is dx-major so that pathfinding ties resolve the same way
// on every run.
var neighborOffsets = [8]Cell{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Neighbors returns the in-grid cells around c.
func Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// Occupancy maps every cell held by a living placed stack to its relation
// with the allies' side. An enemy wins a collision.
func Occupancy(allies, enemies []*UnitStack) map[Cell]Relation {
	occ := make(map[Cell]Relation, len(allies)+len(enemies))
	for _, s := range allies {
		if s.active() {
			occ[s.Pos] = Ally
		}
	}
	for _, s := range enemies {
		if s.active() {
			occ[s.Pos] = Enemy
		}
	}
	return occ
}

type slot struct {
	idx  int
	side Side
}

// Board indexes the arena by cell. It never holds two stacks in one cell.
type Board struct {
	cells map[Cell]slot
}

func NewBoard() *Board {
	return &Board{cells: make(map[Cell]slot)}
}

// Rebuild re-indexes the board from the living placed stacks of the arena.
func (b *Board) Rebuild(arena []UnitStack) {
	clear(b.cells)
	for i := range arena {
		if arena[i].active() {
			b.cells[arena[i].Pos] = slot{idx: i, side: arena[i].Side}
		}
	}
}

// Place seats arena[idx] on c if c is inside the grid and free.
func (b *Board) Place(arena []UnitStack, idx int, c Cell) bool {
	if !c.InBounds() || b.Occupied(c) {
		return false
	}
	s := &arena[idx]
	s.Pos = c
	s.Placed = true
	b.cells[c] = slot{idx: idx, side: s.Side}
	return true
}

func (b *Board) Occupied(c Cell) bool {
	_, ok := b.cells[c]
	return ok
}

// At returns the arena index of the stack on c.
func (b *Board) At(c Cell) (int, bool) {
	sl, ok := b.cells[c]
	return sl.idx, ok
}

// Relation reports how the holder of c relates to viewer.
func (b *Board) Relation(c Cell, viewer Side) (Relation, bool) {
	sl, ok := b.cells[c]
	if !ok {
		return 0, false
	}
	if sl.side == viewer {
		return Ally, true
	}
	return Enemy, true
}

// Move shifts whatever stands on from to the free cell to.
func (b *Board) Move(from, to Cell) {
	sl, ok := b.cells[from]
	if !ok {
		return
	}
	delete(b.cells, from)
	b.cells[to] = sl
}

func (b *Board) Vacate(c Cell) { delete(b.cells, c) }

func (b *Board) Len() int { return len(b.cells) }

// RandomPlace seats every living unplaced member on a random free cell of
// the given columns. A stack stays unplaced when the columns are full.
func (b *Board) RandomPlace(rng Rand, arena []UnitStack, members []int, cols []int) {
	for _, idx := range members {
		s := &arena[idx]
		if s.Placed || !s.Alive {
			continue
		}
		tries := make([]Cell, 0, len(cols)*GridSize)
		for _, x := range cols {
			for y := 0; y < GridSize; y++ {
				tries = append(tries, Cell{X: x, Y: y})
			}
		}
		rng.Shuffle(len(tries), func(i, j int) { tries[i], tries[j] = tries[j], tries[i] })
		for _, c := range tries {
			if b.Place(arena, idx, c) {
				break
			}
		}
	}
}
