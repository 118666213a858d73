package combat

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// DefaultMaxRounds applies when Input.MaxRounds is not positive.
const DefaultMaxRounds = 60

const maxAttackMeter = 4.0

// Rand is the random source of a battle. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// deployColumns are the auto-placement columns of each side.
var deployColumns = map[Side][]int{
	SideAttacker: {0, 1},
	SideDefender: {GridSize - 2, GridSize - 1},
}

type Option func(*Battle)

// WithLogger routes setup and result logging to log.
func WithLogger(log *zap.Logger) Option {
	return func(b *Battle) {
		if log != nil {
			b.log = log
		}
	}
}

// WithRecord toggles the event log. Outcome.Events stays nil when off.
func WithRecord(record bool) Option {
	return func(b *Battle) { b.record = record }
}

// Battle is the state of one running simulation. It is not safe for
// concurrent use; run separate battles in parallel instead.
type Battle struct {
	rng    Rand
	log    *zap.Logger
	record bool

	stacks []UnitStack
	sides  map[Side][]*UnitStack
	board  *Board

	events    []Event
	round     int
	maxRounds int
}

// Simulate resolves a battle between in.Attacker and in.Defender.
func Simulate(in Input, rng Rand, opts ...Option) Outcome {
	b := newBattle(in, rng, opts...)
	initial := b.setup(in)

	out := Outcome{InitialPositions: initial}
	if b.alive(SideAttacker) > 0 && b.alive(SideDefender) > 0 {
		b.run()
	}
	out.Rounds = b.round
	out.Events = b.events
	if b.record && out.Events == nil {
		out.Events = []Event{}
	}
	out.AttackerRemaining = b.alive(SideAttacker)
	out.DefenderRemaining = b.alive(SideDefender)
	switch {
	case out.AttackerRemaining > out.DefenderRemaining:
		out.Winner = SideAttacker
	case out.DefenderRemaining > out.AttackerRemaining:
		out.Winner = SideDefender
	}

	b.log.Info("battle finished",
		zap.String("winner", string(out.Winner)),
		zap.Int("rounds", out.Rounds),
		zap.Int("attacker_remaining", out.AttackerRemaining),
		zap.Int("defender_remaining", out.DefenderRemaining),
		zap.Int("events", len(out.Events)))
	return out
}

func newBattle(in Input, rng Rand, opts ...Option) *Battle {
	b := &Battle{
		rng:       rng,
		log:       zap.NewNop(),
		record:    true,
		board:     NewBoard(),
		maxRounds: in.MaxRounds,
	}
	if b.maxRounds <= 0 {
		b.maxRounds = DefaultMaxRounds
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// setup resolves both armies into the arena, seats every stack and returns
// the initial position snapshot.
func (b *Battle) setup(in Input) map[Side][]Placement {
	att := ResolveArmy(in.Attacker, SideAttacker)
	def := ResolveArmy(in.Defender, SideDefender)
	b.stacks = append(att, def...)
	assignIDs(b.stacks)

	saved := make([]*Cell, 0, len(b.stacks))
	for _, spec := range in.Attacker.Stacks {
		saved = append(saved, spec.Pos)
	}
	for _, spec := range in.Defender.Stacks {
		saved = append(saved, spec.Pos)
	}

	b.sides = map[Side][]*UnitStack{}
	members := map[Side][]int{}
	for i := range b.stacks {
		s := &b.stacks[i]
		b.sides[s.Side] = append(b.sides[s.Side], s)
		members[s.Side] = append(members[s.Side], i)
	}

	for i := range b.stacks {
		s := &b.stacks[i]
		if !s.Alive {
			continue
		}
		want := saved[i]
		if s.Side == SideAttacker {
			if c, ok := in.AttackerPresets[s.ID]; ok {
				want = &c
			}
		}
		if want == nil {
			continue
		}
		if !b.board.Place(b.stacks, i, *want) {
			b.log.Warn("start position rejected, placing randomly",
				zap.Int("stack", s.ID),
				zap.String("side", string(s.Side)),
				zap.Int("x", want.X),
				zap.Int("y", want.Y))
		}
	}
	for _, side := range sideOrder {
		b.board.RandomPlace(b.rng, b.stacks, members[side], deployColumns[side])
	}

	initial := make(map[Side][]Placement, len(sideOrder))
	for _, side := range sideOrder {
		list := make([]Placement, 0, len(b.sides[side]))
		for _, s := range b.sides[side] {
			list = append(list, Placement{
				ID:     s.ID,
				Name:   s.Name,
				Health: s.Health,
				Pos:    s.position(),
				Range:  s.Range,
			})
		}
		initial[side] = list
	}
	b.log.Debug("battle set up",
		zap.Int("attacker_stacks", len(b.sides[SideAttacker])),
		zap.Int("defender_stacks", len(b.sides[SideDefender])),
		zap.Int("placed", b.board.Len()),
		zap.Int("max_rounds", b.maxRounds))
	return initial
}

// assignIDs numbers stacks without an id after the highest id in use.
func assignIDs(stacks []UnitStack) {
	next := 0
	for i := range stacks {
		next = max(next, stacks[i].ID)
	}
	for i := range stacks {
		if stacks[i].ID == 0 {
			next++
			stacks[i].ID = next
		}
	}
}

func (b *Battle) run() {
	for r := 1; r <= b.maxRounds; r++ {
		if b.alive(SideAttacker) == 0 || b.alive(SideDefender) == 0 {
			break
		}
		b.round = r

		b.board.Rebuild(b.stacks)
		for _, side := range sideOrder {
			b.movePhase(side)
		}
		b.board.Rebuild(b.stacks)
		for _, side := range sideOrder {
			b.attackPhase(side)
		}
		b.emit(Event{Round: r, Type: EventStatus, Status: &StatusEvent{
			AttackerAlive: b.alive(SideAttacker),
			DefenderAlive: b.alive(SideDefender),
		}})
	}
}

func (b *Battle) movePhase(side Side) {
	foes := b.sides[side.Opponent()]
	for _, s := range b.sides[side] {
		if !s.active() {
			continue
		}
		steps := math.Floor(s.MoveSpeed)
		for i := 0; i < int(steps); i++ {
			b.tryMove(s, foes)
		}
		if b.rng.Float64() < s.MoveSpeed-steps {
			b.tryMove(s, foes)
		}
	}
}

// tryMove takes one step toward the nearest enemy unless it is already in
// range. It reports whether the stack moved.
func (b *Battle) tryMove(s *UnitStack, foes []*UnitStack) bool {
	target := FindTarget(s, foes, false)
	if target == nil || Chebyshev(s.Pos, target.Pos) <= s.Range {
		return false
	}

	var goals []Cell
	for _, c := range append(Neighbors(target.Pos), target.Pos) {
		if !b.board.Occupied(c) {
			goals = append(goals, c)
		}
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return Chebyshev(s.Pos, goals[i]) < Chebyshev(s.Pos, goals[j])
	})

	for _, g := range goals {
		step, ok := NextStep(s.Pos, g, b.board.Occupied)
		if !ok {
			continue
		}
		from := s.Pos
		b.board.Move(from, step)
		s.Pos = step
		b.emit(Event{Round: b.round, Type: EventMove, Move: &MoveEvent{
			StackID: s.ID,
			Name:    s.Name,
			Side:    s.Side,
			From:    from,
			To:      step,
		}})
		return true
	}
	return false
}

func (b *Battle) attackPhase(side Side) {
	opp := side.Opponent()
	foes := b.sides[opp]
	for _, s := range b.sides[side] {
		if !s.active() {
			continue
		}
		s.AttackMeter = math.Max(0, math.Min(maxAttackMeter, s.AttackMeter+s.AttackSpeed))
		n := math.Floor(s.AttackMeter)
		s.AttackMeter -= n
		for i := 0; i < int(n); i++ {
			if b.alive(opp) == 0 {
				break
			}
			b.performAttack(s, foes)
		}
	}
}

func (b *Battle) alive(side Side) int {
	n := 0
	for _, s := range b.sides[side] {
		if s.Alive {
			n++
		}
	}
	return n
}

func (b *Battle) emit(ev Event) {
	if b.record {
		b.events = append(b.events, ev)
	}
}
