package combat

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"
)

func TestDuelIsSequential(t *testing.T) {
	u := grunt("duelist")
	u.Range = 2
	in := Input{
		Attacker:  Army{Stacks: []StackSpec{{ID: 1, Unit: u, Pos: at(4, 5)}}},
		Defender:  Army{Stacks: []StackSpec{{ID: 2, Unit: u, Pos: at(5, 5)}}},
		MaxRounds: 60,
	}
	out := Simulate(in, rand.New(rand.NewSource(3)))

	// the attacker strikes first each round, so it lands the tenth hit
	// before the defender can answer
	if out.Winner != SideAttacker || out.Rounds != 10 {
		t.Fatalf("winner %q after %d rounds", out.Winner, out.Rounds)
	}
	if out.AttackerRemaining != 1 || out.DefenderRemaining != 0 {
		t.Fatalf("remaining = %d/%d", out.AttackerRemaining, out.DefenderRemaining)
	}
	if len(out.Events) != 29 {
		t.Fatalf("events = %d, want 29", len(out.Events))
	}
	last := out.Events[len(out.Events)-2]
	if last.Type != EventAttack || last.Attack.AttackerID != 1 || !last.Attack.Targets[0].Killed {
		t.Fatalf("killing blow = %+v", last)
	}
	var defenderHits int
	for _, ev := range out.Events {
		if ev.Type == EventMove {
			t.Fatalf("stack in range moved: %+v", ev.Move)
		}
		if ev.Type == EventAttack && ev.Attack.AttackerID == 2 {
			defenderHits++
			if ev.Attack.Targets[0].Remaining < 10 {
				t.Fatalf("attacker dropped to %v", ev.Attack.Targets[0].Remaining)
			}
		}
	}
	if defenderHits != 9 {
		t.Fatalf("defender hits = %d, want 9", defenderHits)
	}
}

func TestTwoStacksCrushWeakDefender(t *testing.T) {
	weak := grunt("peasant")
	weak.Health = 5
	in := Input{
		Attacker: Army{Stacks: []StackSpec{
			{ID: 1, Unit: grunt("knight"), Pos: at(4, 5)},
			{ID: 2, Unit: grunt("knight"), Pos: at(4, 4)},
		}},
		Defender: Army{Stacks: []StackSpec{{ID: 3, Unit: weak, Pos: at(5, 5)}}},
	}
	out := Simulate(in, rand.New(rand.NewSource(11)))
	if out.Winner != SideAttacker || out.Rounds != 1 || out.DefenderRemaining != 0 || out.AttackerRemaining != 2 {
		t.Fatalf("outcome = %+v", out)
	}
	var attacks int
	for _, ev := range out.Events {
		if ev.Type == EventAttack {
			attacks++
		}
	}
	if attacks != 1 {
		t.Fatalf("attacks = %d, want 1", attacks)
	}
}

func TestStacksCloseDistance(t *testing.T) {
	in := Input{
		Attacker:  Army{Stacks: []StackSpec{{ID: 1, Unit: grunt("a"), Pos: at(0, 5)}}},
		Defender:  Army{Stacks: []StackSpec{{ID: 2, Unit: grunt("d"), Pos: at(9, 5)}}},
		MaxRounds: 3,
	}
	out := Simulate(in, rand.New(rand.NewSource(1)))
	var moves []MoveEvent
	for _, ev := range out.Events {
		if ev.Type == EventMove {
			moves = append(moves, *ev.Move)
		}
	}
	if len(moves) != 6 {
		t.Fatalf("moves = %d, want 6", len(moves))
	}
	if moves[0].StackID != 1 || moves[0].From != (Cell{0, 5}) || moves[0].To.X != 1 {
		t.Fatalf("first move = %+v", moves[0])
	}
	if moves[1].StackID != 2 || moves[1].To.X != 8 {
		t.Fatalf("second move = %+v", moves[1])
	}
	if out.Winner != "" || out.Rounds != 3 {
		t.Fatalf("winner %q rounds %d", out.Winner, out.Rounds)
	}
}

func TestSingleRoundCap(t *testing.T) {
	in := Input{
		Attacker:  Army{Stacks: []StackSpec{{ID: 1, Unit: grunt("a")}}},
		Defender:  Army{Stacks: []StackSpec{{ID: 2, Unit: grunt("d")}}},
		MaxRounds: 1,
	}
	out := Simulate(in, rand.New(rand.NewSource(5)))
	status := 0
	for _, ev := range out.Events {
		if ev.Type == EventStatus {
			status++
			if ev.Round != 1 {
				t.Fatalf("status for round %d", ev.Round)
			}
		}
	}
	if status != 1 || out.Rounds != 1 {
		t.Fatalf("status events = %d, rounds = %d", status, out.Rounds)
	}
}

func TestDefaultRoundCap(t *testing.T) {
	rooted := grunt("tower")
	rooted.MoveSpeed = 0
	in := Input{
		Attacker: Army{Stacks: []StackSpec{{ID: 1, Unit: rooted, Pos: at(0, 0)}}},
		Defender: Army{Stacks: []StackSpec{{ID: 2, Unit: rooted, Pos: at(9, 9)}}},
	}
	out := Simulate(in, rand.New(rand.NewSource(5)))
	if out.Rounds != DefaultMaxRounds || !out.Draw() || len(out.Events) != DefaultMaxRounds {
		t.Fatalf("rounds %d winner %q events %d", out.Rounds, out.Winner, len(out.Events))
	}
}

func TestEmptySides(t *testing.T) {
	one := Army{Stacks: []StackSpec{{ID: 1, Unit: grunt("a")}}}
	cases := []struct {
		name     string
		in       Input
		winner   Side
		attacker int
		defender int
	}{
		{"no defenders", Input{Attacker: one}, SideAttacker, 1, 0},
		{"no attackers", Input{Defender: one}, SideDefender, 0, 1},
		{"nobody", Input{}, "", 0, 0},
	}
	for _, c := range cases {
		out := Simulate(c.in, rand.New(rand.NewSource(1)))
		if out.Winner != c.winner || out.Rounds != 0 || len(out.Events) != 0 {
			t.Errorf("%s: winner %q rounds %d events %d", c.name, out.Winner, out.Rounds, len(out.Events))
		}
		if out.AttackerRemaining != c.attacker || out.DefenderRemaining != c.defender {
			t.Errorf("%s: remaining %d/%d", c.name, out.AttackerRemaining, out.DefenderRemaining)
		}
		if out.Events == nil {
			t.Errorf("%s: nil event log", c.name)
		}
	}
}

func TestSetupPlacement(t *testing.T) {
	in := Input{
		Attacker: Army{Stacks: []StackSpec{
			{ID: 1, Unit: grunt("a"), Pos: at(3, 3)},
			{ID: 2, Unit: grunt("a")},
			{ID: 3, Unit: grunt("a"), Pos: at(12, 0)},
		}},
		Defender: Army{Stacks: []StackSpec{
			{ID: 4, Unit: grunt("d"), Pos: at(5, 5)},
			{ID: 5, Unit: grunt("d")},
		}},
		AttackerPresets: map[int]Cell{1: {2, 2}, 2: {5, 5}},
		MaxRounds:       1,
	}
	out := Simulate(in, &scriptedRand{def: 0.5})

	pos := map[int]*Cell{}
	for _, side := range []Side{SideAttacker, SideDefender} {
		for _, p := range out.InitialPositions[side] {
			pos[p.ID] = p.Pos
		}
	}
	want := map[int]Cell{
		1: {2, 2}, // preset wins over the saved position
		2: {5, 5},
		3: {0, 0}, // off-grid position falls back to the deploy columns
		4: {8, 0}, // collides with a preset, falls back as well
		5: {8, 1},
	}
	for id, c := range want {
		if pos[id] == nil || *pos[id] != c {
			t.Errorf("stack %d at %v, want %v", id, pos[id], c)
		}
	}
}

func TestStacksWithoutIDsAreNumbered(t *testing.T) {
	in := Input{
		Attacker:  Army{Stacks: []StackSpec{{Unit: grunt("a")}, {ID: 5, Unit: grunt("a")}}},
		Defender:  Army{Stacks: []StackSpec{{Unit: grunt("d")}}},
		MaxRounds: 1,
	}
	out := Simulate(in, rand.New(rand.NewSource(2)))
	att := out.InitialPositions[SideAttacker]
	def := out.InitialPositions[SideDefender]
	if att[0].ID != 6 || att[1].ID != 5 || def[0].ID != 7 {
		t.Fatalf("ids = %d %d %d", att[0].ID, att[1].ID, def[0].ID)
	}
}

func TestDeadOnArrival(t *testing.T) {
	ghost := grunt("ghost")
	ghost.Health = 0
	in := Input{
		Attacker: Army{Stacks: []StackSpec{{ID: 1, Unit: ghost}}},
		Defender: Army{Stacks: []StackSpec{{ID: 2, Unit: grunt("d")}}},
	}
	out := Simulate(in, rand.New(rand.NewSource(2)))
	if out.Winner != SideDefender || out.Rounds != 0 {
		t.Fatalf("winner %q rounds %d", out.Winner, out.Rounds)
	}
	if p := out.InitialPositions[SideAttacker][0]; p.Pos != nil {
		t.Fatalf("dead stack placed at %v", *p.Pos)
	}
}

func skirmish() Input {
	archer := grunt("archer")
	archer.Range = 4
	archer.AttackSpeed = 1.5
	archer.AttackType = AttackPiercing
	archer.DodgeChance = 0.2
	archer.Health = 60

	catapult := grunt("catapult")
	catapult.Range = 6
	catapult.AOERadius = 1
	catapult.MoveSpeed = 0.5
	catapult.AttackType = AttackSiege
	catapult.DamageMin, catapult.DamageMax = 15, 30

	brute := grunt("brute")
	brute.MoveSpeed = 1.5
	brute.CritChance = 0.25
	brute.Defense = 3
	brute.ArmorType = ArmorHeavy
	brute.DamageMin, brute.DamageMax = 8, 16

	return Input{
		Attacker: Army{
			Stacks: []StackSpec{
				{ID: 1, Unit: archer},
				{ID: 2, Unit: archer},
				{ID: 3, Unit: catapult},
				{ID: 4, Unit: grunt("footman")},
			},
			Upgrades: UpgradeBonuses{ScopeAll: {Defense: 1}},
		},
		Defender: Army{
			Stacks: []StackSpec{
				{ID: 11, Unit: brute},
				{ID: 12, Unit: brute},
				{ID: 13, Unit: brute},
			},
			Upgrades: UpgradeBonuses{"brute": {Health: 20}},
		},
		AttackerPresets: map[int]Cell{3: {0, 9}},
	}
}

func TestDeterministicReplay(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		a, _ := json.Marshal(Simulate(skirmish(), rand.New(rand.NewSource(seed))))
		b, _ := json.Marshal(Simulate(skirmish(), rand.New(rand.NewSource(seed))))
		if !bytes.Equal(a, b) {
			t.Fatalf("seed %d: runs differ", seed)
		}
	}
}

// TestLogReplaysCleanly rebuilds every battle from its initial positions and
// event log alone and checks that nothing dead acts and no cell is shared.
func TestLogReplaysCleanly(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		out := Simulate(skirmish(), rand.New(rand.NewSource(seed)))

		pos := map[int]Cell{}
		cells := map[Cell]int{}
		for _, side := range sideOrder {
			for _, p := range out.InitialPositions[side] {
				if p.Pos == nil {
					continue
				}
				if _, taken := cells[*p.Pos]; taken || !p.Pos.InBounds() {
					t.Fatalf("seed %d: bad start cell %v", seed, *p.Pos)
				}
				pos[p.ID] = *p.Pos
				cells[*p.Pos] = p.ID
			}
		}

		round := 0
		for _, ev := range out.Events {
			if ev.Round < round || ev.Round > out.Rounds {
				t.Fatalf("seed %d: event for round %d out of order", seed, ev.Round)
			}
			round = ev.Round
			switch ev.Type {
			case EventMove:
				m := ev.Move
				if cur, ok := pos[m.StackID]; !ok || cur != m.From {
					t.Fatalf("seed %d: stack %d moves from %v but stands at %v", seed, m.StackID, m.From, cur)
				}
				if Chebyshev(m.From, m.To) != 1 || !m.To.InBounds() {
					t.Fatalf("seed %d: illegal step %v -> %v", seed, m.From, m.To)
				}
				if other, taken := cells[m.To]; taken {
					t.Fatalf("seed %d: stack %d steps onto stack %d", seed, m.StackID, other)
				}
				delete(cells, m.From)
				cells[m.To] = m.StackID
				pos[m.StackID] = m.To
			case EventAttack:
				if _, ok := pos[ev.Attack.AttackerID]; !ok {
					t.Fatalf("seed %d: dead stack %d attacks", seed, ev.Attack.AttackerID)
				}
				for _, tr := range ev.Attack.Targets {
					c, ok := pos[tr.DefenderID]
					if !ok {
						t.Fatalf("seed %d: dead stack %d is targeted", seed, tr.DefenderID)
					}
					if tr.Killed {
						delete(pos, tr.DefenderID)
						delete(cells, c)
					}
				}
			case EventStatus:
				att, def := 0, 0
				for id := range pos {
					if id < 10 {
						att++
					} else {
						def++
					}
				}
				if ev.Status.AttackerAlive != att || ev.Status.DefenderAlive != def {
					t.Fatalf("seed %d round %d: status %+v, replay has %d/%d", seed, ev.Round, ev.Status, att, def)
				}
			}
		}
	}
}

func TestWithRecordOff(t *testing.T) {
	out := Simulate(skirmish(), rand.New(rand.NewSource(9)), WithRecord(false))
	if out.Events != nil {
		t.Fatalf("events recorded: %d", len(out.Events))
	}
	ref := Simulate(skirmish(), rand.New(rand.NewSource(9)))
	if out.Winner != ref.Winner || out.Rounds != ref.Rounds {
		t.Fatal("recording changed the outcome")
	}
}
