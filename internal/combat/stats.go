package combat

import "math"

// ScopeAll keys the bonus that applies to every unit type of an army.
const ScopeAll = "all"

const (
	maxAttackSpeed = 4.0
	maxChance      = 0.5
)

// Bonus is a summed stat modifier.
type Bonus struct {
	Attack    float64 `json:"attack"`
	AttackPct float64 `json:"attack_pct"`
	Defense   int     `json:"defense"`
	Health    float64 `json:"health"`
	MoveSpeed float64 `json:"move_speed"`
}

func (b Bonus) add(o Bonus) Bonus {
	return Bonus{
		Attack:    b.Attack + o.Attack,
		AttackPct: b.AttackPct + o.AttackPct,
		Defense:   b.Defense + o.Defense,
		Health:    b.Health + o.Health,
		MoveSpeed: b.MoveSpeed + o.MoveSpeed,
	}
}

func (b Bonus) scale(level int) Bonus {
	f := float64(level)
	return Bonus{
		Attack:    b.Attack * f,
		AttackPct: b.AttackPct * f,
		Defense:   b.Defense * level,
		Health:    b.Health * f,
		MoveSpeed: b.MoveSpeed * f,
	}
}

// UpgradeBonuses maps a unit type id (or ScopeAll) to its summed bonus.
type UpgradeBonuses map[string]Bonus

// AppliedUpgrade is one researched upgrade at a level. An empty UnitTypes
// list targets every unit type.
type AppliedUpgrade struct {
	AttackBonus    float64
	AttackBonusPct float64
	DefenseBonus   int
	HealthBonus    float64
	SpeedBonus     float64
	Level          int
	UnitTypes      []string
}

// AggregateUpgrades sums bonus_per_level × level per target scope.
// Duplicate target ids inside one upgrade count once.
func AggregateUpgrades(ups []AppliedUpgrade) UpgradeBonuses {
	out := UpgradeBonuses{}
	for _, u := range ups {
		if u.Level <= 0 {
			continue
		}
		per := Bonus{
			Attack:    u.AttackBonus,
			AttackPct: u.AttackBonusPct,
			Defense:   u.DefenseBonus,
			Health:    u.HealthBonus,
			MoveSpeed: u.SpeedBonus,
		}.scale(u.Level)

		targets := dedupe(u.UnitTypes)
		if len(targets) == 0 {
			targets = []string{ScopeAll}
		}
		for _, t := range targets {
			out[t] = out[t].add(per)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ResolveStack computes the effective stats of one stack. It does not touch
// the position; placement happens during battle setup.
func ResolveStack(spec StackSpec, side Side, bonuses UpgradeBonuses) UnitStack {
	u := spec.Unit
	b := bonuses[ScopeAll].add(bonuses[u.ID])

	pct := 1 + b.AttackPct
	health := u.Health + b.Health
	move := u.MoveSpeed + b.MoveSpeed
	if move < 0 {
		move = 0
	}
	s := UnitStack{
		ID:             spec.ID,
		Side:           side,
		Name:           u.Name,
		UnitTypeID:     u.ID,
		DamageMin:      u.DamageMin*pct + b.Attack,
		DamageMax:      u.DamageMax*pct + b.Attack,
		Defense:        u.Defense + b.Defense,
		MaxHealth:      health,
		AttackSpeed:    math.Min(u.AttackSpeed, maxAttackSpeed),
		MoveSpeed:      move,
		Range:          u.Range,
		AttackType:     u.AttackType,
		ArmorType:      u.ArmorType,
		CritChance:     math.Min(u.CritChance, maxChance),
		CritMultiplier: u.CritMultiplier,
		DodgeChance:    math.Min(u.DodgeChance, maxChance),
		AOERadius:      u.AOERadius,
		Health:         health,
		Alive:          health > 0,
	}
	if s.Name == "" {
		s.Name = u.ID
	}
	if !s.Alive {
		s.Health = 0
	}
	return s
}

// ResolveArmy resolves every stack of an army in input order.
func ResolveArmy(army Army, side Side) []UnitStack {
	out := make([]UnitStack, 0, len(army.Stacks))
	for _, spec := range army.Stacks {
		out = append(out, ResolveStack(spec, side, army.Upgrades))
	}
	return out
}
