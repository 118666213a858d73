package config

import (
	"errors"
	"fmt"

	"battlesim/internal/combat"
)

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Unit type defaults used when a field is left out.
const (
	DefaultDamageMin      = 0.9
	DefaultDamageMax      = 1.1
	DefaultDefense        = 1
	DefaultHealth         = 5.0
	DefaultAttackSpeed    = 1.0
	DefaultMoveSpeed      = 1.0
	DefaultRange          = 1
	DefaultCritChance     = 0.1
	DefaultCritMultiplier = 2.0
)

type Scenario struct {
	Seed      int64        `yaml:"seed" json:"seed"`
	MaxRounds int          `yaml:"max_rounds" json:"max_rounds"`
	Units     []UnitDef    `yaml:"units" json:"units"`
	Upgrades  []UpgradeDef `yaml:"upgrades" json:"upgrades"`
	Attacker  ArmyDef      `yaml:"attacker" json:"attacker"`
	Defender  ArmyDef      `yaml:"defender" json:"defender"`
}

// UnitDef is a unit type. Pointer fields distinguish "left out" from zero.
type UnitDef struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	DamageMin      *float64 `yaml:"damage_min" json:"damage_min"`
	DamageMax      *float64 `yaml:"damage_max" json:"damage_max"`
	Defense        *int     `yaml:"defense" json:"defense"`
	Health         *float64 `yaml:"health" json:"health"`
	AttackSpeed    *float64 `yaml:"attack_speed" json:"attack_speed"`
	MoveSpeed      *float64 `yaml:"move_speed" json:"move_speed"`
	Range          *int     `yaml:"range" json:"range"`
	AttackType     string   `yaml:"attack_type" json:"attack_type"`
	ArmorType      string   `yaml:"armor_type" json:"armor_type"`
	CritChance     *float64 `yaml:"crit_chance" json:"crit_chance"`
	CritMultiplier *float64 `yaml:"crit_multiplier" json:"crit_multiplier"`
	DodgeChance    float64  `yaml:"dodge_chance" json:"dodge_chance"`
	AOERadius      int      `yaml:"aoe_radius" json:"aoe_radius"`
}

type UpgradeDef struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	AttackBonus    float64  `yaml:"attack_bonus" json:"attack_bonus"`
	AttackBonusPct float64  `yaml:"attack_bonus_pct" json:"attack_bonus_pct"`
	DefenseBonus   int      `yaml:"defense_bonus" json:"defense_bonus"`
	HealthBonus    float64  `yaml:"health_bonus" json:"health_bonus"`
	SpeedBonus     float64  `yaml:"speed_bonus" json:"speed_bonus"`
	UnitTypes      []string `yaml:"unit_types" json:"unit_types"`
}

type ArmyDef struct {
	Name     string         `yaml:"name" json:"name"`
	Stacks   []StackDef     `yaml:"stacks" json:"stacks"`
	Upgrades []UpgradeLevel `yaml:"upgrades" json:"upgrades"`
	Presets  []PresetDef    `yaml:"presets" json:"presets"`
}

type StackDef struct {
	ID   int    `yaml:"id" json:"id"`
	Unit string `yaml:"unit" json:"unit"`
	X    *int   `yaml:"x" json:"x"`
	Y    *int   `yaml:"y" json:"y"`
}

// UpgradeLevel references an UpgradeDef. Level 0 means level 1.
type UpgradeLevel struct {
	Upgrade string `yaml:"upgrade" json:"upgrade"`
	Level   int    `yaml:"level" json:"level"`
}

type PresetDef struct {
	Stack int `yaml:"stack" json:"stack"`
	X     int `yaml:"x" json:"x"`
	Y     int `yaml:"y" json:"y"`
}

// Prepare fills defaults and validates the scenario.
func (s *Scenario) Prepare() error {
	s.applyDefaults()
	return s.Validate()
}

func (s *Scenario) applyDefaults() {
	for i := range s.Units {
		u := &s.Units[i]
		if u.Name == "" {
			u.Name = u.ID
		}
		setFloat(&u.DamageMin, DefaultDamageMin)
		setFloat(&u.DamageMax, DefaultDamageMax)
		setInt(&u.Defense, DefaultDefense)
		setFloat(&u.Health, DefaultHealth)
		setFloat(&u.AttackSpeed, DefaultAttackSpeed)
		setFloat(&u.MoveSpeed, DefaultMoveSpeed)
		setInt(&u.Range, DefaultRange)
		setFloat(&u.CritChance, DefaultCritChance)
		setFloat(&u.CritMultiplier, DefaultCritMultiplier)
	}
	for _, a := range []*ArmyDef{&s.Attacker, &s.Defender} {
		for i := range a.Upgrades {
			if a.Upgrades[i].Level == 0 {
				a.Upgrades[i].Level = 1
			}
		}
	}
}

func setFloat(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

func setInt(p **int, v int) {
	if *p == nil {
		*p = &v
	}
}

// Validate checks references between units, upgrades and armies.
func (s *Scenario) Validate() error {
	units := map[string]bool{}
	for _, u := range s.Units {
		if u.ID == "" {
			return fmt.Errorf("%w: unit without id", ErrInvalidScenario)
		}
		if units[u.ID] {
			return fmt.Errorf("%w: duplicate unit id %q", ErrInvalidScenario, u.ID)
		}
		units[u.ID] = true
		if u.DamageMin != nil && u.DamageMax != nil && *u.DamageMax < *u.DamageMin {
			return fmt.Errorf("%w: unit %q: damage_max below damage_min", ErrInvalidScenario, u.ID)
		}
	}
	upgrades := map[string]bool{}
	for _, up := range s.Upgrades {
		if up.ID == "" {
			return fmt.Errorf("%w: upgrade without id", ErrInvalidScenario)
		}
		if upgrades[up.ID] {
			return fmt.Errorf("%w: duplicate upgrade id %q", ErrInvalidScenario, up.ID)
		}
		upgrades[up.ID] = true
	}

	stackIDs := map[int]bool{}
	for _, side := range []struct {
		name string
		army ArmyDef
	}{{"attacker", s.Attacker}, {"defender", s.Defender}} {
		for _, st := range side.army.Stacks {
			if !units[st.Unit] {
				return fmt.Errorf("%w: %s stack %d: unknown unit %q", ErrInvalidScenario, side.name, st.ID, st.Unit)
			}
			if (st.X == nil) != (st.Y == nil) {
				return fmt.Errorf("%w: %s stack %d: position needs both x and y", ErrInvalidScenario, side.name, st.ID)
			}
			if st.ID == 0 {
				continue
			}
			if stackIDs[st.ID] {
				return fmt.Errorf("%w: duplicate stack id %d", ErrInvalidScenario, st.ID)
			}
			stackIDs[st.ID] = true
		}
		for _, ul := range side.army.Upgrades {
			if !upgrades[ul.Upgrade] {
				return fmt.Errorf("%w: %s: unknown upgrade %q", ErrInvalidScenario, side.name, ul.Upgrade)
			}
			if ul.Level < 0 {
				return fmt.Errorf("%w: %s: upgrade %q has negative level", ErrInvalidScenario, side.name, ul.Upgrade)
			}
		}
	}
	for _, p := range s.Attacker.Presets {
		if !stackIDs[p.Stack] {
			return fmt.Errorf("%w: preset for unknown stack %d", ErrInvalidScenario, p.Stack)
		}
	}
	return nil
}

// BattleInput converts a prepared scenario into simulator input.
func (s *Scenario) BattleInput() (combat.Input, error) {
	if err := s.Validate(); err != nil {
		return combat.Input{}, err
	}
	units := make(map[string]combat.UnitType, len(s.Units))
	for _, u := range s.Units {
		units[u.ID] = u.unitType()
	}
	upgrades := make(map[string]UpgradeDef, len(s.Upgrades))
	for _, up := range s.Upgrades {
		upgrades[up.ID] = up
	}

	in := combat.Input{
		Attacker:  s.Attacker.army(units, upgrades),
		Defender:  s.Defender.army(units, upgrades),
		MaxRounds: s.MaxRounds,
	}
	if len(s.Attacker.Presets) > 0 {
		in.AttackerPresets = make(map[int]combat.Cell, len(s.Attacker.Presets))
		for _, p := range s.Attacker.Presets {
			in.AttackerPresets[p.Stack] = combat.Cell{X: p.X, Y: p.Y}
		}
	}
	return in, nil
}

func (a ArmyDef) army(units map[string]combat.UnitType, upgrades map[string]UpgradeDef) combat.Army {
	out := combat.Army{Stacks: make([]combat.StackSpec, 0, len(a.Stacks))}
	for _, st := range a.Stacks {
		spec := combat.StackSpec{ID: st.ID, Unit: units[st.Unit]}
		if st.X != nil && st.Y != nil {
			spec.Pos = &combat.Cell{X: *st.X, Y: *st.Y}
		}
		out.Stacks = append(out.Stacks, spec)
	}
	applied := make([]combat.AppliedUpgrade, 0, len(a.Upgrades))
	for _, ul := range a.Upgrades {
		up := upgrades[ul.Upgrade]
		applied = append(applied, combat.AppliedUpgrade{
			AttackBonus:    up.AttackBonus,
			AttackBonusPct: up.AttackBonusPct,
			DefenseBonus:   up.DefenseBonus,
			HealthBonus:    up.HealthBonus,
			SpeedBonus:     up.SpeedBonus,
			Level:          ul.Level,
			UnitTypes:      up.UnitTypes,
		})
	}
	out.Upgrades = combat.AggregateUpgrades(applied)
	return out
}

func (u UnitDef) unitType() combat.UnitType {
	return combat.UnitType{
		ID:             u.ID,
		Name:           u.Name,
		DamageMin:      deref(u.DamageMin, DefaultDamageMin),
		DamageMax:      deref(u.DamageMax, DefaultDamageMax),
		Defense:        deref(u.Defense, DefaultDefense),
		Health:         deref(u.Health, DefaultHealth),
		AttackSpeed:    deref(u.AttackSpeed, DefaultAttackSpeed),
		MoveSpeed:      deref(u.MoveSpeed, DefaultMoveSpeed),
		Range:          deref(u.Range, DefaultRange),
		AttackType:     combat.ParseAttackType(u.AttackType),
		ArmorType:      combat.ParseArmorType(u.ArmorType),
		CritChance:     deref(u.CritChance, DefaultCritChance),
		CritMultiplier: deref(u.CritMultiplier, DefaultCritMultiplier),
		DodgeChance:    u.DodgeChance,
		AOERadius:      u.AOERadius,
	}
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
