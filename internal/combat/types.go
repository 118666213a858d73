package combat

import "strings"

type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// sideOrder is the acting order inside every phase.
var sideOrder = [2]Side{SideAttacker, SideDefender}

func (s Side) Opponent() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

type AttackType uint8

const (
	AttackNormal AttackType = iota
	AttackPiercing
	AttackSiege
	AttackMagic
	AttackHero
	AttackChaos
	AttackSpells
	// AttackUnknown marks a name outside the table; it multiplies by 1.0.
	AttackUnknown
)

var attackTypeNames = [AttackUnknown]string{"normal", "piercing", "siege", "magic", "hero", "chaos", "spells"}

// ParseAttackType is case-insensitive. An empty name means normal.
func ParseAttackType(s string) AttackType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AttackNormal
	}
	for i, name := range attackTypeNames {
		if name == s {
			return AttackType(i)
		}
	}
	return AttackUnknown
}

func (t AttackType) String() string {
	if t < AttackUnknown {
		return attackTypeNames[t]
	}
	return "unknown"
}

func (t AttackType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AttackType) UnmarshalText(b []byte) error {
	*t = ParseAttackType(string(b))
	return nil
}

type ArmorType uint8

const (
	ArmorUnarmored ArmorType = iota
	ArmorLight
	ArmorMedium
	ArmorHeavy
	ArmorFortified
	ArmorHero
	ArmorDivine
	ArmorUnknown
)

var armorTypeNames = [ArmorUnknown]string{"unarmored", "light", "medium", "heavy", "fortified", "hero", "divine"}

// ParseArmorType is case-insensitive. An empty name means unarmored.
func ParseArmorType(s string) ArmorType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ArmorUnarmored
	}
	for i, name := range armorTypeNames {
		if name == s {
			return ArmorType(i)
		}
	}
	return ArmorUnknown
}

func (t ArmorType) String() string {
	if t < ArmorUnknown {
		return armorTypeNames[t]
	}
	return "unknown"
}

func (t ArmorType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ArmorType) UnmarshalText(b []byte) error {
	*t = ParseArmorType(string(b))
	return nil
}

// UnitType holds the base combat attributes of a unit before upgrades.
type UnitType struct {
	ID             string
	Name           string
	DamageMin      float64
	DamageMax      float64
	Defense        int
	Health         float64
	AttackSpeed    float64 // attacks per round
	MoveSpeed      float64 // cells per round
	Range          int
	AttackType     AttackType
	ArmorType      ArmorType
	CritChance     float64
	CritMultiplier float64
	DodgeChance    float64
	AOERadius      int
}

// StackSpec is one combat-ready stack handed over by the army owner.
type StackSpec struct {
	ID   int
	Unit UnitType
	Pos  *Cell // saved position, nil when the stack should be auto-placed
}

type Army struct {
	Stacks   []StackSpec
	Upgrades UpgradeBonuses
}

// Input is everything a simulation needs besides the random source.
type Input struct {
	Attacker  Army
	Defender  Army
	MaxRounds int
	// AttackerPresets maps stack id to a starting cell and wins over the
	// stack's saved position.
	AttackerPresets map[int]Cell
}

// UnitStack is the in-battle record of one stack. It lives in the battle
// arena and is never shared between simulations.
type UnitStack struct {
	ID         int
	Side       Side
	Name       string
	UnitTypeID string

	DamageMin      float64
	DamageMax      float64
	Defense        int
	MaxHealth      float64
	AttackSpeed    float64
	MoveSpeed      float64
	Range          int
	AttackType     AttackType
	ArmorType      ArmorType
	CritChance     float64
	CritMultiplier float64
	DodgeChance    float64
	AOERadius      int

	Pos         Cell
	Placed      bool
	Health      float64
	AttackMeter float64
	Alive       bool
}

// active reports whether the stack can act and be targeted.
func (s *UnitStack) active() bool { return s.Alive && s.Placed }

func (s *UnitStack) kill() {
	s.Health = 0
	s.Alive = false
	s.Placed = false
	s.Pos = Cell{}
}

func (s *UnitStack) position() *Cell {
	if !s.Placed {
		return nil
	}
	p := s.Pos
	return &p
}
