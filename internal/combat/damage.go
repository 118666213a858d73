package combat

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const armorFactor = 0.06

// attackArmorTable[attack][armor] scales raw damage.
var attackArmorTable = [AttackUnknown][ArmorUnknown]float64{
	AttackNormal:   {1.0, 1.0, 1.5, 1.0, 0.7, 1.0, 1.0},
	AttackPiercing: {1.5, 2.0, 0.75, 1.0, 0.35, 0.5, 1.0},
	AttackSiege:    {1.5, 1.0, 1.0, 1.0, 1.5, 0.5, 1.0},
	AttackMagic:    {1.0, 1.25, 0.75, 2.0, 0.35, 1.0, 0.0},
	AttackHero:     {1.0, 1.0, 1.0, 1.0, 0.5, 1.0, 1.0},
	AttackChaos:    {1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0},
	AttackSpells:   {1.0, 1.0, 1.0, 1.0, 0.7, 0.7, 0.0},
}

// AttackArmorMultiplier returns 1.0 for any pair outside the table.
func AttackArmorMultiplier(atk AttackType, armor ArmorType) float64 {
	if atk >= AttackUnknown || armor >= ArmorUnknown {
		return 1.0
	}
	return attackArmorTable[atk][armor]
}

// ArmorMitigation is 1 - 0.06d/(1+0.06|d|). Negative defense amplifies damage.
func ArmorMitigation(defense int) float64 {
	d := float64(defense)
	return 1 - (armorFactor*d)/(1+armorFactor*math.Abs(d))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// performAttack resolves one attack of a against the nearest in-range foe
// and its splash area. Nothing happens when no foe is in range.
func (b *Battle) performAttack(a *UnitStack, foes []*UnitStack) {
	primary := FindTarget(a, foes, true)
	if primary == nil {
		return
	}

	base := a.DamageMin + b.rng.Float64()*(a.DamageMax-a.DamageMin)
	crit := b.rng.Float64() < a.CritChance
	if crit {
		base *= a.CritMultiplier
	}

	// splash targets are fixed before any damage lands
	targets := []*UnitStack{primary}
	if a.AOERadius > 0 {
		center := primary.Pos
		for _, f := range foes {
			if f == primary || !f.active() {
				continue
			}
			if Chebyshev(center, f.Pos) <= a.AOERadius {
				targets = append(targets, f)
			}
		}
	}

	ev := &AttackEvent{
		AttackerID: a.ID,
		Attacker:   a.Name,
		Side:       a.Side,
		Crit:       crit,
		Targets:    make([]TargetResult, 0, len(targets)),
	}
	for _, t := range targets {
		if b.rng.Float64() < t.DodgeChance {
			ev.Targets = append(ev.Targets, TargetResult{
				DefenderID: t.ID,
				Defender:   t.Name,
				Dodge:      true,
				Remaining:  round2(t.Health),
			})
			continue
		}
		dmg := base * AttackArmorMultiplier(a.AttackType, t.ArmorType) * ArmorMitigation(t.Defense)
		dmg = math.Max(0, dmg)
		killed := b.applyDamage(t, dmg)
		ev.Targets = append(ev.Targets, TargetResult{
			DefenderID: t.ID,
			Defender:   t.Name,
			Damage:     round2(dmg),
			Killed:     killed,
			Crit:       crit,
			Remaining:  round2(t.Health),
		})
		if killed {
			b.log.Debug("stack killed",
				zap.Int("round", b.round),
				zap.Int("stack", t.ID),
				zap.String("side", string(t.Side)),
				zap.Int("by", a.ID))
		}
	}
	b.emit(Event{Round: b.round, Type: EventAttack, Attack: ev})
}

// applyDamage lowers t's health and removes it from the board on death.
func (b *Battle) applyDamage(t *UnitStack, dmg float64) bool {
	t.Health = math.Max(0, t.Health-dmg)
	if t.Health > 0 {
		return false
	}
	b.board.Vacate(t.Pos)
	t.kill()
	return true
}
