package game

import (
	"fmt"
	"math"
	"strings"
)

// CombatResult is the outcome of one exchange.
type CombatResult struct {
	Foe           string
	Boss          bool
	Attacker      float64
	Defender      float64
	Ratio         float64
	Crit          bool
	Dodged        bool
	VitalityLoss  float64
	FocusLoss     float64
	DurabilityHit float64
	Stones        int
	Materials     int
	Scrolls       int
}

// Label grades the exchange by power ratio.
func (r CombatResult) Label() string {
	switch {
	case r.Ratio < 0.55:
		return "narrow defeat"
	case r.Ratio < 0.9:
		return "hard fight"
	case r.Ratio < 1.25:
		return "victory"
	default:
		return "rout"
	}
}

func (r CombatResult) tone() Tone {
	switch {
	case r.Ratio >= 0.9:
		return ToneGood
	case r.Ratio >= 0.55:
		return ToneNormal
	default:
		return ToneBad
	}
}

// CombatRolls are the draws one exchange consumes, in order. Each is in [0,1).
type CombatRolls struct {
	Crit   float64
	Dodge  float64
	Jitter float64
	Drop   float64
	Scroll float64
}

func DrawCombatRolls(rng *Stream) CombatRolls {
	return CombatRolls{
		Crit:   rng.Float64(),
		Dodge:  rng.Float64(),
		Jitter: rng.Float64(),
		Drop:   rng.Float64(),
		Scroll: rng.Float64(),
	}
}

// AttackerPower is the character's strength before stance and crit.
func AttackerPower(c *Character) float64 {
	boost := 1 + 0.10*float64(c.Weapon.Tier)
	if c.Weapon.Durability > 0.2 {
		boost += 0.03
	}
	base := 12 + 3.6*float64(c.Realm) + 1.7*float64(c.ArrayLevel)
	dmg := c.Mods.CombatDmg
	if affix, ok := LookupAffix(c.Weapon.Affix); ok {
		dmg += affix.Damage
	}
	return base * (1 + float64(c.Stats.Insight)/110) * (1 + float64(c.Stats.Spirit)/140) * boost * (1 + dmg)
}

// DefenderPower scales with the floor, the realm and the run's danger.
func DefenderPower(c *Character, scale float64) float64 {
	base := 10 + 2.2*float64(c.Run.Floor) + 3.2*float64(c.Realm)
	return base * (1 + 0.55*c.Run.Danger) * scale
}

func critChance(c *Character, st stanceMods) float64 {
	bonus := c.Mods.CombatCrit
	if affix, ok := LookupAffix(c.Weapon.Affix); ok {
		bonus += affix.Crit
	}
	return clampFloat(0.07+bonus+float64(c.Stats.Spirit)/600, 0.05, 0.35) * st.crit
}

func dodgeChance(c *Character, st stanceMods) float64 {
	bonus := c.Mods.CombatDodge
	if affix, ok := LookupAffix(c.Weapon.Affix); ok {
		bonus += affix.Dodge
	}
	return clampFloat(0.06+bonus+float64(c.Stats.Spirit)/520, 0.05, 0.30) * st.dodge
}

// lossMultiplier maps a power ratio to its damage band.
func lossMultiplier(ratio float64) float64 {
	switch {
	case ratio >= 1.25:
		return 0.55
	case ratio >= 1.0:
		return 0.75
	case ratio >= 0.82:
		return 1.05
	default:
		return 1.38
	}
}

// vitalityLoss is the pre-clamp penalty for one exchange.
func vitalityLoss(ratio, danger float64, boss, dodged bool, jitter float64) float64 {
	base, scale := 12.0, 14.0
	if boss {
		base, scale = 18, 22
	}
	loss := (base + danger*scale) * lossMultiplier(ratio)
	if dodged {
		loss *= 0.68
	}
	return clampFloat(loss*(0.85+jitter*0.40), 2, 80)
}

// ResolveCombat computes one exchange against the character without
// mutating it.
func ResolveCombat(c *Character, foe string, scale float64, boss bool, rolls CombatRolls) CombatResult {
	st := c.Run.Stance.mods()
	res := CombatResult{Foe: foe, Boss: boss}
	res.Attacker = AttackerPower(c) * st.dmg
	res.Defender = DefenderPower(c, scale)
	res.Crit = rolls.Crit < critChance(c, st)
	res.Dodged = rolls.Dodge < dodgeChance(c, st)

	effective := res.Attacker
	if res.Crit {
		effective *= 1.22
	}
	res.Ratio = effective / res.Defender

	danger := c.Run.Danger
	res.FocusLoss = clampFloat((8+10*danger)*st.focus, 0, c.Run.Focus)
	res.VitalityLoss = vitalityLoss(res.Ratio, danger, boss, res.Dodged, rolls.Jitter)

	if c.Weapon.Tier > 0 {
		hit := 0.04
		if boss {
			hit = 0.08
		}
		hit += 0.02 * danger
		res.DurabilityHit = hit / (1 + c.Mods.WeaponDur)
	}

	res.Stones = int(math.Floor(35 + 4.2*res.Defender + 0.9*float64(c.Stats.Fortune)))
	res.Materials = int(math.Floor(1 + rolls.Drop*2 + 3*danger))
	scrollChance := 0.10
	if boss {
		scrollChance = 0.42
	}
	if rolls.Scroll < scrollChance+0.35*c.Mods.EventLuck {
		res.Scrolls = 1
	}
	return res
}

func (c *Character) applyCombat(res CombatResult) {
	c.Run.addVitality(-res.VitalityLoss)
	c.Run.addFocus(-res.FocusLoss)
	c.Weapon.Durability = clamp01(c.Weapon.Durability - res.DurabilityHit)
	c.Resources.Stones += res.Stones
	c.Resources.Materials += res.Materials
	c.Resources.Scrolls += res.Scrolls
}

// resolveCombat fights foe and returns either the aftermath or the defeated
// scene. Combat rolls are clock-salted.
func (s *Session) resolveCombat(foe string, scale float64, boss bool) Scene {
	c := s.char
	rng := NewStream(Salt(c.Run.MapSeed, HashName(foe), s.clockSalt()))
	res := ResolveCombat(c, foe, scale, boss, DrawCombatRolls(rng))
	c.applyCombat(res)

	extras := make([]string, 0, 3)
	if res.Crit {
		extras = append(extras, "critical")
		s.cue(CueCrit)
	} else {
		s.cue(CueHit)
	}
	if res.Dodged {
		extras = append(extras, "evaded")
	}
	if res.Scrolls > 0 {
		extras = append(extras, "scroll found")
	}
	note := ""
	if len(extras) > 0 {
		note = fmt.Sprintf(" (%s)", strings.Join(extras, ", "))
	}
	s.logf(res.tone(), "You clash with %s: %s, vitality -%d, focus -%d, stones +%d, materials +%d%s.",
		foe, res.Label(), int(res.VitalityLoss), int(res.FocusLoss), res.Stones, res.Materials, note)

	if c.Run.Vitality <= 0 {
		c.Run.Stage = StageDefeated
		s.cue(CueFailure)
		return defeatedScene()
	}
	if boss {
		c.Tally.Bosses++
	}
	c.Run.Stage = StageAftermath
	return aftermathScene(boss)
}
