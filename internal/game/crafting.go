package game

import (
	"fmt"
	"time"
)

// Grade names an alchemy quality roll.
func Grade(quality float64) string {
	switch {
	case quality > 0.92:
		return "flawless"
	case quality > 0.78:
		return "superior"
	case quality > 0.55:
		return "fine"
	case quality > 0.30:
		return "common"
	default:
		return "flawed"
	}
}

// ForgeTier maps a quality roll to the weapon tier it produces.
func ForgeTier(quality float64) int {
	switch {
	case quality > 0.92:
		return 3
	case quality > 0.74:
		return 2
	case quality > 0.45:
		return 1
	default:
		return 0
	}
}

// qualityBonus is what fortune and alchemy skill add to a raw roll.
func qualityBonus(c *Character) float64 {
	return clampFloat(float64(c.Stats.Fortune)/100*0.12+c.Mods.AlchemyQuality, 0, 0.35)
}

// qualityRoll buckets the clock into five-second windows, so repeated
// crafts inside one window share a roll.
func (s *Session) qualityRoll() float64 {
	c := s.char
	window := uint32(s.now().UnixMilli() / (5 * time.Second).Milliseconds())
	raw := NewStream(Salt(c.Seed, window)).Float64()
	return clamp01(raw + qualityBonus(c))
}

// Craft refines a pill or forges a weapon from recipe id.
func (s *Session) Craft(id RecipeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := LookupRecipe(id)
	if !ok {
		err := unknownEntry("recipe", string(id))
		s.fail(err)
		return err
	}
	if err := s.char.Resources.Check(recipe.Cost); err != nil {
		s.fail(err)
		return err
	}
	switch recipe.Kind {
	case RecipeAlchemy:
		s.refine(recipe)
	case RecipeForge:
		s.forge(recipe)
	}
	s.cue(CueCraft)
	s.publish()
	return nil
}

func (s *Session) refine(recipe Recipe) {
	c := s.char
	quality := s.qualityRoll()
	bonus := NewStream(Salt(c.Seed, s.clockSalt()))
	made := 1
	if bonus.Chance(0.12 + c.Mods.AlchemyBonus) {
		made++
	}

	c.Resources.pay(recipe.Cost)
	c.Resources.Pills += made
	c.Tally.Pills += made
	if recipe.ID == RecipeWardPill && c.Run.Active {
		c.Run.addDanger(-(0.08 + 0.10*quality))
	}
	s.logf(ToneGood, "The cauldron trembles: %s %s x%d.", Grade(quality), recipe.Title, made)
}

func (s *Session) forge(recipe Recipe) {
	c := s.char
	quality := s.qualityRoll()
	tier := ForgeTier(quality)
	rng := NewStream(Salt(c.Seed, s.clockSalt(), 0xabc))
	affix := affixes[rng.IntN(len(affixes))]

	c.Resources.pay(recipe.Cost)
	c.Weapon = Equipment{
		Kind:       recipe.Weapon,
		Name:       WeaponName(recipe.Weapon, tier),
		Tier:       tier,
		Durability: 1,
		Affix:      affix.ID,
	}
	c.Tally.Weapons++

	tierNote := ""
	if tier > 0 {
		tierNote = fmt.Sprintf(" (tier %d)", tier)
	}
	s.logf(ToneGood, "Forge fire surges: you craft %s%s with %s, %s.", c.Weapon.Name, tierNote, affix.Name, affix.Desc)
}
