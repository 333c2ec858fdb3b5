package game

import (
	"math"
	"time"
)

type Resource string

const (
	ResourceAura      Resource = "aura"
	ResourceStones    Resource = "stones"
	ResourcePills     Resource = "pills"
	ResourceScrolls   Resource = "scrolls"
	ResourceMaterials Resource = "materials"
)

// Resources are the five counters every operation spends from or adds to.
// None of them may go negative.
type Resources struct {
	Aura      float64 `json:"aura"`
	Stones    int     `json:"stones"`
	Pills     int     `json:"pills"`
	Scrolls   int     `json:"scrolls"`
	Materials int     `json:"materials"`
}

func (r Resources) Amount(res Resource) float64 {
	switch res {
	case ResourceAura:
		return r.Aura
	case ResourceStones:
		return float64(r.Stones)
	case ResourcePills:
		return float64(r.Pills)
	case ResourceScrolls:
		return float64(r.Scrolls)
	case ResourceMaterials:
		return float64(r.Materials)
	default:
		return 0
	}
}

func (r *Resources) add(res Resource, n int) {
	switch res {
	case ResourceAura:
		r.Aura += float64(n)
	case ResourceStones:
		r.Stones += n
	case ResourcePills:
		r.Pills += n
	case ResourceScrolls:
		r.Scrolls += n
	case ResourceMaterials:
		r.Materials += n
	}
}

type CostItem struct {
	Resource Resource
	Amount   int
}

// Cost is an ordered list so shortfalls are reported deterministically.
type Cost []CostItem

// Check returns an insufficient-resource error for the first unmet line.
func (r Resources) Check(cost Cost) error {
	for _, item := range cost {
		if have := r.Amount(item.Resource); have < float64(item.Amount) {
			return insufficient(item.Resource, float64(item.Amount), have)
		}
	}
	return nil
}

func (r *Resources) pay(cost Cost) {
	for _, item := range cost {
		r.add(item.Resource, -item.Amount)
	}
}

func (r *Resources) clamp() {
	r.Aura = math.Max(0, r.Aura)
	r.Stones = max(0, r.Stones)
	r.Pills = max(0, r.Pills)
	r.Scrolls = max(0, r.Scrolls)
	r.Materials = max(0, r.Materials)
}

// Stats are the affinity archetype and the three base attributes.
type Stats struct {
	Affinity AffinityID `json:"affinity"`
	Insight  int        `json:"insight"`
	Fortune  int        `json:"fortune"`
	Spirit   int        `json:"spirit"`
}

func (s Stats) AffinityMult() float64 {
	if a, ok := LookupAffinity(s.Affinity); ok {
		return a.Mult
	}
	return 1
}

// Modifiers aggregate skill effects. Mult fields start at 1 and multiply,
// the rest start at zero and add.
type Modifiers struct {
	AuraRate       float64 `json:"aura_rate"`
	ArrayCost      float64 `json:"array_cost"`
	BreakBase      float64 `json:"break_base"`
	EventLuck      float64 `json:"event_luck"`
	CombatCrit     float64 `json:"combat_crit"`
	CombatDodge    float64 `json:"combat_dodge"`
	CombatDmg      float64 `json:"combat_dmg"`
	AlchemyQuality float64 `json:"alchemy_quality"`
	AlchemyBonus   float64 `json:"alchemy_bonus"`
	WeaponDur      float64 `json:"weapon_dur"`
	NoRealmDrop    bool    `json:"no_realm_drop"`
	ScrollOnFail   int     `json:"scroll_on_fail"`
}

func DefaultModifiers() Modifiers {
	return Modifiers{AuraRate: 1, ArrayCost: 1}
}

type Equipment struct {
	Kind       WeaponKind `json:"kind,omitempty"`
	Name       string     `json:"name"`
	Tier       int        `json:"tier"`
	Durability float64    `json:"durability"`
	Affix      AffixID    `json:"affix,omitempty"`
}

func defaultEquipment() Equipment {
	return Equipment{Name: "Hollow Sword Blank", Durability: 1}
}

// Tally counts the milestones achievements are tested against.
type Tally struct {
	Runs    int `json:"runs"`
	Breaks  int `json:"breaks"`
	Pills   int `json:"pills"`
	Weapons int `json:"weapons"`
	Bosses  int `json:"bosses"`
}

// Character is the long-lived root of a save. The Run lives inside it and is
// replaced wholesale by each new attempt.
type Character struct {
	Seed          uint32                 `json:"seed"`
	CreatedAt     time.Time              `json:"created_at"`
	Realm         int                    `json:"realm"`
	RealmProgress float64                `json:"realm_progress"`
	Base          Stats                  `json:"base"`
	Stats         Stats                  `json:"-"`
	Mods          Modifiers              `json:"-"`
	Resources     Resources              `json:"resources"`
	ArrayLevel    int                    `json:"array_level"`
	DaoPoints     float64                `json:"dao_points"`
	Skills        []SkillID              `json:"skills"`
	Weapon        Equipment              `json:"weapon"`
	Run           Run                    `json:"run"`
	Achievements  map[AchievementID]bool `json:"achievements"`
	Tally         Tally                  `json:"tally"`
	LastSeen      time.Time              `json:"last_seen"`
	PlayTime      time.Duration          `json:"play_time"`
}

// NewCharacter creates a fresh character whose archetype and attributes are
// fixed by seed.
func NewCharacter(seed uint32, now time.Time) *Character {
	c := &Character{
		Seed:      seed,
		CreatedAt: now,
		Base:      RollBaseStats(seed),
		Resources: Resources{Aura: 180, Stones: 80, Pills: 1, Materials: 6},
		Weapon:    defaultEquipment(),
		Run:       idleRun(),
		LastSeen:  now,
	}
	c.Achievements = make(map[AchievementID]bool)
	c.Recompute()
	return c
}

// RollBaseStats draws the affinity and the three attributes from seed's
// stream. The same seed always yields the same result.
func RollBaseStats(seed uint32) Stats {
	rng := NewStream(seed)
	affinity := affinities[rng.IntN(len(affinities))]
	return Stats{
		Affinity: affinity.ID,
		Insight:  int(math.Floor(rng.Between(28, 30))),
		Fortune:  int(math.Floor(rng.Between(22, 35))),
		Spirit:   int(math.Floor(rng.Between(18, 38))),
	}
}

// DeriveModifiers folds every unlocked skill into default modifiers, starting
// from base. It never re-rolls base and is safe to call repeatedly.
func DeriveModifiers(base Stats, skills []SkillID) (Stats, Modifiers) {
	stats := base
	mods := DefaultModifiers()
	seen := make(map[SkillID]bool, len(skills))
	for _, id := range skills {
		if seen[id] {
			continue
		}
		seen[id] = true
		if skill, ok := LookupSkill(id); ok {
			skill.Apply(&stats, &mods)
		}
	}
	return stats, mods
}

// Recompute rebuilds effective stats and modifiers from the cached base.
func (c *Character) Recompute() {
	c.Stats, c.Mods = DeriveModifiers(c.Base, c.Skills)
}

func (c *Character) HasSkill(id SkillID) bool {
	for _, s := range c.Skills {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Character) RealmInfo() Realm {
	return RealmAt(c.Realm)
}

func (c *Character) RealmThreshold() float64 {
	return RealmAt(c.Realm).Threshold
}

// RealmFraction is progress toward the current threshold in [0,1].
func (c *Character) RealmFraction() float64 {
	need := c.RealmThreshold()
	if need <= 0 {
		return 0
	}
	return clamp01(c.RealmProgress / need)
}

// normalize enforces every Character invariant in place.
func (c *Character) normalize() {
	c.Realm = clampInt(c.Realm, 0, len(realms)-1)
	c.RealmProgress = clampFloat(c.RealmProgress, 0, c.RealmThreshold())
	c.Resources.clamp()
	c.ArrayLevel = max(0, c.ArrayLevel)
	c.DaoPoints = math.Max(0, c.DaoPoints)
	c.Weapon.Tier = clampInt(c.Weapon.Tier, 0, maxWeaponTier)
	c.Weapon.Durability = clamp01(c.Weapon.Durability)
	c.Run.clampBars()
	if c.Achievements == nil {
		c.Achievements = make(map[AchievementID]bool)
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
