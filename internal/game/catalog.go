package game

// Static tables the engine reads from. Lookups are by identifier; the engine
// only checks existence, contents are trusted.

type Realm struct {
	Name      string
	Threshold float64
}

var realms = []Realm{
	{Name: "Qi Refining", Threshold: 1200},
	{Name: "Foundation Building", Threshold: 3600},
	{Name: "Golden Core", Threshold: 9800},
	{Name: "Nascent Soul", Threshold: 26000},
	{Name: "Spirit Severing", Threshold: 70000},
	{Name: "Unity", Threshold: 180000},
	{Name: "Tribulation", Threshold: 450000},
	{Name: "Mahayana", Threshold: 1100000},
	{Name: "Ascension", Threshold: 2600000},
}

func RealmCount() int {
	return len(realms)
}

// RealmAt clamps idx into the table.
func RealmAt(idx int) Realm {
	return realms[clampInt(idx, 0, len(realms)-1)]
}

func AllRealms() []Realm {
	return append([]Realm(nil), realms...)
}

type AffinityID string

const (
	AffinityMottled  AffinityID = "mottled"
	AffinityTriple   AffinityID = "triple"
	AffinityDual     AffinityID = "dual"
	AffinityHeavenly AffinityID = "heavenly"
	AffinityPrimal   AffinityID = "primal"
)

type Affinity struct {
	ID   AffinityID
	Name string
	Mult float64
}

var affinities = []Affinity{
	{ID: AffinityMottled, Name: "Mottled Five Roots", Mult: 0.92},
	{ID: AffinityTriple, Name: "Clear Triple Root", Mult: 1.00},
	{ID: AffinityDual, Name: "Subtle Dual Root", Mult: 1.10},
	{ID: AffinityHeavenly, Name: "Heavenly Root", Mult: 1.22},
	{ID: AffinityPrimal, Name: "Primal Dao Body", Mult: 1.35},
}

func LookupAffinity(id AffinityID) (Affinity, bool) {
	for _, a := range affinities {
		if a.ID == id {
			return a, true
		}
	}
	return Affinity{}, false
}

func AllAffinities() []Affinity {
	return append([]Affinity(nil), affinities...)
}

type SkillID string

const (
	SkillBreath  SkillID = "breath"
	SkillArray   SkillID = "array"
	SkillInsight SkillID = "insight"
	SkillLuck    SkillID = "luck"
	SkillMind    SkillID = "mind"
	SkillAlchemy SkillID = "alchemy"
	SkillForge   SkillID = "forge"
	SkillFate    SkillID = "fate"
)

type Skill struct {
	ID       SkillID
	Name     string
	Desc     string
	Cost     float64
	Requires []SkillID
	Apply    func(*Stats, *Modifiers)
}

// Unlocked reports whether every prerequisite is held.
func (s Skill) Unlocked(has func(SkillID) bool) bool {
	for _, req := range s.Requires {
		if !has(req) {
			return false
		}
	}
	return true
}

var skills = []Skill{
	{
		ID: SkillBreath, Name: "Primordial Breathing", Desc: "Aura rate +20%.", Cost: 10,
		Apply: func(_ *Stats, m *Modifiers) { m.AuraRate *= 1.20 },
	},
	{
		ID: SkillArray, Name: "Star-Vein Gathering Array", Desc: "Array upgrade cost -12%, aura rate +8%.", Cost: 18,
		Requires: []SkillID{SkillBreath},
		Apply: func(_ *Stats, m *Modifiers) {
			m.ArrayCost *= 0.88
			m.AuraRate *= 1.08
		},
	},
	{
		ID: SkillInsight, Name: "Spirit Terrace Visualisation", Desc: "Insight +8, breakthrough chance +3%.", Cost: 22,
		Requires: []SkillID{SkillBreath},
		Apply: func(s *Stats, m *Modifiers) {
			s.Insight += 8
			m.BreakBase += 0.03
		},
	},
	{
		ID: SkillLuck, Name: "Faint Pull of Fortune", Desc: "Fortune +10, wonders more likely.", Cost: 24,
		Requires: []SkillID{SkillInsight},
		Apply: func(s *Stats, m *Modifiers) {
			s.Fortune += 10
			m.EventLuck += 0.12
		},
	},
	{
		ID: SkillMind, Name: "Tide of Divine Sense", Desc: "Spirit +12, slightly better dodge and crit.", Cost: 28,
		Requires: []SkillID{SkillArray},
		Apply: func(s *Stats, m *Modifiers) {
			s.Spirit += 12
			m.CombatCrit += 0.04
			m.CombatDodge += 0.05
		},
	},
	{
		ID: SkillAlchemy, Name: "Thread of the Pill Dao", Desc: "Higher pill quality, small chance of an extra pill.", Cost: 30,
		Requires: []SkillID{SkillInsight},
		Apply: func(_ *Stats, m *Modifiers) {
			m.AlchemyQuality += 0.12
			m.AlchemyBonus += 0.18
		},
	},
	{
		ID: SkillForge, Name: "True Art of Forge Fire", Desc: "Weapons wear slower, run damage up.", Cost: 30,
		Requires: []SkillID{SkillMind},
		Apply: func(_ *Stats, m *Modifiers) {
			m.WeaponDur += 0.20
			m.CombatDmg += 0.06
		},
	},
	{
		ID: SkillFate, Name: "Echo of the Fate Disc", Desc: "Failed breakthroughs no longer drop a realm and yield extra scrolls.", Cost: 44,
		Requires: []SkillID{SkillLuck, SkillForge},
		Apply: func(_ *Stats, m *Modifiers) {
			m.NoRealmDrop = true
			m.ScrollOnFail++
		},
	},
}

func LookupSkill(id SkillID) (Skill, bool) {
	for _, s := range skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

func AllSkills() []Skill {
	return append([]Skill(nil), skills...)
}

type WeaponKind string

const (
	WeaponEdge     WeaponKind = "edge"
	WeaponMirror   WeaponKind = "mirror"
	WeaponTalisman WeaponKind = "talisman"
)

const maxWeaponTier = 3

var weaponNames = map[WeaponKind][maxWeaponTier + 1]string{
	WeaponEdge:     {"Hollow Sword Blank", "Mystic Edge", "Mystic Edge (Inscribed)", "Mystic Edge (Heavenwrought)"},
	WeaponMirror:   {"Unpolished Mirror", "Heart Mirror", "Heart Mirror (Lucid)", "Heart Mirror (Great Void)"},
	WeaponTalisman: {"Blank Ward Seal", "Ward Seal", "Ward Seal (Guardian)", "Ward Seal (Mystic Realm)"},
}

func WeaponName(kind WeaponKind, tier int) string {
	names, ok := weaponNames[kind]
	if !ok {
		return defaultEquipment().Name
	}
	return names[clampInt(tier, 0, maxWeaponTier)]
}

type AffixID string

const (
	AffixFrost   AffixID = "frost"
	AffixCrimson AffixID = "crimson"
	AffixGale    AffixID = "gale"
	AffixAzure   AffixID = "azure"
)

// Affix bonuses apply only inside runs.
type Affix struct {
	ID       AffixID
	Name     string
	Desc     string
	Dodge    float64
	Crit     float64
	Damage   float64
	RestHeal float64
}

var affixes = []Affix{
	{ID: AffixFrost, Name: "Frost Soul", Desc: "dodge +2% / damage +2%", Dodge: 0.02, Damage: 0.02},
	{ID: AffixCrimson, Name: "Crimson Glare", Desc: "damage +5%", Damage: 0.05},
	{ID: AffixGale, Name: "Azure Gale", Desc: "extra healing when resting", RestHeal: 0.15},
	{ID: AffixAzure, Name: "Mystic Gate", Desc: "crit +3%", Crit: 0.03},
}

func LookupAffix(id AffixID) (Affix, bool) {
	for _, a := range affixes {
		if a.ID == id {
			return a, true
		}
	}
	return Affix{}, false
}

func AllAffixes() []Affix {
	return append([]Affix(nil), affixes...)
}

type RecipeID string

const (
	RecipeHealPill    RecipeID = "heal"
	RecipeInsightPill RecipeID = "insight"
	RecipeWardPill    RecipeID = "ward"
	RecipeEdge        RecipeID = "edge"
	RecipeMirror      RecipeID = "mirror"
	RecipeTalisman    RecipeID = "talisman"
)

type RecipeKind int

const (
	RecipeAlchemy RecipeKind = iota
	RecipeForge
)

func (k RecipeKind) String() string {
	switch k {
	case RecipeAlchemy:
		return "Alchemy"
	case RecipeForge:
		return "Forge"
	default:
		return "Unknown"
	}
}

type Recipe struct {
	ID     RecipeID
	Kind   RecipeKind
	Title  string
	Hint   string
	Cost   Cost
	Weapon WeaponKind
}

var recipes = []Recipe{
	{
		ID: RecipeHealPill, Kind: RecipeAlchemy, Title: "Restoring Pill", Hint: "Better recovery while resting in runs.",
		Cost: Cost{{ResourceMaterials, 3}, {ResourceStones, 30}},
	},
	{
		ID: RecipeInsightPill, Kind: RecipeAlchemy, Title: "Truth Insight Pill", Hint: "Small breakthrough bonus when consumed.",
		Cost: Cost{{ResourceMaterials, 4}, {ResourceStones, 45}},
	},
	{
		ID: RecipeWardPill, Kind: RecipeAlchemy, Title: "Nightmare Ward Pill", Hint: "Lowers the danger of the current run.",
		Cost: Cost{{ResourceMaterials, 5}, {ResourceStones, 60}},
	},
	{
		ID: RecipeEdge, Kind: RecipeForge, Title: "Mystic Edge", Hint: "More run damage; wears down in combat.",
		Cost: Cost{{ResourceMaterials, 6}, {ResourceStones, 80}, {ResourceScrolls, 1}}, Weapon: WeaponEdge,
	},
	{
		ID: RecipeMirror, Kind: RecipeForge, Title: "Heart Mirror", Hint: "Leans toward dodge and crit.",
		Cost: Cost{{ResourceMaterials, 7}, {ResourceStones, 95}, {ResourceScrolls, 1}}, Weapon: WeaponMirror,
	},
	{
		ID: RecipeTalisman, Kind: RecipeForge, Title: "Ward Seal", Hint: "Sturdier body, better rests.",
		Cost: Cost{{ResourceMaterials, 8}, {ResourceStones, 110}, {ResourceScrolls, 2}}, Weapon: WeaponTalisman,
	},
}

func LookupRecipe(id RecipeID) (Recipe, bool) {
	for _, r := range recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

func AllRecipes() []Recipe {
	return append([]Recipe(nil), recipes...)
}

type AchievementID string

const (
	AchievementFirstRun   AchievementID = "first_run"
	AchievementFirstBreak AchievementID = "first_break"
	AchievementPills      AchievementID = "pills_made"
	AchievementWeapons    AchievementID = "weapons_made"
	AchievementBossDown   AchievementID = "boss_down"
)

type Achievement struct {
	ID   AchievementID
	Name string
	Desc string
	Test func(Tally) bool
}

var achievements = []Achievement{
	{ID: AchievementFirstRun, Name: "Into the Star Abyss", Desc: "Finish a run, win or lose.", Test: func(t Tally) bool { return t.Runs >= 1 }},
	{ID: AchievementFirstBreak, Name: "A Thread Through the Wall", Desc: "Break through once.", Test: func(t Tally) bool { return t.Breaks >= 1 }},
	{ID: AchievementPills, Name: "First Pill Fragrance", Desc: "Refine 10 pills.", Test: func(t Tally) bool { return t.Pills >= 10 }},
	{ID: AchievementWeapons, Name: "Untested Edge", Desc: "Forge 3 weapons.", Test: func(t Tally) bool { return t.Weapons >= 3 }},
	{ID: AchievementBossDown, Name: "Nightmare Slayer", Desc: "Defeat a nightmare lord.", Test: func(t Tally) bool { return t.Bosses >= 1 }},
}

func AllAchievements() []Achievement {
	return append([]Achievement(nil), achievements...)
}
