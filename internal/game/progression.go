package game

import (
	"fmt"
	"math"
)

const (
	minAdvancementChance = 0.05
	maxAdvancementChance = 0.92
	maxBoostedChance     = 0.95
)

// AdvancementCost is the aura and materials a breakthrough from realm costs.
func AdvancementCost(realm int) (aura, materials int) {
	threshold := RealmAt(realm).Threshold
	aura = int(math.Floor(threshold * (0.60 + 0.06*float64(realm))))
	materials = max(3, int(math.Floor(4+1.3*float64(realm))))
	return aura, materials
}

func advancementCost(realm int) Cost {
	aura, materials := AdvancementCost(realm)
	return Cost{{ResourceAura, aura}, {ResourceMaterials, materials}}
}

// AdvancementChance is the success probability before consumable boosts.
func AdvancementChance(c *Character) float64 {
	realm := float64(c.Realm)
	chance := 0.58 - 0.055*realm
	chance += float64(c.Stats.Insight) / 100 * 0.18
	chance += float64(c.Stats.Fortune) / 100 * 0.16
	chance += float64(c.Stats.Spirit) / 100 * 0.08
	chance += float64(c.ArrayLevel) * 0.035
	if c.Resources.Pills > 0 {
		chance += 0.05
	}
	if c.Resources.Scrolls >= 2 {
		chance += 0.03
	}
	chance += c.Mods.BreakBase
	return clampFloat(chance, minAdvancementChance, maxAdvancementChance)
}

// AuraRate is aura gained per second of simulated time.
func AuraRate(c *Character) float64 {
	realm := 1 + 0.08*float64(c.Realm)
	array := 1 + 0.10*float64(c.ArrayLevel)
	insight := 1 + 0.007*float64(c.Stats.Insight-20)
	return 1.2 * c.Stats.AffinityMult() * realm * array * insight * c.Mods.AuraRate
}

// DaoRate is dao points gained per second of simulated time.
func DaoRate(c *Character) float64 {
	return 0.0022 * (1 + float64(c.Stats.Spirit)/80) * (1 + 0.06*float64(c.Realm))
}

// ArrayUpgradeCost is the stone price of the next array level.
func ArrayUpgradeCost(c *Character) int {
	base := 120 + math.Pow(1.35, float64(c.ArrayLevel))*140
	return int(math.Floor(base * c.Mods.ArrayCost))
}

func meditationGain(c *Character) int {
	base := 120 + 45*float64(c.ArrayLevel) + 4*float64(c.Stats.Insight)
	if c.Run.Active {
		base *= 0.55
	}
	return int(math.Floor(base))
}

func (c *Character) addRealmProgress(amount float64) {
	c.RealmProgress = clampFloat(c.RealmProgress+amount, 0, c.RealmThreshold())
}

// advancementRolls holds every draw an attempt may need. They are taken up
// front so the commit step cannot fail halfway.
type advancementRolls struct {
	usePill     float64
	useScrolls  float64
	outcome     float64
	insightGain float64
	backlash    float64
	regress     float64
	consolation float64
	dao         float64
}

func drawAdvancementRolls(consume, outcome *Stream) advancementRolls {
	return advancementRolls{
		usePill:     consume.Float64(),
		useScrolls:  consume.Float64(),
		outcome:     outcome.Float64(),
		insightGain: outcome.Float64(),
		backlash:    outcome.Float64(),
		regress:     outcome.Float64(),
		consolation: outcome.Float64(),
		dao:         outcome.Float64(),
	}
}

// AdvancementResult describes one breakthrough attempt.
type AdvancementResult struct {
	Success    bool
	Chance     float64
	UsedPill   bool
	UsedScroll bool
	Realm      int
	Regressed  bool
	Backlash   float64
	DaoGain    float64
	ScrollGain int
}

// applyAdvancement commits an attempt whose costs were already checked.
func applyAdvancement(c *Character, r advancementRolls) AdvancementResult {
	res := AdvancementResult{}
	extra := 0.0
	if c.Resources.Pills > 0 && r.usePill < 0.33 {
		c.Resources.Pills--
		res.UsedPill = true
		extra += 0.03
	}
	if c.Resources.Scrolls >= 2 && r.useScrolls < 0.28 {
		c.Resources.Scrolls -= 2
		res.UsedScroll = true
		extra += 0.02
	}

	// Chance reflects the counters after consumables are spent.
	res.Chance = clampFloat(AdvancementChance(c)+extra, minAdvancementChance, maxBoostedChance)
	c.Resources.pay(advancementCost(c.Realm))

	if r.outcome < res.Chance {
		c.Realm = min(c.Realm+1, len(realms)-1)
		c.RealmProgress = 0
		res.DaoGain = 16 + 2*float64(c.Realm)
		c.DaoPoints += res.DaoGain
		c.Base.Insight += 1 + int(math.Floor(r.insightGain*2))
		c.Base.Spirit++
		c.Tally.Breaks++
		res.Success = true
	} else {
		res.Backlash = 18 + math.Floor(r.backlash*16) + 3*float64(c.Realm)
		c.Run.Vitality = clampFloat(c.Run.Vitality-res.Backlash, 0, c.Run.VitalityMax)
		if !c.Mods.NoRealmDrop && c.Realm > 0 && r.regress < 0.18+0.03*float64(c.Realm) {
			c.Realm--
			res.Regressed = true
		}
		if r.consolation < 0.35+float64(c.Stats.Insight)/280 {
			res.ScrollGain = 1 + c.Mods.ScrollOnFail
			c.Resources.Scrolls += res.ScrollGain
		}
		res.DaoGain = 6 + r.dao*6
		c.DaoPoints += res.DaoGain
	}
	res.Realm = c.Realm
	c.Recompute()
	c.normalize()
	return res
}

// AttemptAdvancement spends the breakthrough cost and rolls for the next realm.
// A shortfall returns ErrInsufficientResource with nothing spent.
func (s *Session) AttemptAdvancement() (AdvancementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	if err := c.Resources.Check(advancementCost(c.Realm)); err != nil {
		s.fail(err)
		return AdvancementResult{}, err
	}

	clock := s.clockSalt()
	rolls := drawAdvancementRolls(
		NewStream(Salt(c.Seed, clock, 0x51ed)),
		NewStream(Salt(c.Seed, clock, uint32(c.Realm))),
	)
	res := applyAdvancement(c, rolls)

	if res.Success {
		s.logf(ToneGood, "Breakthrough succeeded: you enter %s (chance %d%%%s).", RealmAt(res.Realm).Name, int(res.Chance*100), usedNote(res))
		s.cue(CueBreakthrough)
	} else {
		msg := fmt.Sprintf("Breakthrough failed: backlash -%s vitality", FormatAmount(res.Backlash))
		if res.Regressed {
			msg += fmt.Sprintf(", fell back to %s", RealmAt(res.Realm).Name)
		}
		if res.ScrollGain > 0 {
			msg += fmt.Sprintf(", gleaned %d scroll(s)", res.ScrollGain)
		}
		s.logf(ToneBad, "%s, dao +%.1f (chance %d%%%s).", msg, res.DaoGain, int(res.Chance*100), usedNote(res))
		s.cue(CueFailure)
		if c.Run.Active && c.Run.Vitality <= 0 {
			c.Run.Stage = StageDefeated
			s.setScene(defeatedScene())
		}
	}
	s.publish()
	return res, nil
}

func usedNote(res AdvancementResult) string {
	switch {
	case res.UsedPill && res.UsedScroll:
		return ", pill and scrolls used"
	case res.UsedPill:
		return ", pill used"
	case res.UsedScroll:
		return ", scrolls used"
	default:
		return ""
	}
}

// Meditate grants a burst of aura, smaller while inside a run.
func (s *Session) Meditate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	gain := meditationGain(c)
	c.Resources.Aura += float64(gain)
	c.addRealmProgress(float64(gain) * 0.18)
	s.logf(ToneGood, "You sit and breathe: aura +%d.", gain)
	s.cue(CueMeditate)
	s.publish()
	return nil
}

func (s *Session) UpgradeArray() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	cost := ArrayUpgradeCost(c)
	if err := c.Resources.Check(Cost{{ResourceStones, cost}}); err != nil {
		s.fail(err)
		return err
	}
	c.Resources.Stones -= cost
	c.ArrayLevel++
	c.DaoPoints += 2.5
	s.logf(ToneGood, "The gathering array rises to level %d (%d stones).", c.ArrayLevel, cost)
	s.cue(CueUpgrade)
	s.publish()
	return nil
}

// LearnSkill unlocks id once its prerequisites are held and its dao cost paid.
func (s *Session) LearnSkill(id SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	skill, ok := LookupSkill(id)
	if !ok {
		err := unknownEntry("skill", string(id))
		s.fail(err)
		return err
	}
	if c.HasSkill(id) {
		return invalidTransition(fmt.Sprintf("%s is already learned", skill.Name))
	}
	if !skill.Unlocked(c.HasSkill) {
		err := invalidTransition(fmt.Sprintf("%s needs its prerequisites first", skill.Name))
		s.logf(ToneNormal, "%s.", err.Message)
		return err
	}
	if c.DaoPoints < skill.Cost {
		err := &Error{
			Code:     CodeInsufficientResource,
			Message:  fmt.Sprintf("not enough dao points: need %s, have %.1f", FormatAmount(skill.Cost), c.DaoPoints),
			Metadata: map[string]string{"resource": "dao", "need": FormatAmount(skill.Cost)},
		}
		s.fail(err)
		return err
	}
	c.DaoPoints -= skill.Cost
	c.Skills = append(c.Skills, id)
	c.Recompute()
	s.logf(ToneGood, "You comprehend %s.", skill.Name)
	s.cue(CueLearn)
	s.publish()
	return nil
}
