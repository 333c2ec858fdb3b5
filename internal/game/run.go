package game

import (
	"fmt"
	"math"
)

type Stance string

const (
	StanceBalanced   Stance = "balanced"
	StanceAggressive Stance = "aggressive"
	StanceGuard      Stance = "guard"
	StanceMystic     Stance = "mystic"
)

var stances = []Stance{StanceBalanced, StanceAggressive, StanceGuard, StanceMystic}

func AllStances() []Stance {
	return append([]Stance(nil), stances...)
}

func ParseStance(raw string) (Stance, bool) {
	for _, st := range stances {
		if string(st) == raw {
			return st, true
		}
	}
	return "", false
}

type stanceMods struct {
	dmg   float64
	dodge float64
	crit  float64
	focus float64
}

func (s Stance) mods() stanceMods {
	switch s {
	case StanceAggressive:
		return stanceMods{dmg: 1.16, dodge: 0.90, crit: 1.20, focus: 1.10}
	case StanceGuard:
		return stanceMods{dmg: 0.92, dodge: 1.12, crit: 0.92, focus: 0.95}
	case StanceMystic:
		return stanceMods{dmg: 1.04, dodge: 1.05, crit: 1.10, focus: 1.18}
	default:
		return stanceMods{dmg: 1, dodge: 1, crit: 1, focus: 1}
	}
}

type NodeKind int

const (
	NodeNone NodeKind = iota
	NodeCombat
	NodeWonder
	NodeMerchant
	NodeOpportunity
	NodeRest
	NodeBoss
)

func (k NodeKind) String() string {
	switch k {
	case NodeCombat:
		return "Combat"
	case NodeWonder:
		return "Wonder"
	case NodeMerchant:
		return "Merchant"
	case NodeOpportunity:
		return "Opportunity"
	case NodeRest:
		return "Rest"
	case NodeBoss:
		return "Boss"
	default:
		return "None"
	}
}

// Node salts keep each node kind's seeded numbers independent.
const (
	saltCombat      uint32 = 1337
	saltWonder      uint32 = 9999
	saltMerchant    uint32 = 4242
	saltOpportunity uint32 = 8080
	saltBoss        uint32 = 0xdeadbeef
	saltRest        uint32 = 0x1234
)

// Stage is the pending-event marker. Any stage other than StageNone blocks
// stepping until one of the presented choices resolves it.
type Stage string

const (
	StageNone        Stage = ""
	StageCombat      Stage = "combat"
	StageBoss        Stage = "boss"
	StageWonder      Stage = "wonder"
	StageMerchant    Stage = "merchant"
	StageOpportunity Stage = "opportunity"
	StageRest        Stage = "rest"
	StageAftermath   Stage = "aftermath"
	StageRecovered   Stage = "recovered"
	StageDefeated    Stage = "defeated"
)

func (s Stage) valid() bool {
	switch s {
	case StageNone, StageCombat, StageBoss, StageWonder, StageMerchant, StageOpportunity,
		StageRest, StageAftermath, StageRecovered, StageDefeated:
		return true
	default:
		return false
	}
}

// ResourceFocus names the run bar in shortfall errors. It is not one of the
// character's counters.
const ResourceFocus Resource = "focus"

// Run is one dungeon attempt. Vitality and focus outlive the attempt so that
// breakthrough backlash has something to hit between runs.
type Run struct {
	Active      bool     `json:"active"`
	Title       string   `json:"title"`
	Floor       int      `json:"floor"`
	FloorCount  int      `json:"floor_count"`
	Danger      float64  `json:"danger"`
	Vitality    float64  `json:"vitality"`
	VitalityMax float64  `json:"vitality_max"`
	Focus       float64  `json:"focus"`
	FocusMax    float64  `json:"focus_max"`
	Stance      Stance   `json:"stance"`
	MapSeed     uint32   `json:"map_seed"`
	Stage       Stage    `json:"stage"`
	LastNode    NodeKind `json:"last_node"`
}

func idleRun() Run {
	return Run{
		Title:       "Not in the abyss",
		Vitality:    100,
		VitalityMax: 100,
		Focus:       60,
		FocusMax:    60,
		Stance:      StanceBalanced,
	}
}

func (r *Run) Pending() bool {
	return r.Stage != StageNone
}

func (r *Run) clampBars() {
	r.VitalityMax = math.Max(1, r.VitalityMax)
	r.FocusMax = math.Max(1, r.FocusMax)
	r.Vitality = clampFloat(r.Vitality, 0, r.VitalityMax)
	r.Focus = clampFloat(r.Focus, 0, r.FocusMax)
	r.Danger = clamp01(r.Danger)
	if r.Floor < 0 {
		r.Floor = 0
	}
	if _, ok := ParseStance(string(r.Stance)); !ok {
		r.Stance = StanceBalanced
	}
}

func (r *Run) addDanger(d float64) {
	r.Danger = clamp01(r.Danger + d)
}

func (r *Run) addVitality(d float64) {
	r.Vitality = clampFloat(r.Vitality+d, 0, r.VitalityMax)
}

func (r *Run) addFocus(d float64) {
	r.Focus = clampFloat(r.Focus+d, 0, r.FocusMax)
}

// newRun sizes a fresh attempt from the character and a map seed.
func newRun(c *Character, mapSeed uint32, stance Stance) Run {
	rng := NewStream(mapSeed)
	count := 7 + rng.IntN(5) + min(6, c.Realm)
	realm := float64(c.Realm)
	vitalityMax := math.Floor(90 + 12*realm + 6*float64(c.ArrayLevel) + 0.5*float64(c.Stats.Spirit))
	focusMax := math.Floor(55 + 8*realm + 0.35*float64(c.Stats.Insight))
	return Run{
		Active:      true,
		Title:       fmt.Sprintf("Star Abyss, %d floors", count),
		FloorCount:  count,
		Danger:      clamp01(0.18 + 0.05*realm + rng.Float64()*0.10),
		Vitality:    vitalityMax,
		VitalityMax: vitalityMax,
		Focus:       focusMax,
		FocusMax:    focusMax,
		Stance:      stance,
		MapSeed:     mapSeed,
	}
}

// nodeOdds are the cumulative band widths a floor draw is compared against.
type nodeOdds struct {
	event       float64
	merchant    float64
	opportunity float64
	rest        float64
}

func oddsFor(c *Character, danger float64) nodeOdds {
	o := nodeOdds{
		event:       0.20 + c.Mods.EventLuck + float64(c.Stats.Fortune)/220,
		merchant:    0.12 + float64(c.Stats.Fortune)/450,
		opportunity: 0.12 + float64(c.Stats.Insight)/500,
		rest:        0.11,
	}
	if danger > 0.66 {
		o.event *= 0.85
		o.rest *= 1.15
	}
	return o
}

func (o nodeOdds) pick(roll float64) NodeKind {
	edge := o.event
	if roll < edge {
		return NodeWonder
	}
	edge += o.merchant
	if roll < edge {
		return NodeMerchant
	}
	edge += o.opportunity
	if roll < edge {
		return NodeOpportunity
	}
	edge += o.rest
	if roll < edge {
		return NodeRest
	}
	return NodeCombat
}

// DrawNode classifies floor from the run's map seed. The final floor is
// always the boss.
func DrawNode(c *Character, run *Run) NodeKind {
	if run.Floor == run.FloorCount {
		return NodeBoss
	}
	roll := NewStream(Salt(run.MapSeed, uint32(run.Floor))).Float64()
	return oddsFor(c, run.Danger).pick(roll)
}

func (s *Session) startRun() (Scene, error) {
	c := s.char
	if c.Run.Active {
		return Scene{}, invalidTransition("a run is already underway")
	}
	mapSeed := Salt(c.Seed, s.clockSalt())
	c.Run = newRun(c, mapSeed, c.Run.Stance)
	c.Tally.Runs++
	s.logf(ToneGood, "You enter the secret realm: %s.", c.Run.Title)
	s.cue(CueRunStart)
	return introScene(), nil
}

// stepRun advances one floor. It refuses while a choice is outstanding.
func (s *Session) stepRun() (Scene, error) {
	c := s.char
	run := &c.Run
	if !run.Active {
		return Scene{}, invalidTransition("no run is underway")
	}
	if run.Pending() {
		return Scene{}, invalidTransition("resolve the current event first")
	}

	run.Floor++
	if run.Floor > run.FloorCount {
		return s.completeRun(), nil
	}

	jitter := NewStream(Salt(run.MapSeed, uint32(run.Floor), s.clockSalt())).Float64()
	run.addDanger(0.02 + jitter*0.015)

	node := DrawNode(c, run)
	run.LastNode = node
	return s.presentNode(node), nil
}

func (s *Session) completeRun() Scene {
	c := s.char
	run := &c.Run
	bonus := int(math.Floor(120 + 25*float64(run.FloorCount) + 2*float64(c.Stats.Fortune)))
	materials := 3 + int(math.Floor(4*run.Danger))
	scroll := 0
	flavor := NewStream(Salt(run.MapSeed, s.clockSalt(), 0x600d))
	if flavor.Chance(0.25 + c.Mods.EventLuck) {
		scroll = 1
	}
	c.Resources.Stones += bonus
	c.Resources.Materials += materials
	c.Resources.Scrolls += scroll
	c.DaoPoints += 9 + 0.6*float64(run.FloorCount)

	s.logf(ToneGood, "The abyss is crossed: stones +%d, materials +%d%s.", bonus, materials, plural(", scroll +%d", scroll))
	s.cue(CueVictory)
	return s.endRun("returned triumphant")
}

// endRun deactivates the run and returns the closing scene.
func (s *Session) endRun(reason string) Scene {
	run := &s.char.Run
	run.Active = false
	run.Stage = StageNone
	s.logf(ToneNormal, "The run ends: %s.", reason)
	s.cue(CueRunEnd)
	return closingScene(reason)
}

// rest heals in place. forced always takes a pill when one is held.
func (s *Session) rest(forced bool) Scene {
	c := s.char
	run := &c.Run
	heal := 14 + 2*float64(c.ArrayLevel) + 0.06*float64(c.Stats.Spirit)
	focus := 18 + 0.10*float64(c.Stats.Insight)

	rng := NewStream(Salt(run.MapSeed, saltRest, uint32(run.Floor)))
	if c.Resources.Pills > 0 && (forced || rng.Chance(0.35)) {
		c.Resources.Pills--
		heal *= 1.55
		focus *= 1.45
		s.logf(ToneGood, "You swallow a pill and the breath circulates.")
	}
	if affix, ok := LookupAffix(c.Weapon.Affix); ok && affix.RestHeal > 0 {
		heal *= 1 + affix.RestHeal
	}

	run.addVitality(heal)
	run.addFocus(focus)
	run.addDanger(-0.03)
	run.Stage = StageRecovered
	s.logf(ToneGood, "Rest complete: vitality +%d, focus +%d, danger eases.", int(heal), int(focus))
	s.cue(CueRest)
	return recoveredScene()
}

func (s *Session) StartRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(s.startRun())
}

// Step advances the run by one floor. It is a no-op returning
// ErrInvalidTransition while an event is pending.
func (s *Session) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(s.stepRun())
}

// Rest recovers vitality and focus. It is allowed between floors, after a
// fight and at a rest node.
func (s *Session) Rest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &s.char.Run
	if !run.Active {
		return invalidTransition("no run is underway")
	}
	switch run.Stage {
	case StageNone, StageAftermath, StageRest:
	default:
		return invalidTransition("cannot rest now")
	}
	return s.transition(s.rest(true), nil)
}

// ExitRun leaves the run, forfeiting the completion reward. A defeated run
// ends with the defeat reason.
func (s *Session) ExitRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.char.Run.Active {
		return invalidTransition("no run is underway")
	}
	if s.char.Run.Stage == StageDefeated {
		return s.transition(s.endRun("ran out of vitality"), nil)
	}
	return s.transition(s.endRun("withdrew of your own accord"), nil)
}

func (s *Session) SetStance(st Stance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := ParseStance(string(st)); !ok {
		return unknownEntry("stance", string(st))
	}
	s.char.Run.Stance = st
	s.logf(ToneNormal, "You shift into the %s stance.", st)
	s.cue(CueStance)
	s.publish()
	return nil
}

func plural(format string, n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(format, n)
}
