package game

import (
	"fmt"
	"math"
)

// ChoiceID is the opaque handle a presenter hands back to resolve a choice.
type ChoiceID int

const (
	ChoiceStepIn ChoiceID = iota
	ChoiceObserve
	ChoicePressOn
	ChoiceEngage
	ChoiceFocusStrike
	ChoiceCircle
	ChoiceDecisiveBattle
	ChoiceSteadyHeart
	ChoiceWithdraw
	ChoiceAbsorbLight
	ChoiceStabilize
	ChoiceStudyScroll
	ChoiceSealScroll
	ChoiceGoDeeper
	ChoiceShutEars
	ChoiceBuyPill
	ChoiceBuyScroll
	ChoiceBarter
	ChoiceLeave
	ChoiceContemplate
	ChoiceCarveArray
	ChoiceTalismanGuard
	ChoiceDismantle
	ChoiceRestMeditate
	ChoiceForcedBreathing
	ChoiceContinue
	ChoiceRecover
	ChoiceRetreat
	ChoiceDismiss
	choiceCount
)

var choiceNames = [choiceCount]string{
	ChoiceStepIn:          "step_in",
	ChoiceObserve:         "observe",
	ChoicePressOn:         "press_on",
	ChoiceEngage:          "engage",
	ChoiceFocusStrike:     "focus_strike",
	ChoiceCircle:          "circle",
	ChoiceDecisiveBattle:  "decisive_battle",
	ChoiceSteadyHeart:     "steady_heart",
	ChoiceWithdraw:        "withdraw",
	ChoiceAbsorbLight:     "absorb_light",
	ChoiceStabilize:       "stabilize",
	ChoiceStudyScroll:     "study_scroll",
	ChoiceSealScroll:      "seal_scroll",
	ChoiceGoDeeper:        "go_deeper",
	ChoiceShutEars:        "shut_ears",
	ChoiceBuyPill:         "buy_pill",
	ChoiceBuyScroll:       "buy_scroll",
	ChoiceBarter:          "barter",
	ChoiceLeave:           "leave",
	ChoiceContemplate:     "contemplate",
	ChoiceCarveArray:      "carve_array",
	ChoiceTalismanGuard:   "talisman_guard",
	ChoiceDismantle:       "dismantle",
	ChoiceRestMeditate:    "rest_meditate",
	ChoiceForcedBreathing: "forced_breathing",
	ChoiceContinue:        "continue",
	ChoiceRecover:         "recover",
	ChoiceRetreat:         "retreat",
	ChoiceDismiss:         "dismiss",
}

var choiceLabels = [choiceCount]string{
	ChoiceStepIn:          "Step in",
	ChoiceObserve:         "Observe cautiously",
	ChoicePressOn:         "Press on",
	ChoiceEngage:          "Engage",
	ChoiceFocusStrike:     "Break it with focus (costs focus, less damage)",
	ChoiceCircle:          "Circle around (lowers danger)",
	ChoiceDecisiveBattle:  "Decisive battle",
	ChoiceSteadyHeart:     "Steady the heart with a pill (less damage)",
	ChoiceWithdraw:        "Withdraw (forfeit the final reward)",
	ChoiceAbsorbLight:     "Absorb the light",
	ChoiceStabilize:       "Stabilize with an array (80 stones, safer)",
	ChoiceStudyScroll:     "Study it a while",
	ChoiceSealScroll:      "Seal it away (small gain, lower danger)",
	ChoiceGoDeeper:        "Follow it deeper (high risk, high reward)",
	ChoiceShutEars:        "Shut the ears (costs focus, lowers danger)",
	ChoiceBuyPill:         "Buy a pill",
	ChoiceBuyScroll:       "Buy a scroll",
	ChoiceBarter:          "Barter materials for stones",
	ChoiceLeave:           "Leave",
	ChoiceContemplate:     "Contemplate (costs focus, grants dao)",
	ChoiceCarveArray:      "Carve an array (120 stones, raises max vitality)",
	ChoiceTalismanGuard:   "Draw the talisman in (lowers danger)",
	ChoiceDismantle:       "Dismantle it for materials (raises danger)",
	ChoiceRestMeditate:    "Meditate",
	ChoiceForcedBreathing: "Force the breath (aura, raises danger)",
	ChoiceContinue:        "Continue onward",
	ChoiceRecover:         "Catch your breath",
	ChoiceRetreat:         "Withdraw",
	ChoiceDismiss:         "Sort the spoils",
}

func (id ChoiceID) String() string {
	if id < 0 || id >= choiceCount {
		return fmt.Sprintf("choice(%d)", int(id))
	}
	return choiceNames[id]
}

func ParseChoiceID(name string) (ChoiceID, bool) {
	for id, n := range choiceNames {
		if n == name {
			return ChoiceID(id), true
		}
	}
	return 0, false
}

type Choice struct {
	ID    ChoiceID `json:"id"`
	Label string   `json:"label"`
}

type Scene struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Choices []Choice `json:"choices"`
}

func (sc Scene) offers(id ChoiceID) bool {
	for _, ch := range sc.Choices {
		if ch.ID == id {
			return true
		}
	}
	return false
}

func choices(ids ...ChoiceID) []Choice {
	out := make([]Choice, 0, len(ids))
	for _, id := range ids {
		out = append(out, Choice{ID: id, Label: choiceLabels[id]})
	}
	return out
}

func homeScene() Scene {
	return Scene{
		Title: "Cave Abode",
		Body:  "The gathering array hums. Meditate, refine, or set out for the Star Abyss.",
	}
}

func introScene() Scene {
	return Scene{
		Title:   "Into the Star Abyss",
		Body:    "Star mist hangs like a curtain over an old road. You step through the first rift and hear a low nightmare breath far ahead.",
		Choices: choices(ChoiceStepIn, ChoiceObserve),
	}
}

func betweenScene(run Run) Scene {
	return Scene{
		Title:   run.Title,
		Body:    fmt.Sprintf("Floor %d of %d. The next rift waits.", run.Floor, run.FloorCount),
		Choices: choices(ChoicePressOn),
	}
}

func closingScene(reason string) Scene {
	return Scene{
		Title:   "Back at the Cave Abode",
		Body:    fmt.Sprintf("You pull free of the secret realm. The journey ended because you %s.", reason),
		Choices: choices(ChoiceDismiss),
	}
}

func aftermathScene(boss bool) Scene {
	body := "The dust settles. The rift still waits ahead."
	if boss {
		body = "The nightmare lord falls and the abyss begins to close its wounds."
	}
	return Scene{Title: "Aftermath", Body: body, Choices: choices(ChoiceContinue, ChoiceRecover)}
}

func recoveredScene() Scene {
	return Scene{
		Title:   "Catching Breath",
		Body:    "You sit cross-legged between the rifts, breathing in time with the star mist.",
		Choices: choices(ChoiceContinue),
	}
}

func defeatedScene() Scene {
	return Scene{
		Title:   "Nightmare in the Bones",
		Body:    "Your vitality is spent and the abyss breath clings to your mind. You can go no further.",
		Choices: choices(ChoiceRetreat),
	}
}

var (
	foeNames  = []string{"Mist Wraith", "Rift Spider", "Abyss Wolf", "Hollow Crow", "Black Sand Golem"}
	bossNames = []string{"Nightmare Lord: Faceless", "Nightmare Lord: Dream Eater", "Nightmare Lord: Star Breaker"}
)

func combatFoe(run Run) string {
	rng := NewStream(Salt(run.MapSeed, uint32(run.Floor)*saltCombat))
	return foeNames[rng.IntN(len(foeNames))]
}

func bossFoe(run Run) string {
	rng := NewStream(Salt(run.MapSeed, saltBoss))
	return bossNames[rng.IntN(len(bossNames))]
}

// wonderDraw is everything a wonder node can pay out. Every value is drawn in
// a fixed order so each choice sees the same numbers.
type wonderDraw struct {
	Variant   int
	Light     int
	Scrolls   int
	Stones    int
	Materials int
}

func drawWonder(run Run) wonderDraw {
	rng := NewStream(Salt(run.MapSeed, uint32(run.Floor)*saltWonder))
	d := wonderDraw{}
	switch roll := rng.Float64(); {
	case roll < 0.33:
		d.Variant = 0
	case roll < 0.66:
		d.Variant = 1
	default:
		d.Variant = 2
	}
	d.Light = 160 + rng.IntN(120)
	d.Scrolls = 1
	if rng.Chance(0.25) {
		d.Scrolls = 2
	}
	d.Stones = 180 + rng.IntN(180)
	d.Materials = 2 + rng.IntN(3)
	return d
}

type merchantOffer struct {
	PillPrice   int
	ScrollPrice int
	Barter      int
}

func drawMerchant(run Run) merchantOffer {
	rng := NewStream(Salt(run.MapSeed, uint32(run.Floor)*saltMerchant))
	return merchantOffer{
		PillPrice:   90 + rng.IntN(35),
		ScrollPrice: 140 + rng.IntN(70),
		Barter:      120 + rng.IntN(80),
	}
}

type opportunityDraw struct {
	Variant   int
	Dao       float64
	Vitality  float64
	DangerCut float64
	Materials int
}

func drawOpportunity(run Run) opportunityDraw {
	rng := NewStream(Salt(run.MapSeed, uint32(run.Floor)*saltOpportunity))
	d := opportunityDraw{}
	if rng.Float64() >= 0.5 {
		d.Variant = 1
	}
	d.Dao = 7 + rng.Float64()*5
	d.Vitality = float64(10 + rng.IntN(8))
	d.DangerCut = 0.06 + rng.Float64()*0.06
	d.Materials = 3 + rng.IntN(3)
	return d
}

func combatScene(run Run) Scene {
	return Scene{
		Title:   "Combat",
		Body:    fmt.Sprintf("Black mist ahead condenses into a %s, thick with killing intent. How do you answer?", combatFoe(run)),
		Choices: choices(ChoiceEngage, ChoiceFocusStrike, ChoiceCircle),
	}
}

func bossScene(run Run) Scene {
	return Scene{
		Title:   "Nightmare Lord",
		Body:    fmt.Sprintf("The last floor turns cold. %s takes shape in the depths of the rift. Win, and the abyss yields everything.", bossFoe(run)),
		Choices: choices(ChoiceDecisiveBattle, ChoiceSteadyHeart, ChoiceWithdraw),
	}
}

func wonderScene(run Run) Scene {
	switch drawWonder(run).Variant {
	case 0:
		return Scene{
			Title:   "Wonder",
			Body:    "Beside a broken stele you find a wisp of warm light that could nourish the meridians.",
			Choices: choices(ChoiceAbsorbLight, ChoiceStabilize),
		}
	case 1:
		return Scene{
			Title:   "Wonder",
			Body:    "An old bamboo scroll drifts down, its writing half faded.",
			Choices: choices(ChoiceStudyScroll, ChoiceSealScroll),
		}
	default:
		return Scene{
			Title:   "Wonder",
			Body:    "Whispers echo around you, coaxing you toward a deeper rift.",
			Choices: choices(ChoiceGoDeeper, ChoiceShutEars),
		}
	}
}

func merchantScene(run Run) Scene {
	offer := drawMerchant(run)
	return Scene{
		Title: "Merchant Caravan",
		Body:  "A wandering caravan glows faintly in the mist, unafraid of the nightmare breath.",
		Choices: []Choice{
			{ID: ChoiceBuyPill, Label: fmt.Sprintf("Buy a pill (%d stones)", offer.PillPrice)},
			{ID: ChoiceBuyScroll, Label: fmt.Sprintf("Buy a scroll (%d stones)", offer.ScrollPrice)},
			{ID: ChoiceBarter, Label: "Barter 3 materials for stones"},
			{ID: ChoiceLeave, Label: choiceLabels[ChoiceLeave]},
		},
	}
}

func opportunityScene(run Run) Scene {
	if drawOpportunity(run).Variant == 0 {
		return Scene{
			Title:   "Opportunity",
			Body:    "You find a Still Thought Terrace, fit for visualisation.",
			Choices: choices(ChoiceContemplate, ChoiceCarveArray),
		}
	}
	return Scene{
		Title:   "Opportunity",
		Body:    "A mystic talisman surfaces beside the rift. It might hold the nightmare breath at bay.",
		Choices: choices(ChoiceTalismanGuard, ChoiceDismantle),
	}
}

func restScene() Scene {
	return Scene{
		Title:   "Respite",
		Body:    "The star mist thins here. A good place for a short rest.",
		Choices: choices(ChoiceRestMeditate, ChoiceForcedBreathing),
	}
}

var nodeStages = map[NodeKind]Stage{
	NodeCombat:      StageCombat,
	NodeBoss:        StageBoss,
	NodeWonder:      StageWonder,
	NodeMerchant:    StageMerchant,
	NodeOpportunity: StageOpportunity,
	NodeRest:        StageRest,
}

// presentNode marks the node pending and returns its menu.
func (s *Session) presentNode(node NodeKind) Scene {
	run := &s.char.Run
	run.Stage = nodeStages[node]
	s.cue(CueNode)
	return sceneForStage(*run)
}

// sceneForStage rebuilds the scene a run is waiting on. Node scenes are pure
// functions of the run, so a restored save shows the same menu.
func sceneForStage(run Run) Scene {
	if !run.Active {
		return homeScene()
	}
	switch run.Stage {
	case StageCombat:
		return combatScene(run)
	case StageBoss:
		return bossScene(run)
	case StageWonder:
		return wonderScene(run)
	case StageMerchant:
		return merchantScene(run)
	case StageOpportunity:
		return opportunityScene(run)
	case StageRest:
		return restScene()
	case StageAftermath:
		return aftermathScene(run.LastNode == NodeBoss)
	case StageRecovered:
		return recoveredScene()
	case StageDefeated:
		return defeatedScene()
	default:
		if run.Floor == 0 {
			return introScene()
		}
		return betweenScene(run)
	}
}

type choiceHandler func(s *Session) (Scene, error)

var choiceHandlers = [choiceCount]choiceHandler{
	ChoiceStepIn:          (*Session).stepRun,
	ChoiceObserve:         handleObserve,
	ChoicePressOn:         (*Session).stepRun,
	ChoiceEngage:          handleEngage,
	ChoiceFocusStrike:     handleFocusStrike,
	ChoiceCircle:          handleCircle,
	ChoiceDecisiveBattle:  handleDecisiveBattle,
	ChoiceSteadyHeart:     handleSteadyHeart,
	ChoiceWithdraw:        handleWithdraw,
	ChoiceAbsorbLight:     handleAbsorbLight,
	ChoiceStabilize:       handleStabilize,
	ChoiceStudyScroll:     handleStudyScroll,
	ChoiceSealScroll:      handleSealScroll,
	ChoiceGoDeeper:        handleGoDeeper,
	ChoiceShutEars:        handleShutEars,
	ChoiceBuyPill:         handleBuyPill,
	ChoiceBuyScroll:       handleBuyScroll,
	ChoiceBarter:          handleBarter,
	ChoiceLeave:           handleLeave,
	ChoiceContemplate:     handleContemplate,
	ChoiceCarveArray:      handleCarveArray,
	ChoiceTalismanGuard:   handleTalismanGuard,
	ChoiceDismantle:       handleDismantle,
	ChoiceRestMeditate:    handleRestMeditate,
	ChoiceForcedBreathing: handleForcedBreathing,
	ChoiceContinue:        handleContinue,
	ChoiceRecover:         handleRecover,
	ChoiceRetreat:         handleRetreat,
	ChoiceDismiss:         handleDismiss,
}

// resolveAndStep clears the pending marker and moves to the next floor.
func (s *Session) resolveAndStep() (Scene, error) {
	s.char.Run.Stage = StageNone
	return s.stepRun()
}

func handleObserve(s *Session) (Scene, error) {
	s.char.Run.addDanger(-0.03)
	s.logf(ToneGood, "You draw in your aura; the danger eases a little.")
	return s.stepRun()
}

func handleEngage(s *Session) (Scene, error) {
	return s.resolveCombat(combatFoe(s.char.Run), 1.0, false), nil
}

func handleFocusStrike(s *Session) (Scene, error) {
	run := &s.char.Run
	if err := run.checkFocus(10); err != nil {
		return Scene{}, err
	}
	run.addFocus(-10)
	return s.resolveCombat(combatFoe(*run), 0.92, false), nil
}

func handleCircle(s *Session) (Scene, error) {
	run := &s.char.Run
	run.addDanger(-0.03)
	return s.resolveCombat(combatFoe(*run), 1.05, false), nil
}

func handleDecisiveBattle(s *Session) (Scene, error) {
	return s.resolveCombat(bossFoe(s.char.Run), 1.55, true), nil
}

func handleSteadyHeart(s *Session) (Scene, error) {
	c := s.char
	if err := c.Resources.Check(Cost{{ResourcePills, 1}}); err != nil {
		return Scene{}, err
	}
	c.Resources.Pills--
	c.Run.addDanger(-0.06)
	c.Run.addFocus(14)
	return s.resolveCombat(bossFoe(c.Run), 1.48, true), nil
}

func handleWithdraw(s *Session) (Scene, error) {
	return s.endRun("backed away from the nightmare lord"), nil
}

func handleAbsorbLight(s *Session) (Scene, error) {
	c := s.char
	d := drawWonder(c.Run)
	c.Resources.Aura += float64(d.Light)
	c.Run.addDanger(0.02)
	s.logf(ToneGood, "You take in the light: aura +%d.", d.Light)
	return s.resolveAndStep()
}

func handleStabilize(s *Session) (Scene, error) {
	c := s.char
	cost := Cost{{ResourceStones, 80}}
	if err := c.Resources.Check(cost); err != nil {
		return Scene{}, err
	}
	c.Resources.pay(cost)
	c.Run.addDanger(-0.07)
	s.logf(ToneGood, "Spirit stones steady the array; the danger drops.")
	return s.resolveAndStep()
}

func handleStudyScroll(s *Session) (Scene, error) {
	c := s.char
	d := drawWonder(c.Run)
	c.Resources.Scrolls += d.Scrolls
	c.DaoPoints += 4.5
	s.logf(ToneGood, "You glean %d scroll(s) and a little dao.", d.Scrolls)
	return s.resolveAndStep()
}

func handleSealScroll(s *Session) (Scene, error) {
	c := s.char
	c.Resources.Scrolls++
	c.Run.addDanger(-0.04)
	s.logf(ToneGood, "You seal the scroll away: scroll +1, the danger eases.")
	return s.resolveAndStep()
}

func handleGoDeeper(s *Session) (Scene, error) {
	c := s.char
	d := drawWonder(c.Run)
	c.Run.addDanger(0.10)
	c.Resources.Stones += d.Stones
	c.Resources.Materials += d.Materials
	s.logf(ToneGood, "You seize the chance: stones +%d, materials +%d, but the nightmare thickens.", d.Stones, d.Materials)
	return s.resolveAndStep()
}

func handleShutEars(s *Session) (Scene, error) {
	run := &s.char.Run
	if err := run.checkFocus(12); err != nil {
		return Scene{}, err
	}
	run.addFocus(-12)
	run.addDanger(-0.08)
	s.logf(ToneGood, "You seal your hearing and steady the mind; the danger drops sharply.")
	return s.resolveAndStep()
}

func handleBuyPill(s *Session) (Scene, error) {
	c := s.char
	offer := drawMerchant(c.Run)
	if err := c.Resources.Check(Cost{{ResourceStones, offer.PillPrice}}); err != nil {
		return Scene{}, err
	}
	c.Resources.Stones -= offer.PillPrice
	c.Resources.Pills++
	s.logf(ToneGood, "You buy a pill for %d stones.", offer.PillPrice)
	s.cue(CueTrade)
	return s.resolveAndStep()
}

func handleBuyScroll(s *Session) (Scene, error) {
	c := s.char
	offer := drawMerchant(c.Run)
	if err := c.Resources.Check(Cost{{ResourceStones, offer.ScrollPrice}}); err != nil {
		return Scene{}, err
	}
	c.Resources.Stones -= offer.ScrollPrice
	c.Resources.Scrolls++
	s.logf(ToneGood, "You buy a scroll for %d stones.", offer.ScrollPrice)
	s.cue(CueTrade)
	return s.resolveAndStep()
}

func handleBarter(s *Session) (Scene, error) {
	c := s.char
	offer := drawMerchant(c.Run)
	cost := Cost{{ResourceMaterials, 3}}
	if err := c.Resources.Check(cost); err != nil {
		return Scene{}, err
	}
	c.Resources.pay(cost)
	c.Resources.Stones += offer.Barter
	s.logf(ToneGood, "You trade materials for %d stones.", offer.Barter)
	return s.resolveAndStep()
}

func handleLeave(s *Session) (Scene, error) {
	s.logf(ToneNormal, "You pass the caravan by.")
	return s.resolveAndStep()
}

func handleContemplate(s *Session) (Scene, error) {
	c := s.char
	if err := c.Run.checkFocus(14); err != nil {
		return Scene{}, err
	}
	d := drawOpportunity(c.Run)
	c.Run.addFocus(-14)
	c.DaoPoints += d.Dao
	s.logf(ToneGood, "You contemplate on the terrace: dao +%.1f.", d.Dao)
	return s.resolveAndStep()
}

func handleCarveArray(s *Session) (Scene, error) {
	c := s.char
	cost := Cost{{ResourceStones, 120}}
	if err := c.Resources.Check(cost); err != nil {
		return Scene{}, err
	}
	d := drawOpportunity(c.Run)
	c.Resources.pay(cost)
	c.Run.VitalityMax += d.Vitality
	c.Run.addVitality(10)
	s.logf(ToneGood, "The carved array braces your body: max vitality +%d.", int(d.Vitality))
	return s.resolveAndStep()
}

func handleTalismanGuard(s *Session) (Scene, error) {
	c := s.char
	d := drawOpportunity(c.Run)
	c.Run.addDanger(-d.DangerCut)
	s.logf(ToneGood, "The talisman melts into your meridians; the danger drops.")
	return s.resolveAndStep()
}

func handleDismantle(s *Session) (Scene, error) {
	c := s.char
	d := drawOpportunity(c.Run)
	c.Resources.Materials += d.Materials
	c.Run.addDanger(0.06)
	s.logf(ToneGood, "You strip the talisman: materials +%d, but the nightmare deepens.", d.Materials)
	return s.resolveAndStep()
}

func handleRestMeditate(s *Session) (Scene, error) {
	return s.rest(false), nil
}

func handleForcedBreathing(s *Session) (Scene, error) {
	c := s.char
	flavor := NewStream(Salt(c.Run.MapSeed, uint32(c.Run.Floor), s.clockSalt()))
	gain := 220 + flavor.IntN(140)
	c.Resources.Aura += float64(gain)
	c.Run.addDanger(0.05)
	s.logf(ToneGood, "You gulp down the star mist: aura +%d.", gain)
	return s.resolveAndStep()
}

func handleContinue(s *Session) (Scene, error) {
	return s.resolveAndStep()
}

func handleRecover(s *Session) (Scene, error) {
	return s.rest(true), nil
}

func handleRetreat(s *Session) (Scene, error) {
	return s.endRun("ran out of vitality"), nil
}

func handleDismiss(s *Session) (Scene, error) {
	return homeScene(), nil
}

func (r *Run) checkFocus(need float64) error {
	if r.Focus < need {
		return insufficient(ResourceFocus, need, math.Floor(r.Focus))
	}
	return nil
}

// Choose resolves one of the choices the current scene offers.
func (s *Session) Choose(id ChoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choose(id)
}

// ChooseIndex resolves the choice at position idx (0-based) of the current scene.
func (s *Session) ChooseIndex(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.scene.Choices) {
		return invalidTransition(fmt.Sprintf("no choice %d on offer", idx+1))
	}
	return s.choose(s.scene.Choices[idx].ID)
}

func (s *Session) choose(id ChoiceID) error {
	if id < 0 || id >= choiceCount {
		return unknownEntry("choice", id.String())
	}
	if !s.scene.offers(id) {
		return invalidTransition(fmt.Sprintf("%s is not on offer", id))
	}
	if id != ChoiceDismiss && !s.char.Run.Active {
		return invalidTransition("no run is underway")
	}
	return s.transition(choiceHandlers[id](s))
}
