package game

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestChoiceTablesComplete(t *testing.T) {
	for id := ChoiceID(0); id < choiceCount; id++ {
		if choiceHandlers[id] == nil {
			t.Fatalf("choice %d has no handler", id)
		}
		if choiceNames[id] == "" || choiceLabels[id] == "" {
			t.Fatalf("choice %d has no name or label", id)
		}
		if got, ok := ParseChoiceID(id.String()); !ok || got != id {
			t.Fatalf("choice %s does not round trip through its name", id)
		}
	}
	if _, ok := ParseChoiceID("nope"); ok {
		t.Fatalf("expected unknown choice name to miss")
	}
}

func TestEveryStageHasChoices(t *testing.T) {
	run := Run{Active: true, Floor: 2, FloorCount: 8, MapSeed: 99}
	for _, stage := range []Stage{StageCombat, StageBoss, StageWonder, StageMerchant, StageOpportunity,
		StageRest, StageAftermath, StageRecovered, StageDefeated, StageNone} {
		run.Stage = stage
		if sc := sceneForStage(run); len(sc.Choices) == 0 {
			t.Fatalf("stage %q offers nothing", stage)
		}
	}
}

func TestChooseRejectsWhatIsNotOffered(t *testing.T) {
	s, _ := newTestSession(t, 2)
	if err := s.Choose(ChoiceID(99)); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("expected unknown entry, got %v", err)
	}
	if err := s.Choose(ChoiceEngage); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition at home, got %v", err)
	}
	if err := s.ChooseIndex(0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no choices at home, got %v", err)
	}

	enterPendingNode(t, s, 2, StageMerchant)
	if err := s.Choose(ChoiceEngage); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected engage refused at a merchant, got %v", err)
	}
	if err := s.ChooseIndex(7); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected out of range index refused, got %v", err)
	}
}

func TestMerchantNumbersIgnoreTheClock(t *testing.T) {
	barter := func(delay time.Duration) (int, Scene) {
		s, clock := newTestSession(t, 31)
		clock.Advance(delay)
		enterPendingNode(t, s, 3, StageMerchant)
		s.char.Run.MapSeed = 777
		s.scene = sceneForStage(s.char.Run)
		scene := s.Scene()

		s.char.Resources.Materials = 10
		stones := s.char.Resources.Stones
		if err := s.Choose(ChoiceBarter); err != nil {
			t.Fatalf("barter: %v", err)
		}
		if s.char.Resources.Materials != 7 {
			t.Fatalf("expected 3 materials spent, got %d left", s.char.Resources.Materials)
		}
		return s.char.Resources.Stones - stones, scene
	}

	gainA, sceneA := barter(0)
	gainB, sceneB := barter(17*time.Minute + 3*time.Millisecond)
	if gainA != gainB {
		t.Fatalf("expected identical barter across clocks, got %d and %d", gainA, gainB)
	}
	if gainA != drawMerchant(Run{MapSeed: 777, Floor: 3}).Barter {
		t.Fatalf("expected the seeded barter price, got %d", gainA)
	}
	if !reflect.DeepEqual(sceneA, sceneB) {
		t.Fatalf("expected identical merchant menus, got %+v and %+v", sceneA, sceneB)
	}
}

func TestShortfallKeepsTheEventPending(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 3, StageMerchant)
	s.char.Resources.Stones = 0
	before := s.Scene()
	run := s.char.Run

	if err := s.Choose(ChoiceBuyPill); !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected insufficient stones, got %v", err)
	}
	if !reflect.DeepEqual(s.Scene(), before) || s.char.Run != run {
		t.Fatalf("expected scene and run untouched")
	}
	if line := lastLog(t, s); line.Tone != ToneBad {
		t.Fatalf("expected the shortfall logged, got %+v", line)
	}
	if err := s.Choose(ChoiceLeave); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.char.Run.Floor != 4 {
		t.Fatalf("expected to move on to floor 4, got %d", s.char.Run.Floor)
	}
}

func TestFocusStrikeNeedsFocus(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 3, StageCombat)
	s.char.Run.Focus = 5
	if err := s.Choose(ChoiceFocusStrike); !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected focus shortfall, got %v", err)
	}
	if s.char.Run.Stage != StageCombat || s.char.Run.Focus != 5 {
		t.Fatalf("expected combat still pending, got %+v", s.char.Run)
	}
}

func TestCombatLeadsToAftermath(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 3, StageCombat)
	stones := s.char.Resources.Stones

	if err := s.Choose(ChoiceEngage); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if s.char.Run.Stage != StageAftermath {
		t.Fatalf("expected aftermath, got %q", s.char.Run.Stage)
	}
	if s.char.Resources.Stones <= stones {
		t.Fatalf("expected stones from the fight")
	}
	if err := s.Choose(ChoiceContinue); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if s.char.Run.Floor != 4 {
		t.Fatalf("expected floor 4, got %d", s.char.Run.Floor)
	}
}

func TestCombatCanDefeat(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 3, StageCombat)
	s.char.Run.Vitality = 1

	if err := s.Choose(ChoiceEngage); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if s.char.Run.Stage != StageDefeated || s.char.Run.Vitality != 0 {
		t.Fatalf("expected defeat, got %+v", s.char.Run)
	}
	if err := s.Step(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected stepping refused after defeat, got %v", err)
	}
	if err := s.Choose(ChoiceRetreat); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if s.char.Run.Active {
		t.Fatalf("expected the run to end")
	}
}

func TestBossVictoryIsTallied(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 8, StageBoss)
	s.char.Run.FloorCount = 8
	s.char.Run.LastNode = NodeBoss

	if err := s.Choose(ChoiceDecisiveBattle); err != nil {
		t.Fatalf("decisive battle: %v", err)
	}
	if s.char.Run.Stage != StageAftermath || s.char.Tally.Bosses != 1 {
		t.Fatalf("expected boss down, got stage=%q bosses=%d", s.char.Run.Stage, s.char.Tally.Bosses)
	}
	if err := s.Choose(ChoiceContinue); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if s.char.Run.Active {
		t.Fatalf("expected the run to complete after the boss")
	}
}

func TestSteadyHeartSpendsAPill(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 8, StageBoss)
	s.char.Run.FloorCount = 8
	s.char.Resources.Pills = 0
	if err := s.Choose(ChoiceSteadyHeart); !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected pill shortfall, got %v", err)
	}
	s.char.Resources.Pills = 2
	if err := s.Choose(ChoiceSteadyHeart); err != nil {
		t.Fatalf("steady heart: %v", err)
	}
	if s.char.Resources.Pills != 1 {
		t.Fatalf("expected one pill spent, got %d left", s.char.Resources.Pills)
	}
}

// seedFor finds a map seed whose draw on floor satisfies ok.
func seedFor(t *testing.T, floor int, ok func(Run) bool) uint32 {
	t.Helper()
	for seed := uint32(1); seed < 10000; seed++ {
		if ok(Run{MapSeed: seed, Floor: floor}) {
			return seed
		}
	}
	t.Fatalf("no seed found")
	return 0
}

func TestWonderVariants(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 2, StageWonder)
	s.char.Run.MapSeed = seedFor(t, 2, func(r Run) bool { return drawWonder(r).Variant == 0 })
	s.scene = sceneForStage(s.char.Run)

	light := drawWonder(s.char.Run).Light
	aura := s.char.Resources.Aura
	if err := s.Choose(ChoiceAbsorbLight); err != nil {
		t.Fatalf("absorb light: %v", err)
	}
	if s.char.Resources.Aura != aura+float64(light) {
		t.Fatalf("expected aura +%d, got %v from %v", light, s.char.Resources.Aura, aura)
	}

	s2, _ := newTestSession(t, 31)
	enterPendingNode(t, s2, 2, StageWonder)
	s2.char.Run.MapSeed = seedFor(t, 2, func(r Run) bool { return drawWonder(r).Variant == 2 })
	s2.scene = sceneForStage(s2.char.Run)
	s2.char.Run.Focus = 20
	if err := s2.Choose(ChoiceShutEars); err != nil {
		t.Fatalf("shut ears: %v", err)
	}
	if s2.char.Run.Focus != 8 {
		t.Fatalf("expected 12 focus spent, got %v left", s2.char.Run.Focus)
	}
}

func TestOpportunityCarveArray(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 2, StageOpportunity)
	s.char.Run.MapSeed = seedFor(t, 2, func(r Run) bool { return drawOpportunity(r).Variant == 0 })
	s.scene = sceneForStage(s.char.Run)
	s.char.Resources.Stones = 200
	maxVit := s.char.Run.VitalityMax
	gain := drawOpportunity(s.char.Run).Vitality

	if err := s.Choose(ChoiceCarveArray); err != nil {
		t.Fatalf("carve array: %v", err)
	}
	if s.char.Resources.Stones != 80 || s.char.Run.VitalityMax != maxVit+gain {
		t.Fatalf("unexpected carve result stones=%d max=%v", s.char.Resources.Stones, s.char.Run.VitalityMax)
	}
}

func TestRestNodeMeditate(t *testing.T) {
	s, _ := newTestSession(t, 31)
	enterPendingNode(t, s, 2, StageRest)
	s.char.Run.Vitality = 20
	if err := s.Choose(ChoiceRestMeditate); err != nil {
		t.Fatalf("rest meditate: %v", err)
	}
	if s.char.Run.Vitality <= 20 || s.char.Run.Stage != StageRecovered {
		t.Fatalf("expected recovery, got %+v", s.char.Run)
	}
}

type choiceCase struct {
	name    string
	stage   Stage
	floor   int
	variant func(Run) bool
	choice  ChoiceID
	next    func(t *testing.T, before Run, after Run)
	effect  func(t *testing.T, before, after Character)
}

// movedOn expects the next floor's node to be waiting.
func movedOn(t *testing.T, before, after Run) {
	t.Helper()
	if after.Floor != before.Floor+1 {
		t.Fatalf("expected floor %d, got %d", before.Floor+1, after.Floor)
	}
	if after.Stage != nodeStages[after.LastNode] || !after.Pending() {
		t.Fatalf("expected the %s node pending, got stage %q", after.LastNode, after.Stage)
	}
}

func stays(stage Stage) func(*testing.T, Run, Run) {
	return func(t *testing.T, before, after Run) {
		t.Helper()
		if after.Stage != stage || after.Floor != before.Floor {
			t.Fatalf("expected stage %q on floor %d, got %q on %d", stage, before.Floor, after.Stage, after.Floor)
		}
	}
}

func ended(t *testing.T, _, after Run) {
	t.Helper()
	if after.Active || after.Stage != StageNone {
		t.Fatalf("expected the run over, got %+v", after)
	}
}

func wonderVariant(v int) func(Run) bool {
	return func(r Run) bool { return drawWonder(r).Variant == v }
}

func opportunityVariant(v int) func(Run) bool {
	return func(r Run) bool { return drawOpportunity(r).Variant == v }
}

func TestEveryChoiceResolves(t *testing.T) {
	cases := []choiceCase{
		{name: "step in", stage: StageNone, floor: 0, choice: ChoiceStepIn, next: movedOn},
		{name: "observe", stage: StageNone, floor: 0, choice: ChoiceObserve, next: movedOn},
		{name: "press on", stage: StageNone, floor: 2, choice: ChoicePressOn, next: movedOn},
		{name: "engage", stage: StageCombat, floor: 2, choice: ChoiceEngage, next: stays(StageAftermath),
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Stones <= before.Resources.Stones {
					t.Fatalf("expected stones from the fight")
				}
			}},
		{name: "focus strike", stage: StageCombat, floor: 2, choice: ChoiceFocusStrike, next: stays(StageAftermath),
			effect: func(t *testing.T, before, after Character) {
				if after.Run.Focus > before.Run.Focus-10 {
					t.Fatalf("expected at least 10 focus spent, %v -> %v", before.Run.Focus, after.Run.Focus)
				}
			}},
		{name: "circle", stage: StageCombat, floor: 2, choice: ChoiceCircle, next: stays(StageAftermath)},
		{name: "decisive battle", stage: StageBoss, floor: 2, choice: ChoiceDecisiveBattle, next: stays(StageAftermath),
			effect: func(t *testing.T, before, after Character) {
				if after.Tally.Bosses != before.Tally.Bosses+1 {
					t.Fatalf("expected the boss tallied")
				}
			}},
		{name: "steady heart", stage: StageBoss, floor: 2, choice: ChoiceSteadyHeart, next: stays(StageAftermath),
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Pills != before.Resources.Pills-1 {
					t.Fatalf("expected one pill spent")
				}
			}},
		{name: "withdraw", stage: StageBoss, floor: 2, choice: ChoiceWithdraw, next: ended},
		{name: "absorb light", stage: StageWonder, floor: 2, variant: wonderVariant(0), choice: ChoiceAbsorbLight, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if want := before.Resources.Aura + float64(drawWonder(before.Run).Light); after.Resources.Aura != want {
					t.Fatalf("expected aura %v, got %v", want, after.Resources.Aura)
				}
			}},
		{name: "stabilize", stage: StageWonder, floor: 2, variant: wonderVariant(0), choice: ChoiceStabilize, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Stones != before.Resources.Stones-80 {
					t.Fatalf("expected 80 stones spent, %d -> %d", before.Resources.Stones, after.Resources.Stones)
				}
			}},
		{name: "study scroll", stage: StageWonder, floor: 2, variant: wonderVariant(1), choice: ChoiceStudyScroll, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Scrolls != before.Resources.Scrolls+drawWonder(before.Run).Scrolls {
					t.Fatalf("expected the drawn scrolls, %d -> %d", before.Resources.Scrolls, after.Resources.Scrolls)
				}
				if after.DaoPoints != before.DaoPoints+4.5 {
					t.Fatalf("expected dao +4.5, %v -> %v", before.DaoPoints, after.DaoPoints)
				}
			}},
		{name: "seal scroll", stage: StageWonder, floor: 2, variant: wonderVariant(1), choice: ChoiceSealScroll, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Scrolls != before.Resources.Scrolls+1 {
					t.Fatalf("expected one scroll, %d -> %d", before.Resources.Scrolls, after.Resources.Scrolls)
				}
			}},
		{name: "go deeper", stage: StageWonder, floor: 2, variant: wonderVariant(2), choice: ChoiceGoDeeper, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				d := drawWonder(before.Run)
				if after.Resources.Stones != before.Resources.Stones+d.Stones || after.Resources.Materials != before.Resources.Materials+d.Materials {
					t.Fatalf("expected stones +%d materials +%d, got %+v", d.Stones, d.Materials, after.Resources)
				}
			}},
		{name: "shut ears", stage: StageWonder, floor: 2, variant: wonderVariant(2), choice: ChoiceShutEars, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Run.Focus != before.Run.Focus-12 {
					t.Fatalf("expected 12 focus spent, %v -> %v", before.Run.Focus, after.Run.Focus)
				}
			}},
		{name: "buy pill", stage: StageMerchant, floor: 2, choice: ChoiceBuyPill, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				price := drawMerchant(before.Run).PillPrice
				if after.Resources.Stones != before.Resources.Stones-price || after.Resources.Pills != before.Resources.Pills+1 {
					t.Fatalf("expected a pill for %d stones, got %+v", price, after.Resources)
				}
			}},
		{name: "buy scroll", stage: StageMerchant, floor: 2, choice: ChoiceBuyScroll, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				price := drawMerchant(before.Run).ScrollPrice
				if after.Resources.Stones != before.Resources.Stones-price || after.Resources.Scrolls != before.Resources.Scrolls+1 {
					t.Fatalf("expected a scroll for %d stones, got %+v", price, after.Resources)
				}
			}},
		{name: "barter", stage: StageMerchant, floor: 2, choice: ChoiceBarter, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Materials != before.Resources.Materials-3 {
					t.Fatalf("expected 3 materials spent")
				}
			}},
		{name: "leave", stage: StageMerchant, floor: 2, choice: ChoiceLeave, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources != before.Resources {
					t.Fatalf("expected nothing traded, %+v -> %+v", before.Resources, after.Resources)
				}
			}},
		{name: "contemplate", stage: StageOpportunity, floor: 2, variant: opportunityVariant(0), choice: ChoiceContemplate, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Run.Focus != before.Run.Focus-14 {
					t.Fatalf("expected 14 focus spent, %v -> %v", before.Run.Focus, after.Run.Focus)
				}
				if after.DaoPoints != before.DaoPoints+drawOpportunity(before.Run).Dao {
					t.Fatalf("expected the drawn dao, %v -> %v", before.DaoPoints, after.DaoPoints)
				}
			}},
		{name: "carve array", stage: StageOpportunity, floor: 2, variant: opportunityVariant(0), choice: ChoiceCarveArray, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Stones != before.Resources.Stones-120 {
					t.Fatalf("expected 120 stones spent")
				}
				if after.Run.VitalityMax != before.Run.VitalityMax+drawOpportunity(before.Run).Vitality {
					t.Fatalf("expected max vitality raised, %v -> %v", before.Run.VitalityMax, after.Run.VitalityMax)
				}
			}},
		{name: "talisman guard", stage: StageOpportunity, floor: 2, variant: opportunityVariant(1), choice: ChoiceTalismanGuard, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources != before.Resources {
					t.Fatalf("expected no resource change")
				}
			}},
		{name: "dismantle", stage: StageOpportunity, floor: 2, variant: opportunityVariant(1), choice: ChoiceDismantle, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				if after.Resources.Materials != before.Resources.Materials+drawOpportunity(before.Run).Materials {
					t.Fatalf("expected the drawn materials, %d -> %d", before.Resources.Materials, after.Resources.Materials)
				}
			}},
		{name: "rest meditate", stage: StageRest, floor: 2, choice: ChoiceRestMeditate, next: stays(StageRecovered),
			effect: func(t *testing.T, before, after Character) {
				if after.Run.Vitality <= before.Run.Vitality {
					t.Fatalf("expected vitality restored")
				}
			}},
		{name: "forced breathing", stage: StageRest, floor: 2, choice: ChoiceForcedBreathing, next: movedOn,
			effect: func(t *testing.T, before, after Character) {
				gain := after.Resources.Aura - before.Resources.Aura
				if gain < 219.5 || gain > 359.5 {
					t.Fatalf("expected aura +220..359, got %v", gain)
				}
			}},
		{name: "continue", stage: StageAftermath, floor: 2, choice: ChoiceContinue, next: movedOn},
		{name: "recover", stage: StageAftermath, floor: 2, choice: ChoiceRecover, next: stays(StageRecovered)},
		{name: "continue after rest", stage: StageRecovered, floor: 2, choice: ChoiceContinue, next: movedOn},
		{name: "retreat", stage: StageDefeated, floor: 2, choice: ChoiceRetreat, next: ended},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestSession(t, 31)
			enterPendingNode(t, s, tc.floor, tc.stage)
			if tc.variant != nil {
				s.char.Run.MapSeed = seedFor(t, tc.floor, tc.variant)
			}
			s.char.Resources.Stones = 600
			s.char.Resources.Materials = 10
			s.char.Resources.Pills = 2
			switch tc.stage {
			case StageRest, StageAftermath, StageRecovered:
				s.char.Run.Vitality = s.char.Run.VitalityMax / 2
			}
			s.scene = sceneForStage(s.char.Run)
			if !s.scene.offers(tc.choice) {
				t.Fatalf("%s not offered at stage %q: %+v", tc.choice, tc.stage, s.scene.Choices)
			}
			before := s.char.clone()

			if err := s.Choose(tc.choice); err != nil {
				t.Fatalf("%s: %v", tc.choice, err)
			}
			after := s.char.clone()
			tc.next(t, before.Run, after.Run)
			if tc.effect != nil {
				tc.effect(t, before, after)
			}

			run := after.Run
			if run.Vitality < 0 || run.Vitality > run.VitalityMax {
				t.Fatalf("vitality %v outside [0, %v]", run.Vitality, run.VitalityMax)
			}
			if run.Focus < 0 || run.Focus > run.FocusMax {
				t.Fatalf("focus %v outside [0, %v]", run.Focus, run.FocusMax)
			}
			if run.Danger < 0 || run.Danger > 1 {
				t.Fatalf("danger %v outside [0, 1]", run.Danger)
			}
			r := after.Resources
			if r.Aura < 0 || r.Stones < 0 || r.Materials < 0 || r.Pills < 0 || r.Scrolls < 0 {
				t.Fatalf("negative counter in %+v", r)
			}
		})
	}
}

func TestWonderAndOpportunityNumbersIgnoreTheClock(t *testing.T) {
	resolve := func(delay time.Duration, stage Stage, variant func(Run) bool, choice ChoiceID) (Scene, Character) {
		s, clock := newTestSession(t, 31)
		clock.Advance(delay)
		enterPendingNode(t, s, 4, stage)
		s.char.Run.MapSeed = seedFor(t, 4, variant)
		s.char.Run.Focus = s.char.Run.FocusMax
		s.scene = sceneForStage(s.char.Run)
		scene := s.Scene()
		before := s.char.clone()
		if err := s.Choose(choice); err != nil {
			t.Fatalf("%s: %v", choice, err)
		}
		after := s.char.clone()
		after.Resources.Stones -= before.Resources.Stones
		after.Resources.Materials -= before.Resources.Materials
		after.Resources.Scrolls -= before.Resources.Scrolls
		after.DaoPoints -= before.DaoPoints
		return scene, after
	}

	for _, tc := range []struct {
		stage   Stage
		variant func(Run) bool
		choice  ChoiceID
	}{
		{StageWonder, wonderVariant(1), ChoiceStudyScroll},
		{StageWonder, wonderVariant(2), ChoiceGoDeeper},
		{StageOpportunity, opportunityVariant(0), ChoiceContemplate},
		{StageOpportunity, opportunityVariant(1), ChoiceDismantle},
	} {
		sceneA, a := resolve(0, tc.stage, tc.variant, tc.choice)
		sceneB, b := resolve(23*time.Minute+7*time.Millisecond, tc.stage, tc.variant, tc.choice)
		if !reflect.DeepEqual(sceneA, sceneB) {
			t.Fatalf("%s: menus differ across clocks: %+v vs %+v", tc.choice, sceneA, sceneB)
		}
		if a.Resources.Stones != b.Resources.Stones || a.Resources.Materials != b.Resources.Materials ||
			a.Resources.Scrolls != b.Resources.Scrolls || a.DaoPoints != b.DaoPoints {
			t.Fatalf("%s: gains differ across clocks: %+v/%v vs %+v/%v", tc.choice, a.Resources, a.DaoPoints, b.Resources, b.DaoPoints)
		}
	}
}
