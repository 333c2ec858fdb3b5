package game

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestStartRunSizesAttempt(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	run := s.char.Run
	if !run.Active || run.Floor != 0 || run.Pending() {
		t.Fatalf("unexpected fresh run %+v", run)
	}
	if run.FloorCount < 7 || run.FloorCount > 11 {
		t.Fatalf("expected 7..11 floors at the first realm, got %d", run.FloorCount)
	}
	if run.Vitality != run.VitalityMax || run.Focus != run.FocusMax {
		t.Fatalf("expected full bars, got %+v", run)
	}
	if run.Danger < 0.18 || run.Danger >= 0.28 {
		t.Fatalf("unexpected starting danger %v", run.Danger)
	}
	if s.char.Tally.Runs != 1 {
		t.Fatalf("expected run tallied, got %d", s.char.Tally.Runs)
	}
	if sc := s.Scene(); !sc.offers(ChoiceStepIn) || !sc.offers(ChoiceObserve) {
		t.Fatalf("expected intro scene, got %+v", sc)
	}

	if err := s.StartRun(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second start to be refused, got %v", err)
	}
}

func TestStepPresentsAPendingNode(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	run := s.char.Run
	if run.Floor != 1 || !run.Pending() {
		t.Fatalf("expected floor 1 pending, got %+v", run)
	}
	if run.LastNode == NodeNone || run.LastNode == NodeBoss {
		t.Fatalf("unexpected node %v on floor 1", run.LastNode)
	}
	if len(s.Scene().Choices) == 0 {
		t.Fatalf("expected choices for the node")
	}
}

func TestStepRefusedWhilePending(t *testing.T) {
	s, _ := newTestSession(t, 12)
	enterPendingNode(t, s, 2, StageMerchant)
	before := s.char.Run
	scene := s.Scene()

	for i := 0; i < 3; i++ {
		if err := s.Step(); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	}
	if s.char.Run != before {
		t.Fatalf("expected run untouched, got %+v want %+v", s.char.Run, before)
	}
	if s.Scene().Title != scene.Title {
		t.Fatalf("expected scene kept, got %q", s.Scene().Title)
	}
}

func TestStepWithoutRun(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.Step(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestFinalFloorIsBoss(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	s.char.Run.Floor = s.char.Run.FloorCount - 1
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.char.Run.Stage != StageBoss || s.char.Run.LastNode != NodeBoss {
		t.Fatalf("expected boss stage, got %+v", s.char.Run)
	}
	if s.Scene().Title != "Nightmare Lord" {
		t.Fatalf("expected boss scene, got %q", s.Scene().Title)
	}
}

func TestStepPastLastFloorCompletesRun(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	c := s.char
	c.Run.Floor = c.Run.FloorCount
	stones, materials, dao := c.Resources.Stones, c.Resources.Materials, c.DaoPoints
	count, danger := c.Run.FloorCount, c.Run.Danger

	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.Run.Active || c.Run.Pending() {
		t.Fatalf("expected run closed, got %+v", c.Run)
	}
	wantStones := stones + int(math.Floor(120+25*float64(count)+2*float64(c.Stats.Fortune)))
	if c.Resources.Stones != wantStones {
		t.Fatalf("expected stones %d, got %d", wantStones, c.Resources.Stones)
	}
	wantMaterials := materials + 3 + int(math.Floor(4*danger))
	if c.Resources.Materials != wantMaterials {
		t.Fatalf("expected materials %d, got %d", wantMaterials, c.Resources.Materials)
	}
	if c.DaoPoints != dao+9+0.6*float64(count) {
		t.Fatalf("unexpected dao %v", c.DaoPoints)
	}
	sc := s.Scene()
	if sc.Title != "Back at the Cave Abode" || !sc.offers(ChoiceDismiss) {
		t.Fatalf("expected closing scene, got %+v", sc)
	}
	if err := s.Choose(ChoiceDismiss); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if sc := s.Scene(); sc.Title != "Cave Abode" || len(sc.Choices) != 0 {
		t.Fatalf("expected home scene, got %+v", sc)
	}
}

func TestDrawNodeIsSeeded(t *testing.T) {
	c := NewCharacter(4, testEpoch)
	run := Run{Active: true, FloorCount: 9, MapSeed: 555, Danger: 0.3}
	for floor := 1; floor < run.FloorCount; floor++ {
		run.Floor = floor
		a, b := DrawNode(c, &run), DrawNode(c, &run)
		if a != b {
			t.Fatalf("floor %d: expected the same node, got %v and %v", floor, a, b)
		}
		if a == NodeBoss || a == NodeNone {
			t.Fatalf("floor %d: unexpected node %v", floor, a)
		}
	}
	run.Floor = run.FloorCount
	if got := DrawNode(c, &run); got != NodeBoss {
		t.Fatalf("expected boss on the last floor, got %v", got)
	}
}

func TestOddsShiftWithDanger(t *testing.T) {
	c := NewCharacter(4, testEpoch)
	calm, grim := oddsFor(c, 0.3), oddsFor(c, 0.7)
	if grim.event >= calm.event {
		t.Fatalf("expected fewer events in high danger: %v vs %v", grim.event, calm.event)
	}
	if grim.rest <= calm.rest {
		t.Fatalf("expected more rest in high danger: %v vs %v", grim.rest, calm.rest)
	}
	if grim.merchant != calm.merchant || grim.opportunity != calm.opportunity {
		t.Fatalf("expected merchant and opportunity odds unchanged")
	}
}

func TestOddsPickBands(t *testing.T) {
	o := nodeOdds{event: 0.2, merchant: 0.1, opportunity: 0.1, rest: 0.1}
	tests := []struct {
		roll float64
		want NodeKind
	}{
		{roll: 0.1, want: NodeWonder},
		{roll: 0.25, want: NodeMerchant},
		{roll: 0.35, want: NodeOpportunity},
		{roll: 0.45, want: NodeRest},
		{roll: 0.6, want: NodeCombat},
	}
	for _, tc := range tests {
		if got := o.pick(tc.roll); got != tc.want {
			t.Fatalf("pick(%v)=%v want=%v", tc.roll, got, tc.want)
		}
	}
}

func TestExitRun(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.ExitRun(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition without a run, got %v", err)
	}
	enterPendingNode(t, s, 3, StageCombat)
	stones := s.char.Resources.Stones
	if err := s.ExitRun(); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if s.char.Run.Active || s.char.Run.Pending() {
		t.Fatalf("expected closed run, got %+v", s.char.Run)
	}
	if s.char.Resources.Stones != stones {
		t.Fatalf("expected no completion reward, got %d stones", s.char.Resources.Stones)
	}
	if !s.Scene().offers(ChoiceDismiss) {
		t.Fatalf("expected closing scene, got %+v", s.Scene())
	}
}

func TestExitAfterDefeatKeepsDefeatReason(t *testing.T) {
	s, _ := newTestSession(t, 12)
	enterPendingNode(t, s, 3, StageDefeated)
	if err := s.ExitRun(); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if line := lastLog(t, s); !strings.Contains(line.Text, "ran out of vitality") {
		t.Fatalf("expected the defeat reason, got %q", line.Text)
	}
	if body := s.Scene().Body; !strings.Contains(body, "ran out of vitality") || strings.Contains(body, "own accord") {
		t.Fatalf("expected the closing scene to name the defeat, got %q", body)
	}
}

func TestRestAllowedOnlyBetweenFights(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.Rest(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no rest outside a run, got %v", err)
	}

	enterPendingNode(t, s, 2, StageMerchant)
	if err := s.Rest(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no rest at a merchant, got %v", err)
	}

	s.char.Run.Stage = StageAftermath
	s.char.Run.Vitality = 10
	s.char.Resources.Pills = 1
	if err := s.Rest(); err != nil {
		t.Fatalf("rest: %v", err)
	}
	if s.char.Resources.Pills != 0 {
		t.Fatalf("expected a forced rest to take the pill")
	}
	if s.char.Run.Vitality <= 10 {
		t.Fatalf("expected vitality restored, got %v", s.char.Run.Vitality)
	}
	if s.char.Run.Stage != StageRecovered || !s.Scene().offers(ChoiceContinue) {
		t.Fatalf("expected recovered stage, got %q", s.char.Run.Stage)
	}
}

func TestStanceCarriesIntoNextRun(t *testing.T) {
	s, _ := newTestSession(t, 12)
	if err := s.SetStance("reckless"); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("expected unknown stance, got %v", err)
	}
	if err := s.SetStance(StanceGuard); err != nil {
		t.Fatalf("set stance: %v", err)
	}
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	if s.char.Run.Stance != StanceGuard {
		t.Fatalf("expected guard stance, got %q", s.char.Run.Stance)
	}
}
