package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, 77)
	c := s.char
	c.Realm = 2
	c.ArrayLevel = 3
	c.DaoPoints = 41.5
	c.Skills = []SkillID{SkillBreath, SkillArray}
	c.Weapon = Equipment{Kind: WeaponMirror, Name: WeaponName(WeaponMirror, 2), Tier: 2, Durability: 0.6, Affix: AffixGale}
	c.Tally = Tally{Runs: 4, Breaks: 2, Pills: 3}
	c.Achievements[AchievementFirstRun] = true
	c.Recompute()

	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	got, err := Restore(data)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got.Seed != c.Seed || got.Realm != c.Realm || got.ArrayLevel != c.ArrayLevel || got.DaoPoints != c.DaoPoints {
		t.Fatalf("scalar fields differ: %+v", got)
	}
	if got.Base != c.Base || got.Stats != c.Stats || got.Mods != c.Mods {
		t.Fatalf("stats differ: %+v/%+v vs %+v/%+v", got.Stats, got.Mods, c.Stats, c.Mods)
	}
	if got.Resources != c.Resources || got.Weapon != c.Weapon || got.Run != c.Run || got.Tally != c.Tally {
		t.Fatalf("state differs after round trip")
	}
	if !reflect.DeepEqual(got.Skills, c.Skills) || !reflect.DeepEqual(got.Achievements, c.Achievements) {
		t.Fatalf("skills or achievements differ")
	}
	if !got.LastSeen.Equal(c.LastSeen) || !got.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("timestamps differ")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	good := NewCharacter(3, testEpoch)
	badRealm := NewCharacter(3, testEpoch)
	badRealm.Realm = 42
	badAffinity := NewCharacter(3, testEpoch)
	badAffinity.Base.Affinity = "void"

	tests := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte("{oops")},
		{name: "no version", data: mustJSON(t, map[string]any{"character": good})},
		{name: "future version", data: mustJSON(t, snapshot{Version: SnapshotVersion + 1, Character: good})},
		{name: "no character", data: []byte(`{"version":1}`)},
		{name: "realm out of range", data: mustJSON(t, snapshot{Version: 1, Character: badRealm})},
		{name: "unknown affinity", data: mustJSON(t, snapshot{Version: 1, Character: badAffinity})},
	}
	for _, tc := range tests {
		if _, err := Restore(tc.data); !errors.Is(err, ErrCorruptSnapshot) {
			t.Fatalf("%s: expected corrupt snapshot, got %v", tc.name, err)
		}
	}
}

func TestRestoreDropsUnknownEntries(t *testing.T) {
	c := NewCharacter(3, testEpoch)
	c.Skills = []SkillID{SkillBreath, "forgotten-art"}
	c.Weapon.Affix = "cursed"
	c.Run = Run{Active: true, Floor: 2, FloorCount: 8, Stage: "limbo", VitalityMax: 100, Vitality: 50, FocusMax: 60, Stance: StanceMystic}

	got, err := Restore(mustJSON(t, snapshot{Version: 1, Character: c}))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(got.Skills, []SkillID{SkillBreath}) {
		t.Fatalf("expected unknown skill dropped, got %v", got.Skills)
	}
	if got.Weapon.Affix != "" {
		t.Fatalf("expected unknown affix cleared, got %q", got.Weapon.Affix)
	}
	if got.Run.Stage != StageNone || !got.Run.Active {
		t.Fatalf("expected run kept with stage reset, got %+v", got.Run)
	}
	if got.Mods.AuraRate != 1.2 {
		t.Fatalf("expected modifiers recomputed, got %v", got.Mods.AuraRate)
	}
}

func TestRestoreClearsStageOfRunWithoutFloors(t *testing.T) {
	c := NewCharacter(3, testEpoch)
	c.Run = Run{Active: true, Floor: 2, FloorCount: 0, Stage: StageCombat, VitalityMax: 100, Vitality: 50, FocusMax: 60, Stance: StanceGuard}

	got, err := Restore(mustJSON(t, snapshot{Version: 1, Character: c}))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got.Run.Active || got.Run.Stage != StageNone || got.Run.Pending() {
		t.Fatalf("expected an idle run with nothing pending, got %+v", got.Run)
	}

	s := NewSession(got)
	if sc := s.Scene(); sc.Title != homeScene().Title {
		t.Fatalf("expected the home scene, got %+v", sc)
	}
}

func TestResumeSessionFallsBackToFreshCharacter(t *testing.T) {
	clock := newFakeClock()
	s, err := ResumeSession([]byte("not a save"), 123, WithClock(clock.Now))
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected corrupt snapshot, got %v", err)
	}
	if s == nil || s.char.Seed != 123 {
		t.Fatalf("expected a fresh character from seed 123")
	}
	if line := lastLog(t, s); line.Tone != ToneBad {
		t.Fatalf("expected the failure logged, got %+v", line)
	}
}

func TestResumeMidEventShowsSameMenu(t *testing.T) {
	s, clock := newTestSession(t, 77)
	enterPendingNode(t, s, 4, StageMerchant)
	want := s.Scene()
	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	resumed, err := ResumeSession(data, 1, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := resumed.Scene(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected the merchant menu back, got %+v want %+v", got, want)
	}
	if err := resumed.Step(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected the event still pending, got %v", err)
	}
}

func TestImportKeepsCharacterOnFailure(t *testing.T) {
	s, _ := newTestSession(t, 77)
	s.char.Resources.Stones = 999
	if err := s.Import([]byte(`{"version":0}`)); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected corrupt snapshot, got %v", err)
	}
	if s.char.Seed != 77 || s.char.Resources.Stones != 999 {
		t.Fatalf("expected the current character kept")
	}

	other, _ := newTestSession(t, 88)
	data, err := other.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := s.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}
	if s.char.Seed != 88 {
		t.Fatalf("expected imported character, got seed %d", s.char.Seed)
	}
}

func TestResetRollsNewCharacter(t *testing.T) {
	s, _ := newTestSession(t, 77)
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	s.Reset(5)
	if s.char.Seed != 5 || s.char.Run.Active || s.char.Base != RollBaseStats(5) {
		t.Fatalf("expected a fresh character, got %+v", s.char)
	}
	if s.Scene().Title != "Cave Abode" {
		t.Fatalf("expected home scene after reset")
	}
}
