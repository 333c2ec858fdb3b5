package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is written into every snapshot. Restore accepts any
// version from 1 up to this one.
const SnapshotVersion = 1

type snapshot struct {
	Version   int        `json:"version"`
	SavedAt   time.Time  `json:"saved_at"`
	Character *Character `json:"character"`
}

// Serialize encodes c as a versioned JSON snapshot.
func Serialize(c *Character, savedAt time.Time) ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, SavedAt: savedAt, Character: c})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Restore decodes a snapshot. Anything missing the version marker, the
// character, or naming an unknown realm or affinity is ErrCorruptSnapshot.
func Restore(data []byte) (*Character, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, corruptSnapshot("snapshot is not valid json", err)
	}
	if snap.Version <= 0 {
		return nil, corruptSnapshot("snapshot has no version marker", nil)
	}
	if snap.Version > SnapshotVersion {
		return nil, corruptSnapshot(fmt.Sprintf("snapshot version %d is newer than %d", snap.Version, SnapshotVersion), nil)
	}
	c := snap.Character
	if c == nil {
		return nil, corruptSnapshot("snapshot has no character", nil)
	}
	if c.Realm < 0 || c.Realm >= len(realms) {
		return nil, corruptSnapshot(fmt.Sprintf("realm %d out of range", c.Realm), nil)
	}
	if _, ok := LookupAffinity(c.Base.Affinity); !ok {
		return nil, corruptSnapshot(fmt.Sprintf("unknown affinity %q", c.Base.Affinity), nil)
	}

	skills := c.Skills[:0]
	for _, id := range c.Skills {
		if _, ok := LookupSkill(id); ok {
			skills = append(skills, id)
		}
	}
	c.Skills = skills
	if _, ok := LookupAffix(c.Weapon.Affix); !ok {
		c.Weapon.Affix = ""
	}
	if c.Run.Active && c.Run.FloorCount <= 0 {
		c.Run.Active = false
	}
	if !c.Run.Stage.valid() || !c.Run.Active {
		c.Run.Stage = StageNone
	}
	c.normalize()
	c.Recompute()
	return c, nil
}

// ResumeSession restores a session from data. On failure it still returns a
// usable session around a fresh character from seed, together with the error.
func ResumeSession(data []byte, seed uint32, opts ...Option) (*Session, error) {
	s := newSession(opts)
	c, err := Restore(data)
	if err != nil {
		s.attach(NewCharacter(seed, s.now()))
		s.logf(ToneBad, "The save could not be read; a new fate is forged.")
		return s, err
	}
	s.attach(c)
	s.logf(ToneNormal, "Welcome back to the cave abode.")
	return s, nil
}

// Snapshot serializes the current character.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Serialize(s.char, s.now())
}

// Import replaces the character with a snapshot. A bad snapshot leaves the
// current character untouched.
func (s *Session) Import(data []byte) error {
	c, err := Restore(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logf(ToneBad, "Import failed: the save is not valid.")
		s.cue(CueFailure)
		return err
	}
	s.attach(c)
	s.logf(ToneGood, "Save imported.")
	s.publish()
	return nil
}

// Reset replaces the character with a fresh one rolled from seed.
func (s *Session) Reset(seed uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attach(NewCharacter(seed, s.now()))
	s.logf(ToneNormal, "Your fate is recast.")
	s.publish()
}
