package game

import "time"

const (
	maxFrameStep     = 80 * time.Millisecond
	catchUpThreshold = 1200 * time.Millisecond
	maxCatchUp       = 6 * time.Hour
	catchUpDamping   = 0.85
)

// CatchUpGrant is the aura and dao owed for an offline gap. It grows with
// the gap up to six hours and is flat beyond that.
func CatchUpGrant(c *Character, gap time.Duration) (aura, dao float64) {
	if gap <= catchUpThreshold {
		return 0, 0
	}
	secs := min(gap, maxCatchUp).Seconds()
	return AuraRate(c) * secs * catchUpDamping, DaoRate(c) * secs * catchUpDamping
}

// advance applies dt of continuous simulation.
func (c *Character) advance(dt float64) {
	gain := AuraRate(c) * dt
	c.Resources.Aura += gain
	c.DaoPoints += DaoRate(c) * dt
	c.addRealmProgress(gain * (0.11 + 0.02*float64(c.Realm)))

	if c.Run.Active {
		c.Run.addFocus((0.9 + 0.05*float64(c.ArrayLevel)) * dt)
		if c.Weapon.Tier > 0 {
			c.Weapon.Durability = clamp01(c.Weapon.Durability - 0.0025*dt)
		}
	}
	c.PlayTime += time.Duration(dt * float64(time.Second))
}

// Tick advances simulated time to now. A frame never advances more than
// 80ms; a longer silence since the last save is paid out once as catch-up,
// and the last-seen mark moves in the same critical section so the gap
// cannot be granted twice.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	dt := 0.0
	if !s.lastFrame.IsZero() {
		dt = clampFloat(now.Sub(s.lastFrame).Seconds(), 0, maxFrameStep.Seconds())
	}
	s.lastFrame = now

	if gap := now.Sub(c.LastSeen); gap > catchUpThreshold {
		aura, dao := CatchUpGrant(c, gap)
		c.Resources.Aura += aura
		c.DaoPoints += dao
		s.logf(ToneGood, "You return from seclusion: aura +%s and dao +%.1f flowed back over %s.",
			FormatAmount(aura), dao, min(gap, maxCatchUp).Truncate(time.Second))
		s.cue(CueReturn)
	}
	if now.After(c.LastSeen) {
		c.LastSeen = now
	}

	c.advance(dt)

	if sec := now.Unix(); sec != s.lastCheck {
		s.lastCheck = sec
		s.checkAchievements()
	}
}
