package game

// unlockAchievements flags every achievement whose test now passes and
// returns the newly unlocked ones.
func (c *Character) unlockAchievements() []Achievement {
	var unlocked []Achievement
	for _, a := range achievements {
		if c.Achievements[a.ID] || !a.Test(c.Tally) {
			continue
		}
		c.Achievements[a.ID] = true
		unlocked = append(unlocked, a)
	}
	return unlocked
}

func (s *Session) checkAchievements() {
	for _, a := range s.char.unlockAchievements() {
		s.logf(ToneGood, "Achievement unlocked: %s.", a.Name)
		s.cue(CueAchievement)
	}
}
