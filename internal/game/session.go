package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

type Tone string

const (
	ToneGood   Tone = "good"
	ToneBad    Tone = "bad"
	ToneNormal Tone = "normal"
)

type LogLine struct {
	Time time.Time `json:"time"`
	Tone Tone      `json:"tone"`
	Text string    `json:"text"`
}

// Presenter receives every scene change and log line. Implementations must
// not block and must not call back into the Session.
type Presenter interface {
	PresentScene(Scene)
	PresentLog(LogLine)
}

// Cue names a feedback sound. Sinks are optional.
type Cue string

const (
	CueMeditate     Cue = "meditate"
	CueUpgrade      Cue = "upgrade"
	CueLearn        Cue = "learn"
	CueBreakthrough Cue = "breakthrough"
	CueFailure      Cue = "failure"
	CueRunStart     Cue = "run_start"
	CueRunEnd       Cue = "run_end"
	CueVictory      Cue = "victory"
	CueNode         Cue = "node"
	CueHit          Cue = "hit"
	CueCrit         Cue = "crit"
	CueRest         Cue = "rest"
	CueTrade        Cue = "trade"
	CueStance       Cue = "stance"
	CueCraft        Cue = "craft"
	CueAchievement  Cue = "achievement"
	CueReturn       Cue = "return"
)

type CueSink interface {
	Cue(Cue)
}

const maxLogLines = 120

// Session is the single owner of a Character and its Run. Every exported
// method takes the session lock, so a ticker and any number of input sources
// can share one Session.
type Session struct {
	mu sync.Mutex

	char       *Character
	scene      Scene
	logs       []LogLine
	now        func() time.Time
	presenters []Presenter
	cueSink    CueSink
	cuesOn     bool

	lastFrame time.Time
	lastCheck int64
}

type Option func(*Session)

// WithClock replaces time.Now for every clock read the session makes.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPresenter adds a presenter. Presenters are called in the order added.
func WithPresenter(p Presenter) Option {
	return func(s *Session) {
		if p != nil {
			s.presenters = append(s.presenters, p)
		}
	}
}

func WithCueSink(sink CueSink) Option {
	return func(s *Session) {
		s.cueSink = sink
	}
}

// NewSession wraps c. A nil c gets a fresh character from a random seed.
func NewSession(c *Character, opts ...Option) *Session {
	s := newSession(opts)
	if c == nil {
		c = NewCharacter(NewSeed(), s.now())
	}
	s.attach(c)
	return s
}

func newSession(opts []Option) *Session {
	s := &Session{now: time.Now, cuesOn: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) attach(c *Character) {
	c.normalize()
	c.Recompute()
	s.char = c
	s.lastFrame = time.Time{}
	s.scene = sceneForStage(c.Run)
}

// AddPresenter attaches a presenter after construction.
func (s *Session) AddPresenter(p Presenter) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presenters = append(s.presenters, p)
	p.PresentScene(s.scene)
}

func (s *Session) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneScene(s.scene)
}

// Logs returns the retained log lines, oldest first.
func (s *Session) Logs() []LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogLine(nil), s.logs...)
}

// Status is a copy of everything a client needs to draw the character.
type Status struct {
	Character        Character
	Scene            Scene
	AuraRate         float64
	DaoRate          float64
	Chance           float64
	AdvanceAura      int
	AdvanceMaterials int
	ArrayCost        int
	CuesEnabled      bool
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.char
	aura, materials := AdvancementCost(c.Realm)
	return Status{
		Character:        c.clone(),
		Scene:            cloneScene(s.scene),
		AuraRate:         AuraRate(c),
		DaoRate:          DaoRate(c),
		Chance:           AdvancementChance(c),
		AdvanceAura:      aura,
		AdvanceMaterials: materials,
		ArrayCost:        ArrayUpgradeCost(c),
		CuesEnabled:      s.cuesOn,
	}
}

func (s *Session) SetCues(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cuesOn = on
	if on {
		s.logf(ToneNormal, "Sound cues on.")
	} else {
		s.logf(ToneNormal, "Sound cues off.")
	}
}

func (s *Session) clockSalt() uint32 {
	return uint32(s.now().UnixMilli())
}

func (s *Session) setScene(sc Scene) {
	s.scene = sc
}

func (s *Session) publish() {
	for _, p := range s.presenters {
		p.PresentScene(cloneScene(s.scene))
	}
}

// transition commits a handler's scene, or reports its error. Shortfalls are
// logged; invalid transitions are returned quietly.
func (s *Session) transition(sc Scene, err error) error {
	if err != nil {
		if errors.Is(err, ErrInsufficientResource) || errors.Is(err, ErrUnknownEntry) {
			s.fail(err)
		}
		return err
	}
	s.setScene(sc)
	s.publish()
	return nil
}

func (s *Session) logf(tone Tone, format string, args ...any) {
	line := LogLine{Time: s.now(), Tone: tone, Text: fmt.Sprintf(format, args...)}
	s.logs = append(s.logs, line)
	if over := len(s.logs) - maxLogLines; over > 0 {
		s.logs = append(s.logs[:0], s.logs[over:]...)
	}
	for _, p := range s.presenters {
		p.PresentLog(line)
	}
}

func (s *Session) fail(err error) {
	msg := err.Error()
	var e *Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	s.logf(ToneBad, "%s.", capitalize(msg))
	s.cue(CueFailure)
}

func (s *Session) cue(c Cue) {
	if s.cueSink == nil || !s.cuesOn {
		return
	}
	s.cueSink.Cue(c)
}

func cloneScene(sc Scene) Scene {
	sc.Choices = append([]Choice(nil), sc.Choices...)
	return sc
}

func (c *Character) clone() Character {
	out := *c
	out.Skills = append([]SkillID(nil), c.Skills...)
	out.Achievements = make(map[AchievementID]bool, len(c.Achievements))
	for k, v := range c.Achievements {
		out.Achievements[k] = v
	}
	return out
}

func capitalize(msg string) string {
	msg = strings.TrimSpace(msg)
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
