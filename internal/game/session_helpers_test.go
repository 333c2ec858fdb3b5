package game

import (
	"sync"
	"testing"
	"time"
)

var testEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func newTestSession(t *testing.T, seed uint32, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewSession(NewCharacter(seed, clock.Now()), opts...), clock
}

type recordingPresenter struct {
	mu     sync.Mutex
	scenes []Scene
	logs   []LogLine
}

func (p *recordingPresenter) PresentScene(sc Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scenes = append(p.scenes, sc)
}

func (p *recordingPresenter) PresentLog(line LogLine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, line)
}

type recordingCues struct {
	cues []Cue
}

func (r *recordingCues) Cue(c Cue) {
	r.cues = append(r.cues, c)
}

func lastLog(t *testing.T, s *Session) LogLine {
	t.Helper()
	logs := s.Logs()
	if len(logs) == 0 {
		t.Fatalf("expected at least one log line")
	}
	return logs[len(logs)-1]
}

// enterPendingNode starts a run and parks it on floor with stage pending.
func enterPendingNode(t *testing.T, s *Session, floor int, stage Stage) {
	t.Helper()
	if err := s.StartRun(); err != nil {
		t.Fatalf("start run: %v", err)
	}
	s.char.Run.Floor = floor
	s.char.Run.FloorCount = floor + 5
	s.char.Run.Stage = stage
	s.scene = sceneForStage(s.char.Run)
}
