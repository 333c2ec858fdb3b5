// Package logger provides the process log for the cultivation server and
// clients. Game log lines shown to the player live in the session; this is
// for operators.
package logger

import (
	"io"
	"log"
	"os"

	"github.com/appengine-ltd/wendao/internal/game"
)

// Logger provides leveled logging over the standard library logger.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a logger writing info and warnings to stdout and errors
// to stderr.
func NewLogger() *Logger {
	return New(os.Stdout, os.Stderr)
}

// New creates a logger over the given writers.
func New(out, errOut io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(out, "[WENDAO-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(out, "[WENDAO-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(errOut, "[WENDAO-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard)
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Event logs a game event with the actor that caused it.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details)
}

// Presenter mirrors a session's scenes, log lines and cues into the process
// log. It serves as both game.Presenter and game.CueSink.
type Presenter struct {
	log   *Logger
	actor string
}

// NewPresenter returns a game.Presenter that records under actor, usually
// the save slot.
func NewPresenter(l *Logger, actor string) *Presenter {
	return &Presenter{log: l, actor: actor}
}

func (p *Presenter) PresentScene(sc game.Scene) {
	p.log.Event("SCENE", p.actor, sc.Title)
}

func (p *Presenter) PresentLog(line game.LogLine) {
	p.log.Event("LOG:"+string(line.Tone), p.actor, line.Text)
}

func (p *Presenter) Cue(c game.Cue) {
	p.log.Event("CUE", p.actor, string(c))
}
