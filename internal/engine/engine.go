// Package engine drives a cultivation session in real time. It owns the
// tick loop, autosaves the slot and handles the commands that reach past
// the session into storage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/appengine-ltd/wendao/internal/game"
	"github.com/appengine-ltd/wendao/internal/platform/logger"
	"github.com/appengine-ltd/wendao/internal/storage"
)

// Store persists snapshots per slot. *storage.Store satisfies it.
type Store interface {
	Save(ctx context.Context, slot string, data []byte, version int, savedAt time.Time) error
	Load(ctx context.Context, slot string) ([]byte, error)
	Archive(ctx context.Context, slot string, data []byte, reason string, at time.Time) (string, error)
	Archived(ctx context.Context, slot string) ([]storage.ArchivedSnapshot, error)
	LoadArchived(ctx context.Context, id string) ([]byte, error)
}

// archiveListLimit caps how many archived saves the archives command prints.
const archiveListLimit = 10

// Options configure an Engine. Seed feeds fresh characters; 0 rolls a
// random one each time.
type Options struct {
	Slot             string
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	Seed             uint32
	Now              func() time.Time
}

type Engine struct {
	session *game.Session
	store   Store
	log     *logger.Logger
	opts    Options

	// saveMu orders snapshot writes from the loop and from commands.
	saveMu sync.Mutex
}

// New wraps an existing session.
func New(session *game.Session, store Store, log *logger.Logger, opts Options) *Engine {
	if opts.Slot == "" {
		opts.Slot = "default"
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{session: session, store: store, log: log, opts: opts}
}

// Resume loads the slot from store and builds a session around it. An empty
// slot starts a fresh character. A snapshot that cannot be restored is
// archived under reason "corrupt" and replaced by a fresh character.
func Resume(ctx context.Context, store Store, log *logger.Logger, opts Options, sessionOpts ...game.Option) (*Engine, error) {
	e := New(nil, store, log, opts)
	data, err := store.Load(ctx, e.opts.Slot)
	if err != nil {
		return nil, fmt.Errorf("resume slot %s: %w", e.opts.Slot, err)
	}

	sessionOpts = append([]game.Option{game.WithClock(e.opts.Now)}, sessionOpts...)
	if data == nil {
		e.session = game.NewSession(game.NewCharacter(e.seed(), e.opts.Now()), sessionOpts...)
		e.log.Info("Slot " + e.opts.Slot + " is empty; a new cultivator begins.")
		return e, nil
	}

	session, err := game.ResumeSession(data, e.seed(), sessionOpts...)
	e.session = session
	if err != nil {
		if !errors.Is(err, game.ErrCorruptSnapshot) {
			return nil, fmt.Errorf("resume slot %s: %w", e.opts.Slot, err)
		}
		e.log.Warn(fmt.Sprintf("Slot %s could not be restored: %v", e.opts.Slot, err))
		if id, aerr := store.Archive(ctx, e.opts.Slot, data, "corrupt", e.opts.Now()); aerr != nil {
			e.log.Error("Archiving the unreadable save failed: " + aerr.Error())
		} else {
			e.log.Info("Unreadable save archived as " + id)
		}
	}
	return e, nil
}

func (e *Engine) Session() *game.Session {
	return e.session
}

func (e *Engine) seed() uint32 {
	if e.opts.Seed != 0 {
		return e.opts.Seed
	}
	return game.NewSeed()
}

// Save writes the current character into the slot.
func (e *Engine) Save(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	data, err := e.session.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := e.store.Save(ctx, e.opts.Slot, data, game.SnapshotVersion, e.opts.Now()); err != nil {
		return err
	}
	return nil
}

// archive keeps the current character before something overwrites it.
func (e *Engine) archive(ctx context.Context, reason string) (string, error) {
	data, err := e.session.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	return e.store.Archive(ctx, e.opts.Slot, data, reason, e.opts.Now())
}

// Dispatch runs one command line. Storage commands are handled here and
// everything else goes to the session.
func (e *Engine) Dispatch(ctx context.Context, line string) game.CommandResult {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return game.CommandResult{}
	}
	verb := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch verb {
	case "save":
		if err := e.Save(ctx); err != nil {
			e.log.Error("Save failed: " + err.Error())
			return game.CommandResult{Handled: true, Message: "Save failed.", Err: err}
		}
		return game.CommandResult{Handled: true, Message: "Saved to slot " + e.opts.Slot + "."}
	case "load":
		return e.load(ctx)
	case "reset":
		return e.reset(ctx)
	case "export":
		return e.exportFile(arg)
	case "import":
		return e.importFile(ctx, arg)
	case "archives":
		return e.listArchives(ctx)
	case "restore":
		return e.restoreArchive(ctx, arg)
	}
	return e.session.ExecuteCommand(line)
}

func (e *Engine) load(ctx context.Context) game.CommandResult {
	data, err := e.store.Load(ctx, e.opts.Slot)
	if err != nil {
		return game.CommandResult{Handled: true, Message: "Load failed.", Err: err}
	}
	if data == nil {
		return game.CommandResult{Handled: true, Message: "Slot " + e.opts.Slot + " has no save yet."}
	}
	if err := e.session.Import(data); err != nil {
		return game.CommandResult{Handled: true, Message: "The saved fate could not be read.", Err: err}
	}
	return game.CommandResult{Handled: true, Message: "Loaded slot " + e.opts.Slot + "."}
}

func (e *Engine) reset(ctx context.Context) game.CommandResult {
	id, err := e.archive(ctx, "reset")
	if err != nil {
		e.log.Error("Archive before reset failed: " + err.Error())
		return game.CommandResult{Handled: true, Message: "Reset refused: the old save could not be archived.", Err: err}
	}
	e.session.Reset(e.seed())
	if err := e.Save(ctx); err != nil {
		e.log.Error("Save after reset failed: " + err.Error())
	}
	e.log.Event("RESET", e.opts.Slot, "archived as "+id)
	return game.CommandResult{Handled: true, Message: "A new fate begins. The old one was archived as " + id + "."}
}

func (e *Engine) exportFile(path string) game.CommandResult {
	if path == "" {
		return game.CommandResult{Handled: true, Message: "Usage: export <file>"}
	}
	data, err := e.session.Snapshot()
	if err != nil {
		return game.CommandResult{Handled: true, Message: "Export failed.", Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return game.CommandResult{Handled: true, Message: "Export failed.", Err: fmt.Errorf("write %s: %w", path, err)}
	}
	return game.CommandResult{Handled: true, Message: "Exported to " + path + "."}
}

func (e *Engine) importFile(ctx context.Context, path string) game.CommandResult {
	if path == "" {
		return game.CommandResult{Handled: true, Message: "Usage: import <file>"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return game.CommandResult{Handled: true, Message: "Import failed.", Err: fmt.Errorf("read %s: %w", path, err)}
	}
	if _, err := game.Restore(data); err != nil {
		return game.CommandResult{Handled: true, Message: "That file is not a valid save.", Err: err}
	}
	if _, err := e.archive(ctx, "import"); err != nil {
		return game.CommandResult{Handled: true, Message: "Import refused: the old save could not be archived.", Err: err}
	}
	if err := e.session.Import(data); err != nil {
		return game.CommandResult{Handled: true, Message: "Import failed.", Err: err}
	}
	if err := e.Save(ctx); err != nil {
		e.log.Error("Save after import failed: " + err.Error())
	}
	return game.CommandResult{Handled: true, Message: "Imported " + path + "."}
}

func (e *Engine) listArchives(ctx context.Context) game.CommandResult {
	list, err := e.store.Archived(ctx, e.opts.Slot)
	if err != nil {
		return game.CommandResult{Handled: true, Message: "The archive could not be read.", Err: err}
	}
	if len(list) == 0 {
		return game.CommandResult{Handled: true, Message: "Slot " + e.opts.Slot + " has no archived saves."}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Archived saves for slot %s:", e.opts.Slot)
	for i, a := range list {
		if i == archiveListLimit {
			fmt.Fprintf(&b, "\n  ... %d older", len(list)-i)
			break
		}
		fmt.Fprintf(&b, "\n  %s  %s  %s", a.ID, a.ArchivedAt.Format("2006-01-02 15:04"), a.Reason)
	}
	return game.CommandResult{Handled: true, Message: b.String()}
}

// restoreArchive swaps an archived save in. The current character is
// archived first so a restore can itself be undone.
func (e *Engine) restoreArchive(ctx context.Context, id string) game.CommandResult {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return game.CommandResult{Handled: true, Message: "Usage: restore <archive id>"}
	}
	data, err := e.store.LoadArchived(ctx, id)
	if errors.Is(err, os.ErrNotExist) {
		return game.CommandResult{Handled: true, Message: "No archived save " + id + ".", Err: err}
	}
	if err != nil {
		return game.CommandResult{Handled: true, Message: "Restore failed.", Err: err}
	}
	if _, err := game.Restore(data); err != nil {
		return game.CommandResult{Handled: true, Message: "That archived save cannot be read.", Err: err}
	}
	prev, err := e.archive(ctx, "restore")
	if err != nil {
		return game.CommandResult{Handled: true, Message: "Restore refused: the current save could not be archived.", Err: err}
	}
	if err := e.session.Import(data); err != nil {
		return game.CommandResult{Handled: true, Message: "Restore failed.", Err: err}
	}
	if err := e.Save(ctx); err != nil {
		e.log.Error("Save after restore failed: " + err.Error())
	}
	e.log.Event("RESTORE", e.opts.Slot, id+" restored, previous archived as "+prev)
	return game.CommandResult{Handled: true, Message: "Restored " + id + ". The previous fate was archived as " + prev + "."}
}
