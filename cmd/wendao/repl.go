package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/appengine-ltd/wendao/internal/game"
	"github.com/appengine-ltd/wendao/internal/parser"
)

type dispatcher interface {
	Dispatch(ctx context.Context, line string) game.CommandResult
}

// transcript buffers presenter output until the prompt loop flushes it, so
// nothing is written while the session lock is held.
type transcript struct {
	mu    sync.Mutex
	lines []string
}

func (t *transcript) PresentScene(sc game.Scene) {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n%s", sc.Title, sc.Body)
	for i, ch := range sc.Choices {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, ch.Label)
	}
	t.push(b.String())
}

func (t *transcript) PresentLog(line game.LogLine) {
	t.push("- " + line.Text)
}

func (t *transcript) push(s string) {
	t.mu.Lock()
	t.lines = append(t.lines, s)
	t.mu.Unlock()
}

func (t *transcript) flush(w io.Writer) {
	t.mu.Lock()
	lines := t.lines
	t.lines = nil
	t.mu.Unlock()
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// runREPL reads one command per line until EOF, quit or cancellation.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, session *game.Session, d dispatcher) error {
	tr := &transcript{}
	session.AddPresenter(tr)

	p := parser.New()
	var (
		pending    []string
		lastEntity string
	)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		tr.flush(out)
		fmt.Fprint(out, "> ")

		var raw string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			raw = l
		}

		if len(pending) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 1 && n <= len(pending) {
				raw = pending[n-1]
			}
			pending = nil
		}

		intent := p.Parse(parser.ContextFor(session.Status(), lastEntity), raw)
		if intent.Clarify != nil {
			fmt.Fprintln(out, intent.Clarify.Prompt)
			for i, opt := range intent.Clarify.Options {
				cmd := parser.IntentToCommandString(opt)
				pending = append(pending, cmd)
				fmt.Fprintf(out, "  %d. %s\n", i+1, cmd)
			}
			continue
		}
		lastEntity = parser.LastEntity(intent, lastEntity)
		if intent.Verb == "quit" {
			return nil
		}

		res := d.Dispatch(ctx, parser.IntentToCommandString(intent))
		switch {
		case res.Err != nil:
			tr.flush(out)
			fmt.Fprintln(out, "! "+res.Err.Error())
		case !res.Handled:
			fmt.Fprintln(out, "Nothing happens.")
		case res.Message != "":
			tr.flush(out)
			fmt.Fprintln(out, res.Message)
		}
	}
}
