package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appengine-ltd/wendao/internal/engine"
	"github.com/appengine-ltd/wendao/internal/game"
	"github.com/appengine-ltd/wendao/internal/network"
	"github.com/appengine-ltd/wendao/internal/platform/config"
	"github.com/appengine-ltd/wendao/internal/platform/logger"
	"github.com/appengine-ltd/wendao/internal/storage"
	"github.com/appengine-ltd/wendao/internal/ui"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		showVersion bool
		headless    bool
		serveAddr   string
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&headless, "headless", false, "read commands from stdin instead of the terminal UI")
	flag.StringVar(&serveAddr, "serve", "", "serve the websocket feed on this address (overrides WENDAO_FEED_ADDR)")
	flag.Parse()

	if showVersion {
		fmt.Printf("Wendao %s (%s) %s\n", version, commit, date)
		return
	}

	if err := run(headless, serveAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(headless bool, serveAddr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.FeedAddr = serveAddr
	}

	// The terminal UI owns the screen, so the process log goes to a file.
	var log *logger.Logger
	if headless {
		log = logger.New(os.Stderr, os.Stderr)
	} else {
		f, err := os.OpenFile(cfg.DBPath+".log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log = logger.New(f, f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	mirror := logger.NewPresenter(log, cfg.Slot)
	eng, err := engine.Resume(ctx, store, log, engine.Options{
		Slot:             cfg.Slot,
		TickInterval:     cfg.TickInterval,
		AutosaveInterval: cfg.AutosaveInterval,
		Seed:             cfg.Seed,
	}, game.WithPresenter(mirror), game.WithCueSink(mirror))
	if err != nil {
		return err
	}
	session := eng.Session()
	if !cfg.Cues {
		session.SetCues(false)
	}

	loopDone := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(loopDone)
	}()

	if cfg.FeedAddr != "" {
		srv := startFeed(ctx, cfg.FeedAddr, session, eng, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if headless {
		err = runREPL(ctx, os.Stdin, os.Stdout, session, eng)
	} else {
		app := ui.NewApp(ui.AppConfig{
			Version:   version,
			Commit:    commit,
			BuildDate: date,
			Slot:      cfg.Slot,
		}, session, eng)
		err = app.Run(ctx)
	}

	// An interrupt ends the client with an error; that is a normal exit.
	interrupted := ctx.Err() != nil
	stop()
	<-loopDone
	if interrupted {
		return nil
	}
	return err
}

func startFeed(ctx context.Context, addr string, session *game.Session, eng *engine.Engine, log *logger.Logger) *http.Server {
	hub := network.NewHub(session, eng, log)
	session.AddPresenter(hub)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	hub.RegisterRoutes(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Feed listening on " + addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Feed server failed: " + err.Error())
		}
	}()
	return srv
}
