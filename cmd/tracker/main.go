package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/askwhyharsh/geohunt/internal/config"
	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/position"
	"github.com/askwhyharsh/geohunt/internal/prefs"
	"github.com/askwhyharsh/geohunt/internal/remote"
	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/tracker"
	"github.com/askwhyharsh/geohunt/pkg/logger"
)

func main() {
	cfg, err := config.LoadTracker()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.Env, cfg.LogLevel)
	defer appLogger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := remote.New(cfg.ServerURL, cfg.RequestTimeout)
	if err := client.Health(ctx); err != nil {
		appLogger.Warn("Coordinate server not reachable yet", "url", cfg.ServerURL, "error", err)
	}

	store := prefs.NewFileStore(cfg.PrefsPath)
	saved, err := store.Load()
	if err != nil {
		appLogger.Warn("Failed to load preferences, using defaults", "error", err)
		saved = prefs.Defaults()
	}

	out := &printer{w: os.Stdout}

	if cfg.Viewer {
		runViewer(ctx, cfg, client, saved, out, appLogger)
		return
	}

	if cfg.Role != "" {
		r, err := role.Parse(cfg.Role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "TRACKER_ROLE: %v\n", err)
			os.Exit(1)
		}
		saved.Role = &r
	}

	s := &session{
		cfg:       cfg,
		remote:    client,
		prefs:     store,
		saved:     saved,
		selection: role.NewSelection(saved.Role),
		out:       out,
		logger:    appLogger,
	}
	s.run(ctx, os.Stdin)
}

// printer serializes output from engine callbacks and the command loop.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, a...)
}

func (p *printer) Printf(layout string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, layout, a...)
}

type session struct {
	cfg       *config.TrackerConfig
	remote    *remote.Client
	prefs     prefs.Store
	saved     prefs.Preferences
	selection *role.Selection
	out       *printer
	logger    logger.Logger

	engine *tracker.Engine
	feed   *position.Feed
	closer io.Closer
}

func (s *session) run(ctx context.Context, in io.Reader) {
	if r, ok := s.selection.Current(); ok {
		s.startEngine(ctx, r)
	} else {
		s.out.Println("select a role: hawk, bluebird, falcon or starling (select <role>)")
	}
	defer s.stopEngine()

	lines := readLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := s.handle(ctx, line); quit {
				return
			}
		}
	}
}

func (s *session) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "select":
		if len(args) != 1 {
			s.out.Println("usage: select <role>")
			return false
		}
		r, err := role.Parse(args[0])
		if err != nil {
			s.out.Println(err)
			return false
		}
		if err := s.selection.Select(r); err != nil {
			s.out.Println(err)
			return false
		}
		s.startEngine(ctx, r)

	case "back":
		prev, err := s.selection.Back()
		if err != nil {
			s.out.Println(err)
			return false
		}
		s.stopEngine()
		s.saved.Role = nil
		if err := s.prefs.Save(s.saved); err != nil {
			s.logger.Warn("Failed to save preferences", "error", err)
		}
		s.out.Printf("left %s; select a role\n", prev)

	case "fix":
		if s.engine == nil {
			s.out.Println(errNoRole)
			return false
		}
		if s.feed == nil {
			s.out.Printf("fixes come from %s\n", s.cfg.FixFile)
			return false
		}
		c, err := position.ParseFix(strings.Join(args, " "))
		if err != nil {
			s.out.Println(err)
			return false
		}
		s.feed.Push(c)

	case "difficulty":
		if s.engine == nil || len(args) != 1 {
			s.out.Println("usage: difficulty <extreme|hard|medium|easy> (after select)")
			return false
		}
		d, err := role.ParseDifficulty(args[0])
		if err != nil {
			s.out.Println(err)
			return false
		}
		if err := s.engine.SetDifficulty(d); err != nil {
			s.out.Println(err)
		}

	case "system":
		if s.engine == nil {
			s.out.Println(errNoRole)
			return false
		}
		sys := s.engine.Snapshot().System.Toggle()
		if len(args) == 1 {
			parsed, err := format.ParseSystem(args[0])
			if err != nil {
				s.out.Println(err)
				return false
			}
			sys = parsed
		}
		s.engine.SetCoordinateSystem(sys)

	case "status":
		if s.engine == nil {
			s.out.Println(errNoRole)
			return false
		}
		s.out.Println(renderSnapshot(s.engine.Snapshot()))

	default:
		s.out.Println("commands: select <role>, fix <lat> <lon>, difficulty <name>, system [decimal|dms], status, back, quit")
	}
	return false
}

const errNoRole = "no role selected"

func (s *session) startEngine(ctx context.Context, r role.Role) {
	source, feed, closer, err := openSource(s.cfg.FixFile, s.cfg.FixPollInterval)
	if err != nil {
		s.out.Println(err)
		s.abandon()
		return
	}
	s.feed, s.closer = feed, closer
	s.saved.Role = &r

	engine, err := tracker.New(tracker.Options{
		Role:           r,
		Difficulty:     s.saved.Difficulty,
		System:         s.saved.System,
		ReadOnly:       s.cfg.ReadOnly,
		PushInterval:   s.cfg.PushInterval,
		PollInterval:   s.cfg.PollInterval,
		RequestTimeout: s.cfg.RequestTimeout,
		HighlightTTL:   s.cfg.HighlightTTL,
		Prefs:          s.prefs,
		OnChange: func(snap tracker.Snapshot) {
			s.out.Println(renderSnapshot(snap))
		},
	}, s.remote, source, s.logger)
	if err != nil {
		s.out.Println(err)
		s.release()
		s.abandon()
		return
	}

	if err := s.prefs.Save(s.saved); err != nil {
		s.logger.Warn("Failed to save preferences", "error", err)
	}

	s.engine = engine
	engine.Start(ctx)
	s.out.Printf("playing %s against %s\n", r, engine.Opponent())
}

func (s *session) stopEngine() {
	if s.engine == nil {
		return
	}
	snap := s.engine.Snapshot()
	s.engine.Stop()
	s.saved.Difficulty = snap.Difficulty
	s.saved.System = snap.System
	s.engine = nil
	s.release()
}

// abandon undoes a selection whose engine never started so the user can
// pick again.
func (s *session) abandon() {
	if _, err := s.selection.Back(); err != nil {
		s.logger.Debug("Nothing to abandon", "error", err)
	}
	s.saved.Role = nil
}

func (s *session) release() {
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.logger.Debug("Failed to close fix file", "error", err)
		}
	}
	s.feed, s.closer = nil, nil
}

func runViewer(ctx context.Context, cfg *config.TrackerConfig, client *remote.Client, saved prefs.Preferences, out *printer, log logger.Logger) {
	viewer, err := tracker.NewViewer(tracker.ViewerOptions{
		System:         saved.System,
		PollInterval:   cfg.PollInterval,
		RequestTimeout: cfg.RequestTimeout,
		HighlightTTL:   cfg.HighlightTTL,
		OnChange: func(snap tracker.ViewerSnapshot) {
			out.Println(renderViewer(snap))
		},
	}, client, log)
	if err != nil {
		out.Println(err)
		return
	}
	viewer.Start(ctx)
	defer viewer.Stop()

	lines := readLines(ctx, os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch strings.TrimSpace(strings.ToLower(line)) {
			case "quit", "exit":
				return
			case "system":
				viewer.SetCoordinateSystem(viewer.Snapshot().System.Toggle())
			case "status":
				out.Println(renderViewer(viewer.Snapshot()))
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
