// mazerunner explores a line maze, optimizes the recorded route and
// replays it, on the robot daemon or on a simulated maze drawing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-mazerunner/internal/config"
	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/export"
	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/robot"
	"github.com/teslashibe/go-mazerunner/pkg/runstore"
	"github.com/teslashibe/go-mazerunner/pkg/sim"
	"github.com/teslashibe/go-mazerunner/pkg/web"
)

type options struct {
	configPath  string
	simPath     string
	label       string
	listPorts   bool
	hold        bool
	replaySaved bool
	cfg         config.Config
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ Configuration error:", err)
		os.Exit(2)
	}

	if opts.listPorts {
		if err := listPorts(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "❌", err)
			os.Exit(1)
		}
		return
	}

	log.Init(opts.cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads the config file named by -config, then applies any
// flags that were set explicitly.
func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("mazerunner", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "JSON config file")
	fs.StringVar(&opts.simPath, "sim", "", "Run on a simulated maze drawing instead of the robot")
	fs.BoolVar(&opts.listPorts, "list-ports", false, "List serial ports and exit")
	fs.BoolVar(&opts.hold, "hold", false, "Keep the dashboard up after the run until interrupted")
	fs.StringVar(&opts.label, "maze", "", "Maze label for stored runs (default: the -sim file name)")
	fs.BoolVar(&opts.replaySaved, "replay-saved", false, "Replay the best stored path instead of exploring")
	store := fs.String("store", "", "Run book JSON file")
	robotURL := fs.String("robot-url", "", "Robot daemon URL (overrides MAZE_ROBOT_URL)")
	rule := fs.String("rule", "", "Wall-following rule: right, left")
	line := fs.String("line", "", "Line color: black, white")
	baseSpeed := fs.Int("base-speed", 0, "Tracking speed 0..400")
	dashboard := fs.Int("dashboard", 0, "Dashboard port, 0 disables")
	exportTo := fs.String("export", "", "Path export target: -, serial://PORT[?baud=N], tcp://HOST:PORT, file://PATH")
	noReplay := fs.Bool("no-replay", false, "Stop after exploring and optimizing")
	debug := fs.Bool("debug", false, "Enable debug logging and HTTP access logs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return opts, err
	}

	var ferr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "robot-url":
			cfg.RobotURL = *robotURL
		case "rule":
			ferr = errors.Join(ferr, cfg.Rule.UnmarshalText([]byte(*rule)))
		case "line":
			ferr = errors.Join(ferr, cfg.Line.UnmarshalText([]byte(*line)))
		case "base-speed":
			cfg.Steering.BaseSpeed = *baseSpeed
		case "dashboard":
			cfg.Dashboard.Port = *dashboard
		case "export":
			cfg.Export = *exportTo
		case "store":
			cfg.Store = *store
		case "no-replay":
			cfg.Replay = !*noReplay
		case "debug":
			if *debug {
				cfg.LogLevel = "debug"
				cfg.Dashboard.AccessLogs = true
			}
		}
	})
	if ferr != nil {
		return opts, ferr
	}
	if err := cfg.Validate(); err != nil {
		return opts, err
	}
	if opts.label == "" {
		opts.label = "default"
		if opts.simPath != "" {
			opts.label = strings.TrimSuffix(filepath.Base(opts.simPath), filepath.Ext(opts.simPath))
		}
	}
	if opts.replaySaved && cfg.Store == "" {
		return opts, errors.New("-replay-saved needs a run book (-store)")
	}
	opts.cfg = cfg
	return opts, nil
}

func listPorts(w io.Writer) error {
	ports, err := export.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(w, p)
	}
	return nil
}

// platform returns the simulator or the robot daemon client, and the hook
// that puts it back at the start before replay.
func platform(ctx context.Context, opts options) (robot.Platform, func(context.Context) error, error) {
	cfg := opts.cfg
	if opts.simPath != "" {
		m, err := sim.LoadFile(opts.simPath)
		if err != nil {
			return nil, nil, err
		}
		scfg := sim.DefaultConfig()
		scfg.Polarity = cfg.Line
		s := sim.New(m, scfg)
		log.Info("simulating maze", "file", opts.simPath, "nodes", m.Nodes(), "start", m.Start.String(), "goal", m.Goal.String())
		return s, func(context.Context) error {
			s.Reset()
			return nil
		}, nil
	}

	rc := robot.NewHTTPController(cfg.RobotURL)
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	status, err := rc.GetDaemonStatus(checkCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("robot daemon at %s: %w", cfg.RobotURL, err)
	}
	log.Info("robot connected", "url", cfg.RobotURL, "daemon", status)
	return rc, func(context.Context) error {
		log.Info("return the robot to the start before the countdown ends")
		return nil
	}, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg := opts.cfg

	p, beforeReplay, err := platform(ctx, opts)
	if err != nil {
		return err
	}

	sessOpts := []maze.Option{
		maze.WithReplay(cfg.Replay),
		maze.WithBeforeReplay(beforeReplay),
	}

	if cfg.Export != "" {
		w, err := export.Open(ctx, cfg.Export)
		if err != nil {
			return fmt.Errorf("open export %s: %w", cfg.Export, err)
		}
		defer w.Close()
		sessOpts = append(sessOpts, maze.WithExport(w))
	}

	var srv *web.Server
	dashDone := make(chan error, 1)
	dashCtx, stopDash := context.WithCancel(ctx)
	defer stopDash()
	if cfg.Dashboard.Port > 0 {
		srv = web.NewServer(web.Config{
			Addr:       fmt.Sprintf(":%d", cfg.Dashboard.Port),
			AccessLogs: cfg.Dashboard.AccessLogs,
		})
		go func() { dashDone <- srv.ListenAndServe(dashCtx) }()
		sessOpts = append(sessOpts, maze.WithObserver(srv))
		fmt.Fprintf(out, "🌐 Dashboard: http://localhost:%d\n", cfg.Dashboard.Port)
	} else {
		dashDone <- nil
	}

	var book *runstore.Book
	if cfg.Store != "" {
		if book, err = runstore.OpenFile(cfg.Store); err != nil {
			return err
		}
		defer book.Close()
		if srv != nil {
			srv.SetRuns(book)
		}
	}

	mcfg := cfg.Maze()
	sess := maze.NewSession(mcfg, p, sessOpts...)
	if srv != nil {
		srv.Track(sess)
	}

	var (
		res    maze.Result
		runErr error
	)
	if opts.replaySaved {
		best, err := book.Best(opts.label)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "🤖 Run %s: replaying %s from run %s\n", sess.ID(), best.Path, best.RunID)
		res, runErr = sess.ReplayPath(ctx, best.Path)
	} else {
		fmt.Fprintf(out, "🤖 Run %s: %s-hand rule, %s line\n", sess.ID(), cfg.Rule, cfg.Line)
		res, runErr = sess.Run(ctx)
	}
	printResult(out, res, runErr)

	if book != nil && !opts.replaySaved {
		if err := book.Add(runstore.FromResult(opts.label, mcfg, res, runErr)); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("store run: %w", err))
		}
	}

	if opts.hold && srv != nil && ctx.Err() == nil {
		fmt.Fprintln(out, "   Dashboard held open, Ctrl+C to exit")
		<-ctx.Done()
	}
	stopDash()
	if err := <-dashDone; err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("dashboard: %w", err))
	}
	return runErr
}

func printResult(w io.Writer, res maze.Result, err error) {
	fmt.Fprintf(w, "   History:   %s\n", orDash(pathmem.Path(res.History).String()))
	fmt.Fprintf(w, "   Path:      %s\n", orDash(res.Path.String()))
	if res.Replay != nil {
		outcome := "path used up"
		if res.Replay.Goal {
			outcome = "goal"
		}
		fmt.Fprintf(w, "   Replay:    %d junctions, %s\n", res.Replay.Junctions, outcome)
	}
	if err != nil {
		fmt.Fprintf(w, "❌ %v\n", err)
		return
	}
	fmt.Fprintf(w, "✅ Done in %s\n", res.Duration.Round(time.Millisecond))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
