// MatchCaller — spoken timer announcements for the match clock.
//
// Usage:
//
//	matchcaller [-verbose] [-quiet] [-config FILE] [-health-addr ADDR]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matchcaller/matchcaller/internal/clock"
	"github.com/matchcaller/matchcaller/internal/config"
	"github.com/matchcaller/matchcaller/internal/display"
	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/health"
	"github.com/matchcaller/matchcaller/internal/logger"
	"github.com/matchcaller/matchcaller/internal/playback"
	"github.com/matchcaller/matchcaller/internal/schedule"
	"github.com/matchcaller/matchcaller/internal/tts"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".matchcaller/matchcaller.log", "file to write logs to (use \"stderr\" to log to console)")
	configPath := flag.String("config", "matchcaller.json", "path to the persisted destination configuration")
	dest := flag.String("dest", defaultDest(), "destination to announce on")
	healthAddr := flag.String("health-addr", ":8081", "health endpoint listen address (empty to disable)")
	diskCache := flag.Bool("disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	cacheDir := flag.String("cache-dir", ".matchcaller-cache", "directory for persistent TTS audio cache")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so third-party
	// libs don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	store := config.NewStore(*configPath, log)
	clk := clock.New(log)

	ttsClient := tts.NewClient(log,
		tts.WithCacheDir(*cacheDir),
		tts.WithDiskWrite(*diskCache),
	)

	transport, err := playback.NewLocalTransport(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: audio device unavailable: %v\n", err)
		os.Exit(1)
	}

	seq := playback.NewSequencer(transport, ttsClient, clk.Running, log)
	defer seq.StopAll()

	scheduler := schedule.NewScheduler(log)
	driver := schedule.NewDriver(clk, store, scheduler, seq, log)
	driver.Start(ctx)
	defer driver.Stop()

	if *healthAddr != "" {
		hs := health.NewServer(*healthAddr, clk, seq, log)
		hs.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				log.Warn("%v", err)
			}
		}()
	}

	app := &cliApp{
		store: store,
		clock: clk,
		seq:   seq,
		drv:   driver,
		tts:   ttsClient,
		dest:  *dest,
		log:   log,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.Hint("  Announcing on %q. Type 'help' for commands, 'quit' to exit.", *dest))
	fmt.Println()

	app.run(ctx)
	cancel()
}

func defaultDest() string {
	if d := os.Getenv("MATCHCALLER_DEST"); d != "" {
		return d
	}
	return "local"
}

type cliApp struct {
	store *config.Store
	clock *clock.Virtual
	seq   *playback.Sequencer
	drv   *schedule.Driver
	tts   *tts.Client
	dest  string
	log   *logger.Logger
}

func (a *cliApp) run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(display.Prompt())
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !a.dispatch(ctx, line) {
			return
		}
	}
}

// dispatch handles one console line. Returns false on quit.
func (a *cliApp) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help":
		a.showHelp()
	case "start":
		a.start(ctx, args)
	case "stop":
		a.stop()
	case "status":
		a.status()
	case "say":
		a.say(ctx, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
	case "add":
		a.add(args)
	case "remove":
		a.remove(args)
	case "add-message":
		a.addMessage(args)
	case "messages":
		a.messages(args)
	case "drop-message":
		a.dropMessage(args)
	case "timers":
		a.timers(args)
	case "tts":
		a.ttsSettings(args)
	case "window":
		a.window(args)
	case "volume":
		a.volume(args)
	case "export":
		a.export(args)
	case "import":
		a.importConfig(args)
	case "quit", "exit":
		fmt.Println(display.Line("Good luck out there."))
		return false
	default:
		fmt.Println(display.Errorf("unknown command %q — try 'help'", cmd))
	}
	return true
}

func (a *cliApp) showHelp() {
	fmt.Println(display.Header("Commands"))
	for _, h := range [][2]string{
		{"start [M:SS] [mode]", "start the match clock, optionally mid-game"},
		{"stop", "stop the match clock"},
		{"status", "clock, connection and cache state"},
		{"say <text>", "speak a line right now"},
		{"add <name> <M:SS> <category> <message...>", "add or replace a timer event"},
		{"remove <name>", "remove a timer event"},
		{"add-message <name> <message...>", "add a message variant to an event"},
		{"messages <name>", "list an event's message variants"},
		{"drop-message <name> <idx>", "remove one message variant"},
		{"timers [category]", "list configured events"},
		{"tts key=value ...", "voice settings: language, accent, speed"},
		{"window <seconds>", "set the announcement window (0-60)"},
		{"volume <0..1>", "set playback volume"},
		{"export <file>", "write this destination's config to a file"},
		{"import <file> [replace] [drop-existing]", "load config from a file"},
		{"quit", "exit"},
	} {
		fmt.Printf("  %s\n      %s\n", display.Line("%s", h[0]), display.Hint("%s", h[1]))
	}
}

func (a *cliApp) start(ctx context.Context, args []string) {
	offset := "0:00"
	mode := clock.ModeStandard
	if len(args) > 0 {
		offset = args[0]
	}
	if len(args) > 1 {
		mode = strings.ToLower(args[1])
	}

	if err := a.clock.Start(offset, mode); err != nil {
		fmt.Println(display.Errorf("start: %v", err))
		return
	}
	if _, err := a.seq.EnsureConnected(ctx, a.dest); err != nil {
		fmt.Println(display.Errorf("connecting to %s: %v", a.dest, err))
		a.clock.Stop()
		return
	}

	fmt.Println(display.Line("Clock started at %s (%s mode).", display.GameTime(a.clock.Now()), mode))
	// Evaluate immediately so a mid-game start announces anything already
	// inside the window instead of waiting a tick.
	a.drv.Tick(ctx)
}

func (a *cliApp) stop() {
	a.clock.Stop()
	fmt.Println(display.Line("Clock stopped."))
}

func (a *cliApp) status() {
	fmt.Println(display.Header("Status"))
	if a.clock.Running() {
		fmt.Println(display.Line("  clock: running, %s (%s mode)", display.GameTime(a.clock.Now()), a.clock.Mode()))
		fmt.Println(display.Line("  announced this session: %d", a.clock.AnnouncedCount()))
	} else {
		fmt.Println(display.Line("  clock: stopped"))
	}
	fmt.Println(display.Line("  window: ±%ds", a.store.WarningWindow(a.dest)))

	settings := a.store.Settings(a.dest)
	voice, _ := domain.ValidVoicePair(settings.TTS.Language, settings.TTS.Accent)
	fmt.Println(display.Line("  voice: %s, speed %.1f, volume %.1f", voice, settings.TTS.Speed, settings.Volume))

	dests := a.seq.Destinations()
	if len(dests) == 0 {
		fmt.Println(display.Line("  connections: none"))
	} else {
		fmt.Println(display.Line("  connections: %s", strings.Join(dests, ", ")))
	}

	hits, misses := a.tts.Cache().Stats()
	fmt.Println(display.Hint("  tts cache: %d entries, %d hits, %d misses", a.tts.Cache().Len(), hits, misses))
}

func (a *cliApp) say(ctx context.Context, text string) {
	if text == "" {
		fmt.Println(display.Errorf("usage: say <text>"))
		return
	}
	fmt.Println(display.Announce(a.dest, text))
	settings := a.store.Settings(a.dest)
	go func() {
		if err := a.seq.Announce(ctx, a.dest, text, settings); err != nil {
			a.log.Error("say: %v", err)
		}
	}()
}

// activeMode scopes catalog edits to the running game mode, falling back to
// the standard catalog while the clock is stopped.
func (a *cliApp) activeMode() string {
	if a.clock.Running() {
		return a.clock.Mode()
	}
	return clock.ModeStandard
}

func (a *cliApp) add(args []string) {
	if len(args) < 4 {
		fmt.Println(display.Errorf("usage: add <name> <M:SS> <category> <message...>"))
		return
	}
	name := args[0]
	trigger, err := clock.ParseOffset(args[1])
	if err != nil {
		fmt.Println(display.Errorf("bad time %q: use M:SS", args[1]))
		return
	}
	category := domain.NormalizeCategory(args[2])
	message := strings.Join(args[3:], " ")

	err = a.store.UpsertTimer(a.dest, a.activeMode(), name, domain.TimerEvent{
		TriggerSecond: trigger,
		Messages:      []string{message},
		Category:      category,
	})
	if err != nil {
		fmt.Println(display.Errorf("add: %v", err))
		return
	}
	fmt.Println(display.Line("Added %q at %s (%s).", name, display.GameTime(trigger), category))
}

func (a *cliApp) remove(args []string) {
	if len(args) != 1 {
		fmt.Println(display.Errorf("usage: remove <name>"))
		return
	}
	if a.store.RemoveTimer(a.dest, a.activeMode(), args[0]) {
		fmt.Println(display.Line("Removed %q.", args[0]))
	} else {
		fmt.Println(display.Errorf("no event named %q", args[0]))
	}
}

func (a *cliApp) addMessage(args []string) {
	if len(args) < 2 {
		fmt.Println(display.Errorf("usage: add-message <name> <message...>"))
		return
	}
	name := args[0]
	mode := a.activeMode()
	ev, ok := a.store.Timers(a.dest, mode, "")[name]
	if !ok {
		fmt.Println(display.Errorf("no event named %q — use 'add' to create it first", name))
		return
	}
	message := strings.Join(args[1:], " ")
	if err := a.store.AddMessage(a.dest, mode, name, ev.TriggerSecond, message, ev.Category); err != nil {
		fmt.Println(display.Errorf("add-message: %v", err))
		return
	}
	fmt.Println(display.Line("Added variant to %q.", name))
}

func (a *cliApp) messages(args []string) {
	if len(args) != 1 {
		fmt.Println(display.Errorf("usage: messages <name>"))
		return
	}
	timers := a.store.Timers(a.dest, a.activeMode(), "")
	ev, ok := timers[args[0]]
	if !ok {
		fmt.Println(display.Errorf("no event named %q", args[0]))
		return
	}
	fmt.Println(display.Header(args[0]))
	for i, msg := range ev.Variants() {
		fmt.Println(display.Line("  [%d] %s", i, msg))
	}
}

func (a *cliApp) dropMessage(args []string) {
	if len(args) != 2 {
		fmt.Println(display.Errorf("usage: drop-message <name> <idx>"))
		return
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println(display.Errorf("bad index %q", args[1]))
		return
	}
	removed, err := a.store.RemoveMessage(a.dest, a.activeMode(), args[0], idx)
	if err != nil {
		fmt.Println(display.Errorf("drop-message: %v", err))
		return
	}
	fmt.Println(display.Line("Dropped %q from %q.", removed, args[0]))
}

func (a *cliApp) timers(args []string) {
	var category domain.Category
	if len(args) > 0 {
		category = domain.NormalizeCategory(args[0])
	}

	timers := a.store.Timers(a.dest, a.activeMode(), category)
	if len(timers) == 0 {
		fmt.Println(display.Hint("no events configured"))
		return
	}

	names := make([]string, 0, len(timers))
	for name := range timers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := timers[names[i]].TriggerSecond, timers[names[j]].TriggerSecond
		if ti != tj {
			return ti < tj
		}
		return names[i] < names[j]
	})

	fmt.Println(display.Header(fmt.Sprintf("Events (%s mode)", a.activeMode())))
	for _, name := range names {
		ev := timers[name]
		fmt.Println(display.Line("  %s  %-22s %-10s %s",
			display.GameTime(ev.TriggerSecond), name, ev.Category, ev.Variants()[0]))
		for _, extra := range ev.Variants()[1:] {
			fmt.Println(display.Hint("           %-22s %-10s %s", "", "", extra))
		}
	}
}

func (a *cliApp) ttsSettings(args []string) {
	if len(args) == 0 {
		settings := a.store.Settings(a.dest).TTS
		voice, _ := domain.ValidVoicePair(settings.Language, settings.Accent)
		fmt.Println(display.Line("voice: %s (%s/%s), speed %.1f", voice, settings.Language, settings.Accent, settings.Speed))
		fmt.Println(display.Hint("usage: tts language=en accent=co.uk speed=1.2"))
		return
	}

	current := a.store.Settings(a.dest).TTS
	language, accent := current.Language, current.Accent
	voiceChanged := false

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Println(display.Errorf("expected key=value, got %q", arg))
			return
		}
		switch strings.ToLower(key) {
		case "language", "lang":
			language, voiceChanged = value, true
		case "accent":
			accent, voiceChanged = value, true
		case "speed":
			speed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				fmt.Println(display.Errorf("bad speed %q", value))
				return
			}
			if err := a.store.SetSpeed(a.dest, speed); err != nil {
				fmt.Println(display.Errorf("speed: %v", err))
				return
			}
			fmt.Println(display.Line("Speed set to %.1f.", speed))
		default:
			fmt.Println(display.Errorf("unknown setting %q", key))
			return
		}
	}

	if voiceChanged {
		name, err := a.store.SetVoice(a.dest, language, accent)
		if err != nil {
			fmt.Println(display.Errorf("voice: %v", err))
			return
		}
		fmt.Println(display.Line("Voice set to %s.", name))
	}
}

func (a *cliApp) window(args []string) {
	if len(args) != 1 {
		fmt.Println(display.Errorf("usage: window <seconds>"))
		return
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println(display.Errorf("bad value %q", args[0]))
		return
	}
	applied := a.store.SetWarningWindow(a.dest, seconds)
	fmt.Println(display.Line("Announcement window set to ±%ds.", applied))
}

func (a *cliApp) volume(args []string) {
	if len(args) != 1 {
		fmt.Println(display.Errorf("usage: volume <0..1>"))
		return
	}
	vol, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println(display.Errorf("bad value %q", args[0]))
		return
	}
	applied := a.store.SetVolume(a.dest, vol)
	fmt.Println(display.Line("Volume set to %.2f.", applied))
}

func (a *cliApp) export(args []string) {
	if len(args) != 1 {
		fmt.Println(display.Errorf("usage: export <file>"))
		return
	}
	data, err := a.store.Export(a.dest)
	if err != nil {
		fmt.Println(display.Errorf("export: %v", err))
		return
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		fmt.Println(display.Errorf("export: %v", err))
		return
	}
	fmt.Println(display.Line("Exported to %s.", args[0]))
}

func (a *cliApp) importConfig(args []string) {
	if len(args) < 1 {
		fmt.Println(display.Errorf("usage: import <file> [replace] [drop-existing]"))
		return
	}
	merge, keepTimers := true, true
	for _, opt := range args[1:] {
		switch strings.ToLower(opt) {
		case "replace":
			merge = false
		case "drop-existing":
			keepTimers = false
		default:
			fmt.Println(display.Errorf("unknown option %q", opt))
			return
		}
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(display.Errorf("import: %v", err))
		return
	}

	summary, err := a.store.Import(a.dest, data, merge, keepTimers)
	if err != nil {
		fmt.Println(display.Errorf("import: %v", err))
		return
	}
	fmt.Println(display.Line("Imported: %d timers in catalog, %d dropped by sanitization.", summary.Timers, summary.Dropped))
}
