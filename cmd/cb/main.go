package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mune-tada/corkboard/pkg/config"
	"github.com/mune-tada/corkboard/pkg/export"
	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/persist"
	"github.com/mune-tada/corkboard/pkg/ui"
	"github.com/mune-tada/corkboard/pkg/version"
	"github.com/mune-tada/corkboard/pkg/watcher"
	"github.com/mune-tada/corkboard/pkg/workspace"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	dirFlag := flag.String("dir", "", "Workspace directory (default: current directory)")
	favFlag := flag.Int("favorite", 0, "Open the workspace assigned to favorite slot N (1-9)")
	setFavFlag := flag.Int("set-favorite", 0, "Assign the opened workspace to favorite slot N (1-9) and exit")
	boardFlag := flag.String("board", "", "Open a specific board by name")
	hideLinks := flag.Bool("hide-links", false, "Start with the connector layer hidden")
	noWatch := flag.Bool("no-watch", false, "Disable live reload of the board file")
	exportMD := flag.String("export-markdown", "", "Write the active board as Markdown to PATH and exit")
	exportSVG := flag.String("export-svg", "", "Write an SVG snapshot of the active board to PATH and exit")
	exportPNG := flag.String("export-png", "", "Write a PNG snapshot of the active board to PATH and exit")
	exportDB := flag.String("export-sqlite", "", "Write all boards to a SQLite database at PATH and exit")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: cb [options]")
		fmt.Println("\nA corkboard for your notes: drag cards, draw connections, switch boards.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("cb %s\n", version.Version)
		os.Exit(0)
	}

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		appCfg = config.DefaultConfig()
	}

	dir := *dirFlag
	if named := appCfg.FindWorkspace(dir); dir != "" && named != nil {
		dir = named.ResolvedPath()
	}
	if *favFlag > 0 {
		w := appCfg.FavoriteWorkspace(*favFlag)
		if w == nil {
			fmt.Fprintf(os.Stderr, "No workspace assigned to favorite %d\n", *favFlag)
			os.Exit(1)
		}
		dir = w.ResolvedPath()
	}

	ws, err := workspace.New(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening workspace: %v\n", err)
		os.Exit(1)
	}

	if *setFavFlag > 0 {
		name := filepath.Base(ws.Root())
		appCfg.RememberWorkspace(name, ws.Root())
		appCfg.SetFavorite(*setFavFlag, name)
		if err := config.Save(appCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Favorite %d -> %s\n", *setFavFlag, name)
		os.Exit(0)
	}

	boardPath, err := persist.ResolvePath(ws.Root())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving board file: %v\n", err)
		os.Exit(1)
	}

	warn := func(text string) { fmt.Fprintln(os.Stderr, "warning: "+text) }
	root, err := persist.LoadRoot(boardPath, warn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", boardPath, err)
		os.Exit(1)
	}

	if *boardFlag != "" {
		if _, ok := root.Boards[*boardFlag]; !ok {
			fmt.Fprintf(os.Stderr, "No board named %q (have: %v)\n", *boardFlag, root.BoardNames())
			os.Exit(1)
		}
		root.Active = *boardFlag
	}

	if *exportMD != "" || *exportSVG != "" || *exportPNG != "" || *exportDB != "" {
		if err := runExports(root, ws, *exportMD, *exportSVG, *exportPNG, *exportDB); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal. Use --export-markdown/--export-svg/--export-png/--export-sqlite for headless output.")
		os.Exit(1)
	}

	appCfg.RememberWorkspace(filepath.Base(ws.Root()), ws.Root())
	_ = config.Save(appCfg)

	if err := runTUI(appCfg, ws, boardPath, root, *hideLinks, *noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error running corkboard: %v\n", err)
		os.Exit(1)
	}
}

// runExports handles the headless flags. The board flag has already been
// applied to root, so the snapshot and Markdown exporters see the right
// active board.
func runExports(root *model.Root, ws *workspace.Workspace, mdPath, svgPath, pngPath, dbPath string) error {
	b := root.ActiveBoard()
	if mdPath != "" {
		previews := collectPreviews(ws, b)
		opts := export.MarkdownOptions{BoardName: root.Active, Previews: previews}
		if err := export.SaveMarkdown(b, opts, mdPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", mdPath)
	}
	if svgPath != "" {
		if err := export.SaveSnapshot(b, export.SnapshotOptions{Path: svgPath, Format: "svg"}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", svgPath)
	}
	if pngPath != "" {
		if err := export.SaveSnapshot(b, export.SnapshotOptions{Path: pngPath, Format: "png"}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", pngPath)
	}
	if dbPath != "" {
		if err := export.NewSQLiteExporter(root).Export(dbPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dbPath)
	}
	return nil
}

func collectPreviews(ws *workspace.Workspace, b *model.Board) map[string]string {
	previews := make(map[string]string, len(b.Cards))
	for _, c := range b.Cards {
		if text, err := ws.Preview(c.Path); err == nil {
			previews[c.Path] = text
		}
	}
	return previews
}

func runTUI(appCfg config.Config, ws *workspace.Workspace, boardPath string, root *model.Root, hideLinks, noWatch bool) error {
	// The manager's callbacks fire only after PushLoad, which runs once the
	// program is started, so capturing p through a pointer is safe.
	var p *tea.Program

	saveDelay := persist.DefaultSaveDelay
	if appCfg.Tunables.SaveDelayMS > 0 {
		saveDelay = time.Duration(appCfg.Tunables.SaveDelayMS) * time.Millisecond
	}

	mgr := persist.NewManager(boardPath, root,
		persist.WithFiles(ws),
		persist.WithSaveDelay(saveDelay),
		persist.WithNotify(ui.Forward(func(msg tea.Msg) { p.Send(msg) })),
		persist.WithWarn(func(text string) { p.Send(ui.WarnMsg{Text: text}) }),
		persist.WithExporter(func(snapshot *model.Root) {
			path, err := exportToDataDir(snapshot, ws)
			if err != nil {
				p.Send(ui.WarnMsg{Text: "export failed: " + err.Error()})
				return
			}
			p.Send(ui.WarnMsg{Text: "exported " + path})
		}),
	)

	m := ui.New(ui.Options{
		Emitter:       mgr,
		Files:         ws,
		DragConfig:    appCfg.Tunables.DragConfig(),
		Theme:         appCfg.UI.Theme,
		Compact:       appCfg.UI.Headless,
		HideLinkLayer: hideLinks || appCfg.UI.HideLinkLayer,
		CanUndo:       mgr.CanUndo,
		CanRedo:       mgr.CanRedo,
	})

	p = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if !noWatch {
		w, err := watcher.NewWatcher(boardPath,
			watcher.WithOnChange(func() {
				if err := mgr.ExternalReload(); err != nil {
					p.Send(ui.WarnMsg{Text: "reload failed: " + err.Error()})
					return
				}
				p.Send(ui.FileWatchMsg{})
			}),
			watcher.WithOnError(func(err error) {
				p.Send(ui.WatchErrorMsg{Err: err})
			}),
		)
		if err == nil {
			if err := w.Start(); err == nil {
				defer w.Stop()
			}
		}
	}

	go func() {
		// Give the program a beat to enter its receive loop before the
		// initial snapshot lands.
		time.Sleep(50 * time.Millisecond)
		mgr.PushLoad()
	}()

	_, runErr := p.Run()

	if err := mgr.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// exportToDataDir writes a timestamped Markdown export of the active board
// into the XDG data directory.
func exportToDataDir(root *model.Root, ws *workspace.Workspace) (string, error) {
	dir := config.DataDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b := root.ActiveBoard()
	name := fmt.Sprintf("%s-%s.md", sanitizeFileName(root.Active), time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	opts := export.MarkdownOptions{BoardName: root.Active, Previews: collectPreviews(ws, b)}
	if err := export.SaveMarkdown(b, opts, path); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "board"
	}
	return string(out)
}
