package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/cluster-tools/impactviz/pkg/config"
	"github.com/cluster-tools/impactviz/pkg/graph"
	"github.com/cluster-tools/impactviz/pkg/logging"
	"github.com/cluster-tools/impactviz/pkg/model"
	"github.com/cluster-tools/impactviz/pkg/plot"
	"github.com/cluster-tools/impactviz/pkg/prompt"
	"github.com/cluster-tools/impactviz/pkg/records"
	"github.com/cluster-tools/impactviz/pkg/render"
	"github.com/cluster-tools/impactviz/pkg/report"
	"github.com/cluster-tools/impactviz/pkg/watcher"
	"github.com/cluster-tools/impactviz/pkg/web"
)

func main() {
	f := pflag.NewFlagSet("impactviz", pflag.ExitOnError)
	f.String("records", "container_info.json", "Path to the records JSON file")
	f.String("unit", "", "Render the graph for this unit and exit")
	f.Bool("all", false, "Render the merged graph across all units and exit")
	f.Bool("init", false, "Generate a records template from the cluster via kubectl")
	f.Bool("web", false, "Serve the interactive viewer instead of writing an image")
	f.Int("port", 8080, "Port for the web server (only used with --web)")
	f.Bool("watch", false, "Reload the records file on change (only used with --web)")
	f.Bool("open", true, "Open the browser in web mode")
	f.String("output", "impact-graph.png", "Static image output path")
	f.Int64("seed", 42, "Layout seed; identical graphs and seeds give identical layouts")
	f.String("verbosity", "info", "Log level: debug, info, warn, error")
	f.Bool("json-logs", false, "Emit JSON-formatted logs")
	_ = f.Parse(os.Args[1:])

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.JSONLogs {
		logging.SetJSONOutput(cfg.LogLevel())
	} else {
		logging.SetLevel(cfg.LogLevel())
	}

	if cfg.Init {
		runInit(cfg)
		return
	}

	rs, err := records.Load(cfg.Records)
	if err != nil {
		logging.Fatal("failed to load records", "path", cfg.Records, "error", err)
	}
	logging.Info("records loaded", "path", cfg.Records, "units", len(rs))

	palette := render.DefaultPalette()

	switch {
	case cfg.Web:
		runWeb(cfg, rs, palette)
	case cfg.All:
		renderMerged(cfg, rs, palette)
	case cfg.Unit != "":
		renderUnit(cfg, rs, palette, cfg.Unit)
	default:
		runInteractive(cfg, rs, palette)
	}
}

// runInit queries the cluster and writes a records skeleton for the
// operator to fill in.
func runInit(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rs, err := records.ClusterTemplate(ctx, records.NewExecutor())
	if err != nil {
		logging.Fatal("failed to generate template", "error", err)
	}
	if err := records.WriteTemplate(cfg.Records, rs); err != nil {
		logging.Fatal("failed to write template", "error", err)
	}

	fmt.Printf("Template saved to %s. Please fill in the required information.\n", cfg.Records)
}

// renderUnit prints the detail report for one unit and writes its graph
// image. An unknown unit prints a not-found message; it is not fatal.
func renderUnit(cfg *config.Config, rs model.RecordSet, palette render.Palette, unitID string) {
	blocks, err := report.Details(unitID, rs)
	if err != nil {
		if model.IsNotFound(err) {
			fmt.Printf("Unit %q not found. Available units: %v\n", unitID, rs.UnitIDs())
			return
		}
		logging.Fatal("failed to build details", "unit", unitID, "error", err)
	}

	report.Fprint(os.Stdout, unitID, blocks)

	g, err := graph.BuildUnitGraph(unitID, rs)
	if err != nil {
		logging.Fatal("failed to build graph", "unit", unitID, "error", err)
	}
	writeImage(cfg, g, palette, fmt.Sprintf("Dependency graph: %s", unitID))
}

// renderMerged writes the image for the graph spanning all units.
func renderMerged(cfg *config.Config, rs model.RecordSet, palette render.Palette) {
	g := graph.BuildMergedGraph(rs)
	writeImage(cfg, g, palette, "Dependency graph: all units")
}

func writeImage(cfg *config.Config, g *model.Graph, palette render.Palette, title string) {
	positions := render.Layout(g, cfg.LayoutSeed())
	if err := plot.Write(g, positions, palette, title, cfg.Output); err != nil {
		logging.Fatal("failed to render image", "path", cfg.Output, "error", err)
	}
	fmt.Printf("Graph written to %s (%d nodes, %d edges)\n", cfg.Output, g.NodeCount(), g.EdgeCount())
}

// runInteractive prompts for unit selections until EOF.
func runInteractive(cfg *config.Config, rs model.RecordSet, palette render.Palette) {
	units := rs.UnitIDs()
	prompt.FprintMenu(os.Stdout, units)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.Error("reading input", "error", err)
			}
			fmt.Println()
			return
		}

		req := prompt.Parse(line, units)
		switch {
		case req.Merged:
			renderMerged(cfg, rs, palette)
		case req.Unit == "":
			prompt.FprintMenu(os.Stdout, units)
		default:
			renderUnit(cfg, rs, palette, req.Unit)
		}
	}
}

// runWeb serves the interactive viewer, optionally reloading the records
// file on change.
func runWeb(cfg *config.Config, rs model.RecordSet, palette render.Palette) {
	server := web.NewServer(palette, cfg.LayoutSeed())
	server.SetRecords(rs, cfg.Records)

	if cfg.Watch {
		w, err := watcher.New(cfg.Records)
		if err != nil {
			logging.Fatal("failed to create watcher", "error", err)
		}
		if err := w.Start(context.Background()); err != nil {
			logging.Fatal("failed to start watcher", "error", err)
		}
		go func() {
			for range w.Events() {
				reloaded, err := records.Load(cfg.Records)
				if err != nil {
					logging.Warn("reload failed, keeping previous records", "error", err)
					continue
				}
				server.SetRecords(reloaded, cfg.Records)
				logging.Info("records reloaded", "units", len(reloaded))
			}
		}()
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	fmt.Printf("Serving interactive graph viewer on %s\n", url)
	if cfg.Open {
		openBrowser(url)
	}

	if err := server.Start(cfg.Port); err != nil {
		logging.Fatal("web server failed", "error", err)
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on platform", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
