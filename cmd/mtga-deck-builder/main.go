package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/version"
)

var (
	// Configuration
	configPath  = flag.String("config", "", "Path to config.toml (default: ~/.mtga-deck-builder/config.toml)")
	catalogPath = flag.String("catalog", "", "Path to the card catalog JSON (overrides config)")

	// Log file configuration
	logFilePath = flag.String("log-file-path", "", "Path to MTGA Player.log file (auto-detected if not specified)")

	// Deck filter
	keywords = flag.String("keywords", "", "Comma-separated synergy keywords (e.g. burn,haste)")
	colors   = flag.String("colors", "", "Comma-separated colors (W,U,B,R,G,C or names)")
	format   = flag.String("format", "", "Format filter (Any, Standard, Historic, Alchemy, Explorer)")

	// Output
	outPath     = flag.String("out", "", "Write the deck list to this file or directory")
	arenaExport = flag.Bool("arena", false, "Export in MTGA import format instead of plain text")
	copyArena   = flag.Bool("copy", false, "Copy the Arena export to the clipboard")
	chartsDir   = flag.String("charts-dir", "", "Render mana curve and type charts into this directory")
	openCharts  = flag.Bool("open-charts", false, "Open rendered charts in the browser")
	showMeta    = flag.Bool("meta", false, "Show top meta decks for the format")
	watchLog    = flag.Bool("watch", false, "Rebuild whenever Player.log changes")
	useSnapshot = flag.Bool("use-snapshot", false, "Build from the latest stored collection snapshot")
	showVersion = flag.Bool("version", false, "Print version and exit")

	// Application mode
	debugMode      = flag.Bool("debug-mode", false, "Enable verbose debug logging")
	debugModeShort = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *debugModeShort {
		*debugMode = true
	}

	if *showVersion {
		fmt.Printf("mtga-deck-builder %s\n", version.GetVersion())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flag.Arg(0) {
	case "migrate":
		err = runMigrationCommand(cfg, flag.Args()[1:])
	case "snapshots":
		err = runSnapshotsCommand(ctx, cfg, flag.Args()[1:])
	case "", "build":
		err = runBuild(ctx, cfg)
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config) {
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *logFilePath != "" {
		cfg.Log.FilePath = *logFilePath
	}
	if *debugMode {
		cfg.App.DebugMode = true
		cfg.App.LogLevel = "debug"
	}
}

// filterSpec builds the deck filter from the command line.
func filterSpec(cfg *config.Config) (deckbuilder.FilterSpec, error) {
	spec := deckbuilder.FilterSpec{
		Keywords: splitList(*keywords),
		Format:   *format,
	}
	if spec.Format == "" {
		spec.Format = cfg.Build.DefaultFormat
	}

	for _, name := range splitList(*colors) {
		color, ok := cards.ParseColor(name)
		if !ok {
			return spec, fmt.Errorf("unknown color %q", name)
		}
		spec.Colors = append(spec.Colors, color)
	}

	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("%w (try -keywords %s)", err, strings.Join(deckbuilder.DefaultKeywords, ","))
	}
	return spec, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "MTGA Deck Builder")
	fmt.Fprintln(out, "=================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: mtga-deck-builder [options] [command]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  build       - Build a deck from your collection (default)")
	fmt.Fprintln(out, "  migrate     - Manage the snapshot database schema (up/down/status)")
	fmt.Fprintln(out, "  snapshots   - List or prune stored collection snapshots")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  mtga-deck-builder -keywords burn,haste -colors R -format Standard")
	fmt.Fprintln(out, "  mtga-deck-builder -keywords ramp -colors G -arena -copy")
	fmt.Fprintln(out, "  mtga-deck-builder -keywords lifegain -watch")
	fmt.Fprintln(out, "  mtga-deck-builder snapshots list")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}
