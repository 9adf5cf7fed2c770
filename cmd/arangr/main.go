package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/arangr/arangr/internal/assistant"
	"github.com/arangr/arangr/internal/cache"
	"github.com/arangr/arangr/internal/config"
	"github.com/arangr/arangr/internal/preview"
	"github.com/arangr/arangr/internal/scheduler"
	"github.com/arangr/arangr/internal/tree"
	"github.com/arangr/arangr/internal/tui"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "preview":
			return runPreview(os.Args[2:])
		case "tree":
			return runTree(os.Args[2:])
		case "ask":
			return runAsk(os.Args[2:])
		case "history":
			return runHistory(os.Args[2:])
		case "config":
			return runConfigInit()
		case "version", "-v", "--version":
			fmt.Printf("arangr %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		case "help", "-h", "--help":
			printUsage()
			return nil
		}
	}

	// Default: run TUI
	return runTUI(os.Args[1:])
}

func printUsage() {
	fmt.Println(`Arangr - File Explorer

Usage:
  arangr [dir]           Start the TUI rooted at dir (default: cwd)
  arangr preview <path>  Extract and print a file preview
  arangr tree <path>     Print a directory tree
  arangr ask <path> "..."  Ask a question about a file
  arangr history <path>  Show past questions about a file
  arangr config          Initialize config file
  arangr version         Show version info
  arangr help            Show this help

Preview options:
  -meta                  Print metadata only

Tree options:
  -depth int             Levels to descend (default 2)
  -all                   Include hidden files

Examples:
  arangr                                  # Browse the current directory
  arangr preview report.xlsx              # Print a spreadsheet preview
  arangr tree ~/projects -depth 3         # Print three tree levels
  arangr ask notes.md "summarize this"    # Ask about a file`)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// limitsFromConfig maps configured caps onto extraction limits.
func limitsFromConfig(cfg *config.Config) preview.Limits {
	limits := preview.DefaultLimits()
	if cfg.Preview.MaxTextBytes > 0 {
		limits.MaxTextBytes = cfg.Preview.MaxTextBytes
	}
	if cfg.Preview.MaxPDFPages > 0 {
		limits.MaxPDFPages = cfg.Preview.MaxPDFPages
	}
	if cfg.Preview.MaxImageDim > 0 {
		limits.MaxImageDim = cfg.Preview.MaxImageDim
	}
	return limits
}

// newLogger writes structured logs to a file under the data directory so
// logging never interleaves with the TUI.
func newLogger(cfg *config.Config) *zap.Logger {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return zap.NewNop()
	}
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{filepath.Join(dataDir, "arangr.log")}
	logCfg.ErrorOutputPaths = logCfg.OutputPaths
	log, err := logCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runTUI(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	log := newLogger(cfg)
	defer log.Sync()

	registry := preview.NewRegistry(limitsFromConfig(cfg))
	previewCache := cache.New(cfg.Cache.Capacity)
	sched := scheduler.New(previewCache, registry.Extract, scheduler.Options{
		Workers: cfg.Preview.Workers,
		Timeout: time.Duration(cfg.Preview.TimeoutSeconds) * time.Second,
		Logger:  log,
	})
	defer sched.Close()

	loader := tree.NewLoader()
	loader.SetShowHidden(cfg.Tree.ShowHidden)
	rootNode, err := loader.Root(root)
	if err != nil {
		return fmt.Errorf("opening root directory: %w", err)
	}
	if !rootNode.IsDir {
		return fmt.Errorf("%s is not a directory", rootNode.Path)
	}

	// Invalidate cached previews when files change on disk.
	if cfg.Preview.Watch {
		watcher, err := scheduler.NewWatcher(previewCache, log)
		if err != nil {
			log.Warn("file watching unavailable", zap.Error(err))
		} else {
			if err := watcher.Watch(rootNode.Path); err != nil {
				log.Warn("watching root", zap.Error(err))
			}
			done := make(chan struct{})
			defer close(done)
			go watcher.Run(done)
		}
	}

	client := assistant.NewClient(assistant.ClientConfig{
		BaseURL:   cfg.Assistant.BaseURL,
		APIKey:    cfg.Assistant.APIKey,
		Model:     cfg.Assistant.Model,
		MaxTokens: cfg.Assistant.MaxTokens,
		Logger:    log,
	})

	// Conversation history is optional; the browser works without it.
	var history *assistant.History
	if historyPath, err := cfg.HistoryPath(); err == nil {
		if h, err := assistant.OpenHistory(historyPath); err == nil {
			history = h
			defer history.Close()
		} else {
			log.Warn("conversation history unavailable", zap.Error(err))
		}
	}

	model := tui.New(rootNode, tui.Options{
		Loader:       loader,
		Scheduler:    sched,
		Client:       client,
		History:      history,
		ContextChars: cfg.Assistant.ContextChars,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	metaOnly := fs.Bool("meta", false, "Print metadata only")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: arangr preview [-meta] <path>")
	}
	path := fs.Arg(0)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := preview.NewRegistry(limitsFromConfig(cfg))
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Preview.TimeoutSeconds)*time.Second)
	defer cancel()

	p, err := registry.Extract(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("Category: %s\n", p.Category)
	for _, k := range sortedMetaKeys(p.Metadata) {
		fmt.Printf("%s: %s\n", k, p.Metadata[k])
	}
	if *metaOnly {
		return nil
	}

	if content := p.ContentText(); content != "" {
		fmt.Println()
		fmt.Println(content)
	}
	if p.Truncated {
		fmt.Println("\n(preview truncated)")
	}
	return nil
}

func sortedMetaKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	depth := fs.Int("depth", 2, "Levels to descend")
	all := fs.Bool("all", false, "Include hidden files")
	fs.Parse(args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	loader := tree.NewLoader()
	loader.SetShowHidden(*all)

	node, err := loader.Root(root)
	if err != nil {
		return fmt.Errorf("opening root directory: %w", err)
	}
	if !node.IsDir {
		return fmt.Errorf("%s is not a directory", node.Path)
	}

	fmt.Println(node.Path)
	printTree(loader, node, 1, *depth)
	return nil
}

func printTree(loader *tree.Loader, n *tree.Node, level, maxDepth int) {
	if level > maxDepth {
		return
	}
	for _, child := range loader.Expand(n) {
		indent := strings.Repeat("  ", level)
		switch {
		case child.Err != nil:
			fmt.Printf("%s%s [%v]\n", indent, child.Name, child.Err)
		case child.IsDir:
			fmt.Printf("%s%s/\n", indent, child.Name)
			printTree(loader, child, level+1, maxDepth)
		default:
			fmt.Printf("%s%s\n", indent, child.Name)
		}
	}
}

func runAsk(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: arangr ask <path> [\"question\"]")
	}
	path := args[0]
	question := strings.Join(args[1:], " ")
	if question == "" {
		question = assistant.AnalysisQuestion(path)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := assistant.NewClient(assistant.ClientConfig{
		BaseURL:   cfg.Assistant.BaseURL,
		APIKey:    cfg.Assistant.APIKey,
		Model:     cfg.Assistant.Model,
		MaxTokens: cfg.Assistant.MaxTokens,
	})
	if !client.Configured() {
		return fmt.Errorf("assistant not configured: set ARANGR_API_KEY or assistant.api_key")
	}

	registry := preview.NewRegistry(limitsFromConfig(cfg))
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Preview.TimeoutSeconds)*time.Second)
	defer cancel()

	p, err := registry.Extract(ctx, path)
	if err != nil {
		return err
	}

	prompt := assistant.BuildPrompt(p, path, question, cfg.Assistant.ContextChars)
	answer, err := client.Ask(context.Background(), prompt)
	if err != nil {
		return err
	}

	fmt.Println(answer)

	if historyPath, hErr := cfg.HistoryPath(); hErr == nil {
		if h, hErr := assistant.OpenHistory(historyPath); hErr == nil {
			defer h.Close()
			if err := h.Append(context.Background(), path, question, answer); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording history: %v\n", err)
			}
		}
	}

	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Maximum exchanges to show")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: arangr history [-limit N] <path>")
	}
	path := fs.Arg(0)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return fmt.Errorf("locating history database: %w", err)
	}
	h, err := assistant.OpenHistory(historyPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer h.Close()

	exchanges, err := h.Recent(context.Background(), path, *limit)
	if err != nil {
		return err
	}
	if len(exchanges) == 0 {
		fmt.Println("No history for this file.")
		return nil
	}

	for _, e := range exchanges {
		fmt.Printf("[%s]\n", e.AskedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Q: %s\n", e.Question)
		fmt.Printf("A: %s\n\n", e.Answer)
	}
	return nil
}

func runConfigInit() error {
	cfg := config.Default()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	configPath, _ := config.ConfigPath()
	fmt.Printf("Config written to: %s\n", configPath)
	return nil
}
