// Package cmd implements the vimshot command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/vimshot/internal/config"
	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/pubsub"
	"github.com/zjrosen/vimshot/internal/snapshot"
	"github.com/zjrosen/vimshot/internal/tracing"
	"github.com/zjrosen/vimshot/internal/watcher"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "vimshot [file]",
	Short:   "Render code as it looks inside a modal editor",
	Long: `Renders a code snippet as syntax-highlighted HTML with a vim-style
cursor or visual selection overlaid, plus a -- MODE -- status bar.
Reads from a file argument or stdin.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRender,
}

// SetVersion sets the version string shown by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/vimshot/config.yaml)")
	rootCmd.Flags().StringP("language", "l", "",
		"language id for syntax highlighting (default: from file extension)")
	rootCmd.Flags().StringP("mode", "m", "normal",
		"editor mode: normal, insert or visual")
	rootCmd.Flags().Int("cursor", 0,
		"cursor offset in characters (normal/insert mode)")
	rootCmd.Flags().String("selection", "",
		"selection range start:end in characters (visual mode)")
	rootCmd.Flags().StringP("output", "o", "",
		"write HTML to file instead of stdout")
	rootCmd.Flags().Bool("preview", false,
		"render an ANSI terminal preview instead of HTML")
	rootCmd.Flags().BoolP("watch", "w", false,
		"re-render whenever the input file changes (requires a file argument)")
	rootCmd.Flags().Bool("debug", false,
		"enable debug logging")

	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("language", defaults.Language)
	viper.SetDefault("status_bar", defaults.StatusBar)
	viper.SetDefault("structural", defaults.Structural)
	viper.SetDefault("watch_debounce", defaults.WatchDebounce)
	viper.SetDefault("log_path", defaults.LogPath)
	viper.SetDefault("theme.cursor", defaults.Theme.Cursor)
	viper.SetDefault("theme.insert_cursor", defaults.Theme.InsertCursor)
	viper.SetDefault("theme.selection", defaults.Theme.Selection)
	viper.SetDefault("theme.selection_tail", defaults.Theme.SelectionTail)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .vimshot/config.yaml (current directory)
		// 2. ~/.config/vimshot/config.yaml (user config)
		if _, err := os.Stat(".vimshot/config.yaml"); err == nil {
			viper.SetConfigFile(".vimshot/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "vimshot"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("vimshot")
	viper.AutomaticEnv()

	// A missing config file is fine; defaults cover everything.
	_ = viper.ReadInConfig()

	_ = viper.Unmarshal(&cfg)
}

func runRender(cmd *cobra.Command, args []string) error {
	if cfg.Debug || os.Getenv("VIMSHOT_DEBUG") != "" {
		cleanup, err := log.Init(cfg.LogPath)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer cleanup()
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	req, inputPath, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}

	renderer := snapshot.New(snapshot.Config{
		Theme:          cfg.Theme,
		RecursiveTypes: cfg.RecursiveTypeSet(),
		Structural:     cfg.Structural,
		StatusBar:      cfg.StatusBar,
		Tracer:         provider.Tracer(),
	})

	preview, _ := cmd.Flags().GetBool("preview")
	outPath, _ := cmd.Flags().GetString("output")
	watch, _ := cmd.Flags().GetBool("watch")

	render := func() error {
		out, err := renderOnce(renderer, req, preview)
		if err != nil {
			return err
		}
		return writeOutput(out, outPath)
	}

	if err := render(); err != nil {
		return err
	}

	if watch {
		if inputPath == "" {
			return fmt.Errorf("--watch requires a file argument")
		}
		return watchLoop(inputPath, &req, render)
	}
	return nil
}

func renderOnce(renderer *snapshot.Renderer, req snapshot.Request, preview bool) (string, error) {
	ctx := context.Background()
	if preview {
		return renderer.Preview(ctx, req)
	}
	return renderer.Render(ctx, req)
}

// buildRequest assembles the snapshot request from flags, the file argument
// or stdin, and config defaults.
func buildRequest(cmd *cobra.Command, args []string) (snapshot.Request, string, error) {
	var req snapshot.Request
	var inputPath string

	if len(args) == 1 {
		inputPath = args[0]
		data, err := os.ReadFile(inputPath) //nolint:gosec // G304: user-supplied input path
		if err != nil {
			return req, "", fmt.Errorf("reading %s: %w", inputPath, err)
		}
		req.Text = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return req, "", fmt.Errorf("reading stdin: %w", err)
		}
		req.Text = string(data)
	}

	req.Language = cfg.Language
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		req.Language = lang
	}
	if req.Language == "" && inputPath != "" {
		req.Language = languageFromExtension(inputPath)
	}

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := snapshot.ParseMode(modeStr)
	if err != nil {
		return req, "", err
	}
	req.Mode = mode

	cursor, _ := cmd.Flags().GetInt("cursor")
	req.SelectionStart = cursor
	req.SelectionEnd = cursor

	if sel, _ := cmd.Flags().GetString("selection"); sel != "" {
		start, end, err := parseSelection(sel)
		if err != nil {
			return req, "", err
		}
		req.SelectionStart = start
		req.SelectionEnd = end
	}

	return req, inputPath, nil
}

// parseSelection parses a "start:end" offset pair.
func parseSelection(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid selection %q, expected start:end", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection start %q", parts[0])
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection end %q", parts[1])
	}
	return start, end, nil
}

func languageFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".css":
		return "css"
	case ".js", ".mjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".py":
		return "python"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	case ".html", ".htm":
		return "html"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".md":
		return "markdown"
	case ".sh":
		return "bash"
	default:
		return ""
	}
}

func writeOutput(out, path string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, out)
		return err
	}
	return os.WriteFile(path, []byte(out+"\n"), 0644) //nolint:gosec // rendered output is not sensitive
}

// watchLoop re-reads and re-renders the input file on every debounced
// change event until interrupted.
func watchLoop(inputPath string, req *snapshot.Request, render func() error) error {
	wcfg := watcher.DefaultConfig(inputPath)
	if cfg.WatchDebounce > 0 {
		wcfg.DebounceDur = cfg.WatchDebounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Start(ctx)
	if err != nil {
		return err
	}

	log.Info(log.CatWatcher, "watching for changes", "path", inputPath)
	for ev := range events {
		if ev.Type == pubsub.RemovedEvent {
			// Keep the last rendered output; the file may come back.
			continue
		}
		data, err := os.ReadFile(inputPath) //nolint:gosec // G304: user-supplied input path
		if err != nil {
			log.ErrorErr(log.CatWatcher, "re-reading input", err, "path", inputPath)
			continue
		}
		req.Text = string(data)
		if err := render(); err != nil {
			log.ErrorErr(log.CatWatcher, "re-render failed", err, "path", inputPath)
		}
	}
	return nil
}
