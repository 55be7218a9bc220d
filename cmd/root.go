// Package cmd holds prgrip's command line interface.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"prgrip/internal/config"
	"prgrip/internal/domain"
	"prgrip/internal/eventbus"
	"prgrip/internal/lifecycle"
	"prgrip/internal/log"
	"prgrip/internal/source"
	"prgrip/internal/ui"
)

func init() {
	// Query the terminal background before bubbletea owns stdin, otherwise
	// the OSC 11 reply can leak into the input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"

	cfgFile  string
	repoFlag string
	state    string
	limit    int
	file     string
	debug    bool
	noCache  bool
	dir      string
)

var rootCmd = &cobra.Command{
	Use:   "prgrip [flags]",
	Short: "Browse pull requests in the terminal",
	Long: `prgrip lists the pull requests of a GitHub repository and shows the
selected one in a details panel. It reads pull requests through the gh CLI,
or from a TOML file given with --file.`,
	Version:      version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/prgrip/config.toml)")
	rootCmd.Flags().StringVarP(&repoFlag, "repo", "R", "", "repository as owner/name (default: the repo in --dir)")
	rootCmd.Flags().StringVarP(&state, "state", "s", "", "pull request state: open, closed, merged or all")
	rootCmd.Flags().IntVarP(&limit, "limit", "L", 0, "maximum number of pull requests to list")
	rootCmd.Flags().StringVarP(&file, "file", "f", "", "read pull requests from a TOML file instead of gh")
	rootCmd.Flags().StringVarP(&dir, "dir", "d", "", "directory gh runs in (default: current directory)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "write a debug log to prgrip.log")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache results between refreshes")
}

func runApp(cmd *cobra.Command, _ []string) error {
	if debug || log.DebugEnabled() {
		closeLog, err := log.Init("prgrip.log", "prgrip")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer closeLog()
		log.SetMinLevel(log.LevelDebug)
	}
	log.Info(log.CatApp, "starting", "version", version)

	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.NewConfigService(configPath).Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	workDir := dir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}
	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	// Everything below lives as long as appScope
	appScope := lifecycle.New("app")
	defer appScope.Dispose()

	bus := eventbus.New()
	defer bus.Close()

	// Persist state changes made in the UI
	configSvc := config.NewConfigServiceWithBus(configPath, bus)
	log.Info(log.CatConfig, "config loaded", "path", configSvc.Path(), "repo", cfg.Repo, "state", cfg.State)

	// --file is not persisted with the rest of the config
	pullsFile := cfg.File
	if cmd.Flags().Changed("file") {
		pullsFile = file
	}

	var src source.Source
	if pullsFile != "" {
		src = source.NewFileSource(pullsFile)
		if err := source.Watch(pullsFile, bus, appScope); err != nil {
			log.ErrorErr(log.CatSource, "failed to watch pull request file", err, "path", pullsFile)
		}
	} else {
		gh := source.NewGHSource(workDir)
		if !gh.Available() {
			return fmt.Errorf("gh CLI not found in PATH; install it or pass --file")
		}
		src = gh
	}
	if !noCache {
		src = source.NewCachedSource(src, cfg.CacheTTL.Duration)
	}

	loader := source.NewLoader(bus, src)
	defer loader.Close()

	model := ui.NewModel(ui.Options{
		Bus:         bus,
		Config:      cfg,
		Source:      src,
		Scope:       appScope,
		ReadyMarker: os.Getenv("PRGRIP_E2E_TEST") == "1",
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Bus handlers must not block on p.Send; a single forwarder drains
	// the channel into the program.
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Warn(log.CatBus, "event channel full, dropping event", "type", e.Type())
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventPullRequestsLoaded,
		eventbus.EventLoadFailed,
		eventbus.EventError,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		_ = appScope.Register(unsubscribe)
	}
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-appScope.Done():
				return
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info(log.CatApp, "terminated")
			p.Quit()
		case <-appScope.Done():
		}
	}()

	_, err = p.Run()
	model.Close()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	log.Info(log.CatApp, "exited normally")
	return nil
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("repo") {
		cfg.Repo = repoFlag
	}
	if flags.Changed("state") {
		cfg.State = string(domain.ParseState(state))
	}
	if flags.Changed("limit") && limit > 0 {
		cfg.Limit = limit
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
