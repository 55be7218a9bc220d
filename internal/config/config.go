package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"prgrip/internal/domain"
	"prgrip/internal/eventbus"
	"prgrip/internal/log"
)

const (
	defaultLimit    = 50
	defaultCacheTTL = 2 * time.Minute
	currentVersion  = 1
)

// Config represents the application configuration
type Config struct {
	Version    int        `toml:"version"`
	Repo       string     `toml:"repo"`  // owner/name; empty means the current directory's repo
	State      string     `toml:"state"` // open, closed, merged, all
	Limit      int        `toml:"limit"`
	CacheTTL   Duration   `toml:"cache_ttl"`
	File       string     `toml:"file,omitempty"` // pull request fixture file; replaces the gh CLI
	UISettings UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowLabels    bool   `toml:"show_labels"`
	DetailsOpen   bool   `toml:"details_open"`
	MarkdownStyle string `toml:"markdown_style"` // glamour style name: dark, light, notty, auto
}

// Duration is a time.Duration that reads and writes as a string like "90s"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// StateFilter returns the configured state as a domain value
func (c *Config) StateFilter() domain.PRState {
	return domain.ParseState(c.State)
}

// Query builds the initial pull request query from the configuration
func (c *Config) Query() domain.Query {
	return domain.Query{
		Repo:  c.Repo,
		State: c.StateFilter(),
		Limit: c.Limit,
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Path() string
	Load() (*Config, error)
	Save(cfg *Config) error
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
	saveMu   sync.Mutex
}

// DefaultPath returns $XDG_CONFIG_HOME/prgrip/config.toml or its platform equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "prgrip", "config.toml")
}

// NewConfigService creates a config service reading and writing path.
// An empty path means DefaultPath.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service that saves whenever a
// ConfigChangedEvent is published. Only the fields carried by the event are
// written; everything else keeps the value found on disk, so one-off
// command line overrides never end up in the file.
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	if bus != nil {
		bus.Subscribe(eventbus.EventConfigChanged, func(e eventbus.DomainEvent) {
			event, ok := e.(eventbus.ConfigChangedEvent)
			if !ok {
				return
			}
			if err := cs.apply(event); err != nil {
				log.ErrorErr(log.CatConfig, "failed to save config", err, "path", cs.filePath)
				bus.Publish(eventbus.ErrorEvent{Message: "Failed to save config: " + err.Error(), Err: err})
				return
			}
			log.Info(log.CatConfig, "config saved", "path", cs.filePath, "state", event.State)
		})
	}
	return cs
}

// apply merges a change into the file on disk
func (cs *configService) apply(event eventbus.ConfigChangedEvent) error {
	cs.saveMu.Lock()
	defer cs.saveMu.Unlock()

	cfg, err := cs.Load()
	if err != nil {
		return err
	}
	cfg.State = string(event.State)
	if event.Repo != "" {
		cfg.Repo = event.Repo
	}
	return cs.Save(cfg)
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the configuration file. A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	data, err := os.ReadFile(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cs.filePath, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration file, creating its directory if needed
func (cs *configService) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(cs.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cs.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = currentVersion
	}
	c.State = string(domain.ParseState(c.State))
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.CacheTTL.Duration < 0 {
		c.CacheTTL.Duration = 0
	}
	if c.UISettings.MarkdownStyle == "" {
		c.UISettings.MarkdownStyle = "dark"
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  currentVersion,
		State:    string(domain.StateOpen),
		Limit:    defaultLimit,
		CacheTTL: Duration{defaultCacheTTL},
		UISettings: UISettings{
			ShowLabels:    true,
			DetailsOpen:   true,
			MarkdownStyle: "dark",
		},
	}
}
