// Package config loads the runner configuration from a YAML file, HS_
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefree/hearthstone-go/internal/game"
	"github.com/magefree/hearthstone-go/internal/game/cards"
	"github.com/magefree/hearthstone-go/internal/history"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HS_GAME_MAX_DESK.
const EnvPrefix = "HS"

// Config is the complete runner configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Engine  EngineConfig  `mapstructure:"engine"`
	History HistoryConfig `mapstructure:"history"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds table capacities and the initial state file.
type GameConfig struct {
	MaxDesk    int    `mapstructure:"max_desk"`
	MaxHand    int    `mapstructure:"max_hand"`
	MaxCrystal int    `mapstructure:"max_crystal"`
	HeroHealth int    `mapstructure:"hero_health"`
	Coin       string `mapstructure:"coin"`
	StateFile  string `mapstructure:"state_file"`
	ScriptFile string `mapstructure:"script_file"`
}

// EngineConfig holds dispatcher limits.
type EngineConfig struct {
	MaxDispatch int `mapstructure:"max_dispatch"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Driver      string `mapstructure:"driver"`
	Directory   string `mapstructure:"directory"`
	DatabaseURL string `mapstructure:"database_url"`
}

func setDefaults(v *viper.Viper) {
	def := game.DefaultConfig()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.max_desk", def.MaxDesk)
	v.SetDefault("game.max_hand", def.MaxHand)
	v.SetDefault("game.max_crystal", def.MaxCrystal)
	v.SetDefault("game.hero_health", def.HeroHealth)
	v.SetDefault("game.coin", cards.Coin)
	v.SetDefault("game.state_file", "")
	v.SetDefault("game.script_file", "")

	v.SetDefault("engine.max_dispatch", def.MaxDispatch)

	v.SetDefault("history.driver", history.DriverMemory)
	v.SetDefault("history.directory", "")
	v.SetDefault("history.database_url", "")
}

// Load reads path (when non-empty), applies HS_ environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks limits and the history driver.
func (c *Config) Validate() error {
	var errs []error
	for _, limit := range []struct {
		key   string
		value int
	}{
		{"game.max_desk", c.Game.MaxDesk},
		{"game.max_hand", c.Game.MaxHand},
		{"game.max_crystal", c.Game.MaxCrystal},
		{"game.hero_health", c.Game.HeroHealth},
		{"engine.max_dispatch", c.Engine.MaxDispatch},
	} {
		if limit.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", limit.key, limit.value))
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}

	switch c.History.Driver {
	case history.DriverNone, history.DriverMemory:
	case history.DriverPostgres:
		if c.History.DatabaseURL == "" {
			errs = append(errs, errors.New("history.database_url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown history.driver %q", c.History.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ToGame converts the loaded values into a game configuration.
func (c *Config) ToGame() game.Config {
	return game.Config{
		MaxDesk:     c.Game.MaxDesk,
		MaxHand:     c.Game.MaxHand,
		MaxCrystal:  c.Game.MaxCrystal,
		HeroHealth:  c.Game.HeroHealth,
		MaxDispatch: c.Engine.MaxDispatch,
		Coin:        c.Game.Coin,
	}
}

// ToHistory converts the loaded values into a history configuration.
func (c *Config) ToHistory() history.Config {
	return history.Config{
		Driver:      c.History.Driver,
		Directory:   c.History.Directory,
		DatabaseURL: c.History.DatabaseURL,
	}
}
