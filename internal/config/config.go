package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Loop      LoopConfig      `toml:"loop"`
	World     WorldConfig     `toml:"world"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
	Profile   ProfileConfig   `toml:"profile"`
}

type LoopConfig struct {
	TickRate Duration `toml:"tick_rate"`
	MaxTicks uint64   `toml:"max_ticks"` // 0 = run until signalled
}

type WorldConfig struct {
	EventCapacity int `toml:"event_capacity"`
}

type DataConfig struct {
	PrefabFile string        `toml:"prefab_file"`
	Spawn      []SpawnConfig `toml:"spawn"`
}

// SpawnConfig asks for Count entities built from the named prefab at startup.
type SpawnConfig struct {
	Prefab string `toml:"prefab"`
	Count  int    `toml:"count"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables Lua systems
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
	Path string `toml:"path"`
}

// Duration accepts TOML strings such as "200ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Loop.TickRate.Duration <= 0 {
		return fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode %q is not one of cpu, mem", c.Profile.Mode)
	}
	for _, s := range c.Data.Spawn {
		if s.Count < 0 {
			return fmt.Errorf("spawn %q: negative count %d", s.Prefab, s.Count)
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Loop: LoopConfig{
			TickRate: Duration{200 * time.Millisecond},
		},
		World: WorldConfig{
			EventCapacity: 64,
		},
		Data: DataConfig{
			PrefabFile: "data/yaml/prefabs.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
