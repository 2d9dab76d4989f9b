// Package config holds the YAML configuration for the navigation mesh and
// the tools built on it.
package config

import (
	"os"
	"time"

	"github.com/chauncy-crib/tagprobot-sub000/internal/world"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Mesh  MeshConfig  `yaml:"mesh"`
	Path  PathConfig  `yaml:"path"`
	Tiles TilesConfig `yaml:"tiles"`
	Log   LogConfig   `yaml:"log"`
}

type MeshConfig struct {
	// World units per tile
	TileSize float64 `yaml:"tile_size"`
}

type PathConfig struct {
	// How far smoothed paths keep from wall corners
	Clearance    float64 `yaml:"clearance"`
	EnemyPenalty float64 `yaml:"enemy_penalty"`
	EnemyRadius  float64 `yaml:"enemy_radius"`
	// How long a smoothing request may wait and run before its result is
	// discarded
	PlanTimeout time.Duration `yaml:"plan_timeout"`
}

type TilesConfig struct {
	Blocked []world.Tile `yaml:"blocked"`
	Mutable []world.Tile `yaml:"mutable"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Mesh: MeshConfig{TileSize: 40},
		Path: PathConfig{
			Clearance:    10,
			EnemyPenalty: 1e5,
			EnemyRadius:  120,
			PlanTimeout:  100 * time.Millisecond,
		},
		Tiles: TilesConfig{
			Blocked: []world.Tile{world.Wall, world.GateClosed},
			Mutable: []world.Tile{world.GateClosed, world.GateOpen},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Fields that
// are absent keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Mesh.TileSize <= 0 {
		return errors.Wrapf(ErrInvalid, "mesh.tile_size must be positive, got %v", c.Mesh.TileSize)
	}
	if c.Path.Clearance < 0 || c.Path.Clearance >= c.Mesh.TileSize/2 {
		return errors.Wrapf(ErrInvalid, "path.clearance must be in [0, %v), got %v", c.Mesh.TileSize/2, c.Path.Clearance)
	}
	if c.Path.EnemyPenalty < 0 {
		return errors.Wrapf(ErrInvalid, "path.enemy_penalty must not be negative, got %v", c.Path.EnemyPenalty)
	}
	if c.Path.EnemyRadius < 0 {
		return errors.Wrapf(ErrInvalid, "path.enemy_radius must not be negative, got %v", c.Path.EnemyRadius)
	}
	if c.Path.PlanTimeout <= 0 {
		return errors.Wrapf(ErrInvalid, "path.plan_timeout must be positive, got %v", c.Path.PlanTimeout)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalid, "log.level: %v", err)
	}
	return nil
}

// The tile classifier described by the tiles section.
func (c *Config) Classifier() world.Classifier {
	return world.NewTileClasses(c.Tiles.Blocked, c.Tiles.Mutable)
}
