// Package config loads the YAML settings that size the canvas and tune the
// editor and router.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"

	"flowdesigner/editor"
	"flowdesigner/pathfinding"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Neighbour policy names.
const (
	NeighboursStraight = "straight"
	NeighboursDiagonal = "diagonal"
)

// Config is the top-level configuration.
type Config struct {
	Canvas      Canvas      `json:"canvas"`
	Shapes      Shapes      `json:"shapes"`
	Interaction Interaction `json:"interaction"`
	Routing     Routing     `json:"routing"`
	Log         Log         `json:"log"`
}

// Canvas is the size of the drawing area in canvas units.
type Canvas struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Shapes holds the defaults given to created shapes.
type Shapes struct {
	Margin    float64 `json:"margin" validate:"gte=0"`
	PointSize float64 `json:"pointSize" validate:"gt=0"`
}

// Interaction tunes pointer hit tests.
type Interaction struct {
	BorderGrip     float64 `json:"borderGrip" validate:"gt=0"`
	PointHitRadius float64 `json:"pointHitRadius" validate:"gt=0"`
}

// Routing tunes the obstacle router.
type Routing struct {
	Resolution      float64 `json:"resolution" validate:"gt=0"`
	Neighbours      string  `json:"neighbours" validate:"oneof=straight diagonal"`
	ObstaclePadding float64 `json:"obstaclePadding" validate:"gte=0"`
	MaxNodes        int     `json:"maxNodes" validate:"gte=0"`
	StraightCost    int     `json:"straightCost" validate:"gt=0"`
	TurnCost        int     `json:"turnCost" validate:"gte=0"`
	DiagonalCost    int     `json:"diagonalCost" validate:"gt=0"`
}

// Log selects the log level.
type Log struct {
	Level string `json:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: Canvas{Width: 120, Height: 40},
		Shapes: Shapes{Margin: 1, PointSize: 1},
		Interaction: Interaction{
			BorderGrip:     1,
			PointHitRadius: 1,
		},
		Routing: Routing{
			Resolution:      pathfinding.DefaultResolution,
			Neighbours:      NeighboursStraight,
			ObstaclePadding: 1,
			StraightCost:    pathfinding.DefaultPathCost.StraightCost,
			TurnCost:        pathfinding.DefaultPathCost.TurnCost,
			DiagonalCost:    pathfinding.DefaultPathCost.DiagonalCost,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Policy returns the configured neighbour policy.
func (c *Config) Policy() pathfinding.NeighbourPolicy {
	if c.Routing.Neighbours == NeighboursDiagonal {
		return pathfinding.Diagonal(c.Routing.Resolution)
	}
	return pathfinding.Straight(c.Routing.Resolution)
}

// Router builds a router from the routing section.
func (c *Config) Router(logger *slog.Logger) *pathfinding.Router {
	return pathfinding.NewRouter(
		pathfinding.WithPolicy(c.Policy()),
		pathfinding.WithCosts(pathfinding.PathCost{
			StraightCost: c.Routing.StraightCost,
			TurnCost:     c.Routing.TurnCost,
			DiagonalCost: c.Routing.DiagonalCost,
		}),
		pathfinding.WithPadding(c.Routing.ObstaclePadding),
		pathfinding.WithMaxNodes(c.Routing.MaxNodes),
		pathfinding.WithLogger(logger),
	)
}

// EditorOptions translates the configuration into editor options, routing
// with Router.
func (c *Config) EditorOptions(logger *slog.Logger) []editor.Option {
	return []editor.Option{
		editor.WithRouter(c.Router(logger)),
		editor.WithLogger(logger),
		editor.WithBorderGrip(c.Interaction.BorderGrip),
		editor.WithPointHitRadius(c.Interaction.PointHitRadius),
		editor.WithComponentMargin(c.Shapes.Margin),
		editor.WithPointSize(c.Shapes.PointSize),
	}
}
