package groundmotion

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("groundmotion: invalid config")
	ErrNilRaycaster  = errors.New("groundmotion: nil raycaster")
)

// Config is the fixed setup of a Controller. It is read once by
// NewController; later edits have no effect on an existing controller.
type Config struct {
	// MaxSlopeDegrees is the steepest surface still treated as ground.
	MaxSlopeDegrees float32 `yaml:"max_slope_degrees"`
	// MaxSnapSpeed is the fastest the body may move for a ground snap to be tried.
	MaxSnapSpeed float32 `yaml:"max_snap_speed"`
	// ProbeDistance is the length of the downward snap ray.
	ProbeDistance float32 `yaml:"probe_distance"`
	// GroundMask filters which layers the snap ray may hit.
	GroundMask LayerMask `yaml:"ground_mask"`
}

func DefaultConfig() Config {
	return Config{
		MaxSlopeDegrees: 25,
		MaxSnapSpeed:    100,
		ProbeDistance:   1,
		GroundMask:      Everything,
	}
}

func (c Config) Validate() error {
	if isBad(c.MaxSlopeDegrees) || c.MaxSlopeDegrees < 0 || c.MaxSlopeDegrees > 90 {
		return fmt.Errorf("%w: max_slope_degrees %v outside [0, 90]", ErrInvalidConfig, c.MaxSlopeDegrees)
	}
	if isBad(c.MaxSnapSpeed) || c.MaxSnapSpeed < 0 || c.MaxSnapSpeed > 100 {
		return fmt.Errorf("%w: max_snap_speed %v outside [0, 100]", ErrInvalidConfig, c.MaxSnapSpeed)
	}
	if isBad(c.ProbeDistance) || c.ProbeDistance < 0 {
		return fmt.Errorf("%w: probe_distance %v must be >= 0", ErrInvalidConfig, c.ProbeDistance)
	}
	return nil
}

// minGroundDot is the smallest dot(up, normal) that still counts as ground.
func (c Config) minGroundDot() float32 {
	return float32(math.Cos(float64(c.MaxSlopeDegrees) * math.Pi / 180))
}

// ParseConfig decodes YAML on top of DefaultConfig, so omitted keys keep
// their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func isBad(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}
