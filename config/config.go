// Package config - YAML configuration for hierarchy-aware suppression runs.
package config

import (
	"os"

	"github.com/nvr-ai/go-hnms/models/postprocess"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the inputs and thresholds of a suppression run.
type Config struct {
	// Path of the "parent_id child_id" edge file.
	HierarchyFile string `yaml:"hierarchy_file"`
	// Path of the "id<TAB>name" table.
	NamesFile string `yaml:"names_file"`
	// Detections scoring at or below this are dropped.
	ScoreThreshold float32 `yaml:"score_threshold"`
	// Overlap above which a candidate is suppressed.
	IoUThreshold float32 `yaml:"iou_threshold"`
	// Gate policy name: "ancestor", "related" or "none".
	Gate string `yaml:"gate"`
	// Number of frames suppressed concurrently by the batch controller.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ScoreThreshold: 0.3,
		IoUThreshold:   0.5,
		Gate:           postprocess.GateAncestor,
		Workers:        4,
	}
}

// Load reads and validates a YAML config file. Fields missing from the file keep their
// Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks thresholds, gate name and worker count.
func (c Config) Validate() error {
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "score_threshold %v outside [0,1]", c.ScoreThreshold)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "iou_threshold %v outside [0,1]", c.IoUThreshold)
	}
	if _, err := postprocess.GateByName(c.Gate); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// SuppressConfig converts the thresholds and gate into a postprocess.SuppressConfig.
func (c Config) SuppressConfig() (*postprocess.SuppressConfig, error) {
	gate, err := postprocess.GateByName(c.Gate)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return &postprocess.SuppressConfig{
		ScoreThreshold: c.ScoreThreshold,
		IoUThreshold:   c.IoUThreshold,
		Gate:           gate,
	}, nil
}
