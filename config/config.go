package config

import (
	"os"
	"time"

	"github.com/jsphweid/harmonseq/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Dynamo struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Table    string `yaml:"table"`
}

// Enabled reports whether progressions should be kept in DynamoDB instead of
// memory.
func (d Dynamo) Enabled() bool {
	return d.Table != ""
}

type Config struct {
	Listen          string        `yaml:"listen"`
	LogLevel        string        `yaml:"log_level"`
	Tracks          int           `yaml:"tracks"`
	UndoDepth       int           `yaml:"undo_depth"`
	TicksPerQuarter int           `yaml:"ticks_per_quarter"`
	BeatsPerBar     int           `yaml:"beats_per_bar"`
	BeatUnit        int           `yaml:"beat_unit"`
	EighthsPerStep  int           `yaml:"eighths_per_step"`
	AnalysisDelay   time.Duration `yaml:"analysis_delay"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	Dynamo          Dynamo        `yaml:"dynamo"`
}

func Default() Config {
	return Config{
		Listen:          ":8080",
		LogLevel:        "info",
		Tracks:          4,
		UndoDepth:       constants.DefaultUndoDepth,
		TicksPerQuarter: constants.DefaultTicksPerQuarter,
		BeatsPerBar:     4,
		BeatUnit:        4,
		EighthsPerStep:  constants.DefaultEighthsPerStep,
		AnalysisDelay:   300 * time.Millisecond,
		AllowedOrigins:  []string{"*"},
		Dynamo:          Dynamo{Region: "localhost"},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	dat, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrapf(err, "reading config %s", path)
	default:
		if err := yaml.Unmarshal(dat, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HARMONSEQ_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("HARMONSEQ_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.Tracks = constants.GetEnvInt("HARMONSEQ_TRACKS", c.Tracks)
	c.UndoDepth = constants.GetEnvInt("HARMONSEQ_UNDO_DEPTH", c.UndoDepth)
	c.EighthsPerStep = constants.GetEnvInt("HARMONSEQ_EIGHTHS_PER_STEP", c.EighthsPerStep)
	if v := os.Getenv("HARMONSEQ_ANALYSIS_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.AnalysisDelay = d
		}
	}
	if v := os.Getenv("DYNAMO_ENDPOINT"); v != "" {
		c.Dynamo.Endpoint = v
	}
	if v := os.Getenv("DYNAMO_REGION"); v != "" {
		c.Dynamo.Region = v
	}
	if v := os.Getenv("DYNAMO_TABLE"); v != "" {
		c.Dynamo.Table = v
	}
}

func (c Config) Validate() error {
	switch {
	case c.Tracks < 1:
		return errors.Errorf("tracks must be positive, got %d", c.Tracks)
	case c.UndoDepth < 1:
		return errors.Errorf("undo_depth must be positive, got %d", c.UndoDepth)
	case c.TicksPerQuarter < 1 || c.BeatsPerBar < 1:
		return errors.Errorf("invalid meter %d/%d", c.TicksPerQuarter, c.BeatsPerBar)
	case c.BeatUnit < 1 || c.BeatUnit&(c.BeatUnit-1) != 0:
		return errors.Errorf("beat_unit must be a power of two, got %d", c.BeatUnit)
	case c.EighthsPerStep < 0:
		return errors.Errorf("eighths_per_step must not be negative, got %d", c.EighthsPerStep)
	}
	return nil
}
