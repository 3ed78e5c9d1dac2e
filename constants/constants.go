package constants

import (
	"os"
	"strconv"
)

// GetConfigPath is where the CLI looks for its YAML config when no --config
// flag is given.
func GetConfigPath() string {
	path := os.Getenv("HARMONSEQ_CONFIG")
	if path != "" {
		return path
	}
	return "./harmonseq.yaml"
}

func GetEnvInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

const DefaultUndoDepth = 20

// MaxSequence bounds the number of steps of a harmony analysis.
const MaxSequence = 256

const DefaultTicksPerQuarter = 120

const DefaultEighthsPerStep = 8

const MaxKey = 127
