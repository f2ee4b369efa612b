package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds a demo-run configuration for a recurrent layer.
type Config struct {
	BatchSize       int
	InputWidth      int
	HiddenWidth     int
	Stateful        bool
	ReturnSequences bool
	Seed            int64
	WeightsFile     string
}

// ParseDims parses a whitespace-separated dimension string ("2 1 5") into a
// slice of integers.
func ParseDims(dimStr string) ([]int, error) {
	parts := strings.Fields(dimStr)
	dims := make([]int, len(parts))
	for i, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		dims[i] = n
	}
	return dims, nil
}

// ValidateConfig validates a run configuration.
func ValidateConfig(config *Config) error {
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if config.InputWidth <= 0 {
		return fmt.Errorf("input width must be positive")
	}

	if config.HiddenWidth <= 0 {
		return fmt.Errorf("hidden width must be positive")
	}

	return nil
}
