package config

import (
	"os"
	"strconv"
	"time"
)

// SweeperConfig paces the background retirement of expired tests.
type SweeperConfig struct {
	Interval time.Duration
}

func NewSweeperConfig() *SweeperConfig {
	intervalSec, err := strconv.Atoi(os.Getenv("SWEEP_INTERVAL_SEC"))
	if err != nil {
		intervalSec = 60
	}
	return &SweeperConfig{
		Interval: time.Duration(intervalSec) * time.Second,
	}
}
