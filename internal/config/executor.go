package config

import (
	"os"
	"strconv"
	"time"
)

// ExecutorConfig selects the sandbox runtime and the evaluation budgets.
type ExecutorConfig struct {
	// SandboxURL is the base URL of the remote execution service.
	SandboxURL string
	// Language and Version pick the runtime candidate code runs under.
	Language string
	Version  string
	// PerCaseTimeout bounds one test case execution.
	PerCaseTimeout time.Duration
	// SubmitDeadline bounds one whole submission evaluation.
	SubmitDeadline time.Duration
	// ReservationTTL bounds how long an in-flight submission holds its slot.
	ReservationTTL time.Duration
}

func NewExecutorConfig() *ExecutorConfig {
	sandboxURL := os.Getenv("SANDBOX_URL")
	if sandboxURL == "" {
		sandboxURL = "http://localhost:2000"
	}
	language := os.Getenv("SANDBOX_LANGUAGE")
	if language == "" {
		language = "javascript"
	}
	version := os.Getenv("SANDBOX_VERSION")
	if version == "" {
		version = "18.15.0"
	}

	perCaseSec, err := strconv.Atoi(os.Getenv("PER_CASE_TIMEOUT_SEC"))
	if err != nil {
		perCaseSec = 5
	}
	submitSec, err := strconv.Atoi(os.Getenv("SUBMIT_DEADLINE_SEC"))
	if err != nil {
		submitSec = 120
	}
	reservationSec, err := strconv.Atoi(os.Getenv("SUBMIT_RESERVATION_TTL_SEC"))
	if err != nil {
		reservationSec = 1800
	}

	return &ExecutorConfig{
		SandboxURL:     sandboxURL,
		Language:       language,
		Version:        version,
		PerCaseTimeout: time.Duration(perCaseSec) * time.Second,
		SubmitDeadline: time.Duration(submitSec) * time.Second,
		ReservationTTL: time.Duration(reservationSec) * time.Second,
	}
}
